package catalog

import (
	"net/http"

	"tunedeck/model"
)

// Status classifies the result of a pipeline operation. It is the contract
// the transport layer maps onto response codes; cache failures never appear
// here because the invalidation layer absorbs them.
type Status int

const (
	StatusSuccess Status = iota
	StatusUnauthorized
	StatusBadRequest
	StatusNotFound
	StatusUploadFailed
	StatusStoreError
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusUnauthorized:
		return "unauthorized"
	case StatusBadRequest:
		return "bad_request"
	case StatusNotFound:
		return "not_found"
	case StatusUploadFailed:
		return "upload_failed"
	case StatusStoreError:
		return "store_error"
	default:
		return "unknown"
	}
}

// HTTPStatus maps the status onto an HTTP response code.
func (s Status) HTTPStatus() int {
	switch s {
	case StatusSuccess:
		return http.StatusOK
	case StatusUnauthorized:
		return http.StatusUnauthorized
	case StatusBadRequest:
		return http.StatusBadRequest
	case StatusNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// Outcome is the structured result of one pipeline operation.
type Outcome struct {
	Status  Status       `json:"status"`
	Message string       `json:"message"`
	Album   *model.Album `json:"album,omitempty"`
	Song    *model.Song  `json:"song,omitempty"`
}

func failure(status Status, message string) *Outcome {
	return &Outcome{Status: status, Message: message}
}
