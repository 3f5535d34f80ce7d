package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"tunedeck/config"
	"tunedeck/core/catalog"
	"tunedeck/logger"
	"tunedeck/model"

	"github.com/gorilla/mux"
)

// catalogPipeline is the slice of the write pipeline the HTTP layer drives.
type catalogPipeline interface {
	CreateAlbum(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error)
	CreateSong(ctx context.Context, actor *model.Actor, in catalog.CreateSongInput) (*catalog.Outcome, error)
	SetSongThumbnail(ctx context.Context, actor *model.Actor, in catalog.SetSongThumbnailInput) (*catalog.Outcome, error)
	DeleteAlbum(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error)
	DeleteSong(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error)
}

// identityLookup resolves a request token into an actor.
type identityLookup interface {
	Lookup(ctx context.Context, token string) (*model.Actor, error)
}

// APIHandler carries the admin API's collaborators.
type APIHandler struct {
	pipeline catalogPipeline
	identity identityLookup
	cfg      *config.Config
}

// NewAPIHandler creates an APIHandler.
func NewAPIHandler(pipeline catalogPipeline, identity identityLookup, cfg *config.Config) *APIHandler {
	return &APIHandler{pipeline: pipeline, identity: identity, cfg: cfg}
}

// apiResponse is the JSON body of every admin API reply.
type apiResponse struct {
	Message string       `json:"message"`
	Album   *model.Album `json:"album,omitempty"`
	Song    *model.Song  `json:"song,omitempty"`
}

// AuthMiddleware resolves the token header against the identity service and
// stores the actor in the request context. Any lookup failure is treated as
// not authenticated.
func (h *APIHandler) AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := r.Header.Get("token")
		if token == "" {
			writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
			return
		}

		actor, err := h.identity.Lookup(r.Context(), token)
		if err != nil {
			logger.Debug("identity lookup rejected request", logger.ErrorField(err))
			writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
			return
		}

		ctx := context.WithValue(r.Context(), "actor", actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// GetActorFromContext extracts the actor set by AuthMiddleware.
func GetActorFromContext(ctx context.Context) (*model.Actor, error) {
	actor, ok := ctx.Value("actor").(*model.Actor)
	if !ok {
		return nil, fmt.Errorf("actor not found in context")
	}
	return actor, nil
}

// CreateAlbumHandler handles POST /api/v1/album/new.
func (h *APIHandler) CreateAlbumHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := GetActorFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: fmt.Sprintf("Failed to parse multipart form: %v", err)})
		return
	}

	file, err := readAttachment(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: err.Error()})
		return
	}

	outcome, err := h.pipeline.CreateAlbum(r.Context(), actor, catalog.CreateAlbumInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		File:        file,
	})
	writeOutcome(w, outcome, err)
}

// CreateSongHandler handles POST /api/v1/song/new.
func (h *APIHandler) CreateSongHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := GetActorFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: fmt.Sprintf("Failed to parse multipart form: %v", err)})
		return
	}

	file, err := readAttachment(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: err.Error()})
		return
	}

	outcome, err := h.pipeline.CreateSong(r.Context(), actor, catalog.CreateSongInput{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		AlbumID:     r.FormValue("album"),
		File:        file,
	})
	writeOutcome(w, outcome, err)
}

// SetSongThumbnailHandler handles POST /api/v1/song/{id}.
func (h *APIHandler) SetSongThumbnailHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := GetActorFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "Invalid song ID"})
		return
	}

	if err := r.ParseMultipartForm(h.cfg.MaxUploadBytes); err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: fmt.Sprintf("Failed to parse multipart form: %v", err)})
		return
	}

	file, err := readAttachment(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: err.Error()})
		return
	}

	outcome, err := h.pipeline.SetSongThumbnail(r.Context(), actor, catalog.SetSongThumbnailInput{
		SongID: songID,
		File:   file,
	})
	writeOutcome(w, outcome, err)
}

// DeleteAlbumHandler handles DELETE /api/v1/album/{id}.
func (h *APIHandler) DeleteAlbumHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := GetActorFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
		return
	}

	albumID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "Invalid album ID"})
		return
	}

	outcome, err := h.pipeline.DeleteAlbum(r.Context(), actor, albumID)
	writeOutcome(w, outcome, err)
}

// DeleteSongHandler handles DELETE /api/v1/song/{id}.
func (h *APIHandler) DeleteSongHandler(w http.ResponseWriter, r *http.Request) {
	actor, err := GetActorFromContext(r.Context())
	if err != nil {
		writeJSON(w, http.StatusForbidden, apiResponse{Message: "please login"})
		return
	}

	songID, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, apiResponse{Message: "Invalid song ID"})
		return
	}

	outcome, err := h.pipeline.DeleteSong(r.Context(), actor, songID)
	writeOutcome(w, outcome, err)
}

// readAttachment reads the single optional "file" form part into memory.
// A missing part yields (nil, nil); the pipeline decides whether the
// operation needs a payload.
func readAttachment(r *http.Request) (*catalog.Attachment, error) {
	file, header, err := r.FormFile("file")
	if err == http.ErrMissingFile {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read file from form: %w", err)
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read file content: %w", err)
	}

	return &catalog.Attachment{
		Content:  content,
		MimeType: header.Header.Get("Content-Type"),
	}, nil
}

// writeOutcome renders a pipeline result. A non-nil err is the generic
// failure channel and always maps to a 500.
func writeOutcome(w http.ResponseWriter, outcome *catalog.Outcome, err error) {
	if err != nil {
		logger.Error("operation failed", logger.ErrorField(err))
		writeJSON(w, http.StatusInternalServerError, apiResponse{Message: err.Error()})
		return
	}

	writeJSON(w, outcome.Status.HTTPStatus(), apiResponse{
		Message: outcome.Message,
		Album:   outcome.Album,
		Song:    outcome.Song,
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("failed to encode response", logger.ErrorField(err))
	}
}
