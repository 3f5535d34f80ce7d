package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"tunedeck/config"
	"tunedeck/core/catalog"
	"tunedeck/model"

	"github.com/gorilla/mux"
)

type mockPipeline struct {
	createAlbumFn      func(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error)
	createSongFn       func(ctx context.Context, actor *model.Actor, in catalog.CreateSongInput) (*catalog.Outcome, error)
	setSongThumbnailFn func(ctx context.Context, actor *model.Actor, in catalog.SetSongThumbnailInput) (*catalog.Outcome, error)
	deleteAlbumFn      func(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error)
	deleteSongFn       func(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error)
}

func (m *mockPipeline) CreateAlbum(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error) {
	if m.createAlbumFn == nil {
		panic("unexpected call to CreateAlbum")
	}
	return m.createAlbumFn(ctx, actor, in)
}

func (m *mockPipeline) CreateSong(ctx context.Context, actor *model.Actor, in catalog.CreateSongInput) (*catalog.Outcome, error) {
	if m.createSongFn == nil {
		panic("unexpected call to CreateSong")
	}
	return m.createSongFn(ctx, actor, in)
}

func (m *mockPipeline) SetSongThumbnail(ctx context.Context, actor *model.Actor, in catalog.SetSongThumbnailInput) (*catalog.Outcome, error) {
	if m.setSongThumbnailFn == nil {
		panic("unexpected call to SetSongThumbnail")
	}
	return m.setSongThumbnailFn(ctx, actor, in)
}

func (m *mockPipeline) DeleteAlbum(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error) {
	if m.deleteAlbumFn == nil {
		panic("unexpected call to DeleteAlbum")
	}
	return m.deleteAlbumFn(ctx, actor, id)
}

func (m *mockPipeline) DeleteSong(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error) {
	if m.deleteSongFn == nil {
		panic("unexpected call to DeleteSong")
	}
	return m.deleteSongFn(ctx, actor, id)
}

type mockIdentity struct {
	lookupFn func(ctx context.Context, token string) (*model.Actor, error)
}

func (m *mockIdentity) Lookup(ctx context.Context, token string) (*model.Actor, error) {
	if m.lookupFn == nil {
		panic("unexpected call to Lookup")
	}
	return m.lookupFn(ctx, token)
}

var testAdmin = &model.Actor{ID: "admin-1", Name: "Ops", Role: "admin"}

func adminIdentity() *mockIdentity {
	return &mockIdentity{
		lookupFn: func(ctx context.Context, token string) (*model.Actor, error) {
			return testAdmin, nil
		},
	}
}

func testHandler(pipeline catalogPipeline, identity identityLookup) *APIHandler {
	return NewAPIHandler(pipeline, identity, &config.Config{MaxUploadBytes: 32 << 20})
}

// multipartBody builds a multipart form with the given fields and a single
// "file" part carrying contentType.
func multipartBody(t *testing.T, fields map[string]string, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field %q: %v", k, err)
		}
	}
	if filename != "" {
		hdr := make(textproto.MIMEHeader)
		hdr.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
		hdr.Set("Content-Type", contentType)
		part, err := mw.CreatePart(hdr)
		if err != nil {
			t.Fatalf("create file part: %v", err)
		}
		if _, err := part.Write(content); err != nil {
			t.Fatalf("write file part: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) apiResponse {
	t.Helper()
	var body apiResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body
}

func TestAuthMiddleware(t *testing.T) {
	t.Run("rejects a request without a token", func(t *testing.T) {
		h := testHandler(&mockPipeline{}, &mockIdentity{})
		protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler reached without a token")
		})

		rec := httptest.NewRecorder()
		protected(rec, httptest.NewRequest(http.MethodPost, "/api/v1/album/new", nil))

		if rec.Code != http.StatusForbidden {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
		if body := decodeResponse(t, rec); body.Message != "please login" {
			t.Fatalf("unexpected message: %q", body.Message)
		}
	})

	t.Run("rejects a request the identity service rejects", func(t *testing.T) {
		identity := &mockIdentity{
			lookupFn: func(ctx context.Context, token string) (*model.Actor, error) {
				return nil, errors.New("token expired")
			},
		}
		h := testHandler(&mockPipeline{}, identity)
		protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler reached with a rejected token")
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/album/new", nil)
		req.Header.Set("token", "expired")
		rec := httptest.NewRecorder()
		protected(rec, req)

		if rec.Code != http.StatusForbidden {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})

	t.Run("stores the resolved actor in the request context", func(t *testing.T) {
		h := testHandler(&mockPipeline{}, adminIdentity())
		var got *model.Actor
		protected := h.AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
			actor, err := GetActorFromContext(r.Context())
			if err != nil {
				t.Fatalf("actor missing from context: %v", err)
			}
			got = actor
		})

		req := httptest.NewRequest(http.MethodPost, "/api/v1/album/new", nil)
		req.Header.Set("token", "tok")
		protected(httptest.NewRecorder(), req)

		if got != testAdmin {
			t.Fatalf("unexpected actor: %+v", got)
		}
	})
}

func TestCreateAlbumHandler(t *testing.T) {
	t.Run("passes form fields and file to the pipeline", func(t *testing.T) {
		var gotIn catalog.CreateAlbumInput
		pipeline := &mockPipeline{
			createAlbumFn: func(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error) {
				gotIn = in
				return &catalog.Outcome{
					Status:  catalog.StatusSuccess,
					Message: "Album Created",
					Album:   &model.Album{ID: 1, Title: in.Title},
				}, nil
			},
		}
		h := testHandler(pipeline, adminIdentity())

		body, contentType := multipartBody(t,
			map[string]string{"title": "Night Drive", "description": "synthwave"},
			"cover.png", "image/png", []byte("png-bytes"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/album/new", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("token", "tok")

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.CreateAlbumHandler)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
		}
		if gotIn.Title != "Night Drive" || gotIn.Description != "synthwave" {
			t.Fatalf("form fields not forwarded: %+v", gotIn)
		}
		if gotIn.File == nil || gotIn.File.MimeType != "image/png" || string(gotIn.File.Content) != "png-bytes" {
			t.Fatalf("file not forwarded: %+v", gotIn.File)
		}
		resp := decodeResponse(t, rec)
		if resp.Message != "Album Created" || resp.Album == nil || resp.Album.ID != 1 {
			t.Fatalf("unexpected body: %+v", resp)
		}
	})

	t.Run("forwards a missing file as nil", func(t *testing.T) {
		pipeline := &mockPipeline{
			createAlbumFn: func(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error) {
				if in.File != nil {
					t.Fatalf("expected nil attachment, got %+v", in.File)
				}
				return &catalog.Outcome{Status: catalog.StatusBadRequest, Message: "No file to upload"}, nil
			},
		}
		h := testHandler(pipeline, adminIdentity())

		body, contentType := multipartBody(t, map[string]string{"title": "t", "description": "d"}, "", "", nil)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/album/new", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("token", "tok")

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.CreateAlbumHandler)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})

	t.Run("maps the error channel to a 500", func(t *testing.T) {
		pipeline := &mockPipeline{
			createAlbumFn: func(ctx context.Context, actor *model.Actor, in catalog.CreateAlbumInput) (*catalog.Outcome, error) {
				return nil, errors.New("album thumbnail upload failed: object store unreachable")
			},
		}
		h := testHandler(pipeline, adminIdentity())

		body, contentType := multipartBody(t,
			map[string]string{"title": "t", "description": "d"},
			"cover.png", "image/png", []byte("x"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/album/new", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("token", "tok")

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.CreateAlbumHandler)(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})
}

func TestCreateSongHandler(t *testing.T) {
	var gotIn catalog.CreateSongInput
	pipeline := &mockPipeline{
		createSongFn: func(ctx context.Context, actor *model.Actor, in catalog.CreateSongInput) (*catalog.Outcome, error) {
			gotIn = in
			return &catalog.Outcome{Status: catalog.StatusSuccess, Message: "Song added successfully", Song: &model.Song{ID: 2}}, nil
		},
	}
	h := testHandler(pipeline, adminIdentity())

	body, contentType := multipartBody(t,
		map[string]string{"title": "Tape Loop", "description": "b-side", "album": "3"},
		"track.mp3", "audio/mpeg", []byte("mp3-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/v1/song/new", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("token", "tok")

	rec := httptest.NewRecorder()
	h.AuthMiddleware(h.CreateSongHandler)(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
	}
	// The album field stays a raw string; the pipeline owns its validation.
	if gotIn.AlbumID != "3" {
		t.Fatalf("album field not forwarded raw: %q", gotIn.AlbumID)
	}
	if gotIn.File == nil || gotIn.File.MimeType != "audio/mpeg" {
		t.Fatalf("file not forwarded: %+v", gotIn.File)
	}
}

func TestSetSongThumbnailHandler(t *testing.T) {
	t.Run("rejects a non-numeric id before reading the form", func(t *testing.T) {
		h := testHandler(&mockPipeline{}, adminIdentity())

		req := httptest.NewRequest(http.MethodPost, "/api/v1/song/abc", nil)
		req.Header.Set("token", "tok")
		req = mux.SetURLVars(req, map[string]string{"id": "abc"})

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.SetSongThumbnailHandler)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
		if body := decodeResponse(t, rec); body.Message != "Invalid song ID" {
			t.Fatalf("unexpected message: %q", body.Message)
		}
	})

	t.Run("forwards the parsed id and file", func(t *testing.T) {
		var gotIn catalog.SetSongThumbnailInput
		pipeline := &mockPipeline{
			setSongThumbnailFn: func(ctx context.Context, actor *model.Actor, in catalog.SetSongThumbnailInput) (*catalog.Outcome, error) {
				gotIn = in
				return &catalog.Outcome{Status: catalog.StatusSuccess, Message: "Song thumbnail added successfully", Song: &model.Song{ID: in.SongID}}, nil
			},
		}
		h := testHandler(pipeline, adminIdentity())

		body, contentType := multipartBody(t, nil, "art.png", "image/png", []byte("png"))
		req := httptest.NewRequest(http.MethodPost, "/api/v1/song/9", body)
		req.Header.Set("Content-Type", contentType)
		req.Header.Set("token", "tok")
		req = mux.SetURLVars(req, map[string]string{"id": "9"})

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.SetSongThumbnailHandler)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d body=%s", rec.Code, rec.Body.String())
		}
		if gotIn.SongID != 9 {
			t.Fatalf("unexpected song id: %d", gotIn.SongID)
		}
		if gotIn.File == nil || gotIn.File.MimeType != "image/png" {
			t.Fatalf("file not forwarded: %+v", gotIn.File)
		}
	})
}

func TestDeleteHandlers(t *testing.T) {
	t.Run("delete album maps outcome statuses to HTTP", func(t *testing.T) {
		table := []struct {
			label    string
			outcome  *catalog.Outcome
			wantCode int
		}{
			{"success", &catalog.Outcome{Status: catalog.StatusSuccess, Message: "Album Deleted Successfully"}, http.StatusOK},
			{"not found", &catalog.Outcome{Status: catalog.StatusNotFound, Message: "No album found with this ID"}, http.StatusNotFound},
			{"unauthorized", &catalog.Outcome{Status: catalog.StatusUnauthorized, Message: "You are not admin"}, http.StatusUnauthorized},
			{"store error", &catalog.Outcome{Status: catalog.StatusStoreError, Message: "Catalog store unavailable"}, http.StatusInternalServerError},
		}

		for _, ts := range table {
			t.Run(ts.label, func(t *testing.T) {
				pipeline := &mockPipeline{
					deleteAlbumFn: func(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error) {
						return ts.outcome, nil
					},
				}
				h := testHandler(pipeline, adminIdentity())

				req := httptest.NewRequest(http.MethodDelete, "/api/v1/album/5", nil)
				req.Header.Set("token", "tok")
				req = mux.SetURLVars(req, map[string]string{"id": "5"})

				rec := httptest.NewRecorder()
				h.AuthMiddleware(h.DeleteAlbumHandler)(rec, req)

				if rec.Code != ts.wantCode {
					t.Fatalf("unexpected status: got %d, want %d", rec.Code, ts.wantCode)
				}
				if body := decodeResponse(t, rec); body.Message != ts.outcome.Message {
					t.Fatalf("unexpected message: %q", body.Message)
				}
			})
		}
	})

	t.Run("delete song forwards the parsed id", func(t *testing.T) {
		var gotID int64
		pipeline := &mockPipeline{
			deleteSongFn: func(ctx context.Context, actor *model.Actor, id int64) (*catalog.Outcome, error) {
				gotID = id
				return &catalog.Outcome{Status: catalog.StatusSuccess, Message: "Song Deleted Successfully"}, nil
			},
		}
		h := testHandler(pipeline, adminIdentity())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/song/77", nil)
		req.Header.Set("token", "tok")
		req = mux.SetURLVars(req, map[string]string{"id": "77"})

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.DeleteSongHandler)(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
		if gotID != 77 {
			t.Fatalf("unexpected id: %d", gotID)
		}
	})

	t.Run("delete song rejects a non-numeric id", func(t *testing.T) {
		h := testHandler(&mockPipeline{}, adminIdentity())

		req := httptest.NewRequest(http.MethodDelete, "/api/v1/song/abc", nil)
		req.Header.Set("token", "tok")
		req = mux.SetURLVars(req, map[string]string{"id": "abc"})

		rec := httptest.NewRecorder()
		h.AuthMiddleware(h.DeleteSongHandler)(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Fatalf("unexpected status: %d", rec.Code)
		}
	})
}
