package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"tunedeck/model"

	"github.com/google/go-cmp/cmp"
)

func TestLookup(t *testing.T) {
	t.Run("resolves an actor and forwards the token header", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/api/v1/user/me" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if got := r.Header.Get("token"); got != "tok-123" {
				t.Errorf("unexpected token header: %q", got)
			}
			w.Header().Set("Content-Type", "application/json")
			w.Write([]byte(`{"_id":"u1","name":"Ops","email":"ops@example.com","role":"admin"}`))
		}))
		defer srv.Close()

		client := NewIdentityClient(srv.URL)
		actor, err := client.Lookup(context.Background(), "tok-123")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		want := &model.Actor{ID: "u1", Name: "Ops", Email: "ops@example.com", Role: "admin"}
		if diff := cmp.Diff(want, actor); diff != "" {
			t.Fatalf("unexpected actor (-want +got):\n%s", diff)
		}
		if !actor.IsAdmin() {
			t.Fatal("expected admin actor")
		}
	})

	t.Run("rejects an empty token without a network call", func(t *testing.T) {
		client := NewIdentityClient("http://127.0.0.1:1")
		if _, err := client.Lookup(context.Background(), ""); err == nil {
			t.Fatal("expected error for empty token")
		}
	})

	t.Run("rejects a non-200 response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer srv.Close()

		client := NewIdentityClient(srv.URL)
		if _, err := client.Lookup(context.Background(), "expired"); err == nil {
			t.Fatal("expected error for 401 response")
		}
	})

	t.Run("rejects a malformed body", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("not json"))
		}))
		defer srv.Close()

		client := NewIdentityClient(srv.URL)
		if _, err := client.Lookup(context.Background(), "tok"); err == nil {
			t.Fatal("expected error for malformed body")
		}
	})

	t.Run("rejects a body without a user id", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte(`{"name":"ghost"}`))
		}))
		defer srv.Close()

		client := NewIdentityClient(srv.URL)
		if _, err := client.Lookup(context.Background(), "tok"); err == nil {
			t.Fatal("expected error for missing user id")
		}
	})

	t.Run("fails when the service is unreachable", func(t *testing.T) {
		client := NewIdentityClient("http://127.0.0.1:1")
		if _, err := client.Lookup(context.Background(), "tok"); err == nil {
			t.Fatal("expected error for unreachable service")
		}
	})
}
