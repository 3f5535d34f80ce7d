package storage

import (
	"strings"
	"testing"
)

func TestObjectKey(t *testing.T) {
	t.Run("normalizes audio to mp3", func(t *testing.T) {
		key := objectKey("songs", "audio/ogg", ResourceAudio)
		if !strings.HasPrefix(key, "songs/") {
			t.Fatalf("key %q not under songs/", key)
		}
		if !strings.HasSuffix(key, ".mp3") {
			t.Fatalf("audio key %q not normalized to .mp3", key)
		}
	})

	t.Run("trims folder slashes", func(t *testing.T) {
		key := objectKey("/albums/", "audio/mpeg", ResourceAudio)
		if !strings.HasPrefix(key, "albums/") {
			t.Fatalf("key %q not under albums/", key)
		}
	})

	t.Run("falls back to .bin for an unknown content type", func(t *testing.T) {
		key := objectKey("thumbnails", "application/x-nonexistent-zzz", ResourceImage)
		if !strings.HasSuffix(key, ".bin") {
			t.Fatalf("key %q has no .bin fallback", key)
		}
	})

	t.Run("generates distinct keys per call", func(t *testing.T) {
		a := objectKey("songs", "audio/mpeg", ResourceAudio)
		b := objectKey("songs", "audio/mpeg", ResourceAudio)
		if a == b {
			t.Fatalf("duplicate object key %q", a)
		}
	})
}
