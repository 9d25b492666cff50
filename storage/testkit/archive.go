// Package testkit provides a conformance harness for Archive implementations.
package testkit

import (
	"bytes"
	"testing"

	"xdao.co/denylist/cidutil"
	"xdao.co/denylist/storage"
)

// NewArchive constructs a fresh, empty Archive instance for a test.
// The returned Archive MUST be isolated from other tests.
type NewArchive func(t *testing.T) storage.Archive

// RunArchiveConformance checks the Archive contract against an implementation.
func RunArchiveConformance(t *testing.T, newArchive NewArchive) {
	t.Helper()

	t.Run("PutGetRoundTrip", func(t *testing.T) {
		archive := newArchive(t)
		want := []byte("denylist artifact bytes")

		id, err := archive.Put(want)
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		wantID, err := cidutil.ArtifactCID(want)
		if err != nil {
			t.Fatalf("ArtifactCID failed: %v", err)
		}
		if id != wantID {
			t.Fatalf("Put returned CID %s, want %s", id, wantID)
		}

		got, err := archive.Get(id)
		if err != nil {
			t.Fatalf("Get failed: %v", err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("Get returned different bytes")
		}
	})

	t.Run("PutIdempotent", func(t *testing.T) {
		archive := newArchive(t)
		b := []byte("same bytes twice")

		id1, err := archive.Put(b)
		if err != nil {
			t.Fatalf("first Put failed: %v", err)
		}
		id2, err := archive.Put(b)
		if err != nil {
			t.Fatalf("second Put failed: %v", err)
		}
		if id1 != id2 {
			t.Fatalf("idempotent Put returned different CIDs: %s vs %s", id1, id2)
		}
	})

	t.Run("GetMissingIsNotFound", func(t *testing.T) {
		archive := newArchive(t)
		id, err := cidutil.ArtifactCID([]byte("never stored"))
		if err != nil {
			t.Fatalf("ArtifactCID failed: %v", err)
		}
		if _, err := archive.Get(id); !storage.IsNotFound(err) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
		if archive.Has(id) {
			t.Fatalf("Has reported a missing CID as present")
		}
	})

	t.Run("HasAfterPut", func(t *testing.T) {
		archive := newArchive(t)
		id, err := archive.Put([]byte("present"))
		if err != nil {
			t.Fatalf("Put failed: %v", err)
		}
		if !archive.Has(id) {
			t.Fatalf("Has reported a stored CID as absent")
		}
	})
}
