// Package localfs implements the artifact archive on the local filesystem.
package localfs

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"

	"github.com/ipfs/go-cid"

	"xdao.co/denylist/cidutil"
	"xdao.co/denylist/storage"
)

// Archive stores denylist artifacts (filter bytes, signing data) immutably
// on disk, keyed strictly by CID. Blocks are written once with mode 0444 and
// sharded by the first two characters of the CID string to keep directories
// small. The archive is offline and deterministic: it never uses the network
// and never depends on wall-clock time.
type Archive struct {
	root string
}

// New constructs an archive rooted at root, creating the directory if needed.
func New(root string) (*Archive, error) {
	if root == "" {
		return nil, errors.New("localfs: archive root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Archive{root: root}, nil
}

// Put stores artifact bytes and returns their CID. Re-putting identical
// bytes is a no-op; re-putting different bytes under a colliding path is an
// immutability violation.
func (a *Archive) Put(artifact []byte) (cid.Cid, error) {
	id, err := cidutil.ArtifactCID(artifact)
	if err != nil {
		return cid.Undef, err
	}
	if !id.Defined() {
		return cid.Undef, storage.ErrInvalidCID
	}

	path := a.pathFor(id)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return cid.Undef, err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o444)
	if err != nil {
		if os.IsExist(err) {
			if cerr := a.checkExisting(id, artifact); cerr != nil {
				return cid.Undef, cerr
			}
			return id, nil
		}
		return cid.Undef, err
	}

	if err := writeAndClose(f, artifact); err != nil {
		_ = os.Remove(path)
		return cid.Undef, err
	}
	return id, nil
}

// checkExisting resolves an idempotent Put against an already-stored block.
func (a *Archive) checkExisting(id cid.Cid, artifact []byte) error {
	existing, err := a.Get(id)
	if err != nil {
		// Unreadable or corrupted block under this CID.
		return storage.ErrImmutable
	}
	if !bytes.Equal(existing, artifact) {
		return storage.ErrImmutable
	}
	return nil
}

// Get loads artifact bytes by CID, revalidating them against the CID so a
// tampered block is reported rather than returned.
func (a *Archive) Get(id cid.Cid) ([]byte, error) {
	if !id.Defined() {
		return nil, storage.ErrInvalidCID
	}
	b, err := os.ReadFile(a.pathFor(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, storage.ErrNotFound
		}
		return nil, err
	}
	got, err := cidutil.ArtifactCID(b)
	if err != nil {
		return nil, err
	}
	if got != id {
		return nil, storage.ErrCIDMismatch
	}
	return b, nil
}

// Has reports whether a block for the CID exists, without validating it.
func (a *Archive) Has(id cid.Cid) bool {
	if !id.Defined() {
		return false
	}
	_, err := os.Stat(a.pathFor(id))
	return err == nil
}

func (a *Archive) pathFor(id cid.Cid) string {
	s := id.String()
	if len(s) < 2 {
		return filepath.Join(a.root, s)
	}
	return filepath.Join(a.root, s[:2], s)
}

func writeAndClose(f *os.File, b []byte) error {
	if _, err := f.Write(b); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

var _ storage.Archive = (*Archive)(nil)
