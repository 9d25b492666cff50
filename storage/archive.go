// Package storage defines the content-addressed archive that published
// denylist artifacts (filter bytes, signing data) are kept in.
package storage

import "github.com/ipfs/go-cid"

// Archive is a minimal content-addressable store for artifact bytes.
//
// Contract:
// - Put MUST be idempotent.
// - Stored objects MUST be immutable.
// - CIDs MUST be derived from the bytes written.
// - Get MUST return ErrNotFound when the CID is absent.
type Archive interface {
	Put(bytes []byte) (cid.Cid, error)
	Get(id cid.Cid) ([]byte, error)
	Has(id cid.Cid) bool
}
