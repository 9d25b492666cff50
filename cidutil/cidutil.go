// Package cidutil derives content identifiers for denylist artifacts.
package cidutil

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ArtifactCID returns a CIDv1 (raw multicodec + sha2-256 multihash) for
// artifact bytes. Filters are identified by the CID of their signing bytes,
// so the identifier is stable across signing.
func ArtifactCID(data []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(data, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// CIDv1RawSHA256 returns the string form of ArtifactCID.
func CIDv1RawSHA256(data []byte) string {
	id, err := ArtifactCID(data)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256 and -1
		// length, this should be unreachable.
		return ""
	}
	return id.String()
}
