// Package filter implements the signed denylist artifact: a binary fuse
// filter with 32-bit fingerprints over denied keys and denied directed
// edges, its binary serialization, and its signature verification.
//
// A filter is immutable once built; only the signature and serial are
// stamped in afterward, and neither participates in the signed payload.
package filter

import (
	"crypto/sha256"
	"encoding/binary"

	"xdao.co/denylist/cidutil"
	"xdao.co/denylist/descriptor"
	"xdao.co/denylist/keys"
	"xdao.co/denylist/multisig"
)

// Filter is a built denylist filter, optionally carrying its aggregate
// signature and serial number.
type Filter struct {
	serial    uint32
	signature []byte
	fuse      *fuse32
}

// Build constructs an unsigned filter over the descriptor's denied keys and
// edges. Construction is deterministic for a given descriptor: repeated
// builds produce bit-identical artifacts.
func Build(serial uint32, d *descriptor.Descriptor) (*Filter, error) {
	if d == nil {
		return nil, newError(KindInternal, "DNY-BUILD-001", "nil descriptor")
	}
	if err := d.Validate(); err != nil {
		return nil, wrapError(KindMalformed, "DNY-BUILD-101", "invalid descriptor", err)
	}
	hashes := make([]uint64, 0, d.Len())
	for _, k := range d.DeniedKeys {
		hashes = append(hashes, itemHashKey(k))
	}
	for _, e := range d.DeniedEdges {
		hashes = append(hashes, itemHashEdge(e.Source, e.Target))
	}
	fuse, err := populateFuse32(hashes)
	if err != nil {
		return nil, err
	}
	return &Filter{serial: serial, fuse: fuse}, nil
}

// itemHashKey derives the 64-bit filter item hash for a denied identity:
// the first eight bytes (little-endian) of sha256 over the identity's
// canonical binary encoding.
func itemHashKey(id keys.Identity) uint64 {
	return hash64(id.Bytes())
}

// itemHashEdge derives the item hash for a directed edge from the
// concatenation of the two canonical encodings in source→target order, so
// edge membership is asymmetric.
func itemHashEdge(source, target keys.Identity) uint64 {
	src := source.Bytes()
	b := make([]byte, 0, len(src)*2)
	b = append(b, src...)
	b = append(b, target.Bytes()...)
	return hash64(b)
}

func hash64(b []byte) uint64 {
	sum := sha256.Sum256(b)
	return binary.LittleEndian.Uint64(sum[:8])
}

// Serial returns the stamped artifact serial number.
func (f *Filter) Serial() uint32 { return f.serial }

// Signature returns the stamped aggregate signature, or nil if unsigned.
func (f *Filter) Signature() []byte {
	if len(f.signature) == 0 {
		return nil
	}
	cp := make([]byte, len(f.signature))
	copy(cp, f.signature)
	return cp
}

// Contains reports whether the identity was denied at construction time.
// False positives occur with probability ~2⁻³²; false negatives never.
func (f *Filter) Contains(id keys.Identity) bool {
	return f.fuse.contains(itemHashKey(id))
}

// ContainsEdge reports whether the directed edge source→target was denied.
// The swapped edge is a distinct item and does not match.
func (f *Filter) ContainsEdge(source, target keys.Identity) bool {
	return f.fuse.contains(itemHashEdge(source, target))
}

// StampSignature sets the aggregate signature and serial. The signing bytes
// are unaffected: stamping never changes what was hashed and signed.
func (f *Filter) StampSignature(signature []byte, serial uint32) {
	cp := make([]byte, len(signature))
	copy(cp, signature)
	f.signature = cp
	f.serial = serial
}

// Hash returns the sha256 content hash of the filter's signing bytes. This
// is the manifest commitment and the digest all signatures are computed
// over.
func (f *Filter) Hash() []byte {
	sum := sha256.Sum256(f.SigningBytes())
	return sum[:]
}

// CID returns the CIDv1 (raw + sha2-256) of the filter's signing bytes,
// used to key the artifact archive.
func (f *Filter) CID() string {
	return cidutil.CIDv1RawSHA256(f.SigningBytes())
}

// Verify checks the stamped aggregate signature against a composite
// multisig key. A failed check is an expected outcome reported as a
// KindVerify error, never a panic.
func (f *Filter) Verify(key *multisig.Key) error {
	if key == nil {
		return newError(KindVerify, "DNY-VERIFY-001", "missing composite key")
	}
	if len(f.signature) == 0 {
		return newError(KindVerify, "DNY-VERIFY-101", "filter is unsigned")
	}
	if err := key.VerifyDigest(f.Hash(), f.signature); err != nil {
		return wrapError(KindVerify, "DNY-VERIFY-401", "filter signature did not verify", err)
	}
	return nil
}

// Info summarizes a filter for display.
type Info struct {
	Serial        uint32 `json:"serial"`
	Signed        bool   `json:"signed"`
	Seed          uint64 `json:"seed"`
	SegmentLength uint32 `json:"segment_length"`
	SegmentCount  uint32 `json:"segment_count"`
	Fingerprints  int    `json:"fingerprints"`
	CID           string `json:"cid"`
}

// Info returns display metadata for the filter.
func (f *Filter) Info() Info {
	return Info{
		Serial:        f.serial,
		Signed:        len(f.signature) > 0,
		Seed:          f.fuse.seed,
		SegmentLength: f.fuse.segmentLength,
		SegmentCount:  f.fuse.segmentCount,
		Fingerprints:  len(f.fuse.fingerprints),
		CID:           f.CID(),
	}
}
