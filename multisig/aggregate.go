package multisig

import (
	"encoding/binary"
	"fmt"
)

// Entry is one member's contribution to an aggregate signature.
type Entry struct {
	Index     uint8
	Signature []byte
}

// EncodeAggregate serializes entries as the aggregate signature stamped into
// a filter: for each entry, member index (u8), signature length (u32 LE),
// signature bytes. Entries must be sorted by strictly ascending index; this
// keeps the encoding canonical so identical endorsement sets produce
// identical artifact bytes.
func EncodeAggregate(entries []Entry) ([]byte, error) {
	var size int
	for i, e := range entries {
		if i > 0 && entries[i-1].Index >= e.Index {
			return nil, fmt.Errorf("%w: entries not in ascending index order", ErrMalformedSignature)
		}
		if len(e.Signature) == 0 {
			return nil, fmt.Errorf("%w: empty signature for member %d", ErrMalformedSignature, e.Index)
		}
		size += 1 + 4 + len(e.Signature)
	}
	out := make([]byte, 0, size)
	for _, e := range entries {
		out = append(out, e.Index)
		out = binary.LittleEndian.AppendUint32(out, uint32(len(e.Signature)))
		out = append(out, e.Signature...)
	}
	return out, nil
}

// DecodeAggregate parses an aggregate signature, enforcing the canonical
// ascending-index ordering and exact framing.
func DecodeAggregate(b []byte) ([]Entry, error) {
	var entries []Entry
	last := -1
	for len(b) > 0 {
		if len(b) < 5 {
			return nil, fmt.Errorf("%w: truncated entry header", ErrMalformedSignature)
		}
		idx := b[0]
		if int(idx) <= last {
			return nil, fmt.Errorf("%w: entries not in ascending index order", ErrMalformedSignature)
		}
		sigLen := binary.LittleEndian.Uint32(b[1:5])
		b = b[5:]
		if sigLen == 0 || uint64(sigLen) > uint64(len(b)) {
			return nil, fmt.Errorf("%w: bad signature length %d", ErrMalformedSignature, sigLen)
		}
		sig := make([]byte, sigLen)
		copy(sig, b[:sigLen])
		b = b[sigLen:]
		entries = append(entries, Entry{Index: idx, Signature: sig})
		last = int(idx)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("%w: no entries", ErrMalformedSignature)
	}
	return entries, nil
}
