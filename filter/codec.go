package filter

import "encoding/binary"

// Binary layout, all integers little-endian:
//
//	serial u32 | signature_len u32 | signature bytes |
//	seed u64 | segment_length u32 | segment_length_mask u32 |
//	segment_count u32 | segment_count_length u32 |
//	fingerprint_count u32 | fingerprints u32[fingerprint_count]
//
// The signing bytes are the same layout with signature_len = 0 and no
// signature bytes present, serial retained.

// ToBytes serializes the filter, signature included.
func (f *Filter) ToBytes() []byte {
	return f.encode(f.signature)
}

// SigningBytes returns the canonical signed payload: the serialized filter
// with an empty signature field. A freshly built filter and a signed filter
// loaded from storage yield byte-identical results.
func (f *Filter) SigningBytes() []byte {
	return f.encode(nil)
}

func (f *Filter) encode(signature []byte) []byte {
	n := 4 + 4 + len(signature) + 8 + 4*4 + 4 + 4*len(f.fuse.fingerprints)
	out := make([]byte, 0, n)
	out = binary.LittleEndian.AppendUint32(out, f.serial)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(signature)))
	out = append(out, signature...)
	out = binary.LittleEndian.AppendUint64(out, f.fuse.seed)
	out = binary.LittleEndian.AppendUint32(out, f.fuse.segmentLength)
	out = binary.LittleEndian.AppendUint32(out, f.fuse.segmentLengthMask)
	out = binary.LittleEndian.AppendUint32(out, f.fuse.segmentCount)
	out = binary.LittleEndian.AppendUint32(out, f.fuse.segmentCountLength)
	out = binary.LittleEndian.AppendUint32(out, uint32(len(f.fuse.fingerprints)))
	for _, fp := range f.fuse.fingerprints {
		out = binary.LittleEndian.AppendUint32(out, fp)
	}
	return out
}

// FromBytes decodes a serialized filter, validating lengths and segment
// metadata consistency. Truncated or inconsistent input is rejected; the
// decoder never silently truncates or pads.
func FromBytes(b []byte) (*Filter, error) {
	r := reader{buf: b}
	f := &Filter{fuse: &fuse32{}}

	serial, err := r.u32("serial")
	if err != nil {
		return nil, err
	}
	f.serial = serial

	sigLen, err := r.u32("signature length")
	if err != nil {
		return nil, err
	}
	sig, err := r.bytes(int(sigLen), "signature")
	if err != nil {
		return nil, err
	}
	if len(sig) > 0 {
		f.signature = sig
	}

	if f.fuse.seed, err = r.u64("seed"); err != nil {
		return nil, err
	}
	if f.fuse.segmentLength, err = r.u32("segment length"); err != nil {
		return nil, err
	}
	if f.fuse.segmentLengthMask, err = r.u32("segment length mask"); err != nil {
		return nil, err
	}
	if f.fuse.segmentCount, err = r.u32("segment count"); err != nil {
		return nil, err
	}
	if f.fuse.segmentCountLength, err = r.u32("segment count length"); err != nil {
		return nil, err
	}

	fpCount, err := r.u32("fingerprint count")
	if err != nil {
		return nil, err
	}
	if uint64(len(r.buf)-r.off) != uint64(fpCount)*4 {
		return nil, newError(KindMalformed, "DNY-CODEC-103", "fingerprint array length does not match remaining bytes")
	}
	f.fuse.fingerprints = make([]uint32, fpCount)
	for i := range f.fuse.fingerprints {
		fp, err := r.u32("fingerprint")
		if err != nil {
			return nil, err
		}
		f.fuse.fingerprints[i] = fp
	}
	if r.off != len(r.buf) {
		return nil, newError(KindMalformed, "DNY-CODEC-104", "trailing bytes after fingerprint array")
	}

	if err := f.fuse.checkLayout(); err != nil {
		return nil, err
	}
	return f, nil
}

type reader struct {
	buf []byte
	off int
}

func (r *reader) bytes(n int, field string) ([]byte, error) {
	if n < 0 || r.off+n > len(r.buf) {
		return nil, newError(KindMalformed, "DNY-CODEC-101", "truncated input reading "+field)
	}
	out := make([]byte, n)
	copy(out, r.buf[r.off:r.off+n])
	r.off += n
	return out, nil
}

func (r *reader) u32(field string) (uint32, error) {
	if r.off+4 > len(r.buf) {
		return 0, newError(KindMalformed, "DNY-CODEC-101", "truncated input reading "+field)
	}
	v := binary.LittleEndian.Uint32(r.buf[r.off:])
	r.off += 4
	return v, nil
}

func (r *reader) u64(field string) (uint64, error) {
	if r.off+8 > len(r.buf) {
		return 0, newError(KindMalformed, "DNY-CODEC-101", "truncated input reading "+field)
	}
	v := binary.LittleEndian.Uint64(r.buf[r.off:])
	r.off += 8
	return v, nil
}
