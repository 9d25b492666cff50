package filter

import (
	"math"
	"math/bits"
	"slices"
)

// fuse32 is a binary fuse filter with 32-bit fingerprints.
//
// The fingerprint array is partitioned into segmentCount+2 overlapping
// segments of segmentLength slots. Every item maps to one slot in each of
// three consecutive segments; membership holds iff the XOR of the three
// stored fingerprints equals the item's expected fingerprint.
type fuse32 struct {
	seed               uint64
	segmentLength      uint32
	segmentLengthMask  uint32
	segmentCount       uint32
	segmentCountLength uint32
	fingerprints       []uint32
}

// Each item maps to three candidate slots.
const fuseArity = 3

// maxConstructAttempts bounds reseeded construction retries. A single
// attempt fails with probability well under 1%, so reaching this ceiling
// indicates a pathological input.
const maxConstructAttempts = 100

func segmentLengthFor(size uint32) uint32 {
	if size == 0 {
		return 4
	}
	l := uint32(1) << int(math.Floor(math.Log(float64(size))/math.Log(3.33)+2.25))
	if l > 262144 {
		l = 262144
	}
	return l
}

// sizeFactorFor returns the oversizing ratio. Asymptotically ~1.125; small
// sets need proportionally more headroom for peeling to converge.
func sizeFactorFor(size uint32) float64 {
	return math.Max(1.125, 0.875+0.25*math.Log(1000000)/math.Log(float64(size)))
}

// newFuse32Layout computes segment geometry for an item count and allocates
// the zeroed fingerprint array.
func newFuse32Layout(size uint32) *fuse32 {
	f := &fuse32{}
	f.segmentLength = segmentLengthFor(size)
	f.segmentLengthMask = f.segmentLength - 1

	capacity := uint64(0)
	if size > 1 {
		capacity = uint64(math.Round(float64(size) * sizeFactorFor(size)))
	}
	initSegmentCount := int64((capacity+uint64(f.segmentLength)-1)/uint64(f.segmentLength)) - (fuseArity - 1)
	if initSegmentCount < 0 {
		initSegmentCount = 0
	}
	arrayLength := (uint32(initSegmentCount) + fuseArity - 1) * f.segmentLength
	f.segmentCount = (arrayLength + f.segmentLength - 1) / f.segmentLength
	if f.segmentCount <= fuseArity-1 {
		f.segmentCount = 1
	} else {
		f.segmentCount -= fuseArity - 1
	}
	arrayLength = (f.segmentCount + fuseArity - 1) * f.segmentLength
	f.segmentCountLength = f.segmentCount * f.segmentLength
	f.fingerprints = make([]uint32, arrayLength)
	return f
}

// slots returns the three candidate slot indices for a seed-mixed hash.
func (f *fuse32) slots(hash uint64) (uint32, uint32, uint32) {
	hi, _ := bits.Mul64(hash, uint64(f.segmentCountLength))
	h0 := uint32(hi)
	h1 := h0 + f.segmentLength
	h2 := h1 + f.segmentLength
	h1 ^= uint32(hash>>18) & f.segmentLengthMask
	h2 ^= uint32(hash) & f.segmentLengthMask
	return h0, h1, h2
}

func fingerprint32(hash uint64) uint32 {
	return uint32(hash ^ (hash >> 32))
}

func mix(key, seed uint64) uint64 {
	return murmur64(key + seed)
}

func murmur64(h uint64) uint64 {
	h ^= h >> 33
	h *= 0xff51afd7ed558ccd
	h ^= h >> 33
	h *= 0xc4ceb9fe1a85ec53
	h ^= h >> 33
	return h
}

// splitmix64 advances state and returns the next value of the deterministic
// seed sequence used across construction retries.
func splitmix64(state *uint64) uint64 {
	*state += 0x9E3779B97F4A7C15
	z := *state
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// populateFuse32 builds a filter over the given 64-bit item hashes via
// peeling: slots of degree one are retired repeatedly, each retired item
// taking ownership of its uniquely-available slot. If peeling stalls the
// whole attempt restarts with the next seed in the sequence.
//
// The construction context (seed counter, attempt count, scratch arrays) is
// local to this call; repeated calls with the same input produce
// bit-identical filters, which the signing layer depends on.
func populateFuse32(itemHashes []uint64) (*fuse32, error) {
	// Identical 64-bit item hashes denote the same logical member; collapse
	// them so the peeling graph is well-defined.
	hs := append([]uint64(nil), itemHashes...)
	slices.Sort(hs)
	hs = slices.Compact(hs)

	size := uint32(len(hs))
	f := newFuse32Layout(size)
	capacity := uint32(len(f.fingerprints))

	count := make([]uint8, capacity)
	xorHash := make([]uint64, capacity)
	stackHash := make([]uint64, 0, size)
	stackSlot := make([]uint32, 0, size)
	queue := make([]uint32, 0, capacity)

	seedState := uint64(1)
	for attempt := 0; attempt < maxConstructAttempts; attempt++ {
		f.seed = splitmix64(&seedState)
		for i := range count {
			count[i] = 0
			xorHash[i] = 0
		}
		stackHash = stackHash[:0]
		stackSlot = stackSlot[:0]
		queue = queue[:0]

		for _, k := range hs {
			h := mix(k, f.seed)
			h0, h1, h2 := f.slots(h)
			count[h0]++
			xorHash[h0] ^= h
			count[h1]++
			xorHash[h1] ^= h
			count[h2]++
			xorHash[h2] ^= h
		}

		for i := uint32(0); i < capacity; i++ {
			if count[i] == 1 {
				queue = append(queue, i)
			}
		}
		for len(queue) > 0 {
			slot := queue[len(queue)-1]
			queue = queue[:len(queue)-1]
			if count[slot] != 1 {
				continue
			}
			h := xorHash[slot]
			stackHash = append(stackHash, h)
			stackSlot = append(stackSlot, slot)
			h0, h1, h2 := f.slots(h)
			for _, s := range [fuseArity]uint32{h0, h1, h2} {
				count[s]--
				xorHash[s] ^= h
				if count[s] == 1 {
					queue = append(queue, s)
				}
			}
		}

		if uint32(len(stackHash)) != size {
			continue
		}

		// Assign fingerprints in reverse retirement order: when an item is
		// assigned, the other two of its slots already hold final values.
		for i := len(stackHash) - 1; i >= 0; i-- {
			h := stackHash[i]
			slot := stackSlot[i]
			h0, h1, h2 := f.slots(h)
			fp := fingerprint32(h) ^ f.fingerprints[h0] ^ f.fingerprints[h1] ^ f.fingerprints[h2]
			f.fingerprints[slot] = fp
		}
		return f, nil
	}
	return nil, newError(KindConstruction, "DNY-BUILD-201", "filter construction did not converge")
}

// contains reports membership of a 64-bit item hash.
func (f *fuse32) contains(itemHash uint64) bool {
	h := mix(itemHash, f.seed)
	fp := fingerprint32(h)
	h0, h1, h2 := f.slots(h)
	return fp == f.fingerprints[h0]^f.fingerprints[h1]^f.fingerprints[h2]
}

// checkLayout validates that decoded segment metadata is internally
// consistent with the fingerprint array. All products are computed in uint64:
// the stored u32 fields must equal the exact products, so any combination
// that would wrap in 32-bit arithmetic is rejected rather than accepted with
// a too-small fingerprint array, which would make queries index out of range.
func (f *fuse32) checkLayout() error {
	if f.segmentLength == 0 || f.segmentLength&(f.segmentLength-1) != 0 {
		return newError(KindMalformed, "DNY-CODEC-121", "segment length is not a power of two")
	}
	if f.segmentLengthMask != f.segmentLength-1 {
		return newError(KindMalformed, "DNY-CODEC-122", "segment length mask is inconsistent")
	}
	if f.segmentCount == 0 ||
		uint64(f.segmentCountLength) != uint64(f.segmentCount)*uint64(f.segmentLength) {
		return newError(KindMalformed, "DNY-CODEC-123", "segment count length is inconsistent")
	}
	if uint64(len(f.fingerprints)) != uint64(f.segmentCountLength)+(fuseArity-1)*uint64(f.segmentLength) {
		return newError(KindMalformed, "DNY-CODEC-124", "fingerprint count does not match segment layout")
	}
	return nil
}
