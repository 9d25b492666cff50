package filter

import (
	"bytes"
	"crypto/ed25519"
	"encoding/binary"
	"testing"

	"xdao.co/denylist/descriptor"
	"xdao.co/denylist/keys"
	"xdao.co/denylist/multisig"
)

func testSigner(t *testing.T, fill byte) *keys.Signer {
	t.Helper()
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = fill
	}
	signer, err := keys.NewEd25519Signer(seed)
	if err != nil {
		t.Fatalf("NewEd25519Signer: %v", err)
	}
	return signer
}

func testID(t *testing.T, fill byte) keys.Identity {
	t.Helper()
	return testSigner(t, fill).Identity()
}

func testDescriptor(t *testing.T) *descriptor.Descriptor {
	t.Helper()
	return &descriptor.Descriptor{
		DeniedKeys: []keys.Identity{testID(t, 1)},
		DeniedEdges: []descriptor.Edge{
			{Source: testID(t, 2), Target: testID(t, 3)},
		},
	}
}

func TestBuildContains(t *testing.T) {
	d := testDescriptor(t)
	f, err := Build(7, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	if !f.Contains(testID(t, 1)) {
		t.Fatalf("denied key not contained")
	}
	if !f.ContainsEdge(testID(t, 2), testID(t, 3)) {
		t.Fatalf("denied edge not contained")
	}
	if f.ContainsEdge(testID(t, 3), testID(t, 2)) {
		t.Fatalf("swapped edge reported as contained")
	}
	if f.Contains(testID(t, 4)) {
		t.Fatalf("absent key reported as contained")
	}
	// An edge member is not denied as a standalone key.
	if f.Contains(testID(t, 2)) {
		t.Fatalf("edge source reported as denied key")
	}
}

func TestBuildEmptyDescriptor(t *testing.T) {
	f, err := Build(1, &descriptor.Descriptor{})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if f.Contains(testID(t, 9)) {
		t.Fatalf("empty filter reported membership")
	}
	back, err := FromBytes(f.ToBytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if back.Serial() != 1 {
		t.Fatalf("serial lost on round trip")
	}
}

func TestBuildRejectsDuplicateDescriptorEntries(t *testing.T) {
	d := &descriptor.Descriptor{
		DeniedKeys: []keys.Identity{testID(t, 1), testID(t, 1)},
	}
	_, err := Build(1, d)
	if err == nil {
		t.Fatalf("expected error for duplicate denied key")
	}
	if !IsKind(err, KindMalformed) {
		t.Fatalf("expected KindMalformed, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	f, err := Build(42, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	f.StampSignature([]byte("not a real signature"), 42)

	raw := f.ToBytes()
	back, err := FromBytes(raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if back.Serial() != f.Serial() {
		t.Fatalf("serial mismatch: %d vs %d", back.Serial(), f.Serial())
	}
	if !bytes.Equal(back.Signature(), f.Signature()) {
		t.Fatalf("signature mismatch after round trip")
	}
	if !bytes.Equal(back.ToBytes(), raw) {
		t.Fatalf("re-serialization differs")
	}
	if !bytes.Equal(back.SigningBytes(), f.SigningBytes()) {
		t.Fatalf("signing bytes differ after round trip")
	}
	if !back.Contains(testID(t, 1)) {
		t.Fatalf("membership lost on round trip")
	}
}

func TestSigningBytesInvariantUnderStamp(t *testing.T) {
	f, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	before := f.SigningBytes()
	hashBefore := f.Hash()

	f.StampSignature(bytes.Repeat([]byte{0xAB}, 64), 7)

	if !bytes.Equal(f.SigningBytes(), before) {
		t.Fatalf("stamping changed the signing bytes")
	}
	if !bytes.Equal(f.Hash(), hashBefore) {
		t.Fatalf("stamping changed the content hash")
	}
	if bytes.Equal(f.ToBytes(), before) {
		t.Fatalf("serialized filter should differ from signing bytes once signed")
	}
}

func TestHashStableAndSensitive(t *testing.T) {
	a, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	b, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if !bytes.Equal(a.Hash(), b.Hash()) {
		t.Fatalf("repeated builds produced different hashes")
	}

	c, err := Build(8, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bytes.Equal(a.Hash(), c.Hash()) {
		t.Fatalf("serial change did not change the hash")
	}

	d := testDescriptor(t)
	d.DeniedKeys = append(d.DeniedKeys, testID(t, 5))
	e, err := Build(7, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if bytes.Equal(a.Hash(), e.Hash()) {
		t.Fatalf("descriptor change did not change the hash")
	}
}

func TestFromBytesRejectsMalformed(t *testing.T) {
	f, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	raw := f.ToBytes()

	for _, n := range []int{0, 3, 7, 11, len(raw) / 2, len(raw) - 1} {
		if _, err := FromBytes(raw[:n]); err == nil {
			t.Fatalf("expected error for truncation to %d bytes", n)
		} else if !IsKind(err, KindMalformed) {
			t.Fatalf("expected KindMalformed for truncation, got %v", err)
		}
	}

	// Trailing garbage.
	if _, err := FromBytes(append(append([]byte(nil), raw...), 0xFF)); err == nil {
		t.Fatalf("expected error for trailing bytes")
	}

	// Corrupt the segment length mask (offset: serial+siglen = 8, seed = 8,
	// segment_length = 4, mask at 20).
	bad := append([]byte(nil), raw...)
	bad[20] ^= 0x01
	if _, err := FromBytes(bad); err == nil {
		t.Fatalf("expected error for inconsistent segment metadata")
	} else if RuleID(err) != "DNY-CODEC-122" {
		t.Fatalf("expected DNY-CODEC-122, got %v (%s)", err, RuleID(err))
	}
}

// Segment metadata whose products wrap 32-bit arithmetic must be rejected,
// not accepted with an undersized fingerprint array: a stream claiming
// segment_count*segment_length = 2^33 with zero fingerprints would otherwise
// decode and make every query index out of range.
func TestFromBytesRejectsOverflowedLayout(t *testing.T) {
	var raw []byte
	raw = binary.LittleEndian.AppendUint32(raw, 7)          // serial
	raw = binary.LittleEndian.AppendUint32(raw, 0)          // signature length
	raw = binary.LittleEndian.AppendUint64(raw, 0xDEAD)     // seed
	raw = binary.LittleEndian.AppendUint32(raw, 1<<31)      // segment length
	raw = binary.LittleEndian.AppendUint32(raw, 1<<31-1)    // segment length mask
	raw = binary.LittleEndian.AppendUint32(raw, 4)          // segment count
	raw = binary.LittleEndian.AppendUint32(raw, 0)          // segment count length (wrapped)
	raw = binary.LittleEndian.AppendUint32(raw, 0)          // fingerprint count

	_, err := FromBytes(raw)
	if err == nil {
		t.Fatalf("expected error for overflowed segment layout")
	}
	if !IsKind(err, KindMalformed) {
		t.Fatalf("expected KindMalformed, got %v", err)
	}
	if RuleID(err) != "DNY-CODEC-123" {
		t.Fatalf("expected DNY-CODEC-123, got %v (%s)", err, RuleID(err))
	}
}

func testKeyManifest(t *testing.T, threshold int, fills ...byte) (*multisig.KeyManifest, []*keys.Signer) {
	t.Helper()
	km := &multisig.KeyManifest{Threshold: threshold}
	var signers []*keys.Signer
	for _, fill := range fills {
		s := testSigner(t, fill)
		signers = append(signers, s)
		km.PublicKeys = append(km.PublicKeys, s.Identity())
	}
	return km, signers
}

func signFilter(t *testing.T, f *Filter, km *multisig.KeyManifest, signers []*keys.Signer) {
	t.Helper()
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	digest := f.Hash()
	var entries []multisig.Entry
	for _, s := range signers {
		idx, ok := key.MemberIndex(s.Identity())
		if !ok {
			t.Fatalf("signer not a member")
		}
		entries = append(entries, multisig.Entry{Index: uint8(idx), Signature: s.SignDigest(digest)})
	}
	aggregate, err := multisig.EncodeAggregate(entries)
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	f.StampSignature(aggregate, f.Serial())
}

func TestVerifySignedFilter(t *testing.T) {
	km, signers := testKeyManifest(t, 0, 0x51, 0x52)
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	f, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if err := f.Verify(key); err == nil {
		t.Fatalf("unsigned filter verified")
	}

	signFilter(t, f, km, signers)
	if err := f.Verify(key); err != nil {
		t.Fatalf("Verify: %v", err)
	}

	// A different signer set's composite key must reject the signature.
	otherKM, _ := testKeyManifest(t, 0, 0x61, 0x62)
	otherKey, err := otherKM.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if err := f.Verify(otherKey); err == nil {
		t.Fatalf("verified against the wrong composite key")
	} else if !IsKind(err, KindVerify) {
		t.Fatalf("expected KindVerify, got %v", err)
	}
}

func TestTamperedFingerprintFailsVerify(t *testing.T) {
	km, signers := testKeyManifest(t, 0, 0x51, 0x52)
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	f, err := Build(7, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	signFilter(t, f, km, signers)

	raw := f.ToBytes()
	// Flip one bit in the last fingerprint.
	raw[len(raw)-1] ^= 0x01
	tampered, err := FromBytes(raw)
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if err := tampered.Verify(key); err == nil {
		t.Fatalf("tampered filter verified")
	}
}

// End-to-end: build, sign via manifest-style aggregation, serialize,
// deserialize, verify, query.
func TestEndToEnd(t *testing.T) {
	km, signers := testKeyManifest(t, 0, 0x71, 0x72)
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}

	d := &descriptor.Descriptor{
		DeniedKeys: []keys.Identity{testID(t, 0xA1)},
		DeniedEdges: []descriptor.Edge{
			{Source: testID(t, 0xA2), Target: testID(t, 0xA3)},
		},
	}
	f, err := Build(7, d)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	signFilter(t, f, km, signers)

	back, err := FromBytes(f.ToBytes())
	if err != nil {
		t.Fatalf("FromBytes: %v", err)
	}
	if err := back.Verify(key); err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if back.Serial() != 7 {
		t.Fatalf("serial = %d, want 7", back.Serial())
	}
	if !back.Contains(testID(t, 0xA1)) {
		t.Fatalf("denied key missing")
	}
	if !back.ContainsEdge(testID(t, 0xA2), testID(t, 0xA3)) {
		t.Fatalf("denied edge missing")
	}
	if back.ContainsEdge(testID(t, 0xA3), testID(t, 0xA2)) {
		t.Fatalf("swapped edge present")
	}
	if back.Contains(testID(t, 0xA4)) {
		t.Fatalf("absent key present")
	}
}

func TestInfo(t *testing.T) {
	f, err := Build(9, testDescriptor(t))
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	info := f.Info()
	if info.Serial != 9 || info.Signed {
		t.Fatalf("unexpected info for unsigned filter: %+v", info)
	}
	if info.Fingerprints == 0 || info.SegmentLength == 0 || info.CID == "" {
		t.Fatalf("incomplete info: %+v", info)
	}
	f.StampSignature([]byte{1, 2, 3}, 9)
	if !f.Info().Signed {
		t.Fatalf("info did not reflect stamped signature")
	}
	if f.Info().CID != info.CID {
		t.Fatalf("CID changed after stamping")
	}
}
