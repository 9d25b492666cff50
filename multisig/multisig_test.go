package multisig

import (
	"bytes"
	"crypto/ed25519"
	"crypto/sha256"
	"testing"

	"xdao.co/denylist/keys"
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

func testManifest(t *testing.T, threshold int, fills ...byte) (*KeyManifest, []*keys.Signer) {
	t.Helper()
	km := &KeyManifest{Threshold: threshold}
	var signers []*keys.Signer
	for _, fill := range fills {
		s := testSigner(t, fill)
		signers = append(signers, s)
		km.PublicKeys = append(km.PublicKeys, s.Identity())
	}
	return km, signers
}

func TestKeyDerivationDeterministic(t *testing.T) {
	km, _ := testManifest(t, 0, 1, 2, 3)
	a, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if a.Address() != b.Address() {
		t.Fatalf("derivation not deterministic")
	}
	if a.Threshold() != 3 {
		t.Fatalf("zero threshold should default to all signers, got %d", a.Threshold())
	}
}

func TestKeyDerivationOrderSensitive(t *testing.T) {
	km, _ := testManifest(t, 1, 1, 2)
	swapped := &KeyManifest{
		PublicKeys: []keys.Identity{km.PublicKeys[1], km.PublicKeys[0]},
		Threshold:  1,
	}
	a, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	b, err := swapped.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if a.Address() == b.Address() {
		t.Fatalf("member order must change the composite address")
	}
}

func TestKeyDerivationThresholdSensitive(t *testing.T) {
	km1, _ := testManifest(t, 1, 1, 2)
	km2, _ := testManifest(t, 2, 1, 2)
	a, _ := km1.Key()
	b, _ := km2.Key()
	if a.Address() == b.Address() {
		t.Fatalf("threshold must change the composite address")
	}
}

func TestKeyManifestValidation(t *testing.T) {
	if _, err := (&KeyManifest{}).Key(); err == nil {
		t.Fatalf("expected error for empty signer set")
	}

	km, _ := testManifest(t, 3, 1, 2)
	if _, err := km.Key(); err == nil {
		t.Fatalf("expected error for threshold above signer count")
	}

	dup, _ := testManifest(t, 0, 1)
	dup.PublicKeys = append(dup.PublicKeys, dup.PublicKeys[0])
	if _, err := dup.Key(); err == nil {
		t.Fatalf("expected error for duplicate signer")
	}

	missing, _ := testManifest(t, 0, 1)
	missing.PublicKeys = append(missing.PublicKeys, keys.Identity{})
	if _, err := missing.Key(); err == nil {
		t.Fatalf("expected error for zero-value signer")
	}
}

func TestFromJSON(t *testing.T) {
	km, _ := testManifest(t, 1, 1, 2)
	doc := []byte(`{"public_keys": ["` + km.PublicKeys[0].String() + `", "` + km.PublicKeys[1].String() + `"], "threshold": 1}`)
	parsed, err := FromJSON(doc)
	if err != nil {
		t.Fatalf("FromJSON: %v", err)
	}
	want, _ := km.Key()
	got, err := parsed.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	if got.Address() != want.Address() {
		t.Fatalf("parsed manifest derives a different composite key")
	}

	if _, err := FromJSON([]byte(`{"public_keys": []}`)); err == nil {
		t.Fatalf("expected error for empty manifest document")
	}
}

func aggregateFor(t *testing.T, key *Key, digest []byte, signers []*keys.Signer) []byte {
	t.Helper()
	var entries []Entry
	for _, s := range signers {
		idx, ok := key.MemberIndex(s.Identity())
		if !ok {
			t.Fatalf("signer not a member")
		}
		entries = append(entries, Entry{Index: uint8(idx), Signature: s.SignDigest(digest)})
	}
	b, err := EncodeAggregate(entries)
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	return b
}

func TestVerifyDigestThreshold(t *testing.T) {
	km, signers := testManifest(t, 2, 1, 2, 3)
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	digest := sha256.Sum256([]byte("signing bytes"))

	// Two of three satisfies the threshold.
	agg := aggregateFor(t, key, digest[:], signers[:2])
	if err := key.VerifyDigest(digest[:], agg); err != nil {
		t.Fatalf("VerifyDigest: %v", err)
	}

	// One of three does not.
	agg = aggregateFor(t, key, digest[:], signers[:1])
	if err := key.VerifyDigest(digest[:], agg); err == nil {
		t.Fatalf("expected threshold failure")
	}

	// A different digest invalidates the signatures.
	other := sha256.Sum256([]byte("different bytes"))
	agg = aggregateFor(t, key, digest[:], signers)
	if err := key.VerifyDigest(other[:], agg); err == nil {
		t.Fatalf("expected verification failure for different digest")
	}
}

func TestVerifyDigestRejectsNonMemberSignatures(t *testing.T) {
	km, _ := testManifest(t, 1, 1, 2)
	key, err := km.Key()
	if err != nil {
		t.Fatalf("Key: %v", err)
	}
	outsider := testSigner(t, 9)
	digest := sha256.Sum256([]byte("signing bytes"))

	// Outsider signature attributed to member index 0 does not verify.
	agg, err := EncodeAggregate([]Entry{{Index: 0, Signature: outsider.SignDigest(digest[:])}})
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	if err := key.VerifyDigest(digest[:], agg); err == nil {
		t.Fatalf("expected verification failure")
	}

	// Out-of-range index is malformed.
	agg, err = EncodeAggregate([]Entry{{Index: 7, Signature: outsider.SignDigest(digest[:])}})
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	if err := key.VerifyDigest(digest[:], agg); err == nil {
		t.Fatalf("expected malformed error for out-of-range index")
	}
}

func TestAggregateCodec(t *testing.T) {
	entries := []Entry{
		{Index: 0, Signature: bytes.Repeat([]byte{0xAA}, 64)},
		{Index: 2, Signature: bytes.Repeat([]byte{0xBB}, 64)},
	}
	b, err := EncodeAggregate(entries)
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	back, err := DecodeAggregate(b)
	if err != nil {
		t.Fatalf("DecodeAggregate: %v", err)
	}
	if len(back) != 2 || back[0].Index != 0 || back[1].Index != 2 {
		t.Fatalf("unexpected decode result: %+v", back)
	}
	if !bytes.Equal(back[1].Signature, entries[1].Signature) {
		t.Fatalf("signature bytes lost in round trip")
	}
}

func TestAggregateCodecRejectsMalformed(t *testing.T) {
	if _, err := EncodeAggregate([]Entry{{Index: 1, Signature: []byte{1}}, {Index: 0, Signature: []byte{2}}}); err == nil {
		t.Fatalf("expected error for out-of-order entries")
	}
	if _, err := EncodeAggregate([]Entry{{Index: 0, Signature: nil}}); err == nil {
		t.Fatalf("expected error for empty signature")
	}

	if _, err := DecodeAggregate(nil); err == nil {
		t.Fatalf("expected error for empty aggregate")
	}
	if _, err := DecodeAggregate([]byte{0, 1, 0}); err == nil {
		t.Fatalf("expected error for truncated header")
	}
	// Length prefix exceeding the remaining bytes.
	if _, err := DecodeAggregate([]byte{0, 0xFF, 0xFF, 0xFF, 0xFF, 1}); err == nil {
		t.Fatalf("expected error for oversized length prefix")
	}
	// Duplicate index.
	ok, err := EncodeAggregate([]Entry{{Index: 0, Signature: []byte{1}}})
	if err != nil {
		t.Fatalf("EncodeAggregate: %v", err)
	}
	if _, err := DecodeAggregate(append(ok, ok...)); err == nil {
		t.Fatalf("expected error for duplicate index")
	}
}
