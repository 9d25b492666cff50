package keys

import (
	"crypto/sha256"
	"io"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
)

type deterministicReader struct{ b byte }

func (r *deterministicReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func TestEd25519SignerVerifies(t *testing.T) {
	id, signer := testIdentity(t, 0x10)

	msg := []byte("signing bytes")
	sig := signer.Sign(msg)

	digest := sha256.Sum256(msg)
	if !id.VerifyDigest(digest[:], sig) {
		t.Fatalf("signature did not verify")
	}
	digest[0] ^= 0xFF
	if id.VerifyDigest(digest[:], sig) {
		t.Fatalf("signature verified against a different digest")
	}
}

func TestDilithium3SignerVerifies(t *testing.T) {
	signer, err := NewDilithium3Signer(io.Reader(&deterministicReader{}))
	if err != nil {
		t.Fatalf("NewDilithium3Signer: %v", err)
	}

	msg := []byte("signing bytes")
	sig := signer.Sign(msg)
	if len(sig) != mode3.SignatureSize {
		t.Fatalf("unexpected signature size: got %d want %d", len(sig), mode3.SignatureSize)
	}

	digest := sha256.Sum256(msg)
	if !signer.Identity().VerifyDigest(digest[:], sig) {
		t.Fatalf("signature did not verify")
	}
}

func TestVerifyDigestRejectsWrongSigner(t *testing.T) {
	_, a := testIdentity(t, 0x01)
	idB, _ := testIdentity(t, 0x02)

	msg := []byte("signing bytes")
	digest := sha256.Sum256(msg)
	sig := a.SignDigest(digest[:])
	if idB.VerifyDigest(digest[:], sig) {
		t.Fatalf("signature verified against the wrong identity")
	}
}

func TestDigestFor(t *testing.T) {
	msg := []byte("abc")
	for _, alg := range []string{"sha256", "sha512", "sha3-256"} {
		d, err := DigestFor(alg, msg)
		if err != nil {
			t.Fatalf("DigestFor(%s): %v", alg, err)
		}
		if len(d) == 0 {
			t.Fatalf("DigestFor(%s): empty digest", alg)
		}
	}
	if _, err := DigestFor("md5", msg); err == nil {
		t.Fatalf("expected unsupported hash error")
	}
}
