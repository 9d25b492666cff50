package keys

import (
	"crypto/ed25519"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// DigestFor hashes message with the named algorithm.
// hashAlg must be one of: sha256, sha512, sha3-256.
func DigestFor(hashAlg string, message []byte) ([]byte, error) {
	switch hashAlg {
	case "sha256":
		s := sha256.Sum256(message)
		return s[:], nil
	case "sha512":
		s := sha512.Sum512(message)
		return s[:], nil
	case "sha3-256":
		s := sha3.Sum256(message)
		return s[:], nil
	default:
		return nil, fmt.Errorf("unsupported hash algorithm: %q", hashAlg)
	}
}

// Signer holds the private key material for one denylist signer.
type Signer struct {
	id  Identity
	ed  ed25519.PrivateKey
	dil *mode3.PrivateKey
}

// NewEd25519Signer builds a signer from a 32-byte ed25519 seed.
func NewEd25519Signer(seed []byte) (*Signer, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("ed25519 seed must be %d bytes, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	id, err := IdentityFromPublicKey(AlgEd25519, priv.Public().(ed25519.PublicKey))
	if err != nil {
		return nil, err
	}
	return &Signer{id: id, ed: priv}, nil
}

// NewDilithium3Signer generates a fresh dilithium3 signer from rand.
func NewDilithium3Signer(rand io.Reader) (*Signer, error) {
	pk, sk, err := mode3.GenerateKey(rand)
	if err != nil {
		return nil, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, err
	}
	id, err := IdentityFromPublicKey(AlgDilithium3, pub)
	if err != nil {
		return nil, err
	}
	return &Signer{id: id, dil: sk}, nil
}

// Identity returns the signer's public identity.
func (s *Signer) Identity() Identity { return s.id }

// SignDigest signs a precomputed message digest.
func (s *Signer) SignDigest(digest []byte) []byte {
	switch s.id.alg {
	case AlgEd25519:
		return ed25519.Sign(s.ed, digest)
	case AlgDilithium3:
		sig := make([]byte, mode3.SignatureSize)
		mode3.SignTo(s.dil, digest, sig)
		return sig
	}
	return nil
}

// Sign signs sha256(message). This is the digest convention used for all
// denylist artifact signatures.
func (s *Signer) Sign(message []byte) []byte {
	digest := sha256.Sum256(message)
	return s.SignDigest(digest[:])
}
