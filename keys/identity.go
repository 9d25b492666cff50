package keys

import (
	"bytes"
	"crypto/ed25519"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"
)

// Alg names a supported signature algorithm.
type Alg string

const (
	AlgEd25519    Alg = "ed25519"
	AlgDilithium3 Alg = "dilithium3"
)

// Byte tags used in the canonical binary encoding of an Identity.
const (
	tagEd25519    byte = 1
	tagDilithium3 byte = 2
)

// Identity is an immutable public-key identity.
//
// The zero Identity is invalid; construct one with ParseIdentity or
// IdentityFromPublicKey.
type Identity struct {
	alg Alg
	pub []byte
}

// ParseIdentity parses an "alg:base64" identity string.
func ParseIdentity(s string) (Identity, error) {
	alg, enc, ok := strings.Cut(s, ":")
	if !ok {
		return Identity{}, fmt.Errorf("invalid identity encoding %q", s)
	}
	pub, err := decodeBase64(enc)
	if err != nil {
		return Identity{}, fmt.Errorf("invalid identity base64: %w", err)
	}
	return IdentityFromPublicKey(Alg(alg), pub)
}

// IdentityFromPublicKey wraps raw public key bytes for a known algorithm.
func IdentityFromPublicKey(alg Alg, pub []byte) (Identity, error) {
	switch alg {
	case AlgEd25519:
		if len(pub) != ed25519.PublicKeySize {
			return Identity{}, errors.New("invalid ed25519 public key length")
		}
	case AlgDilithium3:
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return Identity{}, fmt.Errorf("invalid dilithium3 public key: %w", err)
		}
	default:
		return Identity{}, fmt.Errorf("unsupported identity algorithm %q", alg)
	}
	cp := make([]byte, len(pub))
	copy(cp, pub)
	return Identity{alg: alg, pub: cp}, nil
}

// Alg returns the identity's signature algorithm.
func (id Identity) Alg() Alg { return id.alg }

// IsZero reports whether id is the invalid zero value.
func (id Identity) IsZero() bool { return id.alg == "" }

// String returns the canonical "alg:base64" encoding.
func (id Identity) String() string {
	return string(id.alg) + ":" + base64.StdEncoding.EncodeToString(id.pub)
}

// Bytes returns the canonical binary encoding: one algorithm tag byte
// followed by the raw public key. This is the encoding hashed into filters
// and into composite multisig keys.
func (id Identity) Bytes() []byte {
	var tag byte
	switch id.alg {
	case AlgEd25519:
		tag = tagEd25519
	case AlgDilithium3:
		tag = tagDilithium3
	}
	out := make([]byte, 1+len(id.pub))
	out[0] = tag
	copy(out[1:], id.pub)
	return out
}

// PublicKey returns a copy of the raw public key bytes.
func (id Identity) PublicKey() []byte {
	cp := make([]byte, len(id.pub))
	copy(cp, id.pub)
	return cp
}

// Equal reports whether two identities have the same algorithm and key.
func (id Identity) Equal(other Identity) bool {
	return id.alg == other.alg && bytes.Equal(id.pub, other.pub)
}

// ShortID returns a short stable fingerprint of the identity (hex of the
// first 8 bytes of sha3-256 over the canonical binary encoding). Display
// only; never used in the artifact format.
func (id Identity) ShortID() string {
	sum := sha3.Sum256(id.Bytes())
	return hex.EncodeToString(sum[:8])
}

// VerifyDigest reports whether sig is a valid signature by this identity
// over the given message digest.
func (id Identity) VerifyDigest(digest, sig []byte) bool {
	switch id.alg {
	case AlgEd25519:
		if len(sig) != ed25519.SignatureSize {
			return false
		}
		return ed25519.Verify(ed25519.PublicKey(id.pub), digest, sig)
	case AlgDilithium3:
		if len(sig) != mode3.SignatureSize {
			return false
		}
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(id.pub); err != nil {
			return false
		}
		return mode3.Verify(&pk, digest, sig)
	default:
		return false
	}
}

// MarshalText implements encoding.TextMarshaler using the canonical string
// form, so identities embed naturally in JSON documents.
func (id Identity) MarshalText() ([]byte, error) {
	if id.IsZero() {
		return nil, errors.New("cannot encode zero identity")
	}
	return []byte(id.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (id *Identity) UnmarshalText(text []byte) error {
	parsed, err := ParseIdentity(string(text))
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}

func decodeBase64(s string) ([]byte, error) {
	// Prefer standard padded encoding, but accept raw encoding too.
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
