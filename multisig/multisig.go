// Package multisig derives a composite verification key from an ordered set
// of trusted signers and verifies aggregate signatures against it.
//
// Derivation is order-sensitive: the composite identity commits to the
// member order exactly as listed in the key manifest. Two manifests with the
// same members in different orders derive different composite keys.
package multisig

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"

	"xdao.co/denylist/keys"
)

var (
	ErrMalformedSignature = errors.New("multisig: malformed aggregate signature")
	ErrThresholdNotMet    = errors.New("multisig: signature threshold not met")
	ErrUnknownSigner      = errors.New("multisig: signer is not a member")
)

// KeyManifest is the external configuration document listing the trusted
// signer set. Threshold 0 means all signers are required.
type KeyManifest struct {
	PublicKeys []keys.Identity `json:"public_keys"`
	Threshold  int             `json:"threshold,omitempty"`
}

// FromJSON decodes and validates a public key manifest document.
func FromJSON(data []byte) (*KeyManifest, error) {
	var km KeyManifest
	if err := json.Unmarshal(data, &km); err != nil {
		return nil, fmt.Errorf("decode public key manifest: %w", err)
	}
	if _, err := km.Key(); err != nil {
		return nil, err
	}
	return &km, nil
}

// Key derives the composite verification key for this manifest.
func (km *KeyManifest) Key() (*Key, error) {
	if len(km.PublicKeys) == 0 {
		return nil, errors.New("public key manifest has no signers")
	}
	if len(km.PublicKeys) > 255 {
		return nil, fmt.Errorf("too many signers: %d (max 255)", len(km.PublicKeys))
	}
	threshold := km.Threshold
	if threshold == 0 {
		threshold = len(km.PublicKeys)
	}
	if threshold < 1 || threshold > len(km.PublicKeys) {
		return nil, fmt.Errorf("threshold %d out of range for %d signers", km.Threshold, len(km.PublicKeys))
	}
	seen := make(map[string]struct{}, len(km.PublicKeys))
	for i, m := range km.PublicKeys {
		if m.IsZero() {
			return nil, fmt.Errorf("signer %d is missing", i)
		}
		s := m.String()
		if _, ok := seen[s]; ok {
			return nil, fmt.Errorf("duplicate signer %s", m.ShortID())
		}
		seen[s] = struct{}{}
	}
	members := make([]keys.Identity, len(km.PublicKeys))
	copy(members, km.PublicKeys)
	return &Key{members: members, threshold: threshold}, nil
}

// Key is the composite verification key: the ordered member set plus the
// signature threshold. Its address is the single Identity-like commitment
// the filter signature is checked against.
type Key struct {
	members   []keys.Identity
	threshold int
}

// Members returns the ordered member identities.
func (k *Key) Members() []keys.Identity {
	out := make([]keys.Identity, len(k.members))
	copy(out, k.members)
	return out
}

// Threshold returns the number of valid member signatures required.
func (k *Key) Threshold() int { return k.threshold }

// MemberIndex returns the index of id in the member set.
func (k *Key) MemberIndex(id keys.Identity) (int, bool) {
	for i, m := range k.members {
		if m.Equal(id) {
			return i, true
		}
	}
	return 0, false
}

// Address returns the composite identity string: "multisig:" plus a base64
// sha256 commitment over the threshold, member count, and each member's
// canonical binary encoding, in manifest order.
func (k *Key) Address() string {
	h := sha256.New()
	_, _ = h.Write([]byte("xdao-denylist-multisig-v1"))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte{byte(k.threshold), byte(len(k.members))})
	for _, m := range k.members {
		_, _ = h.Write(m.Bytes())
		_, _ = h.Write([]byte{0})
	}
	return "multisig:" + base64.StdEncoding.EncodeToString(h.Sum(nil))
}

func (k *Key) String() string { return k.Address() }

// VerifyDigest checks an aggregate signature over a message digest. It
// returns nil when at least Threshold entries carry a valid signature by
// their indexed member; otherwise a sentinel error describing the failure.
func (k *Key) VerifyDigest(digest, aggregate []byte) error {
	entries, err := DecodeAggregate(aggregate)
	if err != nil {
		return err
	}
	valid := 0
	for _, e := range entries {
		if int(e.Index) >= len(k.members) {
			return fmt.Errorf("%w: member index %d out of range", ErrMalformedSignature, e.Index)
		}
		if k.members[e.Index].VerifyDigest(digest, e.Signature) {
			valid++
		}
	}
	if valid < k.threshold {
		return fmt.Errorf("%w: %d of %d required", ErrThresholdNotMet, valid, k.threshold)
	}
	return nil
}
