// Package manifest models the JSON record binding a filter's serial number,
// content hash, and per-signer signatures.
//
// A manifest is produced alongside a filter's pre-signature form: one
// placeholder entry per trusted signer, filled in as signers endorse the
// signing bytes. Once enough entries are present, Sign assembles the
// aggregate signature stamped into the filter itself.
package manifest

import (
	"bytes"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"xdao.co/denylist/filter"
	"xdao.co/denylist/keys"
	"xdao.co/denylist/multisig"
)

var (
	ErrSerialMismatch = errors.New("manifest: serial does not match filter")
	ErrHashMismatch   = errors.New("manifest: hash does not match filter")
	ErrUnknownSigner  = errors.New("manifest: signer is not in the public key manifest")
	ErrNoSignatures   = errors.New("manifest: no signatures collected")
)

// Signature is one trusted signer's entry. Signature is base64 and empty
// until the signer has endorsed the signing bytes.
type Signature struct {
	Signer    keys.Identity `json:"signer"`
	Signature string        `json:"signature"`
}

// SignatureVerify is the verification view of a Signature.
type SignatureVerify struct {
	Signer    keys.Identity `json:"signer"`
	Signature string        `json:"signature"`
	Verified  bool          `json:"verified"`
}

// Manifest binds a filter serial, its base64 content hash, and the ordered
// per-signer signature list.
type Manifest struct {
	Serial     uint32      `json:"serial"`
	Hash       string      `json:"hash"`
	Signatures []Signature `json:"signatures"`
}

// New builds a manifest for a filter hash with one placeholder signature
// entry per signer in the public key manifest, in manifest order.
func New(serial uint32, filterHash []byte, km *multisig.KeyManifest) *Manifest {
	sigs := make([]Signature, 0, len(km.PublicKeys))
	for _, signer := range km.PublicKeys {
		sigs = append(sigs, Signature{Signer: signer})
	}
	return &Manifest{
		Serial:     serial,
		Hash:       base64.StdEncoding.EncodeToString(filterHash),
		Signatures: sigs,
	}
}

// FromJSON decodes a manifest document.
func FromJSON(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("decode manifest: %w", err)
	}
	if m.Hash == "" {
		return nil, errors.New("manifest: missing hash")
	}
	if _, err := base64.StdEncoding.DecodeString(m.Hash); err != nil {
		return nil, fmt.Errorf("manifest: invalid hash base64: %w", err)
	}
	for i, s := range m.Signatures {
		if s.Signer.IsZero() {
			return nil, fmt.Errorf("manifest: signature entry %d is missing its signer", i)
		}
	}
	return &m, nil
}

// ToJSON renders the manifest document.
func (m *Manifest) ToJSON() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// HashBytes returns the decoded content hash commitment.
func (m *Manifest) HashBytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(m.Hash)
}

// AddSignature records signer's endorsement of the signing bytes in the
// matching manifest entry.
func (m *Manifest) AddSignature(signer *keys.Signer, signingBytes []byte) error {
	id := signer.Identity()
	for i := range m.Signatures {
		if m.Signatures[i].Signer.Equal(id) {
			sig := signer.Sign(signingBytes)
			m.Signatures[i].Signature = base64.StdEncoding.EncodeToString(sig)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrUnknownSigner, id.ShortID())
}

// Sign assembles the aggregate signature from the collected per-signer
// signatures, mapping each signer to its member index in the public key
// manifest. Entries without a signature are skipped; a signer absent from
// the key manifest is an error.
func (m *Manifest) Sign(km *multisig.KeyManifest) ([]byte, error) {
	key, err := km.Key()
	if err != nil {
		return nil, err
	}
	var entries []multisig.Entry
	for _, s := range m.Signatures {
		if s.Signature == "" {
			continue
		}
		idx, ok := key.MemberIndex(s.Signer)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownSigner, s.Signer.ShortID())
		}
		sig, err := base64.StdEncoding.DecodeString(s.Signature)
		if err != nil {
			return nil, fmt.Errorf("manifest: invalid signature base64 for %s: %w", s.Signer.ShortID(), err)
		}
		entries = append(entries, multisig.Entry{Index: uint8(idx), Signature: sig})
	}
	if len(entries) == 0 {
		return nil, ErrNoSignatures
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Index < entries[j].Index })
	return multisig.EncodeAggregate(entries)
}

// Verify checks one signer's signature against the given signing bytes.
// Verification failure is reported in the result, never as an error.
func (s Signature) Verify(signingBytes []byte) SignatureVerify {
	out := SignatureVerify{Signer: s.Signer, Signature: s.Signature}
	if s.Signature == "" {
		return out
	}
	sig, err := base64.StdEncoding.DecodeString(s.Signature)
	if err != nil {
		return out
	}
	digest := sha256.Sum256(signingBytes)
	out.Verified = s.Signer.VerifyDigest(digest[:], sig)
	return out
}

// VerifyFilter checks that the manifest accompanies the given filter:
// serials must match and the manifest hash must equal the filter's content
// hash.
func (m *Manifest) VerifyFilter(f *filter.Filter) error {
	if m.Serial != f.Serial() {
		return fmt.Errorf("%w: manifest %d, filter %d", ErrSerialMismatch, m.Serial, f.Serial())
	}
	want, err := m.HashBytes()
	if err != nil {
		return fmt.Errorf("manifest: invalid hash base64: %w", err)
	}
	if !bytes.Equal(want, f.Hash()) {
		return ErrHashMismatch
	}
	return nil
}
