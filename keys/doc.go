// Package keys provides the public-key identity model used throughout the
// denylist tooling.
//
// Identities are encoded as "alg:base64(publickey)" strings. Supported
// algorithms:
//   - ed25519
//   - dilithium3 (post-quantum)
//
// The filesystem-backed KeyStore is a local-first convenience for signer key
// management and is not part of the artifact format.
package keys
