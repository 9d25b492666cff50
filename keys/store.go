package keys

import (
	"crypto/ed25519"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// KeyStore is a simple local-first store for denylist signer seeds.
//
// Features:
// - Supports ed25519 signer keys only (dilithium3 signers manage their own material)
// - Stores one hex seed file per signer name
// - No external dependencies
//
// This store is a CLI convenience and is not part of the artifact format.
type KeyStore struct {
	Directory string
}

// KeyEntry describes one stored signer key.
type KeyEntry struct {
	Name     string
	Identity string
}

func GetDefaultDirectory() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(homeDir, ".xdao", "denylist-keys"), nil
}

func CreateKeyStore(directory string) (*KeyStore, error) {
	if directory == "" {
		var err error
		directory, err = GetDefaultDirectory()
		if err != nil {
			return nil, err
		}
	}
	return &KeyStore{Directory: directory}, nil
}

func (ks *KeyStore) keyFilePath(name string) string {
	return filepath.Join(ks.Directory, name+".key")
}

func CheckKeyName(name string) error {
	if name == "" {
		return errors.New("signer name cannot be empty")
	}
	for _, char := range name {
		if (char >= 'a' && char <= 'z') || (char >= 'A' && char <= 'Z') || (char >= '0' && char <= '9') || char == '-' || char == '_' {
			continue
		}
		return fmt.Errorf("invalid character %q in signer name", char)
	}
	return nil
}

func ParseSeedHex(seedHex string) ([]byte, error) {
	seedHex = strings.TrimSpace(seedHex)
	seedHex = strings.TrimPrefix(seedHex, "0x")
	data, err := hex.DecodeString(seedHex)
	if err != nil {
		return nil, err
	}
	if len(data) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected seed length of %d bytes, got %d", ed25519.SeedSize, len(data))
	}
	return data, nil
}

func (ks *KeyStore) saveSeedToFile(filePath string, seed []byte, overwrite bool) error {
	if len(seed) != ed25519.SeedSize {
		return fmt.Errorf("expected seed length of %d bytes", ed25519.SeedSize)
	}
	if err := os.MkdirAll(filepath.Dir(filePath), 0o700); err != nil {
		return err
	}
	flags := os.O_WRONLY | os.O_CREATE
	if overwrite {
		flags |= os.O_TRUNC
	} else {
		flags |= os.O_EXCL
	}
	file, err := os.OpenFile(filePath, flags, 0o600)
	if err != nil {
		return err
	}
	defer file.Close()
	if _, err := file.WriteString(hex.EncodeToString(seed) + "\n"); err != nil {
		return err
	}
	return file.Close()
}

func (ks *KeyStore) loadSeedFromFile(filePath string) ([]byte, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	return ParseSeedHex(strings.TrimSpace(string(data)))
}

// InitializeKey stores a seed under the given signer name and returns the
// signer's identity string and the seed file path.
func (ks *KeyStore) InitializeKey(name string, seed []byte, overwrite bool) (identity string, filePath string, err error) {
	if err := CheckKeyName(name); err != nil {
		return "", "", err
	}
	filePath = ks.keyFilePath(name)
	if err := ks.saveSeedToFile(filePath, seed, overwrite); err != nil {
		return "", "", err
	}
	signer, err := NewEd25519Signer(seed)
	if err != nil {
		return "", "", err
	}
	return signer.Identity().String(), filePath, nil
}

// Signer loads the stored seed for a signer name.
func (ks *KeyStore) Signer(name string) (*Signer, error) {
	if err := CheckKeyName(name); err != nil {
		return nil, err
	}
	seed, err := ks.loadSeedFromFile(ks.keyFilePath(name))
	if err != nil {
		return nil, err
	}
	return NewEd25519Signer(seed)
}

// ExportKey returns the identity string for a stored signer.
func (ks *KeyStore) ExportKey(name string) (string, error) {
	signer, err := ks.Signer(name)
	if err != nil {
		return "", err
	}
	return signer.Identity().String(), nil
}

// LoadSeed resolves a signer seed from an inline hex seed, an explicit key
// file, or a stored signer name, in that order of preference.
func (ks *KeyStore) LoadSeed(seedHex, signerName, keyFile string) ([]byte, error) {
	if seedHex != "" {
		return ParseSeedHex(seedHex)
	}
	if keyFile != "" {
		return ks.loadSeedFromFile(keyFile)
	}
	if signerName != "" {
		if err := CheckKeyName(signerName); err != nil {
			return nil, err
		}
		return ks.loadSeedFromFile(ks.keyFilePath(signerName))
	}
	return nil, errors.New("no signer provided")
}

// ListKeys enumerates stored signer keys sorted by name.
func (ks *KeyStore) ListKeys() ([]KeyEntry, error) {
	entries, err := os.ReadDir(ks.Directory)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".key") {
			names = append(names, strings.TrimSuffix(entry.Name(), ".key"))
		}
	}
	sort.Strings(names)

	var result []KeyEntry
	for _, name := range names {
		identity, err := ks.ExportKey(name)
		if err != nil {
			// Unreadable or malformed seed files are listed without an identity.
			result = append(result, KeyEntry{Name: name})
			continue
		}
		result = append(result, KeyEntry{Name: name, Identity: identity})
	}
	return result, nil
}
