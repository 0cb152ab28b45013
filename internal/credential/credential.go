// Package credential implements the encrypted API-credential store: arbitrary
// named secrets (API keys, tokens) persisted under the vault, encrypted with a
// key derived from the caller's password via PBKDF2-SHA256. It is independent
// of the wallet keystore: a credential's password has nothing to do with any
// wallet's unlock password.
package credential

import (
	"encoding/base64"
	"encoding/json"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aibtcdev/aibtc-core/internal/cryptoprim"
	"github.com/aibtcdev/aibtc-core/internal/vault"
	coreerrors "github.com/aibtcdev/aibtc-core/pkg/errors"
)

// DeleteConfirmToken must be passed verbatim to Delete.
const DeleteConfirmToken = "DELETE"

// MaxValueSize is the largest secret value the store will encrypt.
const MaxValueSize = 64 * 1024

// MinRotatePasswordLen is the minimum length RotatePassword accepts for the
// new password.
const MinRotatePasswordLen = 8

var idPattern = regexp.MustCompile(`[^a-z0-9-]+`)

// NormalizeID lowercases id, joins its whitespace-separated words with
// hyphens, and strips everything else but alphanumerics and hyphens, the
// credential-entry identity rule.
func NormalizeID(id string) string {
	hyphenated := strings.Join(strings.Fields(strings.ToLower(id)), "-")
	return idPattern.ReplaceAllString(hyphenated, "")
}

// Credential is one named secret as exposed to callers (value decrypted).
type Credential struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Category  string    `json:"category"`
	Value     string    `json:"value"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Meta is the list-view of a credential: everything but the decrypted value.
type Meta struct {
	ID        string    `json:"id"`
	Label     string    `json:"label"`
	Category  string    `json:"category"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// encryptedBlob is the on-disk encoding of a single credential's secret
// value: AES-256-GCM under a PBKDF2-derived key, with distinct
// ciphertext/iv/authTag/salt fields so parameters can evolve independently
// of the wire format.
type encryptedBlob struct {
	Ciphertext string `json:"ciphertext"`
	IV         string `json:"iv"`
	AuthTag    string `json:"authTag"`
	Salt       string `json:"salt"`
	KDF        string `json:"kdf"`
	Version    int    `json:"version"`
}

type storedCredential struct {
	ID        string        `json:"id"`
	Label     string        `json:"label"`
	Category  string        `json:"category"`
	Blob      encryptedBlob `json:"blob"`
	CreatedAt time.Time     `json:"createdAt"`
	UpdatedAt time.Time     `json:"updatedAt"`
}

type storeFile struct {
	Version     int                          `json:"version"`
	Credentials map[string]storedCredential `json:"credentials"`
}

const storeVersion = 1
const kdfName = "pbkdf2-sha256"

// Store manages the credentials.json file for a single vault root.
type Store struct {
	v *vault.Vault
}

// New constructs a credential Store backed by v.
func New(v *vault.Vault) *Store {
	return &Store{v: v}
}

func (s *Store) load() (*storeFile, error) {
	data, err := s.v.Read(vault.CredentialsFile)
	if err != nil {
		if coreerrors.Is(err, coreerrors.ErrNotFound) {
			return &storeFile{Version: storeVersion, Credentials: map[string]storedCredential{}}, nil
		}
		return nil, err
	}

	var file storeFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, coreerrors.Wrap(err, "parsing credentials file")
	}
	if file.Credentials == nil {
		file.Credentials = map[string]storedCredential{}
	}
	return &file, nil
}

func (s *Store) save(file *storeFile) error {
	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return coreerrors.Wrap(err, "encoding credentials file")
	}
	return s.v.WriteAtomic(vault.CredentialsFile, data)
}

func encryptValue(password, value string) (encryptedBlob, error) {
	salt, err := cryptoprim.RandomSalt(cryptoprim.SaltSize)
	if err != nil {
		return encryptedBlob{}, err
	}
	iv, err := cryptoprim.RandomSalt(cryptoprim.NonceSize)
	if err != nil {
		return encryptedBlob{}, err
	}

	key := cryptoprim.DeriveKeyPBKDF2([]byte(password), salt)
	ciphertext, tag, err := cryptoprim.AESGCMEncrypt(key, iv, []byte(value))
	if err != nil {
		return encryptedBlob{}, err
	}

	return encryptedBlob{
		Ciphertext: base64.StdEncoding.EncodeToString(ciphertext),
		IV:         base64.StdEncoding.EncodeToString(iv),
		AuthTag:    base64.StdEncoding.EncodeToString(tag),
		Salt:       base64.StdEncoding.EncodeToString(salt),
		KDF:        kdfName,
		Version:    storeVersion,
	}, nil
}

func decryptValue(password string, blob encryptedBlob) (string, error) {
	salt, err := base64.StdEncoding.DecodeString(blob.Salt)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding salt")
	}
	iv, err := base64.StdEncoding.DecodeString(blob.IV)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding iv")
	}
	ciphertext, err := base64.StdEncoding.DecodeString(blob.Ciphertext)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding ciphertext")
	}
	tag, err := base64.StdEncoding.DecodeString(blob.AuthTag)
	if err != nil {
		return "", coreerrors.Wrap(err, "decoding auth tag")
	}

	key := cryptoprim.DeriveKeyPBKDF2([]byte(password), salt)
	plaintext, err := cryptoprim.AESGCMDecrypt(key, iv, ciphertext, tag)
	if err != nil {
		return "", coreerrors.ErrAuthFailed
	}
	return string(plaintext), nil
}

// Add stores (or, for an existing id, overwrites) a named credential,
// encrypted under password. A re-add of an existing id preserves its
// original createdAt and generates a fresh salt/IV for the new ciphertext
// (re-adding with the same arguments is idempotent at the value level: the
// caller sees the same retrievable value and the same createdAt).
func (s *Store) Add(password, id, value, label, category string) error {
	normalized := NormalizeID(id)
	if normalized == "" {
		return coreerrors.New("VALIDATION_ERROR", "credential id must contain at least one alphanumeric character")
	}
	if len(value) > MaxValueSize {
		return coreerrors.New("VALIDATION_ERROR", "credential value exceeds 64 KiB")
	}

	file, err := s.load()
	if err != nil {
		return err
	}

	blob, err := encryptValue(password, value)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	createdAt := now
	if existing, ok := file.Credentials[normalized]; ok {
		createdAt = existing.CreatedAt
	}

	file.Credentials[normalized] = storedCredential{
		ID: normalized, Label: label, Category: category,
		Blob: blob, CreatedAt: createdAt, UpdatedAt: now,
	}
	return s.save(file)
}

// Get decrypts and returns the named credential.
func (s *Store) Get(password, id string) (*Credential, error) {
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	stored, ok := file.Credentials[NormalizeID(id)]
	if !ok {
		return nil, coreerrors.ErrNotFound
	}

	value, err := decryptValue(password, stored.Blob)
	if err != nil {
		return nil, err
	}

	return &Credential{
		ID: stored.ID, Label: stored.Label, Category: stored.Category, Value: value,
		CreatedAt: stored.CreatedAt, UpdatedAt: stored.UpdatedAt,
	}, nil
}

// List returns metadata for every stored credential, without decrypting any
// value, sorted by createdAt ascending.
func (s *Store) List() ([]Meta, error) {
	file, err := s.load()
	if err != nil {
		return nil, err
	}
	out := make([]Meta, 0, len(file.Credentials))
	for _, stored := range file.Credentials {
		out = append(out, Meta{
			ID: stored.ID, Label: stored.Label, Category: stored.Category,
			CreatedAt: stored.CreatedAt, UpdatedAt: stored.UpdatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// Delete removes a named credential. Decryption with password is required as
// proof of possession before the entry is removed, and confirm must equal
// DeleteConfirmToken.
func (s *Store) Delete(password, id, confirm string) error {
	if confirm != DeleteConfirmToken {
		return coreerrors.New("CONFIRMATION_REQUIRED", "delete requires explicit confirmation")
	}
	if _, err := s.Get(password, id); err != nil {
		return err
	}

	file, err := s.load()
	if err != nil {
		return err
	}
	delete(file.Credentials, NormalizeID(id))
	return s.save(file)
}

// RotatePassword re-encrypts every stored credential under newPassword,
// verifying oldPassword against each existing blob first. Decryption of every
// entry is attempted before anything is re-encrypted or written, so a wrong
// oldPassword (or any corrupted entry) aborts with the file on disk
// untouched: no partial rotation is observable.
func (s *Store) RotatePassword(oldPassword, newPassword string) error {
	if len(newPassword) < MinRotatePasswordLen {
		return coreerrors.New("VALIDATION_ERROR", "new password must be at least 8 characters")
	}

	file, err := s.load()
	if err != nil {
		return err
	}

	values := make(map[string]string, len(file.Credentials))
	for id, stored := range file.Credentials {
		value, err := decryptValue(oldPassword, stored.Blob)
		if err != nil {
			return coreerrors.Wrap(err, "verifying existing password for credential %s", id)
		}
		values[id] = value
	}

	rotated := make(map[string]storedCredential, len(file.Credentials))
	for id, stored := range file.Credentials {
		blob, err := encryptValue(newPassword, values[id])
		if err != nil {
			return err
		}
		rotated[id] = storedCredential{
			ID: stored.ID, Label: stored.Label, Category: stored.Category,
			Blob: blob, CreatedAt: stored.CreatedAt, UpdatedAt: time.Now().UTC(),
		}
	}

	file.Credentials = rotated
	return s.save(file)
}
