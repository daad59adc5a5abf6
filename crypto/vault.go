// Package crypto seals the recovery phrase with a password-derived key.
package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/scrypt"
)

const (
	ScryptN = 32768 // 2^15
	ScryptR = 8
	ScryptP = 1
	KeyLen  = 32 // AES-256

	VaultVersion = 2

	saltLen  = 32
	nonceLen = 12
)

// ErrWrongPassword is returned when the vault cannot be opened with the
// given password.
var ErrWrongPassword = errors.New("invalid password")

// KDFParams are the scrypt cost parameters a vault was sealed with.
type KDFParams struct {
	N int `json:"n"`
	R int `json:"r"`
	P int `json:"p"`
}

// DefaultKDF is used for new vaults.
var DefaultKDF = KDFParams{N: ScryptN, R: ScryptR, P: ScryptP}

// Vault is the on-disk form of the sealed recovery phrase.
type Vault struct {
	Version int       `json:"version"`
	KDF     KDFParams `json:"kdf"`
	Salt    []byte    `json:"salt"`
	Nonce   []byte    `json:"nonce"`
	Data    []byte    `json:"data"`
}

type payload struct {
	Mnemonic string `json:"mnemonic"`
}

// NewVault seals mnemonic under password with DefaultKDF.
func NewVault(mnemonic, password string) (*Vault, error) {
	return NewVaultWithParams(mnemonic, password, DefaultKDF)
}

// NewVaultWithParams seals mnemonic with explicit scrypt costs.
func NewVaultWithParams(mnemonic, password string, kdf KDFParams) (*Vault, error) {
	if password == "" {
		return nil, errors.New("password must not be empty")
	}

	salt := make([]byte, saltLen)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, fmt.Errorf("failed to generate salt: %w", err)
	}
	nonce := make([]byte, nonceLen)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	key, err := deriveKey(password, salt, kdf)
	if err != nil {
		return nil, err
	}
	defer clearBytes(key)

	plain, err := json.Marshal(payload{Mnemonic: mnemonic})
	if err != nil {
		return nil, fmt.Errorf("failed to serialize vault data: %w", err)
	}
	defer clearBytes(plain)

	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}

	return &Vault{
		Version: VaultVersion,
		KDF:     kdf,
		Salt:    salt,
		Nonce:   nonce,
		Data:    gcm.Seal(nil, nonce, plain, nil),
	}, nil
}

// Open returns the sealed mnemonic. A wrong password yields ErrWrongPassword.
func (v *Vault) Open(password string) (string, error) {
	kdf := v.KDF
	if kdf.N == 0 {
		// version 1 vaults did not record their costs
		kdf = DefaultKDF
	}

	key, err := deriveKey(password, v.Salt, kdf)
	if err != nil {
		return "", err
	}
	defer clearBytes(key)

	gcm, err := newGCM(key)
	if err != nil {
		return "", err
	}
	if len(v.Nonce) != gcm.NonceSize() {
		return "", fmt.Errorf("corrupt vault: nonce is %d bytes", len(v.Nonce))
	}

	plain, err := gcm.Open(nil, v.Nonce, v.Data, nil)
	if err != nil {
		return "", ErrWrongPassword
	}
	defer clearBytes(plain)

	var p payload
	if err := json.Unmarshal(plain, &p); err != nil {
		return "", fmt.Errorf("failed to deserialize vault data: %w", err)
	}
	return p.Mnemonic, nil
}

// Marshal encodes the vault for storage.
func (v *Vault) Marshal() ([]byte, error) {
	return json.MarshalIndent(v, "", "  ")
}

// ParseVault decodes a stored vault.
func ParseVault(data []byte) (*Vault, error) {
	var v Vault
	if err := json.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("failed to parse vault: %w", err)
	}
	if len(v.Salt) == 0 || len(v.Data) == 0 {
		return nil, errors.New("corrupt vault: missing salt or data")
	}
	return &v, nil
}

func deriveKey(password string, salt []byte, kdf KDFParams) ([]byte, error) {
	key, err := scrypt.Key([]byte(password), salt, kdf.N, kdf.R, kdf.P, KeyLen)
	if err != nil {
		return nil, fmt.Errorf("scrypt key derivation failed: %w", err)
	}
	return key, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}
	return gcm, nil
}

func clearBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
