package anchor

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/blocto/solana-go-sdk/types"
)

const keystoreDir = "configs/keystore"

// signerEntry is the on-disk format of an encrypted anchor signer
type signerEntry struct {
	Address      string `json:"address"`
	EncryptedKey string `json:"encrypted_key"`
	Version      int    `json:"version"`
}

// SignerStore manages the anchor wallet key: generation, AES-256-GCM
// encryption and keystore persistence
type SignerStore struct{}

// NewSignerStore creates a new SignerStore
func NewSignerStore() *SignerStore {
	return &SignerStore{}
}

// GenerateSigner generates a fresh anchor key pair
func (s *SignerStore) GenerateSigner() (*types.Account, error) {
	account := types.NewAccount()
	return &account, nil
}

// EncryptPrivateKey encrypts a private key using AES-256-GCM
func (s *SignerStore) EncryptPrivateKey(privateKey []byte, password string) (string, error) {
	key := deriveKey(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return "", fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}

	// Nonce and ciphertext are stored together
	ciphertext := gcm.Seal(nonce, nonce, privateKey, nil)
	return base64.StdEncoding.EncodeToString(ciphertext), nil
}

// DecryptPrivateKey decrypts a private key using AES-256-GCM
func (s *SignerStore) DecryptPrivateKey(encryptedKey string, password string) ([]byte, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(encryptedKey)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64: %w", err)
	}

	key := deriveKey(password)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("ciphertext too short")
	}

	nonce := ciphertext[:gcm.NonceSize()]
	ciphertext = ciphertext[gcm.NonceSize():]

	plaintext, err := gcm.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt: %w", err)
	}

	return plaintext, nil
}

// SaveSigner encrypts and writes the signer to the keystore, keyed by its
// base58 address
func (s *SignerStore) SaveSigner(account *types.Account, password string) error {
	encrypted, err := s.EncryptPrivateKey(account.PrivateKey, password)
	if err != nil {
		return fmt.Errorf("failed to encrypt private key: %w", err)
	}

	address := account.PublicKey.ToBase58()
	entry := signerEntry{
		Address:      address,
		EncryptedKey: encrypted,
		Version:      1,
	}

	jsonData, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal keystore entry: %w", err)
	}

	if err := os.MkdirAll(keystoreDir, 0700); err != nil {
		return fmt.Errorf("failed to create keystore directory: %w", err)
	}

	filename := filepath.Join(keystoreDir, address+".json")
	if err := os.WriteFile(filename, jsonData, 0600); err != nil {
		return fmt.Errorf("failed to write keystore entry: %w", err)
	}

	return nil
}

// LoadSigner reads and decrypts the signer stored for the given address
func (s *SignerStore) LoadSigner(address string, password string) (*types.Account, error) {
	filename := filepath.Join(keystoreDir, address+".json")

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read keystore entry: %w", err)
	}

	var entry signerEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal keystore entry: %w", err)
	}

	if entry.Address != address {
		return nil, fmt.Errorf("address mismatch: expected %s, got %s", address, entry.Address)
	}

	privateKey, err := s.DecryptPrivateKey(entry.EncryptedKey, password)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt private key: %w", err)
	}

	account, err := types.AccountFromBytes(privateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create account from private key: %w", err)
	}

	return &account, nil
}

// deriveKey creates a 32-byte key from a password using SHA-256
func deriveKey(password string) []byte {
	hash := sha256.Sum256([]byte(password))
	return hash[:]
}
