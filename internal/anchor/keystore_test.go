package anchor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncryptDecryptRoundtrip(t *testing.T) {
	store := NewSignerStore()
	privateKey := []byte("this-is-a-64-byte-ed25519-private-key-stand-in-for-the-test!")

	encrypted, err := store.EncryptPrivateKey(privateKey, "correct horse battery staple")
	require.NoError(t, err)
	assert.NotEqual(t, string(privateKey), encrypted)

	decrypted, err := store.DecryptPrivateKey(encrypted, "correct horse battery staple")
	require.NoError(t, err)
	assert.Equal(t, privateKey, decrypted)
}

func TestDecryptWithWrongPasswordFails(t *testing.T) {
	store := NewSignerStore()

	encrypted, err := store.EncryptPrivateKey([]byte("secret"), "password1")
	require.NoError(t, err)

	_, err = store.DecryptPrivateKey(encrypted, "password2")
	assert.Error(t, err)
}

func TestEncryptProducesUniqueCiphertexts(t *testing.T) {
	store := NewSignerStore()

	a, err := store.EncryptPrivateKey([]byte("secret"), "pw")
	require.NoError(t, err)
	b, err := store.EncryptPrivateKey([]byte("secret"), "pw")
	require.NoError(t, err)

	// Random nonces keep identical keys from producing identical ciphertexts
	assert.NotEqual(t, a, b)
}

func TestGenerateSigner(t *testing.T) {
	store := NewSignerStore()

	account, err := store.GenerateSigner()
	require.NoError(t, err)
	assert.Len(t, []byte(account.PrivateKey), 64)
	assert.NotEmpty(t, account.PublicKey.ToBase58())
}
