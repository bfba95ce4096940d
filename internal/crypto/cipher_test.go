package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	sealed, err := Seal("thanks, see you at 3pm", key)
	require.NoError(t, err)
	assert.NotEqual(t, "thanks, see you at 3pm", sealed)

	plaintext, err := Open(sealed, key)
	require.NoError(t, err)
	assert.Equal(t, "thanks, see you at 3pm", plaintext)
}

func TestOpenWithWrongKeyFails(t *testing.T) {
	key1, err := NewKey()
	require.NoError(t, err)
	key2, err := NewKey()
	require.NoError(t, err)

	sealed, err := Seal("secret", key1)
	require.NoError(t, err)

	_, err = Open(sealed, key2)
	assert.ErrorIs(t, err, ErrDecryptionFailed)
}

func TestInvalidInputs(t *testing.T) {
	key, err := NewKey()
	require.NoError(t, err)

	_, err = Seal("x", []byte("short"))
	assert.ErrorIs(t, err, ErrInvalidKeySize)

	_, err = Open("not base64!!!", key)
	assert.ErrorIs(t, err, ErrInvalidCiphertext)

	_, err = Open("YWJj", key) // valid base64, shorter than a nonce
	assert.ErrorIs(t, err, ErrInvalidCiphertext)
}
