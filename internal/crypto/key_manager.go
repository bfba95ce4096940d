package crypto

import (
	"encoding/base64"
	"errors"
	"os"
	"sync"
)

var (
	ErrMasterKeyNotSet  = errors.New("MASTER_KEY not set in environment")
	ErrInvalidMasterKey = errors.New("invalid master key: must be base64 of 32 bytes")
	ErrDataKeyUnwrap    = errors.New("failed to unwrap data key")
)

// KeyManager wraps and unwraps per-operator data keys with the master key,
// and en/decrypts message bodies with them. Unwrapped data keys are cached
// in memory for the lifetime of the process.
type KeyManager struct {
	masterKey []byte

	mu       sync.RWMutex
	dataKeys map[int64][]byte // user_id -> unwrapped data key
}

// NewKeyManager reads MASTER_KEY (base64, 32 bytes) from the environment.
func NewKeyManager() (*KeyManager, error) {
	encoded := os.Getenv("MASTER_KEY")
	if encoded == "" {
		return nil, ErrMasterKeyNotSet
	}

	masterKey, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil || len(masterKey) != keySize {
		return nil, ErrInvalidMasterKey
	}

	return &KeyManager{
		masterKey: masterKey,
		dataKeys:  make(map[int64][]byte),
	}, nil
}

// NewWrappedDataKey generates a fresh data key and returns it wrapped with
// the master key, ready to store on the user row.
func (km *KeyManager) NewWrappedDataKey() (string, error) {
	dataKey, err := NewKey()
	if err != nil {
		return "", err
	}
	return Seal(base64.StdEncoding.EncodeToString(dataKey), km.masterKey)
}

// EncryptBody encrypts a message body with the user's data key.
func (km *KeyManager) EncryptBody(plaintext string, userID int64, wrappedDK string) (string, error) {
	dataKey, err := km.loadDataKey(userID, wrappedDK)
	if err != nil {
		return "", err
	}
	return Seal(plaintext, dataKey)
}

// DecryptBody decrypts a message body with the user's data key.
func (km *KeyManager) DecryptBody(sealed string, userID int64, wrappedDK string) (string, error) {
	dataKey, err := km.loadDataKey(userID, wrappedDK)
	if err != nil {
		return "", err
	}
	return Open(sealed, dataKey)
}

func (km *KeyManager) loadDataKey(userID int64, wrappedDK string) ([]byte, error) {
	km.mu.RLock()
	dataKey, ok := km.dataKeys[userID]
	km.mu.RUnlock()
	if ok {
		return dataKey, nil
	}

	decoded, err := Open(wrappedDK, km.masterKey)
	if err != nil {
		return nil, ErrDataKeyUnwrap
	}
	dataKey, err = base64.StdEncoding.DecodeString(decoded)
	if err != nil {
		return nil, ErrDataKeyUnwrap
	}

	km.mu.Lock()
	km.dataKeys[userID] = dataKey
	km.mu.Unlock()
	return dataKey, nil
}
