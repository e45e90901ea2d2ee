// Package qcrypto seals payloads under AES-256-GCM keys derived from
// quantum-generated bit sequences. The cipher itself is an external
// primitive; this package's responsibility is distilling raw
// measurement bits into uniform key material and holding the resulting
// AEAD.
package qcrypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"errors"
	"fmt"
	"sync"

	"github.com/quantum-shield/qrng/qrng"
	"github.com/quantum-shield/qrng/qrng/bitseq"
)

const (
	// KeyBits is the extracted key length. 256 bits keys AES-256.
	KeyBits = 256

	// NonceSize is the AES-GCM nonce length in bytes.
	NonceSize = 12
)

// Algorithm names the AEAD in use, for reporting at the boundary.
const Algorithm = "AES-256-GCM"

var (
	// ErrNoKey is returned when sealing or opening is attempted before
	// a key has been set.
	ErrNoKey = errors.New("no encryption key set")

	// ErrDecryptionFailed is returned when authenticated decryption
	// rejects a ciphertext.
	ErrDecryptionFailed = errors.New("decryption failed")
)

// A Vault holds one AEAD keyed from quantum bit material. Safe for
// concurrent use; SetKey replaces the key for all subsequent calls.
type Vault struct {
	mu      sync.Mutex
	aead    cipher.AEAD
	keyBits int
}

// NewVault returns a Vault with no key material installed.
func NewVault() *Vault {
	return &Vault{}
}

// SetKey derives a 256-bit AES key from bitstring, a sequence of at
// least KeyBits quantum-generated bits, and installs it. Derivation is
// Toeplitz extraction: a random-matrix universal hash compressing the
// raw bits into uniform key material. Returns the installed key length
// in bits.
func (v *Vault) SetKey(bitstring string) (int, error) {
	seq, err := bitseq.FromString(bitstring)
	if err != nil {
		return 0, fmt.Errorf("set_key: %w: %v", qrng.ErrInvalidInput, err)
	}
	if seq.Len() < KeyBits {
		return 0, fmt.Errorf("set_key: %w: need at least %d bits of key material, got %d", qrng.ErrInvalidInput, KeyBits, seq.Len())
	}

	key, err := extract(seq)
	if err != nil {
		return 0, fmt.Errorf("set_key: extracting key: %w", err)
	}
	block, err := aes.NewCipher(key)
	if err != nil {
		return 0, fmt.Errorf("set_key: %w", err)
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return 0, fmt.Errorf("set_key: %w", err)
	}

	v.mu.Lock()
	v.aead = aead
	v.keyBits = KeyBits
	v.mu.Unlock()
	return KeyBits, nil
}

// KeyBits reports the length of the installed key, or 0 if none is set.
func (v *Vault) KeyBits() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.keyBits
}

// Encrypt seals message under the installed key with a fresh random
// nonce, returning the nonce and ciphertext (tag included).
func (v *Vault) Encrypt(message []byte) (nonce, ciphertext []byte, err error) {
	aead, err := v.cipher()
	if err != nil {
		return nil, nil, err
	}
	nonce = make([]byte, NonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, fmt.Errorf("encrypt: generating nonce: %w", err)
	}
	return nonce, aead.Seal(nil, nonce, message, nil), nil
}

// Decrypt opens a ciphertext produced by Encrypt. The round trip
// Decrypt(Encrypt(m)) == m is bit-exact; any tampering yields
// ErrDecryptionFailed.
func (v *Vault) Decrypt(nonce, ciphertext []byte) ([]byte, error) {
	aead, err := v.cipher()
	if err != nil {
		return nil, err
	}
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("decrypt: %w: nonce must be %d bytes, got %d", qrng.ErrInvalidInput, NonceSize, len(nonce))
	}
	message, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrDecryptionFailed
	}
	return message, nil
}

func (v *Vault) cipher() (cipher.AEAD, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.aead == nil {
		return nil, ErrNoKey
	}
	return v.aead, nil
}

// extract compresses seq into KeyBits bits through a freshly drawn
// random toeplitz matrix.
func extract(seq bitseq.Bits) ([]byte, error) {
	diags := make([]byte, bitseq.BytesFor(KeyBits+seq.Len()-1))
	if _, err := rand.Read(diags); err != nil {
		return nil, err
	}
	t := toeplitz{
		diags: bitseq.New(diags, KeyBits+seq.Len()-1),
		m:     KeyBits,
		n:     seq.Len(),
	}
	key, err := t.Mul(seq)
	if err != nil {
		return nil, err
	}
	return key.Data(), nil
}
