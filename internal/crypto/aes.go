package crypto

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"
	"os"
	"os/user"

	"golang.org/x/crypto/hkdf"
)

const keySize = 32

var hkdfInfo = []byte("pdfmailer settings v1")

// Crypter encrypts and decrypts data using AES-256-GCM.
type Crypter struct {
	key []byte
}

// New creates a Crypter. key must be exactly 32 bytes.
func New(key []byte) *Crypter {
	if len(key) != keySize {
		panic("crypto: key must be 32 bytes")
	}
	return &Crypter{key: key}
}

// DeriveKey stretches secret into a 32-byte AES key with HKDF-SHA256.
func DeriveKey(secret string) []byte {
	r := hkdf.New(sha256.New, []byte(secret), nil, hkdfInfo)
	key := make([]byte, keySize)
	if _, err := io.ReadFull(r, key); err != nil {
		// hkdf only fails after 255*HashLen bytes
		panic(err)
	}
	return key
}

// MachineSecret returns a stable per-machine, per-user secret used when no
// SETTINGS_ENCRYPTION_KEY is configured. It keeps the SMTP password out of
// the database in clear text, but it is not a substitute for a real key.
func MachineSecret() string {
	hostname, _ := os.Hostname()
	name := os.Getenv("USER")
	if u, err := user.Current(); err == nil {
		name = u.Username
	}
	return hostname + "\x00" + name + "\x00pdfmailer"
}

// Encrypt encrypts plaintext using AES-256-GCM and returns ciphertext with
// the nonce prepended.
func (c *Crypter) Encrypt(plaintext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// Decrypt decrypts ciphertext produced by Encrypt.
func (c *Crypter) Decrypt(ciphertext []byte) ([]byte, error) {
	gcm, err := c.gcm()
	if err != nil {
		return nil, err
	}
	if len(ciphertext) < gcm.NonceSize() {
		return nil, errors.New("crypto: ciphertext too short")
	}
	nonce, ciphertext := ciphertext[:gcm.NonceSize()], ciphertext[gcm.NonceSize():]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func (c *Crypter) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(c.key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
