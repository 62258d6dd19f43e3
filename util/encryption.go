package util

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"math/big"
)

// ErrCipherTooShort is returned when the encrypted data is shorter than the nonce
var ErrCipherTooShort = errors.New("ciphertext too short")

func newGCM(pass []byte) (cipher.AEAD, error) {
	// Derive a fixed-size key so any passphrase length is acceptable
	key := sha256.Sum256(pass)
	block, err := aes.NewCipher(key[:])
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Encrypt the given plain text with AES-GCM and return it base64 encoded
func Encrypt(plain string, pass []byte) (string, error) {
	gcm, err := newGCM(pass)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err = rand.Read(nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nonce, nonce, []byte(plain), nil)
	return base64.URLEncoding.EncodeToString(sealed), nil
}

// Decrypt the given base64 encoded cipher text
func Decrypt(data string, pass []byte) (string, error) {
	gcm, err := newGCM(pass)
	if err != nil {
		return "", err
	}
	sealed, err := base64.URLEncoding.DecodeString(data)
	if err != nil {
		return "", err
	}
	if len(sealed) < gcm.NonceSize() {
		return "", ErrCipherTooShort
	}
	plain, err := gcm.Open(nil, sealed[:gcm.NonceSize()], sealed[gcm.NonceSize():], nil)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}

// EncryptJSON marshals the given value and encrypts it
func EncryptJSON(v interface{}, pass string) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return Encrypt(string(b), []byte(pass))
}

// DecryptJSON decrypts the given data and unmarshals it into v
func DecryptJSON(data, pass string, v interface{}) error {
	plain, err := Decrypt(data, []byte(pass))
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(plain), v)
}

const (
	alphaDictionary        = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"
	alphaNumericDictionary = alphaDictionary + "0123456789"
)

// SecureRandomString returns a random string of size strSize based on crypto/rand
func SecureRandomString(strSize int, alphaOnly bool) string {
	dictionary := alphaNumericDictionary
	if alphaOnly {
		dictionary = alphaDictionary
	}
	res := make([]byte, strSize)
	for i := range res {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(dictionary))))
		if err != nil {
			// crypto/rand failing means the platform is broken
			panic(err)
		}
		res[i] = dictionary[n.Int64()]
	}
	return string(res)
}
