package util

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncryptRoundTrip(t *testing.T) {
	plain := "the quick brown fox jumped over the white fence"
	pass := []byte(`12345678901234567890123456789012`)
	ciph, err := Encrypt(plain, pass)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotContains(t, ciph, "fox", "Ciphertext must not contain the plaintext")
	plain1, err := Decrypt(ciph, pass)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, plain, plain1)
}

func TestEncryptShortKey(t *testing.T) {
	// Any passphrase length works because the key is derived
	ciph, err := Encrypt("secret", []byte("short"))
	if err != nil {
		t.Fatal(err)
	}
	plain, err := Decrypt(ciph, []byte("short"))
	assert.NoError(t, err)
	assert.Equal(t, "secret", plain)
}

func TestDecryptWithWrongKey(t *testing.T) {
	ciph, err := Encrypt("secret", []byte("right key"))
	if err != nil {
		t.Fatal(err)
	}
	_, err = Decrypt(ciph, []byte("wrong key"))
	assert.Error(t, err)
	_, err = Decrypt("AAAA", []byte("right key"))
	assert.Equal(t, ErrCipherTooShort, err)
}

func TestEncryptJSONRoundTrip(t *testing.T) {
	type payload struct {
		User string `json:"user"`
		When int64  `json:"when"`
	}
	pass := `12345678901234567890123456789012`
	ciph, err := EncryptJSON(payload{User: "alice", When: 42}, pass)
	if err != nil {
		t.Fatal(err)
	}
	var out payload
	if err = DecryptJSON(ciph, pass, &out); err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, "alice", out.User)
	assert.EqualValues(t, 42, out.When)
}

func TestSecureRandomStringAlphaOnly(t *testing.T) {
	str := SecureRandomString(50, true)
	assert.Len(t, str, 50)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z]+$`), str)
}

func TestSecureRandomStringAlphaNumeric(t *testing.T) {
	str := SecureRandomString(50, false)
	assert.Len(t, str, 50)
	assert.Regexp(t, regexp.MustCompile(`^[A-Za-z0-9]+$`), str)
}
