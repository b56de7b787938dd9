package helpers

import (
	"crypto/rand"
	"encoding/base64"
)

// KV key helpers

// KeyResetToken is the key holding the user id a password reset token belongs to
func KeyResetToken(token string) string {
	return "pwd:reset:token:" + token
}

// KeySession is the key holding the serialized session snapshot of a user
func KeySession(uid string) string {
	return "session:" + uid
}

// GenToken returns n random bytes encoded as unpadded base64url
func GenToken(n int) (string, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
