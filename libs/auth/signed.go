package auth

import (
	"crypto/hmac"
	"errors"
	"strings"
)

var ErrInvalidSignature = errors.New("invalid signature")

// SignValue returns value with an HMAC-SHA256 signature appended, suitable for
// cookie values.
func SignValue(value, secret string) string {
	return value + "." + hmacSHA256(value, secret)
}

// VerifyValue returns the original value if signed was produced by SignValue
// with the same secret.
func VerifyValue(signed, secret string) (string, error) {
	idx := strings.LastIndexByte(signed, '.')
	if idx <= 0 || idx == len(signed)-1 {
		return "", ErrInvalidSignature
	}
	value, sig := signed[:idx], signed[idx+1:]
	if !hmac.Equal([]byte(sig), []byte(hmacSHA256(value, secret))) {
		return "", ErrInvalidSignature
	}
	return value, nil
}
