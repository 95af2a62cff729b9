package utils

import "math/rand"

const (
	CodeLength   = 6
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// GenerateCode returns a random join code. Uniqueness is checked by the caller.
func GenerateCode() string {
	code := make([]byte, CodeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.Intn(len(codeAlphabet))] // #nosec G404 -- join codes are not secrets
	}
	return string(code)
}

func IsValidCode(code string) bool {
	if len(code) != CodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if (c < 'A' || c > 'Z') && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
