package credentials

import (
	"crypto/rand"
	"math/big"
	"strings"
)

const accessCodeCharset = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateAccessCode generates a random child login code in the format
// XXXX-XXXX using digits and uppercase letters.
func GenerateAccessCode() (string, error) {
	chars := make([]byte, 8)
	for i := range chars {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(accessCodeCharset))))
		if err != nil {
			return "", err
		}
		chars[i] = accessCodeCharset[num.Int64()]
	}

	return string(chars[:4]) + "-" + string(chars[4:]), nil
}

// NormalizeAccessCode prepares a user-entered code for comparison:
// surrounding whitespace is trimmed and letters are uppercased, so codes
// match regardless of how the child typed them.
func NormalizeAccessCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
