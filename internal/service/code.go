package service

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"github.com/prep-study/pronto/internal/constants"
)

// GenerateCode returns a random one-time code of the given length drawn from
// the verification code alphabet.
func GenerateCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("invalid code length %d", length)
	}

	max := big.NewInt(int64(len(constants.CodeCharset)))
	code := make([]byte, length)
	for i := range code {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to generate verification code: %w", err)
		}
		code[i] = constants.CodeCharset[n.Int64()]
	}

	return string(code), nil
}
