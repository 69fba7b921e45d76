package services

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const tokenLength = 32

const (
	tokenUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	tokenLowercase = "abcdefghijklmnopqrstuvwxyz"
	tokenDigits    = "0123456789"
	tokenSpecial   = "!@#$%^&*()_+-=[]{}|;:,.<>?"
)

// TokenGenerator creates agent secrets. The token doubles as the HMAC key of
// the handshake, so it always mixes all four character classes.
type TokenGenerator interface {
	Generate() (string, error)
}

type DefaultTokenGenerator struct{}

func NewTokenGenerator() TokenGenerator {
	return &DefaultTokenGenerator{}
}

// Generate returns a 32-character token containing at least one uppercase
// letter, one lowercase letter, one digit and one special character.
func (g *DefaultTokenGenerator) Generate() (string, error) {
	charset := tokenUppercase + tokenLowercase + tokenDigits + tokenSpecial

	chars := make([]byte, 0, tokenLength)
	for _, class := range []string{tokenUppercase, tokenLowercase, tokenDigits, tokenSpecial} {
		c, err := randomByte(class)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}
	for len(chars) < tokenLength {
		c, err := randomByte(charset)
		if err != nil {
			return "", err
		}
		chars = append(chars, c)
	}

	if err := shuffle(chars); err != nil {
		return "", err
	}
	return string(chars), nil
}

func randomByte(charset string) (byte, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(charset))))
	if err != nil {
		return 0, fmt.Errorf("failed to generate random byte: %w", err)
	}
	return charset[n.Int64()], nil
}

func shuffle(b []byte) error {
	for i := len(b) - 1; i > 0; i-- {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(i+1)))
		if err != nil {
			return fmt.Errorf("failed to shuffle token: %w", err)
		}
		j := n.Int64()
		b[i], b[j] = b[j], b[i]
	}
	return nil
}
