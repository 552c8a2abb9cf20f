// Package otp generates and checks one-time verification codes. Codes are
// numeric, produced from crypto/rand, and only their bcrypt hash is ever
// persisted.
package otp

import (
	"crypto/rand"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultLength = 6
	maxLength     = 10
)

// Generator produces verification codes of a fixed length.
type Generator struct {
	length     int
	bcryptCost int
}

// NewGenerator builds a generator, clamping the configured length to a sane
// range.
func NewGenerator(length, bcryptCost int) *Generator {
	if length <= 0 {
		length = defaultLength
	}
	if length > maxLength {
		length = maxLength
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &Generator{length: length, bcryptCost: bcryptCost}
}

var ten = big.NewInt(10)

// Code returns a fresh numeric code. Leading zeros are allowed, so the code
// is a string, never an integer.
func (g *Generator) Code() (string, error) {
	digits := make([]byte, g.length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, ten)
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}

// Hash returns the bcrypt hash to persist for a code.
func (g *Generator) Hash(code string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(code), g.bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Matches reports whether a submitted code matches a stored hash.
func Matches(hash, code string) bool {
	if hash == "" || code == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(code)) == nil
}
