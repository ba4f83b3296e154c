// Package otp генерирует одноразовые числовые коды.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	// Length число цифр в коде.
	Length = 6

	minCode = 100000
	maxCode = 999999
)

// Generate возвращает случайный шестизначный код без ведущих нулей.
func Generate() (string, error) {
	const op = "otp.Generate"
	n, err := rand.Int(rand.Reader, big.NewInt(maxCode-minCode+1))
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Sprintf("%d", n.Int64()+minCode), nil
}
