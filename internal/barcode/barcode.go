// Package barcode generates and validates the retail barcodes printed on
// pharmacy stock: EAN-13, UPC-A and a free-form Code 128 value.
package barcode

import (
	"fmt"
	"math/rand/v2"
	"sync"
)

// Kind names a symbology.
type Kind string

const (
	EAN13   Kind = "ean13"
	UPCA    Kind = "upca"
	Code128 Kind = "code128"
)

const code128Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Generator produces random but well-formed barcodes. It is safe for
// concurrent use.
type Generator struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewGenerator seeds a generator. Pass nil for a randomly seeded one.
func NewGenerator(rnd *rand.Rand) *Generator {
	if rnd == nil {
		rnd = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Generator{rnd: rnd}
}

// EAN13 returns a 13-digit code with a 400-409 prefix and a valid check digit.
func (g *Generator) EAN13() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	body := fmt.Sprintf("40%d%05d%04d", g.rnd.IntN(10), g.rnd.IntN(100000), g.rnd.IntN(10000))
	return body + string(rune('0'+checkDigit(body, 1, 3)))
}

// UPCA returns a 12-digit code starting with 0 and a valid check digit.
func (g *Generator) UPCA() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	body := fmt.Sprintf("0%05d%05d", g.rnd.IntN(100000), g.rnd.IntN(100000))
	return body + string(rune('0'+checkDigit(body, 3, 1)))
}

// Code128 returns 12 random upper-case alphanumerics.
func (g *Generator) Code128() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	b := make([]byte, 12)
	for i := range b {
		b[i] = code128Alphabet[g.rnd.IntN(len(code128Alphabet))]
	}
	return string(b)
}

// Generate dispatches on kind; unknown kinds fall back to EAN-13.
func (g *Generator) Generate(kind Kind) string {
	switch kind {
	case UPCA:
		return g.UPCA()
	case Code128:
		return g.Code128()
	default:
		return g.EAN13()
	}
}

// ValidEAN13 reports whether code is 13 digits with a correct check digit.
func ValidEAN13(code string) bool {
	return len(code) == 13 && allDigits(code) && int(code[12]-'0') == checkDigit(code[:12], 1, 3)
}

// ValidUPCA reports whether code is 12 digits with a correct check digit.
func ValidUPCA(code string) bool {
	return len(code) == 12 && allDigits(code) && int(code[11]-'0') == checkDigit(code[:11], 3, 1)
}

// checkDigit weights digits alternately, starting with even at position 0.
func checkDigit(digits string, even, odd int) int {
	sum := 0
	for i := 0; i < len(digits); i++ {
		w := odd
		if i%2 == 0 {
			w = even
		}
		sum += int(digits[i]-'0') * w
	}
	return (10 - sum%10) % 10
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
