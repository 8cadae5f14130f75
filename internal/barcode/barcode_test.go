package barcode

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidEAN13(t *testing.T) {
	assert.True(t, ValidEAN13("4006381333931"))
	assert.False(t, ValidEAN13("4006381333932"))
	assert.False(t, ValidEAN13("400638133393"))
	assert.False(t, ValidEAN13("40063813339a1"))
}

func TestValidUPCA(t *testing.T) {
	assert.True(t, ValidUPCA("036000291452"))
	assert.False(t, ValidUPCA("036000291453"))
	assert.False(t, ValidUPCA("0360002914521"))
}

func TestGeneratorProducesValidCodes(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))
	for i := 0; i < 200; i++ {
		ean := g.Generate(EAN13)
		assert.True(t, ValidEAN13(ean), ean)
		assert.Equal(t, "40", ean[:2])

		upc := g.Generate(UPCA)
		assert.True(t, ValidUPCA(upc), upc)

		c := g.Generate(Code128)
		assert.Len(t, c, 12)
		assert.Regexp(t, `^[A-Z0-9]{12}$`, c)
	}
}

func TestGeneratedLengths(t *testing.T) {
	g := NewGenerator(rand.New(rand.NewPCG(1, 2)))

	ean := g.EAN13()
	assert.Len(t, ean, 13)
	assert.True(t, ValidEAN13(ean), ean)

	upc := g.UPCA()
	assert.Len(t, upc, 12)
	assert.True(t, ValidUPCA(upc), upc)
}
