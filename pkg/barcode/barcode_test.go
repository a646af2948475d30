package barcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/backoffice-api/pkg/barcode"
)

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"4901234567894":                     "04901234567894", // EAN-13
		" 96385074 ":                        "00000096385074", // EAN-8
		"036000291452":                      "00036000291452", // UPC-A
		"04901234567894":                    "04901234567894",
		"0104901234567894172801001012345":   "04901234567894", // GS1 con AI(17) y AI(10)
		"(01)04901234567894(10)ABC":         "04901234567894",
		"(01)04901234567894(17)280100":      "04901234567894",
		"SKU-001":                           "SKU-001",
		"1234":                              "1234",
	}
	for in, want := range cases {
		assert.Equal(t, want, barcode.Normalize(in), in)
	}
}

func TestGTIN(t *testing.T) {
	assert.True(t, barcode.GTIN("04901234567894"))
	assert.True(t, barcode.GTIN(barcode.Normalize("036000291452")))
	assert.False(t, barcode.GTIN("04901234567895"))
	assert.False(t, barcode.GTIN("SKU-001"))
}

func TestValid(t *testing.T) {
	assert.True(t, barcode.Valid("SKU-001"))
	assert.True(t, barcode.Valid(barcode.Normalize("7501234567893")))
	assert.False(t, barcode.Valid(barcode.Normalize("7501234567894")))
	assert.False(t, barcode.Valid(""))
}
