package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"e164 mobile", "+5511987654321", "+5511987654321"},
		{"formatted with country code", "+55 (11) 98765-4321", "+5511987654321"},
		{"national format", "(11) 98765-4321", "+5511987654321"},
		{"leading and trailing spaces", "  11 98765 4321  ", "+5511987654321"},
		{"foreign number", "+1 650 253 0000", "+16502530000"},
		{"empty string", "", ""},
		{"only whitespace", "   ", ""},
		{"too short", "12345", ""},
		{"letters", "call me", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input, "")
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, NormalizePhone(got, ""), "must be idempotent")
		})
	}
}

func TestNormalizePhoneRegion(t *testing.T) {
	assert.Equal(t, "+351912345678", NormalizePhone("912 345 678", "PT"))
	assert.Equal(t, "", NormalizePhone("912 345 678", "BR"))
	assert.Equal(t, "+5511987654321", NormalizePhone("+55 11 98765-4321", "PT"))
}

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"trim spaces", "  Distribuidora Sul  ", "Distribuidora Sul"},
		{"multiple spaces between words", "Distribuidora    Sul", "Distribuidora Sul"},
		{"tabs and newlines", "Distribuidora\t\nSul", "Distribuidora Sul"},
		{"empty string", "", ""},
		{"only whitespace", "   \t\n  ", ""},
		{"preserve accents and symbols", " Padaria São João & Cia ", "Padaria São João & Cia"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "pallets: 3\nuse dock B", NormalizeText("  pallets:   3 \n use dock  B  "))
	assert.Equal(t, "", NormalizeText("   "))
}

func TestNormalizeDocument(t *testing.T) {
	assert.Equal(t, "12345678000195", NormalizeDocument("12.345.678/0001-95"))
	assert.Equal(t, "12345678909", NormalizeDocument("123.456.789-09"))
	assert.Equal(t, "", NormalizeDocument("n/a"))
}
