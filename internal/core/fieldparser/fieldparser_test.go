package fieldparser

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
		ok    bool
	}{
		{"plain", "42", 42, true},
		{"trimmed", "  7 ", 7, true},
		{"thousands with space", "1 200", 1200, true},
		{"thousands with nbsp", "1\u00a0200", 1200, true},
		{"negative", "-1", -1, true},
		{"empty", "", 0, false},
		{"blank", "   ", 0, false},
		{"letters", "abc", 0, false},
		{"decimal", "3.5", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseInt(tt.input)
			value, ok := got.Get()
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, value)
			}
		})
	}
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		ok    bool
	}{
		{"integer", "450", "450", true},
		{"comma decimal", "54,5", "54.5", true},
		{"dot decimal", "54.50", "54.5", true},
		{"thousands and comma", "1 250,75", "1250.75", true},
		{"dot thousands, comma decimal", "1.250,50", "1250.5", true},
		{"comma thousands, dot decimal", "1,250.50", "1250.5", true},
		{"trailing zeros", "150000.00", "150000", true},
		{"empty", "", "", false},
		{"garbage", "n/a", "", false},
		{"exponent rejected", "1e5", "", false},
		{"two commas", "1,2,3", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			value, ok := ParseDecimal(tt.input).Get()
			require.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.want, value.String())
			}
		})
	}
}

func TestStripNonNumeric(t *testing.T) {
	assert.Equal(t, "1200", StripNonNumeric("1 200 €/mėn."))
	assert.Equal(t, "54,5", StripNonNumeric("54,5 m²"))
	assert.Equal(t, "", StripNonNumeric("Kaina sutartinė"))
}

func TestParseText(t *testing.T) {
	value, ok := ParseText("  Centrinis  ").Get()
	assert.True(t, ok)
	assert.Equal(t, "Centrinis", value)

	assert.False(t, ParseText(" \n\t ").IsPresent())
}

func TestSplitAddress(t *testing.T) {
	district, street := SplitAddress("Vilnius, Antakalnis, Antakalnio g.", 1, 2)
	assert.Equal(t, "Antakalnis", district.OrElse(""))
	assert.Equal(t, "Antakalnio g.", street.OrElse(""))

	district, street = SplitAddress("Vilnius, Žirmūnai", 1, 2)
	assert.Equal(t, "Žirmūnai", district.OrElse(""))
	assert.False(t, street.IsPresent())

	district, street = SplitAddress("Vilnius", 1, 2)
	assert.False(t, district.IsPresent())
	assert.False(t, street.IsPresent())

	district, street = SplitAddress("Vilnius, , Gedimino pr.", 1, 2)
	assert.False(t, district.IsPresent())
	assert.Equal(t, "Gedimino pr.", street.OrElse(""))

	district, street = SplitAddress("", 1, 2)
	assert.False(t, district.IsPresent())
	assert.False(t, street.IsPresent())
}

func TestNormalizePrice_Idempotent(t *testing.T) {
	for _, raw := range []string{"150000.00", "150000", "0.10", "1234.5600", "-3.000"} {
		x := decimal.RequireFromString(raw)
		once := NormalizePrice(x)
		twice := NormalizePrice(once)
		assert.True(t, once.Equal(x), raw)
		assert.Equal(t, once.String(), twice.String(), raw)
		assert.Equal(t, once.Exponent(), twice.Exponent(), raw)
	}
	assert.Equal(t, int32(0), NormalizePrice(decimal.RequireFromString("150000.00")).Exponent())
}
