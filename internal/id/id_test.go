package id

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatLink(t *testing.T) {
	tests := []struct {
		bank, ref string
		want      string
	}{
		{"SEB", "2024010500123", "seb-2024010500123"},
		{"seb", " RO123 ", "seb-RO123"},
		{"SEB", "12 34#5", "seb-12345"},
		{"SEB", "", ""},
		{"SEB", "   ", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLink(tt.bank, tt.ref), "FormatLink(%q, %q)", tt.bank, tt.ref)
	}
}

func TestParseLink(t *testing.T) {
	bank, ref, err := ParseLink("seb-2024010500123")
	require.NoError(t, err)
	assert.Equal(t, "seb", bank)
	assert.Equal(t, "2024010500123", ref)

	bank, ref, err = ParseLink("^seb-RO-1")
	require.NoError(t, err)
	assert.Equal(t, "seb", bank)
	assert.Equal(t, "RO-1", ref)
}

func TestParseLink_Invalid(t *testing.T) {
	invalid := []string{"", "seb", "-123", "seb-"}
	for _, link := range invalid {
		_, _, err := ParseLink(link)
		assert.Error(t, err, "ParseLink(%q) should fail", link)
	}
}

func TestRoundTrip(t *testing.T) {
	link := FormatLink("SEB", "RO998877")
	bank, ref, err := ParseLink(link)
	require.NoError(t, err)
	assert.Equal(t, "seb", bank)
	assert.Equal(t, "RO998877", ref)
}
