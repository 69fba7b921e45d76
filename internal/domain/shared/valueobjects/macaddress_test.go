package valueobjects

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMACAddressNormalizes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"AA:BB:CC:DD:EE:FF", "aa:bb:cc:dd:ee:ff"},
		{"aa-bb-cc-dd-ee-ff", "aa:bb:cc:dd:ee:ff"},
		{"aabb.ccdd.eeff", "aa:bb:cc:dd:ee:ff"},
	}

	for _, tt := range tests {
		mac, err := ParseMACAddress(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.want, mac.String())
	}
}

func TestParseMACAddressRejectsInvalid(t *testing.T) {
	for _, input := range []string{"", "not-a-mac", "aa:bb:cc:dd:ee", "01:23:45:67:89:ab:cd:ef"} {
		_, err := ParseMACAddress(input)
		assert.Error(t, err, input)
	}
}

func TestMACAddressIsZero(t *testing.T) {
	var zero MACAddress
	assert.True(t, zero.IsZero())
	assert.False(t, MustParseMACAddress("aa:bb:cc:dd:ee:ff").IsZero())
}

func TestMACAddressTextRoundTrip(t *testing.T) {
	mac := MustParseMACAddress("AA:BB:CC:DD:EE:FF")

	text, err := mac.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "aa:bb:cc:dd:ee:ff", string(text))

	var decoded MACAddress
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, mac, decoded)
}
