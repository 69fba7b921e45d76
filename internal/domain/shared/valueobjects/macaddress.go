// Package valueobjects provides shared value objects for the domain layer.
package valueobjects

import (
	"fmt"
	"net"
	"strings"
)

// MACAddress is a 6-byte hardware address. The canonical text form is
// lowercase colon-separated hex ("aa:bb:cc:dd:ee:ff").
type MACAddress struct {
	value string
}

// ParseMACAddress parses any form net.ParseMAC accepts and normalizes it.
func ParseMACAddress(s string) (MACAddress, error) {
	hw, err := net.ParseMAC(s)
	if err != nil {
		return MACAddress{}, fmt.Errorf("invalid MAC address %q: %w", s, err)
	}
	if len(hw) != 6 {
		return MACAddress{}, fmt.Errorf("invalid MAC address %q: expected 6 bytes, got %d", s, len(hw))
	}
	return MACAddress{value: strings.ToLower(hw.String())}, nil
}

// MustParseMACAddress parses or panics. For tests and constants only.
func MustParseMACAddress(s string) MACAddress {
	mac, err := ParseMACAddress(s)
	if err != nil {
		panic(err)
	}
	return mac
}

func (m MACAddress) String() string {
	return m.value
}

// IsZero reports whether the address is the unset zero value.
func (m MACAddress) IsZero() bool {
	return m.value == ""
}

func (m MACAddress) MarshalText() ([]byte, error) {
	return []byte(m.value), nil
}

func (m *MACAddress) UnmarshalText(text []byte) error {
	parsed, err := ParseMACAddress(string(text))
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
