package domain

import (
	"fmt"
	"net/netip"
)

// AddressBlock is an IPv4 network expressed as a base address plus prefix
// length. The zero value is invalid and is used to mean "no block", e.g. an
// egress rule that carries only an IPv6 target.
type AddressBlock struct {
	prefix netip.Prefix
}

// ParseAddressBlock parses an IPv4 CIDR literal. Malformed or non-IPv4 input
// is a hard error; providers hand us CIDR strings, and a literal that does
// not parse means the upstream data is broken, not that a rule mismatched.
func ParseAddressBlock(s string) (AddressBlock, error) {
	prefix, err := netip.ParsePrefix(s)
	if err != nil {
		return AddressBlock{}, fmt.Errorf("parse cidr %q: %w", s, err)
	}
	if !prefix.Addr().Is4() {
		return AddressBlock{}, fmt.Errorf("parse cidr %q: not an IPv4 block", s)
	}
	return AddressBlock{prefix: prefix.Masked()}, nil
}

// MustParseAddressBlock is ParseAddressBlock for literals known at compile
// time; it panics on error.
func MustParseAddressBlock(s string) AddressBlock {
	block, err := ParseAddressBlock(s)
	if err != nil {
		panic(err)
	}
	return block
}

// IsValid reports whether the block holds a parsed network.
func (b AddressBlock) IsValid() bool {
	return b.prefix.IsValid()
}

// Contains reports whether every address in inner is also in b.
func (b AddressBlock) Contains(inner AddressBlock) bool {
	if !b.prefix.IsValid() || !inner.prefix.IsValid() {
		return false
	}
	return inner.prefix.Bits() >= b.prefix.Bits() && b.prefix.Contains(inner.prefix.Addr())
}

func (b AddressBlock) String() string {
	if !b.prefix.IsValid() {
		return ""
	}
	return b.prefix.String()
}
