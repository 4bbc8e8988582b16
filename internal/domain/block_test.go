package domain

import "testing"

func TestParseAddressBlock(t *testing.T) {
	block, err := ParseAddressBlock("172.31.0.0/16")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !block.IsValid() {
		t.Error("expected valid block")
	}
	if block.String() != "172.31.0.0/16" {
		t.Errorf("expected 172.31.0.0/16, got %s", block)
	}
}

func TestParseAddressBlock_Masked(t *testing.T) {
	block, err := ParseAddressBlock("10.1.2.3/8")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if block.String() != "10.0.0.0/8" {
		t.Errorf("expected masked network 10.0.0.0/8, got %s", block)
	}
}

func TestParseAddressBlock_Malformed(t *testing.T) {
	for _, s := range []string{"", "not-a-cidr", "172.31.0.0", "172.31.0.0/33", "300.0.0.0/8"} {
		if _, err := ParseAddressBlock(s); err == nil {
			t.Errorf("expected error for %q, got nil", s)
		}
	}
}

func TestParseAddressBlock_RejectsIPv6(t *testing.T) {
	if _, err := ParseAddressBlock("fd00::/8"); err == nil {
		t.Error("expected error for IPv6 block, got nil")
	}
}

func TestAddressBlockContains(t *testing.T) {
	outer := MustParseAddressBlock("172.31.0.0/16")

	if !outer.Contains(MustParseAddressBlock("172.31.0.10/32")) {
		t.Error("expected /16 to contain host inside it")
	}
	if !outer.Contains(MustParseAddressBlock("172.31.128.0/18")) {
		t.Error("expected /16 to contain /18 inside it")
	}
	if !outer.Contains(outer) {
		t.Error("expected block to contain itself")
	}
	if outer.Contains(MustParseAddressBlock("172.30.0.10/32")) {
		t.Error("expected host outside the network to be excluded")
	}
	if outer.Contains(MustParseAddressBlock("172.0.0.0/8")) {
		t.Error("expected wider prefix to be excluded")
	}
}

func TestAddressBlockContains_AllTraffic(t *testing.T) {
	anywhere := MustParseAddressBlock("0.0.0.0/0")
	if !anywhere.Contains(MustParseAddressBlock("172.31.128.10/32")) {
		t.Error("expected 0.0.0.0/0 to contain every host")
	}
}

func TestAddressBlockContains_ZeroValue(t *testing.T) {
	var absent AddressBlock
	host := MustParseAddressBlock("10.0.0.1/32")

	if absent.IsValid() {
		t.Error("expected zero value to be invalid")
	}
	if absent.Contains(host) || host.Contains(absent) {
		t.Error("expected containment with the zero value to be false")
	}
	if absent.String() != "" {
		t.Errorf("expected empty string, got %q", absent.String())
	}
}
