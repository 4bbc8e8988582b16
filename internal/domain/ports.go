package domain

// PortRange is an inclusive range of ports.
type PortRange struct {
	From uint16
	To   uint16
}

// NewPortRange builds a range from the provider's port bounds. A bound of -1
// means the rule applies to all ports (ICMP and all-protocol rules) and is
// widened to the corresponding end of the full range.
func NewPortRange(from, to int) PortRange {
	if from == -1 {
		from = 0
	}
	if to == -1 {
		to = 65535
	}
	return PortRange{From: uint16(from), To: uint16(to)}
}

// Contains reports whether port falls inside the range.
func (r PortRange) Contains(port uint16) bool {
	return port >= r.From && port <= r.To
}
