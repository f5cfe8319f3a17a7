package publish

import "fmt"

// Destination identifies where and under what address pattern an element is
// sent. It is a plain value type and is used directly as the registry key.
//
// Equality covers all four fields, so a unicast and a multicast destination
// sharing (IP, Port, Address) are distinct registry entries. Less orders by
// (IP, Port, Address) only and deliberately ignores Multicast; tick
// iteration breaks the resulting tie on the flag so ordering stays
// deterministic.
type Destination struct {
	IP        string
	Port      uint16
	Address   string
	Multicast bool
}

// NewDestination returns a unicast destination.
func NewDestination(ip string, port uint16, addr string) Destination {
	return Destination{IP: ip, Port: port, Address: addr}
}

// NewMulticastDestination returns a multicast destination.
func NewMulticastDestination(group string, port uint16, addr string) Destination {
	return Destination{IP: group, Port: port, Address: addr, Multicast: true}
}

// Equal reports full field equality, including the multicast flag.
func (d Destination) Equal(o Destination) bool { return d == o }

// Less is a strict weak ordering on (IP, Port, Address). The multicast flag
// does not participate.
func (d Destination) Less(o Destination) bool {
	if d.IP != o.IP {
		return d.IP < o.IP
	}
	if d.Port != o.Port {
		return d.Port < o.Port
	}
	return d.Address < o.Address
}

// String implements fmt.Stringer.
func (d Destination) String() string {
	mode := "udp"
	if d.Multicast {
		mode = "udp-mc"
	}
	return fmt.Sprintf("%s://%s:%d%s", mode, d.IP, d.Port, d.Address)
}
