package publish

import "testing"

func TestDestinationEquality(t *testing.T) {
	base := NewDestination("10.0.0.5", 9000, "/x")

	if !base.Equal(NewDestination("10.0.0.5", 9000, "/x")) {
		t.Error("identical destinations must be equal")
	}

	variants := []Destination{
		NewDestination("10.0.0.6", 9000, "/x"),
		NewDestination("10.0.0.5", 9001, "/x"),
		NewDestination("10.0.0.5", 9000, "/y"),
		NewMulticastDestination("10.0.0.5", 9000, "/x"),
	}
	for _, v := range variants {
		if base.Equal(v) {
			t.Errorf("%v should not equal %v", base, v)
		}
	}
}

func TestDestinationLessIsStrictWeakOrdering(t *testing.T) {
	a := NewDestination("10.0.0.1", 9000, "/a")
	b := NewDestination("10.0.0.1", 9000, "/b")
	c := NewDestination("10.0.0.1", 9001, "/a")
	d := NewDestination("10.0.0.2", 8000, "/a")

	ordered := []Destination{a, b, c, d}
	for i := 0; i < len(ordered); i++ {
		if ordered[i].Less(ordered[i]) {
			t.Errorf("%v.Less(itself) must be false", ordered[i])
		}
		for j := i + 1; j < len(ordered); j++ {
			if !ordered[i].Less(ordered[j]) {
				t.Errorf("%v should order before %v", ordered[i], ordered[j])
			}
			if ordered[j].Less(ordered[i]) {
				t.Errorf("%v should not order before %v", ordered[j], ordered[i])
			}
		}
	}
}

func TestDestinationLessIgnoresMulticast(t *testing.T) {
	uni := NewDestination("239.0.0.1", 9000, "/x")
	mc := NewMulticastDestination("239.0.0.1", 9000, "/x")

	if uni.Less(mc) || mc.Less(uni) {
		t.Error("multicast flag must not participate in ordering")
	}
	if uni.Equal(mc) {
		t.Error("multicast flag must participate in equality")
	}
}

func TestSortDestinationsDeterministicTieBreak(t *testing.T) {
	mc := NewMulticastDestination("239.0.0.1", 9000, "/x")
	uni := NewDestination("239.0.0.1", 9000, "/x")

	dests := []Destination{mc, uni}
	sortDestinations(dests)

	if dests[0].Multicast || !dests[1].Multicast {
		t.Errorf("unicast should sort before multicast on a Less tie, got %v", dests)
	}
}

func TestDestinationString(t *testing.T) {
	if got := NewDestination("10.0.0.5", 9000, "/x").String(); got != "udp://10.0.0.5:9000/x" {
		t.Errorf("String() = %q", got)
	}
	if got := NewMulticastDestination("239.0.0.1", 9000, "/x").String(); got != "udp-mc://239.0.0.1:9000/x" {
		t.Errorf("String() = %q", got)
	}
}
