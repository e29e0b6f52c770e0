package netlist_test

import (
	"testing"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// TestPortsAreNameSorted checks that iterating a module's ports, inputs,
// outputs or wires is always in sorted name order, regardless of
// declaration order.
func TestPortsAreNameSorted(t *testing.T) {
	m := netlist.NewModule("m")
	m.AddInput(netlist.NewWire("zeta"))
	m.AddInput(netlist.NewWire("alpha"))
	m.AddOutput(netlist.NewWire("omega"))
	m.AddOutput(netlist.NewWire("beta"))

	wantInputs := []string{"alpha", "zeta"}
	if got := names(m.Inputs()); !sameStrings(got, wantInputs) {
		t.Errorf("Inputs() = %v, want %v", got, wantInputs)
	}
	wantPorts := []string{"alpha", "beta", "omega", "zeta"}
	if got := names(m.Ports()); !sameStrings(got, wantPorts) {
		t.Errorf("Ports() = %v, want %v", got, wantPorts)
	}
}

func TestGateIDsPreserveInsertionOrder(t *testing.T) {
	m := netlist.NewModule("m")
	m.PushGate("u3", netlist.GateInstance{Cell: "AN2"})
	m.PushGate("u1", netlist.GateInstance{Cell: "OR2"})
	m.PushGate("u2", netlist.GateInstance{Cell: "IV"})

	got := m.GateIDs()
	want := []string{"u3", "u1", "u2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("GateIDs() = %v, want %v", got, want)
		}
	}
}

func TestCloneIsIndependent(t *testing.T) {
	m := netlist.NewModule("m")
	m.AddInput(netlist.NewWire("a"))
	m.PushGate("u1", netlist.GateInstance{
		Cell:     "AN2",
		Bindings: []netlist.PortBinding{netlist.WireBinding("A", "a")},
	})
	m.AddAssign("b", "a")

	clone := m.Clone()
	clone.AddInput(netlist.NewWire("c"))
	clone.MutateGate("u1", func(g *netlist.GateInstance) { g.RebindWire("A", "zz") })
	clone.AddAssign("d", "c")

	if m.IsInput("c") {
		t.Error("mutating the clone's inputs should not affect the original")
	}
	origGate, _ := m.Gate("u1")
	b, _ := origGate.BindingByPort("A")
	if b.Wire != "a" {
		t.Errorf("mutating the clone's gate should not affect the original, got %s", b.Wire)
	}
	if len(m.Assigns()) != 1 {
		t.Errorf("mutating the clone's assigns should not affect the original, got %d", len(m.Assigns()))
	}
}

func TestCloneWithNameSuffix(t *testing.T) {
	m := netlist.NewModule("m")
	c := m.CloneWithNameSuffix("_c1")
	if c.Name() != "m_c1" {
		t.Errorf("Name() = %s, want m_c1", c.Name())
	}
	if m.Name() != "m" {
		t.Errorf("original module name should be unchanged, got %s", m.Name())
	}
}

func TestToGateBindsPortsToIdenticallyNamedWires(t *testing.T) {
	m := netlist.NewModule("m")
	m.AddInput(netlist.NewWire("b"))
	m.AddInput(netlist.NewWire("a"))
	m.AddOutput(netlist.NewWire("q"))

	g := m.ToGate()
	if g.Cell != "m" {
		t.Errorf("Cell = %s, want m", g.Cell)
	}
	want := []string{"a", "b", "q"}
	if len(g.Bindings) != len(want) {
		t.Fatalf("Bindings = %+v, want %d entries", g.Bindings, len(want))
	}
	for i, port := range want {
		b := g.Bindings[i]
		if b.Port != port || b.Wire != port {
			t.Errorf("Bindings[%d] = %+v, want port/wire %s", i, b, port)
		}
	}
}

func TestNetlistPreservesPushOrder(t *testing.T) {
	nl := netlist.NewNetlist()
	nl.PushModule(netlist.NewModule("top"))
	nl.PushModule(netlist.NewModule("c1"))
	nl.PushModule(netlist.NewModule("c2"))

	got := names2(nl.Modules())
	want := []string{"top", "c1", "c2"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Modules() order = %v, want %v", got, want)
		}
	}
}

func names(ws []netlist.Wire) []string {
	out := make([]string, len(ws))
	for i, w := range ws {
		out[i] = w.Name
	}
	return out
}

func names2(ms []*netlist.Module) []string {
	out := make([]string, len(ms))
	for i, m := range ms {
		out[i] = m.Name()
	}
	return out
}

func sameStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
