package expansion_test

import (
	"testing"

	"github.com/jihwankim/time-expansion/pkg/expansion"
	"github.com/jihwankim/time-expansion/pkg/netlist"
)

func buildS1Extracted(t *testing.T) (*expansion.ConfiguredModel, *expansion.ExtractedCombinationalPart) {
	t.Helper()
	cfg := minimalFFConfig("m", "clk")
	cm := expansion.NewConfiguredModel(cfg, buildS1())
	ex, err := expansion.Extract(cm)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	return cm, ex
}

// TestBroadsideS2 checks broadside expansion with use-primary-io=no.
func TestBroadsideS2(t *testing.T) {
	cm, ex := buildS1Extracted(t)
	cm.UsePrimaryIO = false

	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}

	top := bs.Top
	if !top.IsInput("a_c1") {
		t.Error("top should declare a_c1 as input")
	}
	if !top.IsInput("ppi_1_u1_c1") {
		t.Error("top should declare ppi_1_u1_c1 as input")
	}
	if top.IsInput("a_c2") {
		t.Error("a_c2 should be a wire, not a top input, when use-primary-io=no")
	}
	if !top.IsWire("a_c2") {
		t.Error("a_c2 should be a top wire")
	}
	if !containsAssign(top.Assigns(), "a_c2", "a_c1") {
		t.Error("expected hold-assign a_c2 = a_c1")
	}
	if !containsAssign(top.Assigns(), "ppi_1_u1_c2", "ppo_1_u1_c1") {
		t.Error("expected scan-chain assign ppi_1_u1_c2 = ppo_1_u1_c1")
	}

	ids := top.GateIDs()
	if len(ids) != 2 {
		t.Fatalf("expected exactly 2 gate instances (c1, c2), got %v", ids)
	}
	if _, ok := top.Gate("C1"); !ok {
		t.Error("missing C1 instance")
	}
	if _, ok := top.Gate("C2"); !ok {
		t.Error("missing C2 instance")
	}

	// q's second-cycle value is masked: not a top output in this mode
	// unless it's a pseudo-primary output (it isn't here).
	if top.IsOutput("q") {
		t.Error("q should be masked (not a top output) when use-primary-io=no")
	}
}

// TestBroadsideS3 checks broadside expansion with use-primary-io=yes.
func TestBroadsideS3(t *testing.T) {
	cm, ex := buildS1Extracted(t)
	cm.UsePrimaryIO = true

	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}

	top := bs.Top
	if !top.IsInput("a_c2") {
		t.Error("a_c2 should be an independent top input when use-primary-io=yes")
	}
	if containsAssign(top.Assigns(), "a_c2", "a_c1") {
		t.Error("hold-assign a_c2 = a_c1 should be absent when use-primary-io=yes")
	}
	if !top.IsOutput("q") {
		t.Error("q should be exposed as a top output when use-primary-io=yes")
	}
}

// buildGatedS1 is S1 extended with an AN2 gate feeding the flip-flop's D
// pin, so the extracted combinational kernel retains a gate instance for
// fault-injection/observation tests to target (S1 itself elides its one
// and only gate, u1, during extraction).
func buildGatedS1() *netlist.Netlist {
	m := netlist.NewModule("m")
	m.AddInput(netlist.NewWire("a"))
	m.AddInput(netlist.NewWire("b"))
	m.AddInput(netlist.NewWire("clk"))
	m.AddOutput(netlist.NewWire("q"))
	m.AddWire(netlist.NewWire("d"))
	m.PushGate("g1", netlist.GateInstance{
		Cell: "AN2",
		Bindings: []netlist.PortBinding{
			netlist.WireBinding("A", "a"),
			netlist.WireBinding("B", "b"),
			netlist.WireBinding("Z", "d"),
		},
	})
	m.PushGate("u1", netlist.GateInstance{
		Cell: "FD1",
		Bindings: []netlist.PortBinding{
			netlist.WireBinding("D", "d"),
			netlist.WireBinding("CP", "clk"),
			netlist.WireBinding("Q", "q"),
		},
	})
	nl := netlist.NewNetlist()
	nl.PushModule(m)
	return nl
}

// TestBroadsideATPGGatedFault exercises the full observation-point +
// restriction-gate + equivalent-check pipeline end to end, faulting the
// wire g1/AN2 drives into the elided flip-flop's D pin.
func TestBroadsideATPGGatedFault(t *testing.T) {
	cfg := minimalFFConfig("m", "clk")
	cfg.UsePrimaryIO = false
	cm := expansion.NewConfiguredModel(cfg, buildGatedS1())
	ex, err := expansion.Extract(cm)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}

	fault := netlist.NewFault("g1/Z", true) // stf -> sa1, output-convention port
	atpg, err := expansion.BuildBroadsideATPG(bs, fault)
	if err != nil {
		t.Fatalf("BuildBroadsideATPG: %v", err)
	}

	if !atpg.C1.IsOutput("g1_Z_tp_stf") {
		t.Error("expected observation tap g1_Z_tp_stf as a new C1 output")
	}
	if !atpg.Top.IsWire("g1_Z_tp_stf") {
		t.Error("expected top-level restriction wire g1_Z_tp_stf")
	}

	conv := cm.OutputConvention()
	ref, impl, err := atpg.EquivalentCheck(conv)
	if err != nil {
		t.Fatalf("EquivalentCheck: %v", err)
	}
	if len(ref.Modules()) != 3 {
		t.Errorf("reference should have 3 modules (top, c1, c2), got %d", len(ref.Modules()))
	}

	implC2, ok := impl.ModuleByName("m_c2")
	if !ok {
		t.Fatal("implementation missing m_c2 module")
	}
	if !implC2.IsWire("d_drained") {
		t.Error("expected implementation's c2 copy to drain d into d_drained")
	}
	if !containsAssign(implC2.Assigns(), "d", "1'b1") {
		t.Error("expected implementation's c2 copy to tie d = 1'b1")
	}
}

// TestBroadsideATPGRestrictionGateNaming checks the restriction-gate wire
// and instance naming: the wire carries the driven copy name, the sanitized
// fault location, and the fault's str/stf polarity tag unconditionally; the
// gate instance id additionally ends with the c2 copy-name suffix.
func TestBroadsideATPGRestrictionGateNaming(t *testing.T) {
	cfg := minimalFFConfig("m", "clk")
	cfg.UsePrimaryIO = true
	cm := expansion.NewConfiguredModel(cfg, buildGatedS1())
	ex, err := expansion.Extract(cm)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}

	fault := netlist.NewFault("g1/Z", true) // stf -> sa1
	atpg, err := expansion.BuildBroadsideATPG(bs, fault)
	if err != nil {
		t.Fatalf("BuildBroadsideATPG: %v", err)
	}

	if !atpg.Top.IsWire("q_c2_g1_Z_stf") {
		t.Error("expected restriction wire q_c2_g1_Z_stf carrying the stf polarity tag")
	}
	gate, ok := atpg.Top.Gate("R1_g1_Z_stf_c2")
	if !ok {
		t.Fatal("expected restriction gate instance R1_g1_Z_stf_c2")
	}
	if gate.Cell != "AN2" {
		t.Errorf("expected AN2 restriction gate for an sa1 fault, got %s", gate.Cell)
	}
}

// TestBroadsideFaultInjectionS5 checks that sa1 at an output
// (Z) convention port drains the wire. It uses the gated S1 fixture since
// the plain S1 kernel retains no gates once its flip-flop is extracted --
// a bare wire driven only by an assign has no gate binding for
// InsertStuckAtFault's bare-wire case to rewrite.
func TestBroadsideFaultInjectionS5(t *testing.T) {
	cfg := minimalFFConfig("m", "clk")
	cfg.UsePrimaryIO = false
	cm := expansion.NewConfiguredModel(cfg, buildGatedS1())
	ex, err := expansion.Extract(cm)
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}

	conv := cm.OutputConvention()
	c2 := bs.C2.Clone()

	// Fault the wire g1's Z port drives; Z is an output-convention port.
	fault := netlist.NewFault("d", true) // stf -> sa1
	if err := c2.InsertStuckAtFault(fault, conv); err != nil {
		t.Fatalf("InsertStuckAtFault: %v", err)
	}

	if !c2.IsWire("d_drained") {
		t.Error("expected d_drained wire to be declared")
	}
	if !containsAssign(c2.Assigns(), "d", "1'b1") {
		t.Error("expected assign d = 1'b1 exactly once")
	}
	count := 0
	for _, a := range c2.Assigns() {
		if a.LHS == "d" && a.RHS == "1'b1" {
			count++
		}
	}
	if count != 1 {
		t.Errorf("expected exactly one d = 1'b1 assign, got %d", count)
	}
}

func TestBroadsideFaultTooDeep(t *testing.T) {
	cm, ex := buildS1Extracted(t)
	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		t.Fatalf("BuildBroadside: %v", err)
	}
	_, err = expansion.BuildBroadsideATPG(bs, netlist.NewFault("a/b/c", false))
	if err == nil {
		t.Fatal("expected TooDeep error")
	}
	var modErr *netlist.ModuleError
	if me, ok := err.(*netlist.ModuleError); ok {
		modErr = me
	}
	if modErr == nil || modErr.Kind != netlist.TooDeep {
		t.Errorf("expected ModuleError{Kind: TooDeep}, got %v", err)
	}
}
