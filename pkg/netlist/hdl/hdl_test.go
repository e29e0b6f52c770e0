package hdl_test

import (
	"strings"
	"testing"

	"github.com/jihwankim/time-expansion/pkg/netlist"
	"github.com/jihwankim/time-expansion/pkg/netlist/hdl"
)

const sampleSource = `
module m ( a, b, clk, q );
  input a, b, clk;
  output q;
  wire d;
  AN2 g1 ( .A(a), .B(b), .Z(d) );
  FD1 u1 ( .D(d), .CP(clk), .Q(q) );
endmodule
`

func TestParseThenSerializeRoundTrips(t *testing.T) {
	nl, err := hdl.Parse(sampleSource)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, ok := nl.ModuleByName("m")
	if !ok {
		t.Fatal("missing module m")
	}
	if !m.IsInput("a") || !m.IsInput("clk") || !m.IsOutput("q") || !m.IsWire("d") {
		t.Fatalf("unexpected port/wire set on parsed module")
	}
	if len(m.GateIDs()) != 2 {
		t.Fatalf("expected 2 gate instances, got %v", m.GateIDs())
	}

	out := hdl.Serialize(nl)
	reparsed, err := hdl.Parse(out)
	if err != nil {
		t.Fatalf("re-Parse of serialized output: %v\n---\n%s", err, out)
	}
	m2, ok := reparsed.ModuleByName("m")
	if !ok {
		t.Fatal("missing module m after round trip")
	}
	if !sameWireNames(m.Inputs(), m2.Inputs()) {
		t.Errorf("Inputs mismatch after round trip: %v vs %v", m.Inputs(), m2.Inputs())
	}
	if !sameWireNames(m.Outputs(), m2.Outputs()) {
		t.Errorf("Outputs mismatch after round trip: %v vs %v", m.Outputs(), m2.Outputs())
	}
	if len(m2.GateIDs()) != 2 {
		t.Errorf("expected 2 gate instances after round trip, got %v", m2.GateIDs())
	}
}

func TestParseRangedPorts(t *testing.T) {
	const src = `
module bus ( a, q );
  input [7:0] a;
  output [7:0] q;
  assign q = a;
endmodule
`
	nl, err := hdl.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, _ := nl.ModuleByName("bus")
	ins := m.Inputs()
	if len(ins) != 1 || ins[0].Range.Kind != netlist.Multiple || ins[0].Range.MSB != "7" || ins[0].Range.LSB != "0" {
		t.Errorf("Inputs() = %+v, want a single [7:0] range", ins)
	}

	out := hdl.Serialize(nl)
	if !strings.Contains(out, "[7:0]") {
		t.Errorf("serialized output missing ranged declaration:\n%s", out)
	}
}

func TestParseConstantBinding(t *testing.T) {
	const src = `
module m ( q );
  output q;
  AN2 g1 ( .A(1'b0), .B(1'b1), .Z(q) );
endmodule
`
	nl, err := hdl.Parse(src)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	m, _ := nl.ModuleByName("m")
	g, ok := m.Gate("g1")
	if !ok {
		t.Fatal("missing gate g1")
	}
	b, ok := g.BindingByPort("A")
	if !ok || b.Kind != netlist.BindingConstant || b.Literal != "1'b0" {
		t.Errorf("port A binding = %+v, want constant 1'b0", b)
	}
}

func TestParseUnterminatedModuleFails(t *testing.T) {
	const src = `
module m ( q );
  output q;
`
	if _, err := hdl.Parse(src); err == nil {
		t.Fatal("expected a parse error for a missing endmodule")
	}
}

func sameWireNames(a, b []netlist.Wire) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name != b[i].Name {
			return false
		}
	}
	return true
}
