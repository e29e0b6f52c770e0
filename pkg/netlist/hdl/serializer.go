package hdl

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// Serialize pretty-prints every module in nl back into the structural
// Verilog subset this package parses, in netlist declaration order.
func Serialize(nl *netlist.Netlist) string {
	var sb strings.Builder
	modules := nl.Modules()
	for i, m := range modules {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(SerializeModule(m))
	}
	return sb.String()
}

// SerializeModule pretty-prints a single module.
func SerializeModule(m *netlist.Module) string {
	var sb strings.Builder

	ports := m.Ports()
	names := make([]string, len(ports))
	for i, w := range ports {
		names[i] = w.Name
	}
	fmt.Fprintf(&sb, "module %s ( %s );\n", m.Name(), strings.Join(names, ", "))

	writeDecls(&sb, "input", m.Inputs())
	writeDecls(&sb, "output", m.Outputs())
	writeDecls(&sb, "wire", m.Wires())

	for _, a := range m.Assigns() {
		fmt.Fprintf(&sb, "  assign %s = %s;\n", a.LHS, a.RHS)
	}
	sb.WriteString("\n")

	for _, entry := range m.Gates() {
		parts := make([]string, len(entry.Gate.Bindings))
		for i, b := range entry.Gate.Bindings {
			parts[i] = fmt.Sprintf(".%s(%s)", b.Port, b.Expr())
		}
		fmt.Fprintf(&sb, "  %s %s ( %s );\n", entry.Gate.Cell, entry.ID, strings.Join(parts, ", "))
	}

	sb.WriteString("endmodule\n")
	return sb.String()
}

type rangeGroup struct {
	rng   netlist.Range
	names []string
}

func rangeKey(r netlist.Range) string {
	if r.Kind == netlist.Single {
		return "single"
	}
	return "multi:" + r.MSB + ":" + r.LSB
}

// groupByRange buckets wires sharing a range declaration together,
// preserving the first-seen order of each bucket. Wires arrive already
// sorted by name, so the output is fully deterministic.
func groupByRange(wires []netlist.Wire) []rangeGroup {
	index := make(map[string]int)
	var groups []rangeGroup
	for _, w := range wires {
		key := rangeKey(w.Range)
		if i, ok := index[key]; ok {
			groups[i].names = append(groups[i].names, w.Name)
			continue
		}
		index[key] = len(groups)
		groups = append(groups, rangeGroup{rng: w.Range, names: []string{w.Name}})
	}
	return groups
}

func rangeText(r netlist.Range) string {
	if r.Kind == netlist.Multiple {
		return "[" + r.MSB + ":" + r.LSB + "] "
	}
	return ""
}

func writeDecls(sb *strings.Builder, keyword string, wires []netlist.Wire) {
	for _, g := range groupByRange(wires) {
		fmt.Fprintf(sb, "  %s %s%s;\n", keyword, rangeText(g.rng), strings.Join(g.names, ", "))
	}
}

// literalWidth extracts the declared bit width from a sized literal such as
// "8'hFF", defaulting to 1 for an unsized constant. Nothing in the
// repository calls it.
func literalWidth(lit string) int {
	i := strings.IndexByte(lit, '\'')
	if i <= 0 {
		return 1
	}
	n, err := strconv.Atoi(lit[:i])
	if err != nil {
		return 1
	}
	return n
}
