package netlist

import "strings"

// OutputConvention decides whether a (cell type, port) pair denotes a
// driven output rather than a consumed input. Known cells (library FF and
// inverter definitions) are consulted first; for a cell not in the
// library — the generic AN2/OR2/IV logic left over once FF and inverter
// instances are elided from the combinational cone — it falls back to the
// documented {Z, Y, Q} substring rule.
type OutputConvention struct {
	substrings []string
	known      map[string]bool
}

// DefaultOutputConvention matches the {Z, Y, Q} substring rule with no
// library knowledge.
func DefaultOutputConvention() OutputConvention {
	return OutputConvention{substrings: []string{"Z", "Y", "Q"}}
}

// NewOutputConvention builds a convention from an arbitrary substring set.
func NewOutputConvention(substrings []string) OutputConvention {
	return OutputConvention{substrings: append([]string(nil), substrings...)}
}

// WithKnownPort records that cellType's named port is (or isn't) an
// output, taking priority over the substring fallback. Callers build this
// up from the ff{}/inv{} library definitions.
func (c OutputConvention) WithKnownPort(cellType, port string, isOutput bool) OutputConvention {
	known := make(map[string]bool, len(c.known)+1)
	for k, v := range c.known {
		known[k] = v
	}
	known[cellType+"/"+port] = isOutput
	return OutputConvention{substrings: c.substrings, known: known}
}

func (c OutputConvention) IsOutputPort(cellType, port string) bool {
	if c.known != nil {
		if v, ok := c.known[cellType+"/"+port]; ok {
			return v
		}
	}
	for _, s := range c.substrings {
		if strings.Contains(port, s) {
			return true
		}
	}
	return false
}

// AddObservationPoint adds a fresh output to m surfacing the value at
// location (a bare wire, or an "instance/port" path), tagged with the
// str/stf suffix matching saValue. It returns the new output's name, which
// doubles as the restriction wire name at the call site.
func (m *Module) AddObservationPoint(location string, saValue bool) (string, error) {
	tag := "str"
	if saValue {
		tag = "stf"
	}
	parts := strings.Split(location, "/")
	switch len(parts) {
	case 1:
		w := parts[0]
		if !m.IsInput(w) && !m.IsOutput(w) && !m.IsWire(w) {
			return "", errUnknownSignal(location)
		}
		tap := w + "_tp_" + tag
		m.AddAssign(tap, w)
		m.AddOutput(NewWire(tap))
		return tap, nil
	case 2:
		gateID, port := parts[0], parts[1]
		gate, ok := m.Gate(gateID)
		if !ok {
			return "", errUnknownSignal(location)
		}
		binding, ok := gate.BindingByPort(port)
		if !ok {
			return "", errUnknownSignal(location)
		}
		tap := gateID + "_" + port + "_tp_" + tag
		m.AddAssign(tap, binding.Expr())
		m.AddOutput(NewWire(tap))
		return tap, nil
	default:
		return "", errTooDeep(location)
	}
}

// InsertStuckAtFault rewrites m in place so the signal at fault.Location is
// pinned to fault.Literal(), per the drain-and-tie policy: a port
// driving the faulted wire is redirected to a freshly drained wire and the
// original wire is tied directly to the constant; a port merely consuming
// the wire is rebound straight to the constant. Callers are expected to
// operate on a clone of the copy module they intend to keep pristine.
func (m *Module) InsertStuckAtFault(fault Fault, conv OutputConvention) error {
	lit := fault.Literal()
	parts := fault.PathParts()
	switch len(parts) {
	case 1:
		w := parts[0]
		drained := w + "_drained"
		tied := false
		for _, id := range m.GateIDs() {
			gate, _ := m.Gate(id)
			for _, b := range gate.Bindings {
				if b.Kind != BindingWire || b.Wire != w {
					continue
				}
				port := b.Port
				if conv.IsOutputPort(gate.Cell, port) {
					m.MutateGate(id, func(g *GateInstance) { g.RebindWire(port, drained) })
					m.AddWire(NewWire(drained))
					if !tied {
						m.AddAssign(w, lit)
						tied = true
					}
				} else {
					m.MutateGate(id, func(g *GateInstance) { g.TieConstant(port, lit) })
				}
			}
		}
		return nil
	case 2:
		gateID, port := parts[0], parts[1]
		gate, ok := m.Gate(gateID)
		if !ok {
			return errUnknownSignal(fault.Location)
		}
		binding, ok := gate.BindingByPort(port)
		if !ok {
			return errUnknownSignal(fault.Location)
		}
		if conv.IsOutputPort(gate.Cell, port) {
			w := binding.Expr()
			drained := w + "_drained"
			m.MutateGate(gateID, func(g *GateInstance) { g.RebindWire(port, drained) })
			m.AddWire(NewWire(drained))
			m.AddAssign(w, lit)
		} else {
			m.MutateGate(gateID, func(g *GateInstance) { g.TieConstant(port, lit) })
		}
		return nil
	default:
		return errTooDeep(fault.Location)
	}
}
