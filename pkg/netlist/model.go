// Package netlist holds the in-memory representation of the structural
// Verilog-like subset this pipeline consumes: modules, ports, wires, gate
// instances and continuous assigns. Nothing here simulates circuit
// behavior; it is a syntax-level data model that the expansion and ATPG
// stages rewrite in place before handing the result to the serializer.
package netlist

import "sort"

// RangeKind distinguishes a scalar wire from a bus.
type RangeKind int

const (
	Single RangeKind = iota
	Multiple
)

// Range is either Single (scalar) or Multiple(msb, lsb). MSB/LSB are kept as
// text and serialized back unchanged; the hdl parser accepts only plain
// numbers for them.
type Range struct {
	Kind     RangeKind
	MSB, LSB string
}

// SingleRange is the scalar range used by every synthesized PPI/PPO/tap wire.
func SingleRange() Range { return Range{Kind: Single} }

// Wire is a (name, range) pair; two wires are the same identity iff their
// names match.
type Wire struct {
	Name  string
	Range Range
}

func NewWire(name string) Wire { return Wire{Name: name, Range: SingleRange()} }

// BindingKind distinguishes a gate port bound to a wire from one tied to a
// literal constant (e.g. after stuck-at fault injection).
type BindingKind int

const (
	BindingWire BindingKind = iota
	BindingConstant
)

// PortBinding is one `.port(expr)` association inside a gate instance.
// Wire bindings carry the (possibly compound) wire expression verbatim;
// constant bindings carry a literal such as "1'b0".
type PortBinding struct {
	Port    string
	Kind    BindingKind
	Wire    string
	Literal string
}

func WireBinding(port, wire string) PortBinding {
	return PortBinding{Port: port, Kind: BindingWire, Wire: wire}
}

func ConstantBinding(port, literal string) PortBinding {
	return PortBinding{Port: port, Kind: BindingConstant, Literal: literal}
}

// Expr returns the binding's right-hand-side text as it appears in the
// instantiation, regardless of whether it is a wire or a literal.
func (b PortBinding) Expr() string {
	if b.Kind == BindingConstant {
		return b.Literal
	}
	return b.Wire
}

// GateInstance is a cell-type name plus its ordered port bindings. Port
// order is the declaration order seen in the source (or, for generated stub
// gates, inputs in name order followed by outputs in name order) and is
// never reshuffled.
type GateInstance struct {
	Cell     string
	Bindings []PortBinding
}

// BindingByPort returns the binding attached to the named port, if any.
func (g *GateInstance) BindingByPort(port string) (*PortBinding, bool) {
	for i := range g.Bindings {
		if g.Bindings[i].Port == port {
			return &g.Bindings[i], true
		}
	}
	return nil, false
}

// RebindWire repoints the named port at a new wire expression. The port
// must already be bound to a wire (used to retarget c1/c2/c3 copy ports to
// their suffixed names during expansion).
func (g *GateInstance) RebindWire(port, wire string) bool {
	b, ok := g.BindingByPort(port)
	if !ok {
		return false
	}
	b.Kind = BindingWire
	b.Wire = wire
	b.Literal = ""
	return true
}

// TieConstant repoints the named port at a literal constant (fault
// injection of an input-convention port).
func (g *GateInstance) TieConstant(port, literal string) bool {
	b, ok := g.BindingByPort(port)
	if !ok {
		return false
	}
	b.Kind = BindingConstant
	b.Literal = literal
	b.Wire = ""
	return true
}

// RemovePort drops a port binding entirely, used when a combinational copy's
// output is masked out of the expanded top (use-primary-io=no).
func (g *GateInstance) RemovePort(port string) bool {
	for i := range g.Bindings {
		if g.Bindings[i].Port == port {
			g.Bindings = append(g.Bindings[:i], g.Bindings[i+1:]...)
			return true
		}
	}
	return false
}

func (g *GateInstance) clone() GateInstance {
	out := GateInstance{Cell: g.Cell, Bindings: make([]PortBinding, len(g.Bindings))}
	copy(out.Bindings, g.Bindings)
	return out
}

// Assign is one continuous assignment; RHS is preserved verbatim as the
// data model requires (no expression parsing beyond what the netlist
// parser already captured as a flat string).
type Assign struct {
	LHS, RHS string
}

func (a Assign) String() string { return a.LHS + " = " + a.RHS }

// gateEntry pairs an instance id with its gate, preserving insertion order.
type gateEntry struct {
	ID   string
	Gate GateInstance
}

// wireSet is a name-deduplicated, name-sorted collection of wires. Ports and
// internal wires both use it so that every iteration over a module's
// interface is in a stable, reproducible order.
type wireSet struct {
	byName map[string]Wire
}

func newWireSet() *wireSet { return &wireSet{byName: make(map[string]Wire)} }

func (s *wireSet) add(w Wire) {
	if _, exists := s.byName[w.Name]; !exists {
		s.byName[w.Name] = w
	}
}

func (s *wireSet) remove(name string) bool {
	if _, ok := s.byName[name]; !ok {
		return false
	}
	delete(s.byName, name)
	return true
}

func (s *wireSet) has(name string) bool {
	_, ok := s.byName[name]
	return ok
}

func (s *wireSet) sorted() []Wire {
	out := make([]Wire, 0, len(s.byName))
	for _, w := range s.byName {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

func (s *wireSet) clone() *wireSet {
	out := newWireSet()
	for k, v := range s.byName {
		out.byName[k] = v
	}
	return out
}

// Module is a named record of ports, internal wires, continuous assigns and
// gate instances.
type Module struct {
	name    string
	inputs  *wireSet
	outputs *wireSet
	wires   *wireSet
	assigns []Assign
	gateIDs []string
	gates   map[string]GateInstance
}

// NewModule creates an empty module with the given name.
func NewModule(name string) *Module {
	return &Module{
		name:    name,
		inputs:  newWireSet(),
		outputs: newWireSet(),
		wires:   newWireSet(),
		gates:   make(map[string]GateInstance),
	}
}

func (m *Module) Name() string      { return m.name }
func (m *Module) SetName(n string)  { m.name = n }
func (m *Module) AddInput(w Wire)   { m.inputs.add(w) }
func (m *Module) AddOutput(w Wire)  { m.outputs.add(w) }
func (m *Module) AddWire(w Wire)    { m.wires.add(w) }

// RemoveInput/RemoveOutput drop a port by exact name; they are also used by
// the combinational extractor to elide clock pins and test_s scan ports.
func (m *Module) RemoveInput(name string) bool  { return m.inputs.remove(name) }
func (m *Module) RemoveOutput(name string) bool { return m.outputs.remove(name) }

func (m *Module) IsInput(name string) bool  { return m.inputs.has(name) }
func (m *Module) IsOutput(name string) bool { return m.outputs.has(name) }
func (m *Module) IsWire(name string) bool   { return m.wires.has(name) }

// Inputs/Outputs/Wires return name-sorted snapshots; callers must not rely on
// being able to mutate the module through the returned slice.
func (m *Module) Inputs() []Wire  { return m.inputs.sorted() }
func (m *Module) Outputs() []Wire { return m.outputs.sorted() }
func (m *Module) Wires() []Wire   { return m.wires.sorted() }

// Ports returns the header port list: the union of inputs and outputs, in
// name order.
func (m *Module) Ports() []Wire {
	all := newWireSet()
	for _, w := range m.inputs.sorted() {
		all.add(w)
	}
	for _, w := range m.outputs.sorted() {
		all.add(w)
	}
	return all.sorted()
}

func (m *Module) AddAssign(lhs, rhs string) {
	m.assigns = append(m.assigns, Assign{LHS: lhs, RHS: rhs})
}

// RemoveAssign removes the first assign exactly matching lhs/rhs, if present.
func (m *Module) RemoveAssign(lhs, rhs string) bool {
	for i, a := range m.assigns {
		if a.LHS == lhs && a.RHS == rhs {
			m.assigns = append(m.assigns[:i], m.assigns[i+1:]...)
			return true
		}
	}
	return false
}

// AssignForRHS returns the first assign whose RHS matches exactly, used to
// find the "n = n_c2" style chaining assign a later stage must rewrite.
func (m *Module) AssignForRHS(rhs string) (Assign, bool) {
	for _, a := range m.assigns {
		if a.RHS == rhs {
			return a, true
		}
	}
	return Assign{}, false
}

func (m *Module) Assigns() []Assign {
	out := make([]Assign, len(m.assigns))
	copy(out, m.assigns)
	return out
}

// PushGate appends a gate instance under a fresh or existing instance id,
// preserving insertion order.
func (m *Module) PushGate(id string, g GateInstance) {
	if _, exists := m.gates[id]; !exists {
		m.gateIDs = append(m.gateIDs, id)
	}
	m.gates[id] = g
}

// RemoveGate removes an instance by id, returning it if present.
func (m *Module) RemoveGate(id string) (GateInstance, bool) {
	g, ok := m.gates[id]
	if !ok {
		return GateInstance{}, false
	}
	delete(m.gates, id)
	for i, gid := range m.gateIDs {
		if gid == id {
			m.gateIDs = append(m.gateIDs[:i], m.gateIDs[i+1:]...)
			break
		}
	}
	return g, true
}

func (m *Module) Gate(id string) (*GateInstance, bool) {
	g, ok := m.gates[id]
	if !ok {
		return nil, false
	}
	return &g, true
}

// GateIDs returns instance ids in insertion (declaration) order.
func (m *Module) GateIDs() []string {
	out := make([]string, len(m.gateIDs))
	copy(out, m.gateIDs)
	return out
}

// Gates returns (id, gate) pairs in insertion order.
func (m *Module) Gates() []struct {
	ID   string
	Gate GateInstance
} {
	out := make([]struct {
		ID   string
		Gate GateInstance
	}, 0, len(m.gateIDs))
	for _, id := range m.gateIDs {
		out = append(out, struct {
			ID   string
			Gate GateInstance
		}{ID: id, Gate: m.gates[id]})
	}
	return out
}

// MutateGate applies fn to the stored gate for id and writes the result
// back; it is the supported way to edit a gate in place.
func (m *Module) MutateGate(id string, fn func(*GateInstance)) bool {
	g, ok := m.gates[id]
	if !ok {
		return false
	}
	fn(&g)
	m.gates[id] = g
	return true
}

// Clone performs a deep copy of the module.
func (m *Module) Clone() *Module {
	out := NewModule(m.name)
	out.inputs = m.inputs.clone()
	out.outputs = m.outputs.clone()
	out.wires = m.wires.clone()
	out.assigns = append([]Assign(nil), m.assigns...)
	out.gateIDs = append([]string(nil), m.gateIDs...)
	for id, g := range m.gates {
		out.gates[id] = g.clone()
	}
	return out
}

// CloneWithNameSuffix duplicates the module, appending suffix to its name;
// used to produce the c1/c2/c3 combinational copies.
func (m *Module) CloneWithNameSuffix(suffix string) *Module {
	c := m.Clone()
	c.name = m.name + suffix
	return c
}

// ToGate synthesizes a gate-instance stub whose cell type is m.name and
// whose port bindings map each port name to an identically named wire:
// inputs in name order, then outputs in name order. Used to instantiate a combinational copy inside the
// expanded top module.
func (m *Module) ToGate() GateInstance {
	g := GateInstance{Cell: m.name}
	for _, w := range m.Inputs() {
		g.Bindings = append(g.Bindings, WireBinding(w.Name, w.Name))
	}
	for _, w := range m.Outputs() {
		g.Bindings = append(g.Bindings, WireBinding(w.Name, w.Name))
	}
	return g
}

// Netlist is an ordered sequence of modules; names are unique within it.
type Netlist struct {
	order   []string
	modules map[string]*Module
}

func NewNetlist() *Netlist {
	return &Netlist{modules: make(map[string]*Module)}
}

func (n *Netlist) PushModule(m *Module) {
	if _, exists := n.modules[m.Name()]; !exists {
		n.order = append(n.order, m.Name())
	}
	n.modules[m.Name()] = m
}

func (n *Netlist) ModuleByName(name string) (*Module, bool) {
	m, ok := n.modules[name]
	return m, ok
}

// Modules returns modules in declaration/push order.
func (n *Netlist) Modules() []*Module {
	out := make([]*Module, 0, len(n.order))
	for _, name := range n.order {
		out = append(out, n.modules[name])
	}
	return out
}

func (n *Netlist) Clone() *Netlist {
	out := NewNetlist()
	for _, m := range n.Modules() {
		out.PushModule(m.Clone())
	}
	return out
}
