package netlist

import "strings"

// Fault is a (location, stuck-at value) pair targeted by an
// equivalent-check directive. Location is either a bare top-level wire name
// or an "instance/port" path; SAValue is true for stuck-at-1.
//
// The transition-fault naming convention treats SAValue=true as
// "slow-to-fall" (stf) and SAValue=false as "slow-to-rise" (str) — see the
// GLOSSARY entry for Stuck-at fault.
type Fault struct {
	Location string
	SAValue  bool
}

func NewFault(location string, saValue bool) Fault {
	return Fault{Location: location, SAValue: saValue}
}

// SlowTo returns the transition-fault tag for this fault's polarity.
func (f Fault) SlowTo() string {
	if f.SAValue {
		return "stf"
	}
	return "str"
}

// PathParts splits Location on '/'. A bare wire is one part; an
// "instance/port" path is two. Anything deeper is rejected by callers with
// ModuleErrorKind TooDeep.
func (f Fault) PathParts() []string {
	return strings.Split(f.Location, "/")
}

// SanitizedLocation replaces path separators with underscores so the
// location can be embedded in a generated wire or instance name
// (e.g. "u1/D" -> "u1_D").
func (f Fault) SanitizedLocation() string {
	return strings.ReplaceAll(f.Location, "/", "_")
}

// Literal returns the Verilog constant this fault ties a signal to.
func (f Fault) Literal() string {
	if f.SAValue {
		return "1'b1"
	}
	return "1'b0"
}
