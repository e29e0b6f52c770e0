package netlist

import "fmt"

// ModuleErrorKind enumerates the ways a signal path can fail to resolve
// inside a module.
type ModuleErrorKind int

const (
	UnknownSignal ModuleErrorKind = iota
	TooDeep
)

func (k ModuleErrorKind) String() string {
	switch k {
	case UnknownSignal:
		return "UnknownSignal"
	case TooDeep:
		return "TooDeep"
	default:
		return "Unknown"
	}
}

// ModuleError reports a failure to resolve a fault or observation-point
// location such as "u1/D" or a bare wire name against a module.
type ModuleError struct {
	Kind     ModuleErrorKind
	Location string
}

func (e *ModuleError) Error() string {
	return fmt.Sprintf("Module.%s: %s", e.Kind, e.Location)
}

func errUnknownSignal(location string) error {
	return &ModuleError{Kind: UnknownSignal, Location: location}
}

func errTooDeep(location string) error {
	return &ModuleError{Kind: TooDeep, Location: location}
}
