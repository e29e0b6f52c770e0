package expansion

import "fmt"

// ExtractorFailureKind enumerates the ways combinational extraction can
// fail outright (as opposed to simply finding nothing to extract).
type ExtractorFailureKind int

const (
	// UnknownFFDefinition is raised only when the configured FF library is
	// empty; a non-FF gate type is never an error, it is simply skipped.
	UnknownFFDefinition ExtractorFailureKind = iota
)

func (k ExtractorFailureKind) String() string {
	switch k {
	case UnknownFFDefinition:
		return "UnknownFFDefinition"
	default:
		return "Unknown"
	}
}

// ExtractorFailure reports a failure of the combinational extractor.
type ExtractorFailure struct {
	Kind   ExtractorFailureKind
	Detail string
}

func (e *ExtractorFailure) Error() string {
	return fmt.Sprintf("Extractor.%s: %s", e.Kind, e.Detail)
}
