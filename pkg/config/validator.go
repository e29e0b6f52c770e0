package config

import "fmt"

// Report collects the results of Verify: zero or more fatal errors and
// informational warnings about a parsed Config.
type Report struct {
	Errors   []error
	Warnings []string
}

func (r *Report) HasErrors() bool   { return len(r.Errors) > 0 }
func (r *Report) HasWarnings() bool { return len(r.Warnings) > 0 }

// Verify checks a parsed Config against the invariants a runnable
// expansion needs, independent of grammar validity (Parse already
// guarantees that). It never touches the filesystem.
func Verify(cfg *Config) *Report {
	r := &Report{}

	if !cfg.HasMethod {
		r.Errors = append(r.Errors, &VerifyError{Kind: MissingMethod, Detail: "expansion-method directive is required"})
	}
	if cfg.InputFile == "" {
		r.Errors = append(r.Errors, &VerifyError{Kind: MissingInput, Detail: "input-verilog directive is required"})
	}
	if cfg.OutputFile == "" {
		r.Errors = append(r.Errors, &VerifyError{Kind: MissingOutput, Detail: "output-verilog directive is required"})
	}
	if cfg.TopModule == "" {
		r.Errors = append(r.Errors, &VerifyError{Kind: MissingTop, Detail: "top-module directive is required"})
	}
	if len(cfg.FFDefinitions) == 0 {
		r.Errors = append(r.Errors, &VerifyError{Kind: NoFF, Detail: "at least one ff {} definition is required to extract the combinational part"})
	}
	if len(cfg.InvDefinitions) == 0 {
		r.Errors = append(r.Errors, &VerifyError{Kind: NoInverter, Detail: "at least one inv {} definition is required to drive inverted flip-flop outputs"})
	}

	if cfg.HasMethod && cfg.ExpandMethod == SkewedLoad {
		r.Errors = append(r.Errors, &VerifyError{Kind: UnsupportedMethod, Detail: "skewed-load expansion is not implemented"})
	}

	// DI is not a separate expansion-method token: within the broadside
	// family, one configured fault means plain Broadside, two ordered
	// faults (undetected, detected) means DI. Any other count is
	// malformed.
	if cfg.HasMethod && cfg.ExpandMethod == Broadside {
		if len(cfg.Faults) != 1 && len(cfg.Faults) != 2 {
			r.Errors = append(r.Errors, &VerifyError{
				Kind:   MalformedFaultSet,
				Detail: fmt.Sprintf("broadside equivalent-check requires exactly 1 fault (plain) or 2 ordered faults (DI: ud, dt), got %d", len(cfg.Faults)),
			})
		}
	}

	if len(cfg.ClockPins) == 0 {
		r.Warnings = append(r.Warnings, "no clock-pins declared; extraction will not elide any clock input")
	}

	return r
}
