// Package config reads the line-oriented expansion-config grammar: bare
// directives, comma lists, and nested ff{}/inv{} blocks describing the
// flip-flop and inverter cell library the combinational extractor needs.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// ExpansionMethod selects the time-expansion family a run performs, per
// the grammar's expansion-method token. DI is not a separate token:
// it is the broadside family extended with a third combinational copy,
// selected by configuring two ordered faults instead of one (see
// Config.IsDI).
type ExpansionMethod int

const (
	Broadside ExpansionMethod = iota
	SkewedLoad
	UnknownMethod
)

func (m ExpansionMethod) String() string {
	switch m {
	case Broadside:
		return "Broadside"
	case SkewedLoad:
		return "SkewedLoad"
	default:
		return "Unknown"
	}
}

func parseExpansionMethod(raw string) (ExpansionMethod, bool) {
	switch strings.ToLower(raw) {
	case "broadside", "bs", "loc":
		return Broadside, true
	case "skewedload", "sl", "los":
		return SkewedLoad, true
	default:
		return UnknownMethod, false
	}
}

// FFDefinition names a flip-flop cell and its data-in/data-out/control port
// groups, so the combinational extractor can tell a sequential instance's
// D/Q/clock pins apart from an ordinary logic gate's.
type FFDefinition struct {
	Name    string
	DataIn  []string
	DataOut []string
	Control []string
}

// InvDefinition names an inverter cell and its single input/output port,
// which the extractor instantiates to drive a flip-flop's inverted data-out
// wire from its pseudo-primary input.
type InvDefinition struct {
	Name   string
	Input  string
	Output string
}

func (d InvDefinition) IsEmpty() bool {
	return d.Name == "" || d.Input == "" || d.Output == ""
}

// Config is the parsed contents of an expansion-config file. Parse does no
// semantic validation beyond the grammar itself; call Verify for that.
type Config struct {
	ExpandMethod ExpansionMethod
	HasMethod    bool

	InputFile  string
	OutputFile string
	TopModule  string

	ClockPins    []string
	UsePrimaryIO bool

	// Faults holds every equivalent-check directive in file order: exactly
	// one for Broadside, exactly two (ud then dt) for DI.
	Faults []netlist.Fault

	FFDefinitions  []FFDefinition
	InvDefinitions []InvDefinition
}

// IsDI reports whether a broadside-family run should build the DI
// (Detection-Identification) third combinational copy instead of plain
// two-copy Broadside: exactly two ordered faults (undetected, detected)
// select DI; exactly one selects plain Broadside.
func (c *Config) IsDI() bool {
	return len(c.Faults) == 2
}

var (
	reExpansionMethod = regexp.MustCompile(`^\s*expansion-method\s+(\S+)\s*$`)
	reInputVerilog    = regexp.MustCompile(`^\s*input-verilog\s+(\S+)\s*$`)
	reOutputVerilog   = regexp.MustCompile(`^\s*output-verilog\s+(\S+)\s*$`)
	reTopModule       = regexp.MustCompile(`^\s*top-module\s+(\S+)\s*$`)
	reClockPins       = regexp.MustCompile(`^\s*clock-pins\s+(.+?)\s*$`)
	reUsePrimaryIO    = regexp.MustCompile(`^\s*use-primary-io\s+(.+?)\s*$`)
	reEquivalentCheck = regexp.MustCompile(`^\s*equivalent-check\s+(\S+)\s+(\S+)\s*$`)
	reEquivalentBlock = regexp.MustCompile(`^\s*equivalent-check\s*\{\s*$`)
	reFaultLine       = regexp.MustCompile(`^\s*(\S+)\s+(\S+)\s*$`)
	reFFHeader        = regexp.MustCompile(`^\s*ff\s+([^{]+)\{\s*$`)
	reInvHeader       = regexp.MustCompile(`^\s*inv\s+([^{]+)\{\s*$`)
	reDataIn          = regexp.MustCompile(`^\s*data-in\s+(.+?)\s*$`)
	reDataOut         = regexp.MustCompile(`^\s*data-out\s+(.+?)\s*$`)
	reControl         = regexp.MustCompile(`^\s*control\s+(.+?)\s*$`)
	reInvInput        = regexp.MustCompile(`^\s*input\s+(\w+)\s*$`)
	reInvOutput       = regexp.MustCompile(`^\s*output\s+(\w+)\s*$`)
	reEmptyLine       = regexp.MustCompile(`^\s*$`)
)

// Load reads and parses an expansion-config file from disk.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return Parse(string(data))
}

// Parse reads the directive grammar from text, stripping '#' comments.
func Parse(text string) (*Config, error) {
	rawLines := strings.Split(text, "\n")
	lines := make([]string, len(rawLines))
	for i, l := range rawLines {
		lines[i] = strings.SplitN(l, "#", 2)[0]
	}

	cfg := &Config{}
	i := 0
	for i < len(lines) {
		line := lines[i]
		lineNo := i + 1

		switch {
		case reEmptyLine.MatchString(line):

		case reExpansionMethod.MatchString(line):
			raw := reExpansionMethod.FindStringSubmatch(line)[1]
			method, ok := parseExpansionMethod(raw)
			if !ok {
				return nil, &SyntaxError{Kind: MalformedValue, Line: lineNo, Detail: "unrecognized expansion-method " + raw}
			}
			cfg.ExpandMethod = method
			cfg.HasMethod = true

		case reInputVerilog.MatchString(line):
			cfg.InputFile = reInputVerilog.FindStringSubmatch(line)[1]

		case reOutputVerilog.MatchString(line):
			cfg.OutputFile = reOutputVerilog.FindStringSubmatch(line)[1]

		case reTopModule.MatchString(line):
			cfg.TopModule = reTopModule.FindStringSubmatch(line)[1]

		case reClockPins.MatchString(line):
			raw := reClockPins.FindStringSubmatch(line)[1]
			for _, p := range strings.Split(raw, ",") {
				cfg.ClockPins = append(cfg.ClockPins, strings.TrimSpace(p))
			}

		case reUsePrimaryIO.MatchString(line):
			raw := strings.ToLower(strings.TrimSpace(reUsePrimaryIO.FindStringSubmatch(line)[1]))
			cfg.UsePrimaryIO = raw != "no"

		case reEquivalentCheck.MatchString(line):
			m := reEquivalentCheck.FindStringSubmatch(line)
			saValue, ok := parseSAToken(m[1])
			if !ok {
				return nil, &SyntaxError{Kind: MalformedValue, Line: lineNo, Detail: "equivalent-check expects str|stf, got " + m[1]}
			}
			cfg.Faults = append(cfg.Faults, netlist.NewFault(m[2], saValue))

		case reEquivalentBlock.MatchString(line):
			faults, next, err := parseEquivalentBlock(lines, i+1)
			if err != nil {
				return nil, err
			}
			cfg.Faults = append(cfg.Faults, faults...)
			i = next
			continue

		case reFFHeader.MatchString(line):
			name := strings.TrimSpace(reFFHeader.FindStringSubmatch(line)[1])
			def, next, err := parseFFBlock(lines, i+1, name)
			if err != nil {
				return nil, err
			}
			cfg.FFDefinitions = append(cfg.FFDefinitions, def)
			i = next
			continue

		case reInvHeader.MatchString(line):
			name := strings.TrimSpace(reInvHeader.FindStringSubmatch(line)[1])
			def, next, err := parseInvBlock(lines, i+1, name)
			if err != nil {
				return nil, err
			}
			cfg.InvDefinitions = append(cfg.InvDefinitions, def)
			i = next
			continue

		default:
			return nil, &SyntaxError{Kind: UnknownDirective, Line: lineNo, Detail: strings.TrimSpace(line)}
		}
		i++
	}
	return cfg, nil
}

// parseSAToken maps the transition-fault naming convention onto the
// underlying stuck-at polarity: "str" (slow-to-rise) is sa0, "stf"
// (slow-to-fall) is sa1.
func parseSAToken(tok string) (bool, bool) {
	switch strings.ToLower(tok) {
	case "str":
		return false, true
	case "stf":
		return true, true
	default:
		return false, false
	}
}

// parseEquivalentBlock reads the body of an `equivalent-check {` block: one
// fault per line written as `str|stf location` (no trailing semicolon), in
// file order, up to the line holding the closing `}`.
func parseEquivalentBlock(lines []string, start int) ([]netlist.Fault, int, error) {
	var faults []netlist.Fault
	i := start
	for {
		if i >= len(lines) {
			return nil, i, &SyntaxError{Kind: UnterminatedBlock, Line: start, Detail: "equivalent-check block missing closing }"}
		}
		line := lines[i]
		if strings.Contains(line, "}") {
			return faults, i + 1, nil
		}
		switch {
		case reEmptyLine.MatchString(line):
		case reFaultLine.MatchString(line):
			m := reFaultLine.FindStringSubmatch(line)
			saValue, ok := parseSAToken(m[1])
			if !ok {
				return nil, i, &SyntaxError{Kind: MalformedValue, Line: i + 1, Detail: "equivalent-check expects str|stf, got " + m[1]}
			}
			faults = append(faults, netlist.NewFault(m[2], saValue))
		default:
			return nil, i, &SyntaxError{Kind: UnknownDirective, Line: i + 1, Detail: strings.TrimSpace(line)}
		}
		i++
	}
}

func parseFFBlock(lines []string, start int, name string) (FFDefinition, int, error) {
	def := FFDefinition{Name: name}
	i := start
	for {
		if i >= len(lines) {
			return FFDefinition{}, i, &SyntaxError{Kind: UnterminatedBlock, Line: start, Detail: "ff " + name + " block missing closing }"}
		}
		line := lines[i]
		if strings.Contains(line, "}") {
			return def, i + 1, nil
		}
		switch {
		case reEmptyLine.MatchString(line):
		case reDataIn.MatchString(line):
			for _, s := range strings.Split(reDataIn.FindStringSubmatch(line)[1], ",") {
				def.DataIn = append(def.DataIn, strings.TrimSpace(s))
			}
		case reDataOut.MatchString(line):
			for _, s := range strings.Split(reDataOut.FindStringSubmatch(line)[1], ",") {
				def.DataOut = append(def.DataOut, strings.TrimSpace(s))
			}
		case reControl.MatchString(line):
			for _, s := range strings.Split(reControl.FindStringSubmatch(line)[1], ",") {
				def.Control = append(def.Control, strings.TrimSpace(s))
			}
		default:
			return FFDefinition{}, i, &SyntaxError{Kind: UnknownDirective, Line: i + 1, Detail: strings.TrimSpace(line)}
		}
		i++
	}
}

func parseInvBlock(lines []string, start int, name string) (InvDefinition, int, error) {
	def := InvDefinition{Name: name}
	i := start
	for {
		if i >= len(lines) {
			return InvDefinition{}, i, &SyntaxError{Kind: UnterminatedBlock, Line: start, Detail: "inv " + name + " block missing closing }"}
		}
		line := lines[i]
		if strings.Contains(line, "}") {
			return def, i + 1, nil
		}
		switch {
		case reEmptyLine.MatchString(line):
		case reInvInput.MatchString(line):
			def.Input = reInvInput.FindStringSubmatch(line)[1]
		case reInvOutput.MatchString(line):
			def.Output = reInvOutput.FindStringSubmatch(line)[1]
		default:
			return InvDefinition{}, i, &SyntaxError{Kind: UnknownDirective, Line: i + 1, Detail: strings.TrimSpace(line)}
		}
		i++
	}
}
