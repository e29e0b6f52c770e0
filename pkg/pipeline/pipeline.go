// Package pipeline drives a parsed configuration and source netlist
// through the transformation's strictly one-way state machine: Config ->
// Configured -> Extracted -> Expanded -> ATPG -> Checked. Each stage
// consumes the previous stage's artifact by move and returns a new one;
// there is no backtracking.
package pipeline

import (
	"fmt"

	"github.com/jihwankim/time-expansion/pkg/config"
	"github.com/jihwankim/time-expansion/pkg/expansion"
	"github.com/jihwankim/time-expansion/pkg/netlist"
	"github.com/jihwankim/time-expansion/pkg/netlist/hdl"
	"github.com/jihwankim/time-expansion/pkg/reporting"
)

// State names a stage of the pipeline's run.
type State int

const (
	StateConfig State = iota
	StateConfigured
	StateExtracted
	StateExpanded
	StateATPG
	StateChecked
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateConfig:
		return "CONFIG"
	case StateConfigured:
		return "CONFIGURED"
	case StateExtracted:
		return "EXTRACTED"
	case StateExpanded:
		return "EXPANDED"
	case StateATPG:
		return "ATPG"
	case StateChecked:
		return "CHECKED"
	case StateFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// Result is the artifact set a completed run produces: the expanded (BS
// or DI) netlist plus the ATPG reference/implementation pair.
type Result struct {
	Expanded       *netlist.Netlist
	Reference      *netlist.Netlist
	Implementation *netlist.Netlist
}

// Pipeline drives one configuration through the full transformation.
// Independent invocations own their artifacts end-to-end and may run
// concurrently; a Pipeline itself holds no shared mutable state beyond its
// own progress tracking.
type Pipeline struct {
	state  State
	logger *reporting.Logger
}

// New creates a pipeline that reports progress through logger. logger may
// be nil to run silently (tests).
func New(logger *reporting.Logger) *Pipeline {
	return &Pipeline{state: StateConfig, logger: logger}
}

// State returns the pipeline's current stage.
func (p *Pipeline) State() State { return p.state }

func (p *Pipeline) transition(s State) {
	p.state = s
	if p.logger != nil {
		p.logger.Debug("pipeline transition", "state", s.String())
	}
}

// Run executes Configured -> Extracted -> Expanded -> ATPG -> Checked
// against an already-parsed, already-verified Config and source netlist.
func (p *Pipeline) Run(cfg *config.Config, nl *netlist.Netlist) (*Result, error) {
	p.transition(StateConfigured)
	cm := expansion.NewConfiguredModel(cfg, nl)
	if _, err := cm.Top(); err != nil {
		p.transition(StateFailed)
		return nil, err
	}

	p.transition(StateExtracted)
	ex, err := expansion.Extract(cm)
	if err != nil {
		p.transition(StateFailed)
		return nil, err
	}

	p.transition(StateExpanded)
	bs, err := expansion.BuildBroadside(cm, ex)
	if err != nil {
		p.transition(StateFailed)
		return nil, err
	}

	conv := cm.OutputConvention()

	var result *Result
	switch {
	case cfg.ExpandMethod == config.SkewedLoad:
		err = &config.VerifyError{Kind: config.UnsupportedMethod, Detail: "skewed-load expansion is not implemented"}
	case cfg.ExpandMethod != config.Broadside:
		err = fmt.Errorf("unrecognized expansion method %v", cfg.ExpandMethod)
	case cfg.IsDI():
		result, err = p.runDI(bs, cfg.Faults, conv)
	default:
		result, err = p.runBroadside(bs, cfg.Faults, conv)
	}
	if err != nil {
		p.transition(StateFailed)
		return nil, err
	}

	p.transition(StateChecked)
	return result, nil
}

func (p *Pipeline) runBroadside(bs *expansion.BroadsideModel, faults []netlist.Fault, conv netlist.OutputConvention) (*Result, error) {
	if len(faults) != 1 {
		return nil, fmt.Errorf("broadside equivalent-check requires exactly 1 fault, got %d", len(faults))
	}
	p.transition(StateATPG)
	atpg, err := expansion.BuildBroadsideATPG(bs, faults[0])
	if err != nil {
		return nil, err
	}
	ref, impl, err := atpg.EquivalentCheck(conv)
	if err != nil {
		return nil, err
	}
	return &Result{Expanded: bs.Netlist(), Reference: ref, Implementation: impl}, nil
}

func (p *Pipeline) runDI(bs *expansion.BroadsideModel, faults []netlist.Fault, conv netlist.OutputConvention) (*Result, error) {
	if len(faults) != 2 {
		return nil, fmt.Errorf("DI equivalent-check requires exactly 2 ordered faults (ud, dt), got %d", len(faults))
	}
	di, err := expansion.BuildDI(bs)
	if err != nil {
		return nil, err
	}
	p.transition(StateATPG)
	atpg, err := expansion.BuildDIATPG(di, faults[0], faults[1])
	if err != nil {
		return nil, err
	}
	ref, impl, err := atpg.EquivalentCheck(conv)
	if err != nil {
		return nil, err
	}
	return &Result{Expanded: di.Netlist(), Reference: ref, Implementation: impl}, nil
}

// WriteOutputs serializes a Result's three netlists to the configured
// output paths: cfg.OutputFile (the expanded netlist), ref.v and imp.v
//.
func (p *Pipeline) WriteOutputs(cfg *config.Config, result *Result) error {
	return reporting.WriteArtifacts(p.logger,
		reporting.Artifact{Path: cfg.OutputFile, Content: hdl.Serialize(result.Expanded)},
		reporting.Artifact{Path: "ref.v", Content: hdl.Serialize(result.Reference)},
		reporting.Artifact{Path: "imp.v", Content: hdl.Serialize(result.Implementation)},
	)
}
