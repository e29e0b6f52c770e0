// Package expansion implements the pipeline stages that turn a parsed
// netlist and its expansion config into combinational, time-expanded and
// ATPG-instrumented models: extraction, Broadside/DI expansion, and
// stuck-at fault injection for the equivalent-check output pair.
package expansion

import (
	"fmt"

	"github.com/jihwankim/time-expansion/pkg/config"
	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// ConfiguredModel pairs a parsed netlist with the expansion config that
// targets it. It embeds *config.Config so every directive (InputFile,
// ClockPins, Faults, …) is available directly on the model — the
// trait-style accessor pattern used throughout this package — while adding
// the lookups that need the netlist too.
type ConfiguredModel struct {
	*config.Config
	Netlist *netlist.Netlist
}

func NewConfiguredModel(cfg *config.Config, nl *netlist.Netlist) *ConfiguredModel {
	return &ConfiguredModel{Config: cfg, Netlist: nl}
}

// Top resolves the configured top-module name against the netlist.
func (c *ConfiguredModel) Top() (*netlist.Module, error) {
	m, ok := c.Netlist.ModuleByName(c.TopModule)
	if !ok {
		return nil, fmt.Errorf("top module %q not found in netlist", c.TopModule)
	}
	return m, nil
}

func (c *ConfiguredModel) FFDefinitionFor(cell string) (config.FFDefinition, bool) {
	for _, d := range c.FFDefinitions {
		if d.Name == cell {
			return d, true
		}
	}
	return config.FFDefinition{}, false
}

func (c *ConfiguredModel) InvDefinitionFor(cell string) (config.InvDefinition, bool) {
	for _, d := range c.InvDefinitions {
		if d.Name == cell {
			return d, true
		}
	}
	return config.InvDefinition{}, false
}

func (c *ConfiguredModel) IsClockPin(name string) bool {
	for _, p := range c.ClockPins {
		if p == name {
			return true
		}
	}
	return false
}

// OutputConvention builds a netlist.OutputConvention seeded with every
// known FF data-out/control port and inverter output port from the
// library, falling back to the {Z, Y, Q} substring rule for any cell the
// library doesn't name.
func (c *ConfiguredModel) OutputConvention() netlist.OutputConvention {
	conv := netlist.DefaultOutputConvention()
	for _, d := range c.FFDefinitions {
		for _, p := range d.DataIn {
			conv = conv.WithKnownPort(d.Name, p, false)
		}
		for _, p := range d.DataOut {
			conv = conv.WithKnownPort(d.Name, p, true)
		}
		for _, p := range d.Control {
			conv = conv.WithKnownPort(d.Name, p, false)
		}
	}
	for _, d := range c.InvDefinitions {
		conv = conv.WithKnownPort(d.Name, d.Input, false)
		conv = conv.WithKnownPort(d.Name, d.Output, true)
	}
	return conv
}
