package expansion

import (
	"strconv"
	"strings"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

// testScanSubstring is the scan-enable/scan-out port-naming convention
//: any port whose name contains it is a full-scan control
// pin, not part of the combinational interface, and is dropped outright.
const testScanSubstring = "test_s"

// IOPair links one flip-flop instance's synthesized pseudo-primary input
// (PPI, the state the combinational logic reads back) to its pseudo-primary
// output (PPO, the next-state value the combinational logic computed for
// it).
type IOPair struct {
	PPI string
	PPO string
}

// ExtractedCombinationalPart is the flip-flop-free kernel of a
// ConfiguredModel's top module, plus the four port classes the rest of the
// pipeline needs to tell apart.
type ExtractedCombinationalPart struct {
	Module *netlist.Module

	PrimaryInputs        []string
	PrimaryOutputs       []string
	PseudoPrimaryInputs  []string
	PseudoPrimaryOutputs []string
	PseudoPrimaryIOPairs []IOPair
}

// Extract removes every flip-flop instance named in the config's ff{}
// library from a clone of the top module, replacing each one with a pair
// of synthesized scalar ports: ppi_<i>_<inst> (the state the combinational
// logic reads back, driven through the expansion's scan chaining) and
// ppo_<i>_<inst> (the next-state value the combinational logic computed,
// observed as a new output). Clock pins and test_s-convention scan ports
// are elided first; the remaining inputs/outputs become the primary I/O
//.
func Extract(cm *ConfiguredModel) (*ExtractedCombinationalPart, error) {
	if len(cm.FFDefinitions) == 0 {
		return nil, &ExtractorFailure{Kind: UnknownFFDefinition, Detail: "no ff {} definitions configured"}
	}

	top, err := cm.Top()
	if err != nil {
		return nil, err
	}
	extracted := top.Clone()

	// Step 2: strip configured clock pins from the inputs.
	for _, pin := range cm.ClockPins {
		extracted.RemoveInput(pin)
	}

	// Step 3: strip scan-enable/scan-out convention ports, in or out.
	for _, w := range extracted.Inputs() {
		if strings.Contains(w.Name, testScanSubstring) {
			extracted.RemoveInput(w.Name)
		}
	}
	for _, w := range extracted.Outputs() {
		if strings.Contains(w.Name, testScanSubstring) {
			extracted.RemoveOutput(w.Name)
		}
	}

	// Step 4: capture the remaining inputs/outputs as PI/PO before any
	// pseudo-primary ports are synthesized.
	pis := make([]string, 0, len(extracted.Inputs()))
	for _, w := range extracted.Inputs() {
		pis = append(pis, w.Name)
	}
	pos := make([]string, 0, len(extracted.Outputs()))
	for _, w := range extracted.Outputs() {
		pos = append(pos, w.Name)
	}

	var ppis, ppos []string
	var ioPairs []IOPair

	// Step 5: replace each FF instance, in stable (insertion) order, with
	// its synthesized PPI/PPO pair. i is the 1-based ordinal among FF
	// instances only.
	i := 0
	for _, instID := range extracted.GateIDs() {
		gate, ok := extracted.Gate(instID)
		if !ok {
			continue
		}
		ffDef, ok := cm.FFDefinitionFor(gate.Cell)
		if !ok {
			continue
		}
		i++

		ppoName := "ppo_" + strconv.Itoa(i) + "_" + instID
		ppiName := "ppi_" + strconv.Itoa(i) + "_" + instID

		// 5b: each data-in port contributes "ppo_i = w" and declares ppo_i
		// as a new output.
		sawDataIn := false
		for _, port := range ffDef.DataIn {
			b, ok := gate.BindingByPort(port)
			if !ok || b.Kind != netlist.BindingWire {
				continue
			}
			extracted.AddAssign(ppoName, b.Wire)
			sawDataIn = true
		}
		if sawDataIn {
			extracted.AddOutput(netlist.NewWire(ppoName))
			ppos = append(ppos, ppoName)
		}

		// 5c: each data-out port declares ppi_i as a new input. An
		// inverted-convention port (name contains "N") gets a library
		// inverter wired ppi_i -> w; otherwise an assign w = ppi_i.
		sawDataOut := false
		for _, port := range ffDef.DataOut {
			b, ok := gate.BindingByPort(port)
			if !ok || b.Kind != netlist.BindingWire {
				continue
			}
			w := b.Wire
			if !sawDataOut {
				extracted.AddInput(netlist.NewWire(ppiName))
				sawDataOut = true
			}
			if strings.Contains(port, "N") {
				invInst := "UN_" + strconv.Itoa(i)
				invGate := buildInverterGate(cm, ppiName, w)
				extracted.PushGate(invInst, invGate)
			} else {
				extracted.AddAssign(w, ppiName)
			}
		}
		if sawDataOut {
			ppis = append(ppis, ppiName)
		}

		if sawDataOut && sawDataIn {
			ioPairs = append(ioPairs, IOPair{PPI: ppiName, PPO: ppoName})
		}

		extracted.RemoveGate(instID)
	}

	return &ExtractedCombinationalPart{
		Module:               extracted,
		PrimaryInputs:        pis,
		PrimaryOutputs:       pos,
		PseudoPrimaryInputs:  ppis,
		PseudoPrimaryOutputs: ppos,
		PseudoPrimaryIOPairs: ioPairs,
	}, nil
}

// buildInverterGate instantiates the library's canonical inverter cell,
// binding its input to ppi and its output to the wire the original
// inverted flip-flop output used to drive.
// When no inv{} block is configured this falls back to a generic "IV" cell
// using the data-in/data-out convention names A/Y, since Config.Verify
// already rejects a library missing an inverter before this stage runs.
func buildInverterGate(cm *ConfiguredModel, ppi, driven string) netlist.GateInstance {
	if len(cm.InvDefinitions) > 0 {
		inv := cm.InvDefinitions[0]
		return netlist.GateInstance{
			Cell: inv.Name,
			Bindings: []netlist.PortBinding{
				netlist.WireBinding(inv.Input, ppi),
				netlist.WireBinding(inv.Output, driven),
			},
		}
	}
	return netlist.GateInstance{
		Cell: "IV",
		Bindings: []netlist.PortBinding{
			netlist.WireBinding("A", ppi),
			netlist.WireBinding("Y", driven),
		},
	}
}
