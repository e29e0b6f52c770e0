package expansion

import (
	"fmt"
	"strings"

	"github.com/jihwankim/time-expansion/pkg/netlist"
)

const (
	c1Suffix  = "_c1"
	c2Suffix  = "_c2"
	topSuffix = "_bs"

	c1GateName = "C1"
	c2GateName = "C2"
)

// BroadsideModel is the two-clock-copy (C1 feeds C2) time-expanded model
// built from an extracted combinational part.
type BroadsideModel struct {
	Top           *netlist.Module
	C1            *netlist.Module
	C2            *netlist.Module
	Combinational *ExtractedCombinationalPart
	UsePrimaryIO  bool
}

// Netlist assembles the expanded top, C1 and C2 modules into a netlist in
// that declaration order.
func (b *BroadsideModel) Netlist() *netlist.Netlist {
	nl := netlist.NewNetlist()
	nl.PushModule(b.Top)
	nl.PushModule(b.C1)
	nl.PushModule(b.C2)
	return nl
}

// BuildBroadside wires a fresh top module instantiating C1 and C2 copies of
// the extracted combinational part, chaining C1's next-state outputs into
// C2's current-state inputs. Primary inputs get an independent C1/C2 copy
// when UsePrimaryIO is set; otherwise C2's copy is held equal to C1's.
func BuildBroadside(cm *ConfiguredModel, ex *ExtractedCombinationalPart) (*BroadsideModel, error) {
	c1 := ex.Module.CloneWithNameSuffix(c1Suffix)
	c2 := ex.Module.CloneWithNameSuffix(c2Suffix)
	gateC1 := c1.ToGate()
	gateC2 := c2.ToGate()

	top := netlist.NewModule(cm.TopModule + topSuffix)

	ppoSet := make(map[string]bool, len(ex.PseudoPrimaryOutputs))
	for _, n := range ex.PseudoPrimaryOutputs {
		ppoSet[n] = true
	}

	// Top inputs: C1's copy of every primary and pseudo-primary input.
	for _, n := range append(append([]string(nil), ex.PrimaryInputs...), ex.PseudoPrimaryInputs...) {
		c1Name := n + c1Suffix
		gateC1.RebindWire(n, c1Name)
		top.AddInput(netlist.NewWire(c1Name))
	}

	// C1's pseudo-primary outputs become internal top wires.
	for _, n := range ex.PseudoPrimaryOutputs {
		c1Name := n + c1Suffix
		gateC1.RebindWire(n, c1Name)
		top.AddWire(netlist.NewWire(c1Name))
	}

	// C1's primary outputs aren't observed in the expanded top at all.
	for _, n := range ex.PrimaryOutputs {
		gateC1.RemovePort(n)
	}

	// Chain C1's next-state outputs into C2's current-state inputs.
	for _, pair := range ex.PseudoPrimaryIOPairs {
		c1PpoName := pair.PPO + c1Suffix
		c2PpiName := pair.PPI + c2Suffix
		top.AddAssign(c2PpiName, c1PpoName)
		top.AddWire(netlist.NewWire(c2PpiName))
	}

	// C2's copy of primary inputs: independent if use-primary-io, held
	// equal to C1's copy otherwise.
	for _, n := range ex.PrimaryInputs {
		c1PiName := n + c1Suffix
		c2PiName := n + c2Suffix
		gateC2.RebindWire(n, c2PiName)
		if cm.UsePrimaryIO {
			top.AddInput(netlist.NewWire(c2PiName))
		} else {
			top.AddAssign(c2PiName, c1PiName)
			top.AddWire(netlist.NewWire(c2PiName))
		}
	}

	for _, n := range ex.PseudoPrimaryInputs {
		c2Name := n + c2Suffix
		gateC2.RebindWire(n, c2Name)
	}

	// C2's outputs: exposed at top if use-primary-io or the output is a
	// pseudo-primary output (next-state feedback); otherwise dropped.
	for _, w := range ex.Module.Outputs() {
		name := w.Name
		c2Name := name + c2Suffix
		gateC2.RebindWire(name, c2Name)
		if cm.UsePrimaryIO || ppoSet[name] {
			top.AddAssign(name, c2Name)
			top.AddOutput(netlist.NewWire(name))
			top.AddWire(netlist.NewWire(c2Name))
		} else {
			gateC2.RemovePort(name)
		}
	}

	top.PushGate(c1GateName, gateC1)
	top.PushGate(c2GateName, gateC2)

	return &BroadsideModel{Top: top, C1: c1, C2: c2, Combinational: ex, UsePrimaryIO: cm.UsePrimaryIO}, nil
}

// BroadsideATPGModel is a BroadsideModel instrumented with one fault's
// observation point and restriction gate, ready for equivalent-check
// emission.
type BroadsideATPGModel struct {
	Top   *netlist.Module
	C1    *netlist.Module
	C2    *netlist.Module
	Fault netlist.Fault
}

func (a *BroadsideATPGModel) Netlist() *netlist.Netlist {
	nl := netlist.NewNetlist()
	nl.PushModule(a.Top)
	nl.PushModule(a.C1)
	nl.PushModule(a.C2)
	return nl
}

// BuildBroadsideATPG adds an observation point for fault inside C1, then
// restricts every C2 output exposed at top through an AN2 (stuck-at-1) or
// OR2 (stuck-at-0) gate so the fault-free value passes through unless the
// observation point is active.
func BuildBroadsideATPG(bs *BroadsideModel, fault netlist.Fault) (*BroadsideATPGModel, error) {
	top := bs.Top.Clone()
	c1 := bs.C1.Clone()
	c2 := bs.C2.Clone()

	restrictionWire, err := c1.AddObservationPoint(fault.Location, fault.SAValue)
	if err != nil {
		return nil, err
	}
	top.AddWire(netlist.NewWire(restrictionWire))
	top.MutateGate(c1GateName, func(g *netlist.GateInstance) {
		g.Bindings = append(g.Bindings, netlist.WireBinding(restrictionWire, restrictionWire))
	})

	insertRestrictionGates(top, bs.C2.Outputs(), restrictionWire, fault, c2Suffix, false, "_c2")

	return &BroadsideATPGModel{Top: top, C1: c1, C2: c2, Fault: fault}, nil
}

// insertRestrictionGates finds, for each of outputs' copySuffix-suffixed
// driving assigns in top, the assign "po = ppo_copy" and replaces it with a
// restriction gate gating po through restrictionWire, masking the
// fault-free value whenever the observation point fires. The gate is AN2
// when (fault.SAValue XOR inverted) is true, OR2 otherwise: inverted is set
// for DI's c3 cone paired with a c2-targeted fault, giving the
// AN2-vs-OR2 asymmetry that keeps the two cones mutually masked.
// copyName ("_c2" or "_c3") ends the generated gate instance id, which
// keeps the ids distinct when called more than once against the same top
// module (DI calls this once for c2 and once for c3); the wire/gate names always carry fault.SlowTo()'s str/stf
// tag alongside the sanitized fault location, regardless of copyName.
func insertRestrictionGates(top *netlist.Module, outputs []netlist.Wire, restrictionWire string, fault netlist.Fault, copySuffix string, inverted bool, copyName string) {
	var restricted []netlist.Assign
	for _, po := range outputs {
		suffix := po.Name + copySuffix
		for _, a := range top.Assigns() {
			if strings.HasSuffix(a.RHS, suffix) {
				restricted = append(restricted, a)
				break
			}
		}
	}

	cell := "OR2"
	if fault.SAValue != inverted {
		cell = "AN2"
	}

	tag := fault.SanitizedLocation() + "_" + fault.SlowTo()

	for i, a := range restricted {
		po := a.LHS
		ppoDriven := a.RHS
		ppoR := ppoDriven + "_" + tag

		gate := netlist.GateInstance{Cell: cell, Bindings: []netlist.PortBinding{
			netlist.WireBinding("A", restrictionWire),
			netlist.WireBinding("B", ppoR),
			netlist.WireBinding("Z", po),
		}}
		top.PushGate(fmt.Sprintf("R%d_%s%s", i+1, tag, copyName), gate)
		top.AddAssign(ppoR, ppoDriven)
		top.AddWire(netlist.NewWire(ppoR))
		top.RemoveAssign(a.LHS, a.RHS)
	}
}

// EquivalentCheck returns the (reference, implementation) netlist pair for
// this ATPG model: the implementation is a clone with the fault injected
// into its C2 copy.
func (a *BroadsideATPGModel) EquivalentCheck(conv netlist.OutputConvention) (ref, impl *netlist.Netlist, err error) {
	ref = a.Netlist()

	impC2 := a.C2.Clone()
	if err := impC2.InsertStuckAtFault(a.Fault, conv); err != nil {
		return nil, nil, err
	}
	impl = netlist.NewNetlist()
	impl.PushModule(a.Top)
	impl.PushModule(a.C1)
	impl.PushModule(impC2)
	return ref, impl, nil
}
