package expansion

import "github.com/jihwankim/time-expansion/pkg/netlist"

const (
	c3Suffix   = "_c3"
	c3GateName = "C3"
)

// DIModel is the three-combinational-copy Detection-Identification
// time-expansion: c1 feeds both c2 and c3 through the same scan chaining,
// and each formerly-exposed output n is split into n_sa0 (driven by c2)
// and n_sa1 (driven by c3) so a downstream equivalence engine can observe
// the two stuck-at polarities' propagation independently.
type DIModel struct {
	Top           *netlist.Module
	C1            *netlist.Module
	C2            *netlist.Module
	C3            *netlist.Module
	Combinational *ExtractedCombinationalPart
	UsePrimaryIO  bool
}

// Netlist assembles the expanded top, C1, C2 and C3 modules in that
// declaration order.
func (d *DIModel) Netlist() *netlist.Netlist {
	nl := netlist.NewNetlist()
	nl.PushModule(d.Top)
	nl.PushModule(d.C1)
	nl.PushModule(d.C2)
	nl.PushModule(d.C3)
	return nl
}

// BuildDI extends a BroadsideModel with a third combinational copy
// representing the fault-propagation cone. C3's primary inputs follow the
// same independent/held rule as C2's; its pseudo-primary inputs are
// chained from C1's pseudo-primary outputs exactly like C2's. Every output
// the Broadside builder exposed at top (the pseudo-primary outputs always,
// plus the primary outputs when UsePrimaryIO) is replaced by a pair of
// observation outputs n_sa0/n_sa1 driven from C2 and C3 respectively
//.
func BuildDI(bs *BroadsideModel) (*DIModel, error) {
	ex := bs.Combinational
	top := bs.Top.Clone()
	c1 := bs.C1.Clone()
	c2 := bs.C2.Clone()
	c3 := ex.Module.CloneWithNameSuffix(c3Suffix)
	gateC3 := c3.ToGate()

	// Step 3: chain C1's PPOs into C3's PPIs, exactly as for C2.
	for _, pair := range ex.PseudoPrimaryIOPairs {
		c1PpoName := pair.PPO + c1Suffix
		c3PpiName := pair.PPI + c3Suffix
		top.AddAssign(c3PpiName, c1PpoName)
		top.AddWire(netlist.NewWire(c3PpiName))
	}

	// Step 4: C3's copy of primary inputs, independent if use-primary-io,
	// held equal to C1's copy otherwise.
	for _, n := range ex.PrimaryInputs {
		c1PiName := n + c1Suffix
		c3PiName := n + c3Suffix
		gateC3.RebindWire(n, c3PiName)
		if bs.UsePrimaryIO {
			top.AddInput(netlist.NewWire(c3PiName))
		} else {
			top.AddAssign(c3PiName, c1PiName)
			top.AddWire(netlist.NewWire(c3PiName))
		}
	}

	// Step 5: C3's copy of pseudo-primary inputs, chained above.
	for _, n := range ex.PseudoPrimaryInputs {
		c3Name := n + c3Suffix
		gateC3.RebindWire(n, c3Name)
	}

	// Steps 6-7: the DI "output set" is exactly the outputs Broadside
	// already exposed at top (PPO always, PO too when UsePrimaryIO) —
	// recognizable as the ones with a surviving "n = n_c2" assign. Each
	// is replaced by n_sa0 (c2) / n_sa1 (c3).
	for _, w := range ex.Module.Outputs() {
		name := w.Name
		c2Name := name + c2Suffix
		if _, ok := top.AssignForRHS(c2Name); !ok {
			gateC3.RemovePort(name)
			continue
		}

		c3Name := name + c3Suffix
		gateC3.RebindWire(name, c3Name)

		top.RemoveAssign(name, c2Name)
		top.RemoveOutput(name)

		sa0 := name + "_sa0"
		sa1 := name + "_sa1"
		top.AddOutput(netlist.NewWire(sa0))
		top.AddOutput(netlist.NewWire(sa1))
		top.AddAssign(sa0, c2Name)
		top.AddAssign(sa1, c3Name)
		top.AddWire(netlist.NewWire(c3Name))
	}

	top.PushGate(c3GateName, gateC3)

	return &DIModel{Top: top, C1: c1, C2: c2, C3: c3, Combinational: ex, UsePrimaryIO: bs.UsePrimaryIO}, nil
}

// DIATPGModel is a DIModel instrumented with a single observation point and
// the two restriction-gate cones (c2 non-inverted, c3 inverted) that mask
// each cone's fault-free value, ready for equivalent-check emission with a
// base/detected fault pair.
type DIATPGModel struct {
	Top           *netlist.Module
	C1            *netlist.Module
	C2            *netlist.Module
	C3            *netlist.Module
	BaseFault     netlist.Fault
	DetectedFault netlist.Fault
}

func (a *DIATPGModel) Netlist() *netlist.Netlist {
	nl := netlist.NewNetlist()
	nl.PushModule(a.Top)
	nl.PushModule(a.C1)
	nl.PushModule(a.C2)
	nl.PushModule(a.C3)
	return nl
}

// BuildDIATPG adds one observation point for baseFault inside C1, then
// restricts C2's outputs through it directly and C3's outputs through it
// inverted, so the reference model's q_sa0/q_sa1 pair masks whichever
// cone the observation point doesn't activate. The DI contract
// is exactly two ordered faults: baseFault ("undetected") drives the
// shared observation point and is injected into C2 at equivalent-check
// time; detectedFault is injected into C3 only, never observed directly.
func BuildDIATPG(di *DIModel, baseFault, detectedFault netlist.Fault) (*DIATPGModel, error) {
	top := di.Top.Clone()
	c1 := di.C1.Clone()
	c2 := di.C2.Clone()
	c3 := di.C3.Clone()

	restrictionWire, err := c1.AddObservationPoint(baseFault.Location, baseFault.SAValue)
	if err != nil {
		return nil, err
	}
	top.AddWire(netlist.NewWire(restrictionWire))
	top.MutateGate(c1GateName, func(g *netlist.GateInstance) {
		g.Bindings = append(g.Bindings, netlist.WireBinding(restrictionWire, restrictionWire))
	})

	insertRestrictionGates(top, di.C2.Outputs(), restrictionWire, baseFault, c2Suffix, false, "_c2")
	insertRestrictionGates(top, di.C3.Outputs(), restrictionWire, baseFault, c3Suffix, true, "_c3")

	return &DIATPGModel{Top: top, C1: c1, C2: c2, C3: c3, BaseFault: baseFault, DetectedFault: detectedFault}, nil
}

// EquivalentCheck returns the (reference, implementation) netlist pair:
// the implementation injects BaseFault into C2 and DetectedFault into C3,
// per the two-fault DI contract.
func (a *DIATPGModel) EquivalentCheck(conv netlist.OutputConvention) (ref, impl *netlist.Netlist, err error) {
	ref = a.Netlist()

	impC2 := a.C2.Clone()
	if err := impC2.InsertStuckAtFault(a.BaseFault, conv); err != nil {
		return nil, nil, err
	}
	impC3 := a.C3.Clone()
	if err := impC3.InsertStuckAtFault(a.DetectedFault, conv); err != nil {
		return nil, nil, err
	}

	impl = netlist.NewNetlist()
	impl.PushModule(a.Top)
	impl.PushModule(a.C1)
	impl.PushModule(impC2)
	impl.PushModule(impC3)
	return ref, impl, nil
}
