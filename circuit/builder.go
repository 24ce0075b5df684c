package circuit

import (
	"fmt"
	"strings"

	"github.com/quanta-team/quanta-engine/core"
	"go.uber.org/zap"
)

type applicator func(c *core.Circuit, g *core.GateSpec)

var applicators = map[string]applicator{
	"h":    singleQubit(core.GateH),
	"x":    singleQubit(core.GateX),
	"y":    singleQubit(core.GateY),
	"z":    singleQubit(core.GateZ),
	"cx":   controlledNot,
	"cnot": controlledNot,
}

// Build translates a circuit description into a circuit ready for simulation.
// Unknown gate names are skipped. Qubit indices are not checked here; the
// simulator rejects the ones out of range. A measurement of every qubit is
// always appended last.
func Build(spec *core.CircuitSpec) *core.Circuit {
	n := spec.QubitCount()
	c := core.NewCircuit(n, n)
	for i := range spec.Gates {
		g := &spec.Gates[i]
		applicatorFor(g.Name)(c, g)
	}
	c.Append(core.Operation{Kind: core.MeasureAll})
	return c
}

func applicatorFor(name string) applicator {
	if a, ok := applicators[strings.ToLower(name)]; ok {
		return a
	}
	return ignore
}

func ignore(_ *core.Circuit, g *core.GateSpec) {
	zap.L().Debug(fmt.Sprintf("ignoring unknown gate/name:%s", g.Name))
}

func singleQubit(kind core.GateKind) applicator {
	return func(c *core.Circuit, g *core.GateSpec) {
		for _, t := range g.Targets {
			c.Append(core.Operation{Kind: kind, Targets: []int{t}})
		}
	}
}

// controlledNot pairs controls and targets by position. Extra entries on the
// longer side are dropped.
func controlledNot(c *core.Circuit, g *core.GateSpec) {
	n := min(len(g.Controls), len(g.Targets))
	for i := 0; i < n; i++ {
		c.Append(core.Operation{
			Kind:     core.GateCX,
			Targets:  []int{g.Targets[i]},
			Controls: []int{g.Controls[i]},
		})
	}
}
