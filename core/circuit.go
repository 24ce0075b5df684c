package core

import (
	"fmt"
	"strings"

	"github.com/mohae/deepcopy"
)

type GateKind int

const (
	GateH GateKind = iota
	GateX
	GateY
	GateZ
	GateCX
	MeasureAll
)

func (g GateKind) String() string {
	switch g {
	case GateH:
		return "h"
	case GateX:
		return "x"
	case GateY:
		return "y"
	case GateZ:
		return "z"
	case GateCX:
		return "cx"
	case MeasureAll:
		return "measure_all"
	default:
		return "unknown"
	}
}

type Operation struct {
	Kind     GateKind
	Targets  []int
	Controls []int
}

func (o Operation) String() string {
	switch {
	case o.Kind == MeasureAll:
		return o.Kind.String()
	case len(o.Controls) > 0:
		return fmt.Sprintf("%s c%v t%v", o.Kind, o.Controls, o.Targets)
	default:
		return fmt.Sprintf("%s t%v", o.Kind, o.Targets)
	}
}

// Circuit is the built, simulator-ready form of a CircuitSpec.
type Circuit struct {
	QubitCount int
	ClbitCount int
	Operations []Operation
}

func NewCircuit(qubits, clbits int) *Circuit {
	return &Circuit{
		QubitCount: qubits,
		ClbitCount: clbits,
		Operations: []Operation{},
	}
}

func (c *Circuit) Append(op Operation) {
	c.Operations = append(c.Operations, op)
}

func (c *Circuit) Clone() *Circuit {
	return deepcopy.Copy(c).(*Circuit)
}

func (c *Circuit) String() string {
	ops := make([]string, 0, len(c.Operations))
	for _, op := range c.Operations {
		ops = append(ops, op.String())
	}
	return fmt.Sprintf("qubits:%d/clbits:%d/ops:[%s]", c.QubitCount, c.ClbitCount, strings.Join(ops, "; "))
}
