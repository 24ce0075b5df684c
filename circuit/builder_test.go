//go:build unit
// +build unit

package circuit

import (
	"testing"

	"github.com/mohae/deepcopy"
	"github.com/stretchr/testify/assert"

	"github.com/quanta-team/quanta-engine/core"
)

func qubits(n int) *int {
	return &n
}

func measure() core.Operation {
	return core.Operation{Kind: core.MeasureAll}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name       string
		spec       *core.CircuitSpec
		wantQubits int
		wantOps    []core.Operation
	}{
		{
			name:       "empty description measures the default two qubits",
			spec:       &core.CircuitSpec{},
			wantQubits: 2,
			wantOps:    []core.Operation{measure()},
		},
		{
			name: "single qubit gate per target",
			spec: &core.CircuitSpec{
				Qubits: qubits(3),
				Gates:  []core.GateSpec{{Name: "h", Targets: []int{0, 2}}},
			},
			wantQubits: 3,
			wantOps: []core.Operation{
				{Kind: core.GateH, Targets: []int{0}},
				{Kind: core.GateH, Targets: []int{2}},
				measure(),
			},
		},
		{
			name: "names are case insensitive",
			spec: &core.CircuitSpec{
				Gates: []core.GateSpec{
					{Name: "X", Targets: []int{0}},
					{Name: "Y", Targets: []int{1}},
					{Name: "z", Targets: []int{0}},
				},
			},
			wantQubits: 2,
			wantOps: []core.Operation{
				{Kind: core.GateX, Targets: []int{0}},
				{Kind: core.GateY, Targets: []int{1}},
				{Kind: core.GateZ, Targets: []int{0}},
				measure(),
			},
		},
		{
			name: "bell pair",
			spec: &core.CircuitSpec{
				Qubits: qubits(2),
				Gates: []core.GateSpec{
					{Name: "h", Targets: []int{0}},
					{Name: "cx", Targets: []int{1}, Controls: []int{0}},
				},
			},
			wantQubits: 2,
			wantOps: []core.Operation{
				{Kind: core.GateH, Targets: []int{0}},
				{Kind: core.GateCX, Targets: []int{1}, Controls: []int{0}},
				measure(),
			},
		},
		{
			name: "controlled not pairs are truncated to the shorter list",
			spec: &core.CircuitSpec{
				Qubits: qubits(3),
				Gates:  []core.GateSpec{{Name: "CNOT", Targets: []int{1, 2}, Controls: []int{0}}},
			},
			wantQubits: 3,
			wantOps: []core.Operation{
				{Kind: core.GateCX, Targets: []int{1}, Controls: []int{0}},
				measure(),
			},
		},
		{
			name: "controlled not without controls adds nothing",
			spec: &core.CircuitSpec{
				Gates: []core.GateSpec{{Name: "cx", Targets: []int{1}}},
			},
			wantQubits: 2,
			wantOps:    []core.Operation{measure()},
		},
		{
			name: "unknown gates are ignored",
			spec: &core.CircuitSpec{
				Gates: []core.GateSpec{
					{Name: "toffoli", Targets: []int{0}},
					{Name: "x", Targets: []int{1}},
				},
			},
			wantQubits: 2,
			wantOps: []core.Operation{
				{Kind: core.GateX, Targets: []int{1}},
				measure(),
			},
		},
		{
			name: "indices are passed through unchecked",
			spec: &core.CircuitSpec{
				Gates: []core.GateSpec{{Name: "x", Targets: []int{5}}},
			},
			wantQubits: 2,
			wantOps: []core.Operation{
				{Kind: core.GateX, Targets: []int{5}},
				measure(),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := deepcopy.Copy(tt.spec).(*core.CircuitSpec)

			got := Build(tt.spec)
			assert.Equal(t, tt.wantQubits, got.QubitCount)
			assert.Equal(t, tt.wantQubits, got.ClbitCount)
			assert.Equal(t, tt.wantOps, got.Operations)
			assert.Equal(t, before, tt.spec)
		})
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	spec := &core.CircuitSpec{
		Qubits: qubits(2),
		Gates: []core.GateSpec{
			{Name: "h", Targets: []int{0}},
			{Name: "cx", Targets: []int{1}, Controls: []int{0}},
		},
	}
	assert.Equal(t, Build(spec), Build(spec))
}

func TestBuildAlwaysEndsWithMeasurement(t *testing.T) {
	spec := &core.CircuitSpec{
		Gates: []core.GateSpec{
			{Name: "h", Targets: []int{0, 1}},
			{Name: "unknown", Targets: []int{0}},
		},
	}
	c := Build(spec)
	last := c.Operations[len(c.Operations)-1]
	assert.Equal(t, core.MeasureAll, last.Kind)
	for _, op := range c.Operations[:len(c.Operations)-1] {
		assert.NotEqual(t, core.MeasureAll, op.Kind)
	}
}
