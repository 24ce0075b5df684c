package qpu

import (
	"context"
	"fmt"
	"time"

	"github.com/quanta-team/quanta-engine/core"
	"go.uber.org/zap"
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/blas/cblas128"
)

// StateVectorQPU simulates circuits exactly on a full state vector with gonum
// BLAS and samples the final measurement distribution with distuv.
type StateVectorQPU struct {
	setting *core.SimulatorSetting
}

func (q *StateVectorQPU) Setup(_ *core.Conf) error {
	zap.L().Debug("setting up state vector QPU")
	q.setting = loadSimulatorSetting()
	if q.setting.MaxQubits < 1 {
		return fmt.Errorf("max_qubits must be positive, got %d", q.setting.MaxQubits)
	}
	zap.L().Debug(fmt.Sprintf("simulator setting/max_qubits:%d/seed:%d", q.setting.MaxQubits, q.setting.Seed))
	return nil
}

func loadSimulatorSetting() *core.SimulatorSetting {
	s, ok := core.GetComponentSetting(core.SimulatorSettingKey)
	if !ok {
		return core.NewSimulatorSetting()
	}
	ss, ok := s.(*core.SimulatorSetting)
	if !ok {
		zap.L().Warn(fmt.Sprintf("unexpected simulator setting type %T, using defaults", s))
		return core.NewSimulatorSetting()
	}
	return ss
}

func (q *StateVectorQPU) Execute(ctx context.Context, circ *core.Circuit, shots int) (core.Counts, error) {
	if q.setting == nil {
		return nil, fmt.Errorf("simulator is not set up")
	}
	if err := q.validate(circ, shots); err != nil {
		return nil, err
	}
	sv := newStateVector(circ.QubitCount)
	measured := false
	for _, op := range circ.Operations {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if err := apply(sv, op); err != nil {
			return nil, err
		}
		if op.Kind == core.MeasureAll {
			measured = true
		}
	}
	counts := core.Counts{}
	if !measured {
		return counts, nil
	}
	for state, hits := range sv.sample(q.newSource(), shots) {
		counts[bitstring(state, circ.ClbitCount)] += hits
	}
	zap.L().Debug(fmt.Sprintf("executed circuit/%s/counts:%s", circ, counts))
	return counts, nil
}

func (q *StateVectorQPU) validate(circ *core.Circuit, shots int) error {
	if circ.QubitCount < 1 {
		return fmt.Errorf("qubit count must be at least 1, got %d", circ.QubitCount)
	}
	if circ.QubitCount > q.setting.MaxQubits {
		return fmt.Errorf("qubit count %d exceeds the simulator limit of %d", circ.QubitCount, q.setting.MaxQubits)
	}
	if circ.ClbitCount < 1 {
		return fmt.Errorf("classical bit count must be at least 1, got %d", circ.ClbitCount)
	}
	if shots < 1 {
		return fmt.Errorf("shots must be positive, got %d", shots)
	}
	return nil
}

// newSource returns a source owned by a single execution.
func (q *StateVectorQPU) newSource() rand.Source {
	seed := q.setting.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return rand.NewSource(uint64(seed))
}

var gates = map[core.GateKind]cblas128.General{
	core.GateH: gateH,
	core.GateX: gateX,
	core.GateY: gateY,
	core.GateZ: gateZ,
}

func apply(sv *stateVector, op core.Operation) error {
	switch op.Kind {
	case core.GateH, core.GateX, core.GateY, core.GateZ:
		for _, t := range op.Targets {
			if err := sv.checkIndex(t); err != nil {
				return err
			}
			sv.apply1(gates[op.Kind], t)
		}
	case core.GateCX:
		if len(op.Controls) != len(op.Targets) {
			return fmt.Errorf("cx needs as many controls as targets, got %d and %d", len(op.Controls), len(op.Targets))
		}
		for i, t := range op.Targets {
			c := op.Controls[i]
			if err := sv.checkIndex(c); err != nil {
				return err
			}
			if err := sv.checkIndex(t); err != nil {
				return err
			}
			if c == t {
				return fmt.Errorf("cx control and target must differ, both are %d", c)
			}
			sv.cx(c, t)
		}
	case core.MeasureAll:
	default:
		return fmt.Errorf("unsupported operation %s", op.Kind)
	}
	return nil
}
