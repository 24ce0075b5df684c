package qpu

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/cblas128"
	"gonum.org/v1/gonum/stat/distuv"
)

var (
	gateH = unitary(complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0), complex(1/math.Sqrt2, 0), complex(-1/math.Sqrt2, 0))
	gateX = unitary(0, 1, 1, 0)
	gateY = unitary(0, -1i, 1i, 0)
	gateZ = unitary(1, 0, 0, -1)
)

func unitary(a, b, c, d complex128) cblas128.General {
	return cblas128.General{Rows: 2, Cols: 2, Stride: 2, Data: []complex128{a, b, c, d}}
}

// stateVector holds the 2^n amplitudes of an n-qubit register. Qubit q is bit
// q of the basis state index.
type stateVector struct {
	amplitudes []complex128
	qubits     int
}

func newStateVector(qubits int) *stateVector {
	amps := make([]complex128, 1<<qubits)
	amps[0] = 1
	return &stateVector{amplitudes: amps, qubits: qubits}
}

func (s *stateVector) checkIndex(q int) error {
	if q < 0 || q >= s.qubits {
		return fmt.Errorf("index %d out of range for size %d", q, s.qubits)
	}
	return nil
}

// apply1 multiplies u into every amplitude pair that differs only in bit q.
// Each run of 2^(q+1) amplitudes is a 2x2^q row-major block with bit q as the
// row index.
func (s *stateVector) apply1(u cblas128.General, q int) {
	width := 1 << q
	scratch := make([]complex128, 2*width)
	for start := 0; start < len(s.amplitudes); start += 2 * width {
		block := s.amplitudes[start : start+2*width]
		copy(scratch, block)
		cblas128.Gemm(blas.NoTrans, blas.NoTrans, 1, u,
			cblas128.General{Rows: 2, Cols: width, Stride: width, Data: scratch},
			0,
			cblas128.General{Rows: 2, Cols: width, Stride: width, Data: block})
	}
}

// cx swaps the target bit of every basis state whose control bit is set.
// Within runs of 2^min(control, target) indices both bits are constant.
func (s *stateVector) cx(control, target int) {
	cbit, tbit := 1<<control, 1<<target
	run := 1 << min(control, target)
	for start := 0; start < len(s.amplitudes); start += run {
		if start&cbit == 0 || start&tbit != 0 {
			continue
		}
		cblas128.Swap(
			cblas128.Vector{N: run, Inc: 1, Data: s.amplitudes[start : start+run]},
			cblas128.Vector{N: run, Inc: 1, Data: s.amplitudes[start|tbit : start|tbit+run]})
	}
}

func (s *stateVector) probabilities() []float64 {
	p := make([]float64, len(s.amplitudes))
	for i, a := range s.amplitudes {
		p[i] = real(a)*real(a) + imag(a)*imag(a)
	}
	return p
}

// sample draws shots outcomes from the measurement distribution and returns
// how often each basis state was observed.
func (s *stateVector) sample(src rand.Source, shots int) map[int]uint32 {
	dist := distuv.NewCategorical(s.probabilities(), src)
	hits := make(map[int]uint32)
	for n := 0; n < shots; n++ {
		hits[int(dist.Rand())]++
	}
	return hits
}

// bitstring renders a basis state over clbits classical bits, bit 0 rightmost.
func bitstring(state, clbits int) string {
	b := strconv.FormatInt(int64(state), 2)
	if len(b) >= clbits {
		return b[len(b)-clbits:]
	}
	return strings.Repeat("0", clbits-len(b)) + b
}
