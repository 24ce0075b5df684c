package core

import (
	"context"
	"fmt"

	"go.uber.org/dig"
)

const MockVisualization = "mock-png"

var MockCounts = Counts{"00": 512, "11": 512}

type UnimplementedSimulator struct{}

func (u *UnimplementedSimulator) Setup(*Conf) error { return nil }

func (u *UnimplementedSimulator) Execute(_ context.Context, _ *Circuit, _ int) (Counts, error) {
	c := Counts{}
	for k, v := range MockCounts {
		c[k] = v
	}
	return c, nil
}

type failingSimulatorForTest struct {
	UnimplementedSimulator
}

func (failingSimulatorForTest) Execute(_ context.Context, circ *Circuit, _ int) (Counts, error) {
	return nil, fmt.Errorf("index 5 out of range for size %d", circ.QubitCount)
}

// MockDrawing records whether it was disposed.
type MockDrawing struct {
	EncodeErr error
	Disposed  bool
}

func (m *MockDrawing) EncodePNG() ([]byte, error) {
	if m.EncodeErr != nil {
		return nil, m.EncodeErr
	}
	return []byte(MockVisualization), nil
}

func (m *MockDrawing) Dispose() {
	m.Disposed = true
}

type UnimplementedRenderer struct {
	Drawings []*MockDrawing
	// EncodeErr is handed to every drawing created by BarChart.
	EncodeErr error
}

func (u *UnimplementedRenderer) Setup(*Conf) error { return nil }

func (u *UnimplementedRenderer) BarChart(_ []string, _ []float64, _ ChartOptions) (Drawing, error) {
	d := &MockDrawing{EncodeErr: u.EncodeErr}
	u.Drawings = append(u.Drawings, d)
	return d, nil
}

func SCWithMemoryDB() *SystemComponents {
	c := dig.New()
	c.Provide(func() DocumentStore { return &MemoryDB{} })
	c.Provide(func() Simulator { return &UnimplementedSimulator{} })
	c.Provide(func() ChartRenderer { return &UnimplementedRenderer{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}

func SCWithFailingSimulator() *SystemComponents {
	c := dig.New()
	c.Provide(func() DocumentStore { return &MemoryDB{} })
	c.Provide(func() Simulator { return &failingSimulatorForTest{} })
	c.Provide(func() ChartRenderer { return &UnimplementedRenderer{} })
	s := NewSystemComponents(c)
	s.Setup(&Conf{})
	return s
}
