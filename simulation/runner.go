package simulation

import (
	"context"
	"encoding/base64"
	"fmt"
	"sort"

	"github.com/go-faster/errors"
	"github.com/quanta-team/quanta-engine/core"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// Shots is the number of measurements taken per run.
const Shots = 1024

var ChartOptions = core.ChartOptions{
	Title:          "Quantum Circuit Simulation Results",
	XLabel:         "Measurement Outcome",
	YLabel:         "Counts",
	XLabelRotation: 45,
	WidthInch:      10,
	HeightInch:     6,
}

var tracer = otel.Tracer("github.com/quanta-team/quanta-engine/simulation")

type Runner struct {
	Simulator core.Simulator
	Renderer  core.ChartRenderer
}

func NewRunner(sc *core.SystemComponents) (*Runner, error) {
	sim, err := sc.Simulator()
	if err != nil {
		return nil, err
	}
	r, err := sc.ChartRenderer()
	if err != nil {
		return nil, err
	}
	return &Runner{Simulator: sim, Renderer: r}, nil
}

// Run executes circ and renders its histogram. Every error is returned as a
// core.SimulationFailure and no partial result is produced.
func (r *Runner) Run(ctx context.Context, circ *core.Circuit) (result *core.SimulationResult, err error) {
	ctx, span := tracer.Start(ctx, "simulation.Run", trace.WithAttributes(
		attribute.Int("quanta.qubits", circ.QubitCount),
		attribute.Int("quanta.operations", len(circ.Operations)),
		attribute.Int("quanta.shots", Shots),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	result, err = r.run(ctx, circ)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to simulate circuit/%s/reason:%s", circ, err))
		return nil, core.NewFailure(core.SimulationFailure, err)
	}
	zap.L().Debug(fmt.Sprintf("simulated circuit/%s/result:%s", circ, result))
	return result, nil
}

func (r *Runner) run(ctx context.Context, circ *core.Circuit) (*core.SimulationResult, error) {
	counts, err := r.Simulator.Execute(ctx, circ, Shots)
	if err != nil {
		return nil, err
	}
	labels, values := histogram(counts)
	d, err := r.Renderer.BarChart(labels, values, ChartOptions)
	if err != nil {
		return nil, errors.Wrap(err, "render chart")
	}
	defer d.Dispose()

	img, err := d.EncodePNG()
	if err != nil {
		return nil, errors.Wrap(err, "encode chart")
	}
	return &core.SimulationResult{
		Counts:        counts,
		Visualization: base64.StdEncoding.EncodeToString(img),
	}, nil
}

// histogram orders the outcomes by bitstring.
func histogram(counts core.Counts) ([]string, []float64) {
	labels := make([]string, 0, len(counts))
	for k := range counts {
		labels = append(labels, k)
	}
	sort.Strings(labels)
	values := make([]float64, len(labels))
	for i, k := range labels {
		values[i] = float64(counts[k])
	}
	return labels, values
}
