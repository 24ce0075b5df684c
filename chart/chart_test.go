//go:build unit
// +build unit

package chart

import (
	"bytes"
	"image/png"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanta-team/quanta-engine/core"
)

var testOptions = core.ChartOptions{
	Title:          "Quantum Circuit Simulation Results",
	XLabel:         "Measurement Outcome",
	YLabel:         "Counts",
	XLabelRotation: 45,
	WidthInch:      10,
	HeightInch:     6,
}

func TestBarChart(t *testing.T) {
	r := &PlotRenderer{}
	require.NoError(t, r.Setup(&core.Conf{}))

	d, err := r.BarChart([]string{"00", "11"}, []float64{510, 514}, testOptions)
	require.NoError(t, err)
	defer d.Dispose()

	b, err := d.EncodePNG()
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(b))
	require.NoError(t, err)
	assert.Equal(t, 1000, img.Bounds().Dx())
	assert.Equal(t, 600, img.Bounds().Dy())
}

func TestBarChartErrors(t *testing.T) {
	tests := []struct {
		name    string
		labels  []string
		values  []float64
		opts    core.ChartOptions
		wantErr string
	}{
		{
			name:    "length mismatch",
			labels:  []string{"0"},
			values:  []float64{1, 2},
			opts:    testOptions,
			wantErr: "got 1 labels for 2 values",
		},
		{
			name:    "empty",
			opts:    testOptions,
			wantErr: "no values to chart",
		},
		{
			name:    "zero size",
			labels:  []string{"0"},
			values:  []float64{1},
			opts:    core.ChartOptions{},
			wantErr: "invalid canvas size 0.0x0.0 inch",
		},
	}
	r := &PlotRenderer{}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := r.BarChart(tt.labels, tt.values, tt.opts)
			assert.EqualError(t, err, tt.wantErr)
			assert.Nil(t, d)
		})
	}
}

func TestEncodeAfterDispose(t *testing.T) {
	r := &PlotRenderer{}
	d, err := r.BarChart([]string{"0", "1"}, []float64{3, 5}, testOptions)
	require.NoError(t, err)
	d.Dispose()

	b, err := d.EncodePNG()
	assert.ErrorIs(t, err, ErrDisposed)
	assert.Nil(t, b)
}
