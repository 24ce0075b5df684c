//go:build unit
// +build unit

package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quanta-team/quanta-engine/chart"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/db"
	"github.com/quanta-team/quanta-engine/qpu"
)

func TestProvideDIContainer(t *testing.T) {
	tests := []struct {
		name      string
		params    *DIContainerParameters
		wantStore interface{}
		wantErr   bool
	}{
		{
			name:      "memory",
			params:    &DIContainerParameters{DB: "memory", QPU: "statevector", Renderer: "plot"},
			wantStore: &core.MemoryDB{},
		},
		{
			name:      "mongo",
			params:    &DIContainerParameters{DB: "mongo", QPU: "statevector", Renderer: "plot"},
			wantStore: &db.MongoDB{},
		},
		{
			name:    "unknown db",
			params:  &DIContainerParameters{DB: "sqlite", QPU: "statevector", Renderer: "plot"},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quanta{DIContainerParameters: tt.params}
			c, err := q.provideDIContainer()
			require.NoError(t, err)
			s := core.NewSystemComponents(c)

			store, err := s.DocumentStore()
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.wantStore, store)

			sim, err := s.Simulator()
			require.NoError(t, err)
			assert.IsType(t, &qpu.StateVectorQPU{}, sim)

			r, err := s.ChartRenderer()
			require.NoError(t, err)
			assert.IsType(t, &chart.PlotRenderer{}, r)
		})
	}
}

func TestZapLogger(t *testing.T) {
	l, err := zapLogger(&core.Conf{DevMode: true, LogLevel: "debug"})
	require.NoError(t, err)
	assert.True(t, l.Core().Enabled(-1))

	l, err = zapLogger(&core.Conf{LogLevel: "warn"})
	require.NoError(t, err)
	assert.False(t, l.Core().Enabled(0))

	_, err = zapLogger(&core.Conf{EnableFileLog: true, LogDir: t.TempDir() + "/missing"})
	assert.Error(t, err)
}
