package log

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/quanta-team/quanta-engine/common"
	"github.com/quanta-team/quanta-engine/core"
	"go.uber.org/zap"
)

const (
	MetricsLogTaskName = "metrics_log"

	requestsMetricName    = "quanta_api_requests_total"
	simulationsMetricName = "quanta_api_simulations_total"

	requestsKeyInMetrics          = "http_requests"
	simulationsKeyInMetrics       = "simulations"
	failedSimulationsKeyInMetrics = "failed_simulations"
	storeReachableKeyInMetrics    = "store_reachable"

	pingTimeout = 2 * time.Second
)

// MetricsLogTaskImpl appends a JSON line of process counters to a daily file.
type MetricsLogTaskImpl struct {
	FileDir  string `toml:"file_dir"`
	Gatherer prometheus.Gatherer

	dl     *dailyLogger
	logger *slog.Logger
	store  core.DocumentStore

	core.DefaultTaskImpl
}

func setupMetricsLogTask(fileDir string) (*dailyLogger, error) {
	if err := common.IsDirWritable(fileDir); err != nil {
		return nil, fmt.Errorf("failed to write to %s: %w", fileDir, err)
	}
	return newDailyLogger(fileDir), nil
}

func (m *MetricsLogTaskImpl) Setup() error {
	dl, err := setupMetricsLogTask(m.FileDir)
	if err != nil {
		zap.L().Error("failed to set up metrics log task", zap.Error(err))
		return err
	}
	m.dl = dl
	m.logger = slog.New(slog.NewJSONHandler(dl, nil))
	if m.Gatherer == nil {
		m.Gatherer = prometheus.DefaultGatherer
	}
	if sc := core.GetSystemComponents(); sc != nil {
		if store, err := sc.DocumentStore(); err == nil {
			m.store = store
		}
	}
	return nil
}

func (m *MetricsLogTaskImpl) GetEmptyParams() interface{} {
	return m
}

func (m *MetricsLogTaskImpl) SetParams(p interface{}) error {
	if p == nil {
		msg := "no params for metrics log task"
		zap.L().Debug(msg)
		return nil
	}
	mp, ok := p.(map[string]interface{})
	if !ok {
		msg := fmt.Errorf("failed to set params for metrics log task/params: %s", p)
		zap.L().Error(msg.Error())
		return msg
	}
	return common.SetField("file_dir", &m.FileDir, mp, m.FileDir)
}

func (m *MetricsLogTaskImpl) Task() {
	snap, err := m.snapshot()
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to gather metrics/reason:%s", err))
		return
	}
	m.logger.Info(
		"Metrics",
		slog.Float64(requestsKeyInMetrics, snap.requests),
		slog.Float64(simulationsKeyInMetrics, snap.simulations),
		slog.Float64(failedSimulationsKeyInMetrics, snap.failedSimulations),
		slog.Bool(storeReachableKeyInMetrics, m.storeReachable()),
	)
}

func (m *MetricsLogTaskImpl) Cleanup() {
	if m.dl != nil {
		m.dl.Close()
	}
}

type metricsSnapshot struct {
	requests          float64
	simulations       float64
	failedSimulations float64
}

func (m *MetricsLogTaskImpl) snapshot() (*metricsSnapshot, error) {
	families, err := m.Gatherer.Gather()
	if err != nil {
		return nil, err
	}
	snap := &metricsSnapshot{}
	for _, mf := range families {
		switch mf.GetName() {
		case requestsMetricName:
			for _, metric := range mf.GetMetric() {
				snap.requests += metric.GetCounter().GetValue()
			}
		case simulationsMetricName:
			for _, metric := range mf.GetMetric() {
				v := metric.GetCounter().GetValue()
				snap.simulations += v
				for _, lp := range metric.GetLabel() {
					if lp.GetName() == "outcome" && lp.GetValue() == "failure" {
						snap.failedSimulations += v
					}
				}
			}
		}
	}
	return snap, nil
}

func (m *MetricsLogTaskImpl) storeReachable() bool {
	if m.store == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	return m.store.Ping(ctx) == nil
}

type dailyLogger struct {
	mu              sync.Mutex
	fileDir         string
	currentFileName string
	file            *os.File
}

func newDailyLogger(fileDir string) *dailyLogger {
	return &dailyLogger{
		fileDir: fileDir,
	}
}

func (dl *dailyLogger) Write(p []byte) (n int, err error) {
	dl.mu.Lock()
	defer dl.mu.Unlock()

	fileName := fmt.Sprintf("metrics-%s.log", time.Now().Format("2006-01-02"))
	if dl.file == nil || dl.currentFileName != fileName {
		if dl.file != nil {
			dl.file.Close()
		}
		f, err := os.OpenFile(filepath.Join(dl.fileDir, fileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			dl.file = nil
			return 0, err
		}
		dl.file = f
		dl.currentFileName = fileName
	}

	return dl.file.Write(p)
}

func (dl *dailyLogger) Close() error {
	dl.mu.Lock()
	defer dl.mu.Unlock()
	if dl.file == nil {
		return nil
	}
	err := dl.file.Close()
	dl.file = nil
	return err
}
