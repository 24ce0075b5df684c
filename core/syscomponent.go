package core

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/dig"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

var systemComponents *SystemComponents

// Filter is an equality match on top-level document fields.
type Filter = bson.M

type FindOptions struct {
	SortKey string // ascending; empty keeps the natural order
	Skip    int64
	Limit   int64 // 0 means no limit
}

type DocumentStore interface {
	Setup(*Conf) error
	Ping(ctx context.Context) error
	Count(ctx context.Context, collection string, filter Filter) (int64, error)
	Find(ctx context.Context, collection string, filter Filter, opts *FindOptions) ([]bson.Raw, error)
	Drop(ctx context.Context, collection string) error
	InsertMany(ctx context.Context, collection string, docs []interface{}) error
	TearDown() error
}

type Simulator interface {
	Setup(*Conf) error
	Execute(ctx context.Context, circ *Circuit, shots int) (Counts, error)
}

type ChartOptions struct {
	Title          string
	XLabel         string
	YLabel         string
	XLabelRotation float64 // degrees
	WidthInch      float64
	HeightInch     float64
}

// Drawing is a rendered chart holding its drawing surface until Dispose.
type Drawing interface {
	EncodePNG() ([]byte, error)
	Dispose()
}

type ChartRenderer interface {
	Setup(*Conf) error
	BarChart(labels []string, values []float64, opts ChartOptions) (Drawing, error)
}

type SystemComponents struct {
	*dig.Container
}

func NewSystemComponents(con *dig.Container) *SystemComponents {
	return &SystemComponents{con}
}

func GetSystemComponents() *SystemComponents {
	return systemComponents
}

func (s *SystemComponents) Setup(conf *Conf) error {
	zap.L().Debug("Setting up document store")
	err := s.Invoke(
		func(d DocumentStore) error {
			return d.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up simulator")
	err = s.Invoke(
		func(q Simulator) error {
			return q.Setup(conf)
		})
	if err != nil {
		return err
	}

	zap.L().Debug("Setting up chart renderer")
	err = s.Invoke(
		func(r ChartRenderer) error {
			return r.Setup(conf)
		})
	if err != nil {
		return err
	}
	systemComponents = s
	return nil
}

func (s *SystemComponents) TearDown() error {
	var errs error
	invokeErr := s.Invoke(
		func(d DocumentStore) {
			errs = multierr.Append(errs, d.TearDown())
		})
	errs = multierr.Append(errs, invokeErr)
	if errs != nil {
		zap.L().Error("failed to tear down system components", zap.Error(errs))
	}
	return errs
}

func (s *SystemComponents) DocumentStore() (store DocumentStore, err error) {
	err = s.Invoke(func(d DocumentStore) { store = d })
	return
}

func (s *SystemComponents) Simulator() (sim Simulator, err error) {
	err = s.Invoke(func(q Simulator) { sim = q })
	return
}

func (s *SystemComponents) ChartRenderer() (renderer ChartRenderer, err error) {
	err = s.Invoke(func(r ChartRenderer) { renderer = r })
	return
}
