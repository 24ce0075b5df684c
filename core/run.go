package core

import (
	"context"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/oklog/run"
	"github.com/quanta-team/quanta-engine/common"
	"go.uber.org/zap"
)

var runContext *RunContext

const (
	PERIODIC_TASKS = "periodic_tasks"
	API_SERVERS    = "api_servers"
)

type PeriodicTaskImplMap map[string]PeriodicTaskImpl
type APIServerImplMap map[string]APIServerImpl

type PeriodicTaskMap map[string]*PeriodicTask
type APIServerMap map[string]*APIServer

type ImplMaps struct {
	PeriodicTaskImplMap PeriodicTaskImplMap
	APIServerImplMap    APIServerImplMap
}

type Runner interface {
	*PeriodicTask | *APIServer
	GetParams() interface{}
}

type RunnerImpl interface {
	GetEmptyParams() interface{}
	SetParams(interface{}) error
	Setup() error
}

type RunContext struct {
	*run.Group
	context.Context

	settingsPath string

	RunGroupMaps *RunGroupMaps `toml:"run_group,omitempty"`
}

type RunGroupSetting struct {
	Entries map[string]interface{} `toml:"run_group,omitempty"`
}

type RunGroupMaps struct {
	PeriodicTasks PeriodicTaskMap `toml:"periodic_tasks"`
	APIServers    APIServerMap    `toml:"api_servers"`
}

func newRunGroupMaps() *RunGroupMaps {
	return &RunGroupMaps{
		PeriodicTasks: make(PeriodicTaskMap),
		APIServers:    make(APIServerMap),
	}
}

func parseRunGroupSettings(settings map[string]interface{}, im *ImplMaps) (*RunGroupMaps, error) {
	rgm := newRunGroupMaps()
	for group, value := range settings {
		entries, ok := value.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("run group %s must be a table, got %T", group, value)
		}
		switch group {
		case PERIODIC_TASKS:
			ptm, err := parseRunnerSettings[*PeriodicTask, PeriodicTaskImpl](entries, im.PeriodicTaskImplMap)
			if err != nil {
				zap.L().Error(fmt.Sprintf("Failed to parse periodic tasks settings. Reason:%s", err))
				return nil, err
			}
			rgm.PeriodicTasks = ptm
		case API_SERVERS:
			asm, err := parseRunnerSettings[*APIServer, APIServerImpl](entries, im.APIServerImplMap)
			if err != nil {
				zap.L().Error(fmt.Sprintf("Failed to parse api servers settings. Reason:%s", err))
				return nil, err
			}
			rgm.APIServers = asm
		default:
			msg := fmt.Sprintf("Unknown run group type. Group:%s, Value:%v", group, value)
			zap.L().Error(msg)
			return nil, fmt.Errorf("%s", msg)
		}
	}
	return rgm, nil
}

func parseRunnerSettings[R Runner, I RunnerImpl](settings map[string]interface{}, implMap map[string]I) (map[string]R, error) {
	runnerMap := make(map[string]R)
	for runnerName := range settings {
		impl, ok := implMap[runnerName]
		if !ok {
			return nil, fmt.Errorf("failed to find %s implementation", runnerName)
		}
		runner, err := newRunner[R, I](impl)
		if err != nil {
			return nil, fmt.Errorf("failed to set implementation to %s/reason:%w", runnerName, err)
		}
		runnerMap[runnerName] = runner
	}
	return runnerMap, nil
}

func newRunner[R Runner, I RunnerImpl](runnerImpl I) (runner R, err error) {
	switch any(runner).(type) {
	case *PeriodicTask:
		i, ok := any(runnerImpl).(PeriodicTaskImpl)
		if !ok {
			return runner, fmt.Errorf("failed to cast to PeriodicTaskImpl/impl:%v", runnerImpl)
		}
		runner = any(&PeriodicTask{PeriodicTaskImpl: i}).(R)
	case *APIServer:
		i, ok := any(runnerImpl).(APIServerImpl)
		if !ok {
			return runner, fmt.Errorf("failed to cast to APIServerImpl/impl:%v", runnerImpl)
		}
		runner = any(&APIServer{APIServerImpl: i}).(R)
	default:
		return runner, fmt.Errorf("unknown runner type:%T", runner)
	}
	return runner, nil
}

func NewRunContext() *RunContext {
	return &RunContext{
		Group:        &run.Group{},
		Context:      context.Background(),
		RunGroupMaps: newRunGroupMaps(),
	}
}

// NewRunContextWithSettingPath builds the run group from the run_group table
// of the setting file. Runner implementations are looked up in im by name and
// receive their params table before Setup.
func NewRunContextWithSettingPath(settingsPath string, im *ImplMaps) (*RunContext, error) {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		return nil, err
	}
	return newRunContextFromString(tomlString, settingsPath, im)
}

func newRunContextFromString(tomlString, settingsPath string, im *ImplMaps) (*RunContext, error) {
	s := &RunGroupSetting{Entries: make(map[string]interface{})}
	if _, err := toml.Decode(tomlString, s); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to decode settings file. Reason:%s", err))
		return nil, err
	}
	runGroupMaps, err := parseRunGroupSettings(s.Entries, im)
	if err != nil {
		return nil, err
	}
	rc := &RunContext{
		Group:        &run.Group{},
		Context:      context.Background(),
		settingsPath: settingsPath,
		RunGroupMaps: runGroupMaps,
	}

	// Decoding into RunGroupMaps fills Period and Params. The embedded impls
	// are interfaces toml cannot decode into, so keep them aside.
	taskImpls := make(map[string]PeriodicTaskImpl)
	for name, task := range rc.RunGroupMaps.PeriodicTasks {
		taskImpls[name] = task.PeriodicTaskImpl
	}
	serverImpls := make(map[string]APIServerImpl)
	for name, server := range rc.RunGroupMaps.APIServers {
		serverImpls[name] = server.APIServerImpl
	}
	if _, err := toml.Decode(tomlString, rc); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to decode settings file. Reason:%s", err))
		return nil, err
	}
	for name, task := range rc.RunGroupMaps.PeriodicTasks {
		task.PeriodicTaskImpl = taskImpls[name]
	}
	for name, server := range rc.RunGroupMaps.APIServers {
		server.APIServerImpl = serverImpls[name]
	}

	if err := setParametersToImpl(rc.RunGroupMaps.PeriodicTasks); err != nil {
		return nil, err
	}
	if err := setParametersToImpl(rc.RunGroupMaps.APIServers); err != nil {
		return nil, err
	}
	if err := setupImplAndAddToRunContext(rc.RunGroupMaps.PeriodicTasks, rc.AddPeriodicTask); err != nil {
		return nil, err
	}
	if err := setupImplAndAddToRunContext(rc.RunGroupMaps.APIServers, rc.AddAPIServer); err != nil {
		return nil, err
	}
	zap.L().Info("Successfully initialized RunContext", zap.Any("RunGroupMaps", rc.RunGroupMaps))
	return rc, nil
}

func setParametersToImpl[R Runner](runners map[string]R) error {
	for name, runner := range runners {
		if err := any(runner).(RunnerImpl).SetParams(runner.GetParams()); err != nil {
			zap.L().Error(fmt.Sprintf("failed to set parameters to %s/reason:%s", name, err))
			return err
		}
	}
	return nil
}

func setupImplAndAddToRunContext[R Runner](runners map[string]R, addFunc func(R, string) error) error {
	for name, runner := range runners {
		if err := any(runner).(RunnerImpl).Setup(); err != nil {
			zap.L().Error(fmt.Sprintf("failed to setup %s/reason:%s", name, err))
			return err
		}
		if err := addFunc(runner, name); err != nil {
			zap.L().Error(fmt.Sprintf("failed to add runner %s/reason:%s", name, err))
			return err
		}
		zap.L().Info(fmt.Sprintf("successfully added runner %s", name))
	}
	return nil
}

func GetRunContext() *RunContext {
	return runContext
}

func SetRunContext(rc *RunContext) {
	runContext = rc
}

type PeriodicTask struct {
	Period time.Duration `toml:"period"`
	Params interface{}   `toml:"params,omitempty"`
	PeriodicTaskImpl
}

func (t *PeriodicTask) GetParams() interface{} {
	return t.Params
}

type PeriodicTaskImpl interface {
	RunnerImpl
	Task()
	Cleanup()
}

type DefaultTaskImpl struct{}

func (v *DefaultTaskImpl) Setup() error {
	return nil
}

func (v *DefaultTaskImpl) GetEmptyParams() interface{} {
	return v
}

func (v *DefaultTaskImpl) SetParams(p interface{}) error {
	return nil
}

func (v *DefaultTaskImpl) Task() {}

func (v *DefaultTaskImpl) Cleanup() {}

func (rc *RunContext) AddPeriodicTask(t *PeriodicTask, taskName string) error {
	if t.Period <= 0 {
		return fmt.Errorf("period of %s must be positive, got %s", taskName, t.Period)
	}
	ctx, cancel := context.WithCancel(rc.Context)
	rc.Group.Add(
		func() error {
			ticker := time.NewTicker(t.Period)
			defer ticker.Stop()
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/Start]", taskName))
			t.PeriodicTaskImpl.Task()
			for {
				select {
				case <-ctx.Done():
					zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/TearDown]cleaning up", taskName))
					t.PeriodicTaskImpl.Cleanup()
					return ctx.Err()
				case <-ticker.C:
					t.PeriodicTaskImpl.Task()
				}
			}
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[PeriodicTask/%s/TearDown]cancelling", taskName))
			cancel()
		},
	)
	return nil
}

type APIServer struct {
	Params interface{} `toml:"params,omitempty"`
	APIServerImpl
}

func (s *APIServer) GetParams() interface{} {
	return s.Params
}

type APIServerImpl interface {
	RunnerImpl
	Serve() error
	Shutdown()
}

func NewAPIServer(impl APIServerImpl) *APIServer {
	return &APIServer{
		Params:        impl.GetEmptyParams(),
		APIServerImpl: impl,
	}
}

func (rc *RunContext) AddAPIServer(s *APIServer, serverName string) error {
	rc.Group.Add(
		func() error {
			zap.L().Info(fmt.Sprintf("[APIServer/%s/Start]", serverName))
			if err := s.Serve(); err != nil {
				zap.L().Error(fmt.Sprintf("[APIServer/%s/Error]failed to serve/reason:%s", serverName, err))
				return err
			}
			return nil
		},
		func(error) {
			zap.L().Info(fmt.Sprintf("[APIServer/%s/TearDown]shutting down", serverName))
			s.Shutdown()
			zap.L().Info(fmt.Sprintf("[APIServer/%s/TearDown]shut down", serverName))
		},
	)
	return nil
}
