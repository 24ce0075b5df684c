package main

import (
	"context"
	"fmt"
	"os"
	"syscall"

	"github.com/go-faster/errors"
	"github.com/oklog/run"
	"go.uber.org/zap"

	"github.com/quanta-team/quanta-engine/api"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/log"
	"github.com/quanta-team/quanta-engine/seed"
)

const APIServerName = "http"

type serveCmd struct{}

func newServeCmd() *serveCmd {
	return &serveCmd{}
}

func (c *serveCmd) Execute(args []string) error {
	logger := setZap(quanta.Conf)
	defer logger.Sync()

	if err := loadSetting(quanta.Conf); err != nil {
		return err
	}
	s, err := setupSystemComponents(quanta.Conf)
	if err != nil {
		return err
	}
	defer s.TearDown()

	if quanta.DIContainerParameters.DB == memoryDB && !quanta.Conf.DisableMemorySeed {
		if err := seedStore(s); err != nil {
			return err
		}
	}

	im := &core.ImplMaps{
		PeriodicTaskImplMap: core.PeriodicTaskImplMap{
			log.VersionLogTaskName: &log.VersionLogTaskImpl{},
			log.MetricsLogTaskName: &log.MetricsLogTaskImpl{},
		},
		APIServerImplMap: core.APIServerImplMap{
			APIServerName: api.NewServer(quanta.Conf.DevMode),
		},
	}
	rc, err := core.NewRunContextWithSettingPath(quanta.Conf.SettingPath, im)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to setup run context/reason:%s", err.Error()))
		return err
	}

	zap.L().Debug("Setting up run-group")
	c.setupRunGroup(rc)

	if err := rc.Run(); err != nil {
		var sig run.SignalError
		if errors.As(err, &sig) {
			zap.L().Info(fmt.Sprintf("received %s, stopped", sig.Signal))
			return nil
		}
		fmt.Fprintf(os.Stderr, "execution error:%v\n", err)
		return err
	}
	return nil
}

func (c *serveCmd) setupRunGroup(rc *core.RunContext) {
	rc.Add(run.SignalHandler(rc.Context, os.Interrupt, syscall.SIGTERM))
	core.SetRunContext(rc)
}

type seedCmd struct{}

func newSeedCmd() *seedCmd {
	return &seedCmd{}
}

func (c *seedCmd) Execute(args []string) error {
	logger := setZap(quanta.Conf)
	defer logger.Sync()

	if err := loadSetting(quanta.Conf); err != nil {
		return err
	}
	s, err := setupSystemComponents(quanta.Conf)
	if err != nil {
		return err
	}
	defer s.TearDown()
	return seedStore(s)
}

func seedStore(s *core.SystemComponents) error {
	store, err := s.DocumentStore()
	if err != nil {
		return err
	}
	if err := store.Ping(context.Background()); err != nil {
		zap.L().Error(fmt.Sprintf("document store is unavailable/reason:%s", err))
		return err
	}
	res, err := seed.Seed(context.Background(), store)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to seed reference data/reason:%s", err))
		return err
	}
	fmt.Printf("Database initialized with %d glossary terms and %d quiz questions\n", res.GlossaryTerms, res.QuizQuestions)
	return nil
}
