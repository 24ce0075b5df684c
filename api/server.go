package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/quanta-team/quanta-engine/common"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/simulation"
	"go.uber.org/zap"
)

const (
	DEFAULT_HOST             = ""
	DEFAULT_PORT             = "5000"
	DEFAULT_READ_TIMEOUT     = 10 * time.Second
	DEFAULT_WRITE_TIMEOUT    = 60 * time.Second
	DEFAULT_SHUTDOWN_TIMEOUT = 10 * time.Second
)

// Server is the HTTP API runner of the run group.
type Server struct {
	Host            string
	Port            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration

	devMode bool
	srv     *http.Server
}

func NewServer(devMode bool) *Server {
	return &Server{
		Host:            DEFAULT_HOST,
		Port:            DEFAULT_PORT,
		ReadTimeout:     DEFAULT_READ_TIMEOUT,
		WriteTimeout:    DEFAULT_WRITE_TIMEOUT,
		ShutdownTimeout: DEFAULT_SHUTDOWN_TIMEOUT,
		devMode:         devMode,
	}
}

func (s *Server) GetEmptyParams() interface{} {
	return map[string]interface{}{}
}

func (s *Server) SetParams(params interface{}) error {
	if params == nil {
		zap.L().Debug("no params for api server")
		return nil
	}
	pp, ok := params.(map[string]interface{})
	if !ok {
		err := fmt.Errorf("failed to set params for api server/params: %v", params)
		zap.L().Error(err.Error())
		return err
	}
	zap.L().Debug(fmt.Sprintf("Set params for api server: %v", pp))
	if err := common.SetField("host", &s.Host, pp, DEFAULT_HOST); err != nil {
		return err
	}
	if err := common.SetField("port", &s.Port, pp, DEFAULT_PORT); err != nil {
		return err
	}
	if err := common.SetDurationField("read_timeout", &s.ReadTimeout, pp, DEFAULT_READ_TIMEOUT); err != nil {
		return err
	}
	if err := common.SetDurationField("write_timeout", &s.WriteTimeout, pp, DEFAULT_WRITE_TIMEOUT); err != nil {
		return err
	}
	return common.SetDurationField("shutdown_timeout", &s.ShutdownTimeout, pp, DEFAULT_SHUTDOWN_TIMEOUT)
}

// Setup resolves the system components, which must already be set up.
func (s *Server) Setup() error {
	sc := core.GetSystemComponents()
	if sc == nil {
		return errors.New("system components are not set up")
	}
	store, err := sc.DocumentStore()
	if err != nil {
		return errors.Wrap(err, "resolve document store")
	}
	runner, err := simulation.NewRunner(sc)
	if err != nil {
		return errors.Wrap(err, "resolve simulation runner")
	}
	address, err := common.ValidAddress(s.Host, s.Port)
	if err != nil {
		return err
	}
	s.srv = &http.Server{
		Addr:              address,
		Handler:           NewHandler(store, runner, s.devMode),
		ReadHeaderTimeout: s.ReadTimeout,
		ReadTimeout:       s.ReadTimeout,
		WriteTimeout:      s.WriteTimeout,
	}
	zap.L().Info(fmt.Sprintf("API server is set up/address:%s", address))
	return nil
}

func (s *Server) Serve() error {
	if s.srv == nil {
		return errors.New("api server is not set up")
	}
	zap.L().Info(fmt.Sprintf("API server listening on %s", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown() {
	if s.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.ShutdownTimeout)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		zap.L().Error(fmt.Sprintf("failed to shut down api server/reason:%s", err))
	}
}
