package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/massn/envordot"

	"github.com/quanta-team/quanta-engine/chart"
	"github.com/quanta-team/quanta-engine/core"
	"github.com/quanta-team/quanta-engine/db"
	"github.com/quanta-team/quanta-engine/qpu"

	"go.uber.org/dig"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	rotate "github.com/lestrrat-go/file-rotatelogs"
)

const (
	memoryDB = "memory"
	mongoDB  = "mongo"
)

var versionByBuildFlag string
var parser *flags.Parser
var quanta *Quanta

func init() {
	if err := envordot.Load(false, ".env"); err != nil {
		fmt.Printf("Not found \".env\" file. Use only environment variables. Reason:%s\n", err.Error())
	} else {
		fmt.Println("Found \".env\" file. Environment variables are preferred, " +
			"but non-conflicting variables are those in the \".env\" file.")
	}
	quanta = &Quanta{}
	setParser(quanta)
}

type Quanta struct {
	DIContainerParameters *DIContainerParameters
	Conf                  *core.Conf
}

type DIContainerParameters struct {
	DB       string `long:"db" description:"document store" default:"mongo" choice:"mongo" choice:"memory" env:"QUANTA_DB"`
	QPU      string `long:"qpu" description:"simulator type" default:"statevector" choice:"statevector" env:"QUANTA_QPU"`
	Renderer string `long:"renderer" description:"chart renderer type" default:"plot" choice:"plot" env:"QUANTA_RENDERER"`
}

func setParser(q *Quanta) {
	parser = flags.NewParser(q, flags.Default)
	parser.ShortDescription = "quanta engine"
	parser.LongDescription = "quantum circuit simulation and learning content API."
	parser.AddCommand("serve", "start API server", "serve the HTTP API and periodic tasks", newServeCmd())
	parser.AddCommand("seed", "seed reference data", "replace the glossary and quiz collections with the bundled data", newSeedCmd())
}

func parse() {
	if _, err := parser.Parse(); err != nil {
		code := 1
		if fe, ok := err.(*flags.Error); ok {
			if fe.Type == flags.ErrHelp {
				code = 0
			}
		}
		if code == 1 {
			fmt.Printf("failed to parse flags, because %s\n", err)
		}
		os.Exit(code)
	}
}

func (q *Quanta) provideDIContainer() (*dig.Container, error) {
	c := dig.New()
	err := c.Provide(func() (core.DocumentStore, error) {
		switch q.DIContainerParameters.DB {
		case memoryDB:
			return &core.MemoryDB{}, nil
		case mongoDB:
			return &db.MongoDB{}, nil
		default:
			return nil, fmt.Errorf("%s is an unknown DB", q.DIContainerParameters.DB)
		}
	})
	if err != nil {
		return nil, err
	}
	err = c.Provide(func() (core.Simulator, error) {
		switch q.DIContainerParameters.QPU {
		case "statevector":
			return &qpu.StateVectorQPU{}, nil
		default:
			return nil, fmt.Errorf("%s is an unknown QPU", q.DIContainerParameters.QPU)
		}
	})
	if err != nil {
		return nil, err
	}
	err = c.Provide(func() (core.ChartRenderer, error) {
		switch q.DIContainerParameters.Renderer {
		case "plot":
			return &chart.PlotRenderer{}, nil
		default:
			return nil, fmt.Errorf("%s is an unknown renderer", q.DIContainerParameters.Renderer)
		}
	})
	if err != nil {
		return nil, err
	}
	return c, nil
}

func zapLogger(conf *core.Conf) (*zap.Logger, error) {
	var encoder zapcore.Encoder
	if conf.DevMode {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		c := zap.NewProductionEncoderConfig()
		c.EncodeTime = zapcore.ISO8601TimeEncoder
		c.TimeKey = "timestamp"
		encoder = zapcore.NewJSONEncoder(c)
	}
	level, err := zap.ParseAtomicLevel(conf.LogLevel)
	if err != nil {
		level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	cores := []zapcore.Core{}
	if conf.EnableFileLog {
		rotater, err := makeRotator(conf.LogDir, conf.LogRotationMaxDays)
		if err != nil {
			return nil, err
		}
		cores = append(cores, zapcore.NewCore(encoder, zapcore.AddSync(rotater), level))
	}
	if !conf.DisableStdoutLog {
		cores = append(cores, zapcore.NewCore(encoder, zapcore.Lock(os.Stdout), level))
	}
	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func makeRotator(dirPath string, rotationMaxDays int) (*rotate.RotateLogs, error) {
	info, err := os.Stat(dirPath)
	if err != nil {
		return nil, fmt.Errorf("directory:%s is not found", dirPath)
	}
	if info.Mode().Perm()&(1<<uint(7)) == 0 {
		return nil, fmt.Errorf("%s is not a writable directory", dirPath)
	}
	return rotate.New(
		filepath.Join(dirPath, "quanta-%Y-%m-%d.log"),
		rotate.WithMaxAge(time.Duration(rotationMaxDays)*24*time.Hour),
		rotate.WithRotationTime(time.Hour))
}

func setZap(conf *core.Conf) *zap.Logger {
	logger, err := zapLogger(conf)
	if err != nil {
		fmt.Printf("Failed to setup logger. Reason:%s\n", err)
		panic(err)
	}
	zap.ReplaceGlobals(logger)
	zap.L().Info("Starting logger")
	zap.L().Info(fmt.Sprintf("DevMode is %t", conf.DevMode))
	zap.L().Info(fmt.Sprintf("Log rotation max days is %d", conf.LogRotationMaxDays))
	return logger
}

// loadSetting registers the component defaults and overwrites them from the
// setting file.
func loadSetting(conf *core.Conf) error {
	core.ResetSetting()
	core.RegisterSetting(core.SimulatorSettingKey, core.NewSimulatorSetting())
	core.RegisterSetting(core.MongoSettingKey, core.NewMongoSetting())
	zap.L().Debug("Registered setting")
	if err := core.ParseSettingFromPath(conf.SettingPath); err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse settings/reason:%s", err))
		return err
	}
	return nil
}

func setupSystemComponents(conf *core.Conf) (*core.SystemComponents, error) {
	core.SetVersion(conf, versionByBuildFlag)
	zap.L().Debug(fmt.Sprintf("Providing DI Container with parameters %+v", quanta.DIContainerParameters))

	container, err := quanta.provideDIContainer()
	if err != nil {
		zap.L().Error(fmt.Sprintf("Failed to set up DI-Container. Reason:%s", err.Error()))
		return nil, err
	}
	zap.L().Debug("Setting up System Components")
	s := core.NewSystemComponents(container)
	if err := s.Setup(conf); err != nil {
		zap.L().Error(fmt.Sprintf("Failed to set up Container. Reason:%s", err.Error()))
		return nil, err
	}
	core.SetInfo(conf)
	return s, nil
}

func main() {
	parse()
}
