package core

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/quanta-team/quanta-engine/common"
	"go.uber.org/zap"
)

const (
	SimulatorSettingKey = "simulator"
	MongoSettingKey     = "mongo"
)

type SimulatorSetting struct {
	MaxQubits int   `toml:"max_qubits"`
	Seed      int64 `toml:"seed"` // 0 means time-based
}

func NewSimulatorSetting() *SimulatorSetting {
	return &SimulatorSetting{
		MaxQubits: 20,
		Seed:      0,
	}
}

type MongoSetting struct {
	PingTimeoutSeconds  int `toml:"ping_timeout_seconds"`
	QueryTimeoutSeconds int `toml:"query_timeout_seconds"`
}

func NewMongoSetting() *MongoSetting {
	return &MongoSetting{
		PingTimeoutSeconds:  2,
		QueryTimeoutSeconds: 10,
	}
}

var globalSetting = newSetting()

// Setting holds the registered component settings. Registered values are
// defaults; ParseSettingFromPath overwrites the fields present in the file.
type Setting struct {
	ComponentSetting map[string]interface{}    `toml:"-"`
	Raw              map[string]toml.Primitive `toml:"com,omitempty"`
	RunGroupSetting  map[string]interface{}    `toml:"run_group,omitempty"`

	meta toml.MetaData
}

func ResetSetting() {
	globalSetting = newSetting()
}

func RegisterSetting(settingName string, settingVal interface{}) {
	globalSetting.registerSetting(settingName, settingVal)
}

func ParseSettingFromPath(settingsPath string) error {
	tomlString, err := common.ReadSettingsFile(settingsPath)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to read setting file/reason:%s", err))
		return err
	}
	return globalSetting.parseSetting(tomlString)
}

func GetGlobalSetting() *Setting {
	return globalSetting
}

func GetComponentSetting(name string) (interface{}, bool) {
	if globalSetting == nil {
		zap.L().Error("Setting is not initialized")
		return nil, false
	}
	val, ok := globalSetting.ComponentSetting[name]
	return val, ok
}

func newSetting() *Setting {
	return &Setting{
		ComponentSetting: make(map[string]interface{}),
		Raw:              make(map[string]toml.Primitive),
		RunGroupSetting:  make(map[string]interface{}),
	}
}

func (s *Setting) registerSetting(settingName string, settingVal interface{}) {
	s.ComponentSetting[settingName] = settingVal
}

func (s *Setting) parseSetting(tomlString string) error {
	meta, err := toml.Decode(tomlString, s)
	if err != nil {
		zap.L().Error(fmt.Sprintf("failed to parse setting/reason:%s", err))
		return err
	}
	s.meta = meta
	for name, prim := range s.Raw {
		val, ok := s.ComponentSetting[name]
		if !ok {
			zap.L().Warn(fmt.Sprintf("ignored unregistered setting %s", name))
			continue
		}
		if err := meta.PrimitiveDecode(prim, val); err != nil {
			zap.L().Error(fmt.Sprintf("failed to decode setting %s/reason:%s", name, err))
			return err
		}
	}
	zap.L().Debug(fmt.Sprintf("Setting is %v", s.ComponentSetting))
	return nil
}
