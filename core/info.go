package core

// NonSecretConf is the part of Conf that is safe to log. The Mongo URI may
// carry credentials and is left out.
type NonSecretConf struct {
	DevMode            bool
	DisableStdoutLog   bool
	EnableFileLog      bool
	LogDir             string
	LogLevel           string
	LogRotationMaxDays int
	MongoDatabase      string
	DisableMemorySeed  bool
	SettingPath        string
}

type Info struct {
	Conf *NonSecretConf
}

var CurrentInfo *Info

func SetInfo(c *Conf) {
	CurrentInfo = &Info{
		Conf: &NonSecretConf{
			DevMode:            c.DevMode,
			DisableStdoutLog:   c.DisableStdoutLog,
			EnableFileLog:      c.EnableFileLog,
			LogDir:             c.LogDir,
			LogLevel:           c.LogLevel,
			LogRotationMaxDays: c.LogRotationMaxDays,
			MongoDatabase:      c.MongoDatabase,
			DisableMemorySeed:  c.DisableMemorySeed,
			SettingPath:        c.SettingPath,
		},
	}
}
