package core

type Conf struct {
	Version            string `long:"version" description:"version of quanta engine" env:"QUANTA_VERSION"`
	DevMode            bool   `long:"dev-mode" description:"run in dev mode" env:"QUANTA_DEV_MODE"`
	DisableStdoutLog   bool   `long:"disable-stdout-log" description:"do not log in standard output" env:"QUANTA_DISABLE_STDOUT_LOG"`
	EnableFileLog      bool   `long:"enable-file-log" description:"enable log in file" env:"QUANTA_ENABLE_FILE_LOG"`
	LogDir             string `long:"log-dir" description:"rotating log file dir" default:"./shares/logs" env:"QUANTA_LOG_DIR"`
	LogLevel           string `long:"log-level" description:"log level" default:"info" choice:"debug" choice:"info" choice:"warn" choice:"error" env:"QUANTA_LOG_LEVEL"`
	LogRotationMaxDays int    `long:"log-rotation-max-days" description:"max days of log rotation" default:"7" env:"QUANTA_LOG_ROTATION_MAX_DAYS"`
	MongoURI           string `long:"mongo-uri" description:"MongoDB connection URI" default:"mongodb://localhost:27017" env:"MONGO_URI"`
	MongoDatabase      string `long:"mongo-database" description:"MongoDB database name" default:"quantadb" env:"QUANTA_MONGO_DATABASE"`
	DisableMemorySeed  bool   `long:"disable-memory-seed" description:"do not seed the in-memory store on start" env:"QUANTA_DISABLE_MEMORY_SEED"`
	SettingPath        string `long:"setting-path" description:"setting file path" default:"./setting/setting.toml" env:"QUANTA_SETTING_PATH"`
}
