package bootstrap

import (
	"io/fs"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type Config struct {
	ServerPort      string `mapstructure:"SERVER_PORT"`
	RedisUrl        string `mapstructure:"REDIS_URL"`
	MongoUri        string `mapstructure:"MONGO_URI"`
	MongoDatabase   string `mapstructure:"MONGO_DATABASE"`
	IsLocalCors     bool   `mapstructure:"LOCAL_CORS"`
	PageLimitKifus  int    `mapstructure:"PAGE_LIMIT_KIFUS"`
	CacheTTLSeconds int    `mapstructure:"CACHE_TTL_SECONDS"`
	KifuDir         string `mapstructure:"KIFU_DIR"`
	CollectorWorker int    `mapstructure:"COLLECTOR_WORKERS"`
	DefaultCharset  string `mapstructure:"DEFAULT_CHARSET"`
}

var keys = []string{
	"SERVER_PORT", "REDIS_URL", "MONGO_URI", "MONGO_DATABASE", "LOCAL_CORS",
	"PAGE_LIMIT_KIFUS", "CACHE_TTL_SECONDS", "KIFU_DIR", "COLLECTOR_WORKERS", "DEFAULT_CHARSET",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "kifudb")
	v.SetDefault("PAGE_LIMIT_KIFUS", 20)
	v.SetDefault("CACHE_TTL_SECONDS", 3600)
	v.SetDefault("COLLECTOR_WORKERS", 8)
}

// Setup читает конфиг из файла; переменные окружения имеют приоритет.
// Если файла нет, используются значения по умолчанию.
func Setup(cfgPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()
	// AutomaticEnv не видит ключи, которых нет в файле, поэтому привязываем явно
	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, errors.Wrapf(err, "bind %s", k)
		}
	}

	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return nil, errors.Wrap(err, "read config")
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	if cfg.PageLimitKifus <= 0 {
		return nil, errors.Errorf("PAGE_LIMIT_KIFUS must be positive, got %d", cfg.PageLimitKifus)
	}
	if cfg.CollectorWorker <= 0 {
		cfg.CollectorWorker = 1
	}

	return &cfg, nil
}
