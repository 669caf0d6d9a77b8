package config

import (
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Env       string `mapstructure:"PLUME_ENV"`
	HTTPAddr  string `mapstructure:"PLUME_HTTP_ADDR"`
	DBPath    string `mapstructure:"PLUME_DB_PATH"`
	JWTSecret string `mapstructure:"PLUME_JWT_SECRET"`
	UploadDir string `mapstructure:"PLUME_UPLOAD_DIR"`

	Cache CacheConfig `mapstructure:",squash"`
}

type CacheConfig struct {
	// Backend selects the cache implementation: "memory" or "redis".
	Backend string `mapstructure:"PLUME_CACHE_BACKEND"`
	// IndexTTL is how long the rendered global feed stays cached.
	// Within the window new posts exist in storage but not in the
	// cached response. Zero disables the cache.
	IndexTTL  time.Duration `mapstructure:"PLUME_CACHE_INDEX_TTL"`
	RedisAddr string        `mapstructure:"PLUME_REDIS_ADDR"`
}

func defaults() map[string]interface{} {
	return map[string]interface{}{
		"PLUME_ENV":             "dev",
		"PLUME_HTTP_ADDR":       ":8080",
		"PLUME_DB_PATH":         "plume.db",
		"PLUME_JWT_SECRET":      "",
		"PLUME_UPLOAD_DIR":      "uploads",
		"PLUME_CACHE_BACKEND":   "memory",
		"PLUME_CACHE_INDEX_TTL": 20 * time.Second,
		"PLUME_REDIS_ADDR":      "localhost:6379",
	}
}

// Load reads configuration from the environment, falling back to
// defaults for anything unset.
func Load() (*Config, error) {
	v := viper.New()
	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
