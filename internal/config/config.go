package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Configuration struct {
	Server struct {
		Addr        string   `envconfig:"SERVER_ADDR" default:":3000"`
		CorsOrigins []string `envconfig:"CORS_ORIGINS" default:"http://localhost:5173"`
		LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	}
	Database struct {
		URI             string `envconfig:"MONGO_URI"`
		DatabaseName    string `envconfig:"MONGO_DATABASE" default:"chess"`
		Collection      string `envconfig:"MONGO_COLLECTION" default:"games"`
		StatsCollection string `envconfig:"MONGO_STATS_COLLECTION" default:"player_stats"`
	}
	AI struct {
		ThinkTimeout time.Duration `envconfig:"AI_THINK_TIMEOUT" default:"5s"`
		BranchCap    int           `envconfig:"AI_BRANCH_CAP" default:"5"`
	}
	Games struct {
		// RetainFinished is how long a finished game stays readable in memory.
		RetainFinished time.Duration `envconfig:"GAME_RETAIN_FINISHED" default:"5m"`
		// IdleTimeout abandons games with no moves and no socket for this long.
		IdleTimeout   time.Duration `envconfig:"GAME_IDLE_TIMEOUT" default:"30m"`
		SweepInterval time.Duration `envconfig:"GAME_SWEEP_INTERVAL" default:"1m"`
	}
	RateLimit struct {
		Max    int           `envconfig:"RATE_LIMIT_MAX" default:"60"`
		Window time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
	}
}

// PersistenceEnabled is false when no MONGO_URI is configured.
func (c *Configuration) PersistenceEnabled() bool {
	return c.Database.URI != ""
}

func InitConfig() (*Configuration, error) {
	cfg := &Configuration{}
	err := envconfig.Process("", cfg)
	return cfg, err
}
