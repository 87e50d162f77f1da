package container

import (
	"fmt"

	"github.com/agentsystems/notary-arweave-bundler/internal/config"
	"github.com/samber/do"
	"go.uber.org/zap"
)

// Counter and secret backends selectable through Options.
const (
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
)

// Options are the command line flags shared by the binaries. humacli also reads them
// from SERVICE_* environment variables.
type Options struct {
	Port           int    `default:"8888"           help:"Port to listen on"                                     short:"p"`
	RedisAddr      string `default:"localhost:6379" help:"Redis server address"                                  short:"r"`
	DatabaseURL    string `default:""               help:"PostgreSQL connection URL"                             short:"d"`
	CounterBackend string `default:"redis"          help:"Rate limit counter store: memory, redis or postgres"`
	SecretBackend  string `default:"redis"          help:"Secret store: redis or postgres"`
	SecretTable    string `default:"secrets"        help:"PostgreSQL table holding secret references"`
	LogFormat      string `default:"console"        help:"Log format: console or json"                           short:"l"`
	ConsumerGroup  string `default:"notary-workers" help:"Redis stream consumer group for workers"`
	SweepSchedule  string `default:"@every 10m"     help:"Cron schedule for purging expired PostgreSQL counters"`
}

// LoggerPackage provides the zap logger selected by Options.LogFormat.
func LoggerPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.LogFormat {
		case "json":
			return zap.NewProduction()
		case "console", "":
			return zap.NewDevelopment()
		default:
			return nil, fmt.Errorf("unknown log format %q", opts.LogFormat)
		}
	})
}

// ConfigPackage provides the configuration loaded once from the environment.
func ConfigPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*config.Config, error) {
		return config.FromEnv()
	})
}
