package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/behave/internal/app"
	"github.com/zeusync/behave/internal/config"
	"github.com/zeusync/behave/internal/core/events/bus"
	"github.com/zeusync/behave/internal/core/observability/log"
	"github.com/zeusync/behave/internal/core/runner"
	"github.com/zeusync/behave/internal/server"
)

// ProviderSet builds an App from a loaded config.
var ProviderSet = wire.NewSet(
	ProvideLogger,
	ProvideBus,
	ProvideRunner,
	ProvideServer,
	app.New,
)

func ProvideLogger(cfg config.Config) (*log.Logger, error) {
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, err
	}
	return log.New(level), nil
}

func ProvideBus() bus.EventBus { return bus.New() }

func ProvideRunner(cfg config.Config, logger *log.Logger) *runner.Manager {
	return runner.New(cfg.Runner.Shards, logger)
}

// ProvideServer returns nil when streaming is disabled.
func ProvideServer(cfg config.Config, logger *log.Logger) (*server.Server, error) {
	if !cfg.Server.Enabled {
		return nil, nil
	}
	sc := server.DefaultServerConfig()
	sc.ListenAddr = cfg.Server.Addr
	sc.Token = cfg.Server.Token
	if cfg.Server.MaxClients > 0 {
		sc.MaxClients = cfg.Server.MaxClients
	}
	if cfg.Server.SendBuffer > 0 {
		sc.SendBuffer = cfg.Server.SendBuffer
	}
	return server.NewServer(sc, logger)
}
