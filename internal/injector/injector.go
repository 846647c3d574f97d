//go:build wireinject
// +build wireinject

// The build tag makes sure the stub is not built in the final build.

package injector

import (
	"github.com/google/wire"

	"github.com/zeusync/sailsim/internal/config"
	"github.com/zeusync/sailsim/internal/sim/trace"
)

func InitializeApp(c *config.Config, tr *trace.Writer) (*App, error) {
	wire.Build(
		ProvideLogger,
		ProvideSimulation,
		wire.Struct(new(App), "*"),
	)
	return nil, nil
}
