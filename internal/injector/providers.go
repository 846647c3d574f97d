package injector

import (
	"fmt"

	"github.com/zeusync/sailsim/internal/config"
	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/sim/simulation"
	"github.com/zeusync/sailsim/internal/sim/trace"
)

// App is everything a run needs, built from one Config.
type App struct {
	Logger     *log.Logger
	Simulation *simulation.Simulation
}

func ProvideLogger(c *config.Config) (*log.Logger, error) {
	return log.NewWithConfig(c.Log)
}

// ProvideSimulation builds the simulation and puts every configured boat on
// the start line. tr may be nil.
func ProvideSimulation(c *config.Config, logger *log.Logger, tr *trace.Writer) (*simulation.Simulation, error) {
	opts := c.Wind.Options()
	opts.Trace = tr
	sim, err := simulation.New(c.Simulation, &c.Map, c.BoatTypes, opts, logger)
	if err != nil {
		return nil, err
	}
	for _, spawn := range c.Boats {
		if _, err := sim.AddClient(spawn.Name, spawn.Type); err != nil {
			return nil, fmt.Errorf("spawn %q: %w", spawn.Name, err)
		}
	}
	logger.Info("simulation ready",
		log.Stringer("id", sim.ID()),
		log.String("map", c.Map.Name),
		log.Int("boats", len(c.Boats)),
	)
	return sim, nil
}
