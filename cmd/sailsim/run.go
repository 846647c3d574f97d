package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/zeusync/sailsim/internal/config"
	"github.com/zeusync/sailsim/internal/core/observability/log"
	"github.com/zeusync/sailsim/internal/injector"
	"github.com/zeusync/sailsim/internal/sim/simulation"
	"github.com/zeusync/sailsim/internal/sim/trace"
)

type RunOptions struct {
	*RootOptions
	Ticks      int
	Dt         float64
	TracePath  string
	SavePath   string
	ProfileDir string
}

type clientSummary struct {
	Name     string  `json:"name"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	Speed    float64 `json:"speed"`
	HullHP   float64 `json:"hull_hp"`
	Finished bool    `json:"finished"`
	BestTime float64 `json:"best_time,omitempty"`
}

type runSummary struct {
	ID         string          `json:"id"`
	Ticks      uint64          `json:"ticks"`
	Time       float64         `json:"time"`
	Failed     int             `json:"failed_ticks"`
	Groundings int64           `json:"groundings"`
	Clients    []clientSummary `json:"clients"`
}

func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <config.yaml>",
		Short: "Run a simulation headless",
		Long: `Load a config, put its boats on the start line and step the
simulation a fixed number of ticks.

Example:
  sailsim run --ticks 2400 --trace out/run.jsonl.zst regatta.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runSimulation(ctx, opts, args[0], cmd.OutOrStdout())
		},
	}

	cmd.Flags().IntVar(&opts.Ticks, "ticks", 1200, "number of ticks to run")
	cmd.Flags().Float64Var(&opts.Dt, "dt", 0.05, "seconds per tick")
	cmd.Flags().StringVar(&opts.TracePath, "trace", "", "write a zstd JSONL tick trace here")
	cmd.Flags().StringVar(&opts.SavePath, "save", "", "write the final save here as JSON")
	cmd.Flags().StringVar(&opts.ProfileDir, "cpuprofile", "", "write a CPU profile into this directory")
	return cmd
}

func runSimulation(ctx context.Context, opts *RunOptions, path string, out io.Writer) (err error) {
	if opts.ProfileDir != "" {
		defer profile.Start(profile.CPUProfile, profile.ProfilePath(opts.ProfileDir), profile.NoShutdownHook, profile.Quiet).Stop()
	}

	c, err := config.Load(path)
	if err != nil {
		return err
	}

	var tr *trace.Writer
	if opts.TracePath != "" {
		if tr, err = trace.Create(opts.TracePath); err != nil {
			return err
		}
		defer func() { err = errors.Join(err, tr.Close()) }()
	}

	app, err := injector.InitializeApp(c, tr)
	if err != nil {
		return err
	}
	defer func() { _ = app.Logger.Sync() }()
	sim := app.Simulation

	var groundings atomic.Int64
	sim.Events().Subscribe(simulation.EventGrounded, func(simulation.Event) error {
		groundings.Add(1)
		return nil
	})

	failed := 0
	for range opts.Ticks {
		if ctx.Err() != nil {
			app.Logger.Info("interrupted", log.Uint64("tick", sim.Tick()))
			break
		}
		if stepErr := sim.Step(ctx, opts.Dt); stepErr != nil {
			if errors.Is(stepErr, context.Canceled) {
				break
			}
			failed++
			app.Logger.Warn("tick had failures", log.Uint64("tick", sim.Tick()), log.Error(stepErr))
		}
	}

	if savePath := opts.SavePath; savePath != "" || c.Simulation.SaveSims {
		if savePath == "" {
			savePath = sim.ID().String() + ".save.json"
		}
		save, err := sim.Save()
		if err != nil {
			return err
		}
		if err := writeSave(savePath, save); err != nil {
			return err
		}
		app.Logger.Info("saved", log.String("path", savePath))
	}

	summary := summarize(sim, failed)
	summary.Groundings = groundings.Load()
	return output(out, opts.RootOptions, summary, func(w io.Writer) error {
		fmt.Fprintf(w, "simulation %s: %d ticks, %.2fs\n", summary.ID, summary.Ticks, summary.Time)
		for _, cs := range summary.Clients {
			status := "sailing"
			if cs.Finished {
				status = fmt.Sprintf("finished in %.2fs", cs.BestTime)
			}
			fmt.Fprintf(w, "  %-12s (%8.1f, %8.1f) %5.2f m/s hull %5.1f  %s\n",
				cs.Name, cs.X, cs.Y, cs.Speed, cs.HullHP, status)
		}
		return nil
	})
}

func summarize(sim *simulation.Simulation, failed int) runSummary {
	s := runSummary{ID: sim.ID().String(), Ticks: sim.Tick(), Time: sim.Time(), Failed: failed}
	for _, ref := range sim.Clients() {
		c, _ := sim.Client(ref.ToQuery())
		state := c.Boat()
		name, ok := ref.Alias()
		if !ok {
			name = ref.String()
		}
		s.Clients = append(s.Clients, clientSummary{
			Name:     name,
			X:        state.Pose.Translation.X,
			Y:        state.Pose.Translation.Y,
			Speed:    state.Speed(),
			HullHP:   state.HullHP,
			Finished: c.Finished(),
			BestTime: c.BestTime(),
		})
	}
	return s
}

func writeSave(path string, save simulation.Save) error {
	b, err := json.MarshalIndent(save, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0o644)
}
