// Profiling:
// go build ./cmd/ecsprofile
// ./ecsprofile -mode mem
// go tool pprof -http=":8000" -nodefraction=0.001 ./ecsprofile mem.pprof

// Command ecsprofile runs a create/add/query/remove/destroy workload under pprof.
package main

import (
	"flag"
	"os"

	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/0ctahedral/ecs/pkg/telemetry"
	"github.com/pkg/profile"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

type position struct {
	X, Y float64
}

func (position) Name() string { return "Position" }

type velocity struct {
	X, Y float64
}

func (velocity) Name() string { return "Velocity" }

func main() {
	mode := flag.String("mode", "cpu", "profile mode (cpu or mem)")
	rounds := flag.Int("rounds", 50, "number of worlds to build")
	iters := flag.Int("iters", 1000, "workload iterations per world")
	entities := flag.Int("entities", 4000, "entities created per iteration")
	logLevel := flag.String("log-level", "", "log level, defaults to ECS_LOG_LEVEL or info")
	flag.Parse()

	logger, err := telemetry.NewLogger(telemetry.Options{
		Component: "ecsprofile",
		LogLevel:  *logLevel,
		Out:       os.Stderr,
	})
	if err != nil {
		logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
		logger.Error().Err(err).Msg("failed to configure logger")
		os.Exit(2)
	}

	var p interface{ Stop() }
	switch *mode {
	case "cpu":
		p = profile.Start(profile.CPUProfile, profile.ProfilePath("."), profile.NoShutdownHook)
	case "mem":
		p = profile.Start(profile.MemProfileAllocs, profile.ProfilePath("."), profile.NoShutdownHook)
	default:
		logger.Error().Str("mode", *mode).Msg("unknown profile mode, must be cpu or mem")
		os.Exit(2)
	}

	err = run(*rounds, *iters, *entities)
	p.Stop()
	if err != nil {
		logger.Error().Err(err).Msg("workload failed")
		os.Exit(1)
	}
	logger.Info().Str("mode", *mode).Int("rounds", *rounds).Msg("profile written")
}

func run(rounds, iters, numEntities int) error {
	for range rounds {
		w, err := ecs.NewWorld(ecs.WorldOptions{MaxEntities: numEntities + 1})
		if err != nil {
			return eris.Wrap(err, "failed to create world")
		}

		for range iters {
			if err := step(w, numEntities); err != nil {
				return err
			}
		}
	}
	return nil
}

// step fills the world, integrates velocities into positions, and empties it again.
func step(w *ecs.World, numEntities int) error {
	for i := range numEntities {
		eid, err := w.CreateEntity()
		if err != nil {
			return err
		}
		if err := ecs.AddComponent(w, eid, position{}); err != nil {
			return err
		}
		if i%2 == 0 {
			if err := ecs.AddComponent(w, eid, velocity{X: 1, Y: 1}); err != nil {
				return err
			}
		}
	}

	moving := w.Query(position{}, velocity{})
	for _, eid := range moving {
		pos, _ := ecs.GetComponent[position](w, eid)
		vel, _ := ecs.GetComponent[velocity](w, eid)
		pos.X += vel.X
		pos.Y += vel.Y
	}

	for _, eid := range moving {
		ecs.RemoveComponent[velocity](w, eid)
	}
	for _, eid := range w.Query() {
		w.DestroyEntity(eid)
	}
	return nil
}
