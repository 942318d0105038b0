package main

import (
	"github.com/0ctahedral/ecs/pkg/ecs"
	"github.com/0ctahedral/ecs/pkg/scene"
	"github.com/0ctahedral/ecs/pkg/telemetry"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
)

const (
	outputText = "text"
	outputJSON = "json"
)

type flags struct {
	output      string
	maxEntities int
	logLevel    string
}

func newRootCmd() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:          "ecsdemo",
		Short:        "Run the scene demo against the ECS",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if f.output != outputText && f.output != outputJSON {
				return eris.Errorf("invalid output %q: must be %q or %q", f.output, outputText, outputJSON)
			}

			logger, err := telemetry.NewLogger(telemetry.Options{
				Component: "ecsdemo",
				LogLevel:  f.logLevel,
				Out:       cmd.ErrOrStderr(),
			})
			if err != nil {
				return eris.Wrap(err, "failed to create logger")
			}

			s, err := scene.New(ecs.WorldOptions{MaxEntities: f.maxEntities, Logger: &logger})
			if err != nil {
				return eris.Wrap(err, "failed to create scene")
			}

			r, err := runDemo(s)
			if err != nil {
				return eris.Wrap(err, "demo failed")
			}
			logger.Info().Int("entities", s.World().NumEntities()).Msg("demo finished")

			if f.output == outputJSON {
				return writeJSON(cmd.OutOrStdout(), r)
			}
			return writeText(cmd.OutOrStdout(), r)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", outputText, "output format (text or json)")
	cmd.Flags().IntVar(&f.maxEntities, "max-entities", 0, "size of the entity ID space, defaults to ECS_MAX_ENTITIES or 5000")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "log level, defaults to ECS_LOG_LEVEL or info")
	return cmd
}
