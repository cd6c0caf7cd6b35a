package main

import (
	"birdsong/internal"
	"birdsong/internal/di"
	"birdsong/internal/structures"

	"github.com/spf13/cobra"
)

const defaultConfigPath = "config.yaml"

func newRootCmd() *cobra.Command {
	flags := &structures.CliFlags{}

	root := &cobra.Command{
		Use:           "birdsong",
		Short:         "Detection timeline dashboard backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&flags.ConfigPath, "config", "c", defaultConfigPath, "path to the YAML config file")
	root.PersistentFlags().BoolVar(&flags.DebugMode, "debug", false, "enable debug mode")

	root.AddCommand(
		newServeCmd(flags),
		newTimelineCmd(flags),
		newPrefsCmd(flags),
		newQuarterCmd(flags),
	)
	return root
}

// withSession builds the dependency graph for a one-shot command and tears
// it down once run returns.
func withSession(flags *structures.CliFlags, run func(s *internal.Session) error) error {
	session, cleanup, err := di.InitSession(flags)
	if err != nil {
		return err
	}
	defer cleanup()
	return run(session)
}
