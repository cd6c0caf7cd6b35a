package main

import (
	"fmt"
	"io"
	"time"

	"birdsong/internal"
	"birdsong/internal/models"
	"birdsong/internal/structures"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var currentColor = color.New(color.FgGreen, color.Bold)

func newQuarterCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "quarter [YYYY-MM-DD]",
		Short: "List the quarter-of-day windows of a day",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var date string
			if len(args) == 1 {
				date = args[0]
			}
			return withSession(flags, func(s *internal.Session) error {
				presets, err := s.Quarters.Presets(cmd.Context(), date)
				if err != nil {
					return err
				}
				writeQuarters(cmd.OutOrStdout(), presets, s.View.Location())
				return nil
			})
		},
	}
}

func writeQuarters(w io.Writer, presets *models.QuarterPresets, loc *time.Location) {
	headingColor.Fprintln(w, presets.Date)
	current, hasCurrent := presets.Current()
	for _, q := range presets.Quarters {
		line := fmt.Sprintf("%s  %s - %s", q.Label, q.Start.In(loc).Format("15:04"), q.End.In(loc).Format("15:04"))
		if hasCurrent && q.Label == current.Label {
			currentColor.Fprintln(w, line+"  (now)")
			continue
		}
		fmt.Fprintln(w, line)
	}
}
