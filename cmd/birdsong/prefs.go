package main

import (
	"fmt"
	"io"
	"time"

	"birdsong/internal"
	"birdsong/internal/models"
	"birdsong/internal/structures"
	"birdsong/internal/view"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"
)

func newPrefsCmd(flags *structures.CliFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prefs",
		Short: "Inspect or change the stored timeline view",
	}
	cmd.AddCommand(newPrefsShowCmd(flags), newPrefsSetCmd(flags), newPrefsResetCmd(flags))
	return cmd
}

func newPrefsShowCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the stored preferences",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(flags, func(s *internal.Session) error {
				return writePreferences(cmd.OutOrStdout(), s.Store.GetSnapshot())
			})
		},
	}
}

type setOptions struct {
	bucket int
	cursor string
	date   string
	clock  string
	preset string
	latest bool
}

func newPrefsSetCmd(flags *structures.CliFlags) *cobra.Command {
	var opts setOptions

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Change the bucket size or the anchor of the view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(flags, func(s *internal.Session) error {
				current := s.Store.GetSnapshot().Timeline
				next, err := opts.resolve(current, time.Now(), s.View.Location())
				if err != nil {
					return err
				}
				if err := s.View.CheckBucket(next.BucketMinutes); err != nil {
					return err
				}
				s.Store.UpdateTimeline(next.Patch())
				return writePreferences(cmd.OutOrStdout(), s.Store.GetSnapshot())
			})
		},
	}
	cmd.Flags().IntVar(&opts.bucket, "bucket", 0, "bucket size in minutes")
	cmd.Flags().StringVar(&opts.cursor, "cursor", "", "RFC 3339 anchor timestamp")
	cmd.Flags().StringVar(&opts.date, "date", "", "anchor day as YYYY-MM-DD in local time")
	cmd.Flags().StringVar(&opts.clock, "time", "", "anchor time as HH:MM in local time")
	cmd.Flags().StringVar(&opts.preset, "preset", "", "anchor day preset: latest, today, yesterday or twoDaysAgo")
	cmd.Flags().BoolVar(&opts.latest, "latest", false, "follow the most recent detections")
	cmd.MarkFlagsMutuallyExclusive("cursor", "date", "preset", "latest")
	cmd.MarkFlagsMutuallyExclusive("cursor", "time")
	return cmd
}

// resolve applies the flags on top of the current view. Unset flags keep
// the current value.
func (o setOptions) resolve(current models.TimelinePreferences, now time.Time, loc *time.Location) (models.TimelinePreferences, error) {
	next := current.Clone()
	if o.bucket != 0 {
		next.BucketMinutes = o.bucket
	}

	date := o.date
	switch view.DatePreset(o.preset) {
	case "":
	case view.PresetLatest:
		next.StartCursor = nil
		return next, nil
	case view.PresetToday, view.PresetYesterday, view.PresetTwoDaysAgo:
		date = view.PresetDate(view.DatePreset(o.preset), now, loc)
	default:
		return next, fmt.Errorf("unknown preset %q", o.preset)
	}

	switch {
	case o.latest:
		next.StartCursor = nil
	case o.cursor != "":
		if _, err := time.Parse(time.RFC3339Nano, o.cursor); err != nil {
			return next, fmt.Errorf("%w: %s", view.ErrInvalidAnchor, o.cursor)
		}
		cursor := o.cursor
		next.StartCursor = &cursor
	case date != "" || o.clock != "":
		curDate, curClock := view.SplitAnchor(current.StartCursor, loc)
		clock := o.clock
		if date == "" {
			date = curDate
		}
		if date == "" {
			date = view.PresetDate(view.PresetToday, now, loc)
		}
		if clock == "" {
			clock = curClock
		}
		if clock == "" {
			clock = "00:00"
		}
		anchor, err := view.BuildAnchor(date, clock, loc)
		if err != nil {
			return next, err
		}
		next.StartCursor = anchor
	}
	return next, nil
}

func newPrefsResetCmd(flags *structures.CliFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(flags, func(s *internal.Session) error {
				return writePreferences(cmd.OutOrStdout(), s.Store.Reset())
			})
		},
	}
}

func writePreferences(w io.Writer, p models.UserPreferences) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
