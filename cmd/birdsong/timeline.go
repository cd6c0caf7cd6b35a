package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"birdsong/internal"
	"birdsong/internal/models"
	"birdsong/internal/structures"
	"birdsong/internal/view"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"github.com/spf13/cobra"
)

const maxSpeciesPerRow = 3

var (
	headingColor = color.New(color.FgCyan, color.Bold)
	mutedColor   = color.New(color.FgHiBlack)
	warnColor    = color.New(color.FgYellow)
)

func newTimelineCmd(flags *structures.CliFlags) *cobra.Command {
	var more int

	cmd := &cobra.Command{
		Use:   "timeline",
		Short: "Print the detection timeline for the stored view",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withSession(flags, func(s *internal.Session) error {
				ctx := cmd.Context()
				v, err := s.View.Timeline(ctx)
				for i := 0; err == nil && i < more && v.Result.HasNextPage; i++ {
					v, err = s.View.LoadOlder(ctx)
				}
				if err != nil && !errors.Is(err, view.ErrViewChanged) {
					if len(v.Result.Buckets) == 0 {
						return err
					}
					warnColor.Fprintf(cmd.ErrOrStderr(), "partial result: %s\n", err)
				}
				return writeTimeline(cmd.OutOrStdout(), v, s.View.Location())
			})
		},
	}
	cmd.Flags().IntVar(&more, "more", 0, "number of older pages to load after the first one")
	return cmd
}

func writeTimeline(w io.Writer, v view.View, loc *time.Location) error {
	headingColor.Fprintln(w, v.AnchorLabel)
	fmt.Fprintln(w, v.Preview)
	if v.QuarterLabel != "" {
		mutedColor.Fprintln(w, v.QuarterLabel)
	}

	if len(v.Result.Buckets) == 0 {
		mutedColor.Fprintln(w, "No detections in this window.")
		return nil
	}

	table := tablewriter.NewWriter(w)
	table.Header([]string{"Start", "End", "Detections", "Species", "Top species"})
	table.Configure(func(cfg *tablewriter.Config) {
		cfg.Row.Alignment.Global = tw.AlignRight
	})

	var data [][]string
	for _, b := range v.Result.Buckets {
		data = append(data, []string{
			bucketTime(b.BucketStart, loc),
			bucketTime(b.BucketEnd, loc),
			strconv.Itoa(b.TotalDetections),
			strconv.Itoa(b.UniqueSpecies),
			topSpecies(b.Detections),
		})
	}
	if err := table.Bulk(data); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}

	footer := fmt.Sprintf("%d buckets from %d pages", len(v.Result.Buckets), v.Result.Pages)
	if v.Result.HasNextPage {
		footer += ", older detections available (--more)"
	}
	mutedColor.Fprintln(w, footer)
	return nil
}

func bucketTime(t *time.Time, loc *time.Location) string {
	if t == nil {
		return "-"
	}
	return t.In(loc).Format("Jan 2 15:04")
}

func topSpecies(items []models.DetectionItem) string {
	seen := make(map[string]struct{}, len(items))
	var names []string
	for _, d := range items {
		name := d.Species.CommonName
		if name == "" {
			name = d.Species.ScientificName
		}
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
		if len(names) == maxSpeciesPerRow {
			break
		}
	}
	return strings.Join(names, ", ")
}
