package main

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/rapidaid/livetracker/internal/tracker"
)

func newActiveCmd(a *app) *cobra.Command {
	var geojsonPath string

	cmd := &cobra.Command{
		Use:   "active",
		Short: "List active emergencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}

			surface := tracker.NewGeoJSONSurface()
			overview := tracker.NewOverview(c, surface, nil, nil, tracker.WithLogger(a.log))
			defer overview.Close()

			list, err := overview.Load(cmd.Context())
			if err != nil {
				return err
			}

			tw := table.NewWriter()
			tw.SetOutputMirror(cmd.OutOrStdout())
			style := table.StyleLight
			style.Options.DrawBorder = false
			style.Options.SeparateColumns = false
			tw.SetStyle(style)
			tw.AppendHeader(table.Row{"ID", "TYPE", "VICTIM", "STATUS", "REPORTED", "LOCATION"})
			for _, e := range list {
				tw.AppendRow(table.Row{
					e.ID, e.Type, e.VictimName, e.Status,
					tracker.Clock(e.CreatedAt.Local()),
					fmt.Sprintf("%.4f, %.4f", e.Location.Lat, e.Location.Lng),
				})
			}
			tw.AppendFooter(table.Row{"", "", "", "", "TOTAL", len(list)})
			tw.Render()

			if geojsonPath != "" {
				return writeGeoJSON(surface, geojsonPath)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "also write the overview map as GeoJSON")
	return cmd
}
