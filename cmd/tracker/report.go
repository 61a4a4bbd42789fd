package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/rapidaid/livetracker/internal/core/domain"
)

func newReportCmd(a *app) *cobra.Command {
	var source string

	cmd := &cobra.Command{
		Use:   "report <emergency-id> <lat> <lng>",
		Short: "Report the current location of the logged-in victim or responder",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			lat, err := strconv.ParseFloat(args[1], 64)
			if err != nil {
				return fmt.Errorf("invalid latitude %q", args[1])
			}
			lng, err := strconv.ParseFloat(args[2], 64)
			if err != nil {
				return fmt.Errorf("invalid longitude %q", args[2])
			}

			c, err := a.client()
			if err != nil {
				return err
			}
			if err := c.ReportLocation(cmd.Context(), id, domain.Coordinate{Lat: lat, Lng: lng}, source); err != nil {
				return err
			}
			fmt.Println("location accepted")
			return nil
		},
	}

	cmd.Flags().StringVar(&source, "source", "cli", "free-form origin of the report")
	return cmd
}
