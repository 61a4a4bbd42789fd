package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rapidaid/livetracker/internal/tracker"
)

// cliNavigator remembers where the tracker wants to go next.
type cliNavigator struct {
	path string
}

func (n *cliNavigator) Navigate(path string) {
	n.path = path
	fmt.Println("→", path)
}

func newAcceptCmd(a *app) *cobra.Command {
	var watch bool

	cmd := &cobra.Command{
		Use:   "accept <emergency-id>",
		Short: "Accept an emergency as the logged-in responder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}

			nav := &cliNavigator{}
			overview := tracker.NewOverview(c, tracker.NewGeoJSONSurface(), nil, nav, tracker.WithLogger(a.log))
			if err := overview.Accept(cmd.Context(), id); err != nil {
				return err
			}
			if !watch {
				return nil
			}

			target, err := strconv.ParseInt(strings.TrimPrefix(nav.path, "/map/"), 10, 64)
			if err != nil {
				return fmt.Errorf("unexpected navigation target %q", nav.path)
			}
			return a.watch(cmd.Context(), target, a.cfg.PollInterval, "")
		},
	}

	cmd.Flags().BoolVar(&watch, "watch", false, "start watching the emergency after accepting")
	return cmd
}
