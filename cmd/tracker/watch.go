package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/rapidaid/livetracker/internal/tracker"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		interval    time.Duration
		geojsonPath string
	)

	cmd := &cobra.Command{
		Use:   "watch <emergency-id>",
		Short: "Poll one emergency and print victim/responder updates",
		Long: `Polls the latest victim and responder locations of one emergency.

While running, type a command and press enter:
  p  pause or resume updates
  c  centre the map on the victim
  q  quit`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("interval") {
				interval = a.cfg.PollInterval
			}
			return a.watch(cmd.Context(), id, interval, geojsonPath)
		},
	}

	cmd.Flags().DurationVar(&interval, "interval", tracker.DefaultPollInterval, "poll interval (env TRACKER_POLL_INTERVAL)")
	cmd.Flags().StringVar(&geojsonPath, "geojson", "", "keep a GeoJSON snapshot of the map at this path")
	return cmd
}

func (a *app) watch(ctx context.Context, id int64, interval time.Duration, geojsonPath string) error {
	c, err := a.client()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	surface := tracker.NewGeoJSONSurface()
	display := tracker.NewTextDisplay(os.Stdout, tracker.FieldToggleTracking)
	session := tracker.NewSession(
		tracker.SessionConfig{EmergencyID: id, PollInterval: interval},
		c, surface, display,
		tracker.WithLogger(a.log.With().Str("component", "session").Logger()),
	)
	defer session.Close()

	if err := session.Start(ctx); err != nil {
		return err
	}

	if geojsonPath != "" {
		go snapshotLoop(ctx, session, surface, geojsonPath, interval, a)
	}

	commands := make(chan string)
	go readCommands(commands)

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-commands:
			if !ok {
				<-ctx.Done()
				return nil
			}
			switch line {
			case "p":
				if session.Toggle() {
					fmt.Println(tracker.LabelResume)
				} else {
					fmt.Println(tracker.LabelPause)
				}
			case "c":
				if !session.CenterOnVictim() {
					fmt.Println("no victim location yet")
				}
			case "q":
				return nil
			}
		}
	}
}

func readCommands(out chan<- string) {
	defer close(out)
	sc := bufio.NewScanner(os.Stdin)
	for sc.Scan() {
		out <- strings.TrimSpace(strings.ToLower(sc.Text()))
	}
}

func snapshotLoop(ctx context.Context, s *tracker.Session, surface *tracker.GeoJSONSurface, path string, every time.Duration, a *app) {
	t := time.NewTicker(every)
	defer t.Stop()

	var written time.Time
	for {
		st := s.State()
		if st.LastUpdate.After(written) {
			if err := writeGeoJSON(surface, path); err != nil {
				a.log.Warn().Err(err).Str("path", path).Msg("geojson snapshot failed")
			}
			written = st.LastUpdate
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

func writeGeoJSON(surface *tracker.GeoJSONSurface, path string) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if _, err := surface.WriteTo(f); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
