package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"houseprice-heatmap/internal/session"
	"houseprice-heatmap/pkg/spatial"
)

const helpText = `commands:
  locate                 use the device location
  postcode <postcode>    look up a UK postcode
  tap <lat> <long>       move the marker
  filter                 switch to the per-year view
  alltime                switch to the all-time view
  year <0-25>            pick a year on the slider (0 = 1995)
  back                   return to the intro screen
  show [n]               print the state and the first n points with their distance
  help                   print this text
  quit                   exit`

var errQuit = errors.New("quit")

type repl struct {
	session *session.Session
	out     io.Writer
}

// Run reads commands from in until EOF or quit.
func (r *repl) Run(ctx context.Context, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	fmt.Fprint(r.out, "> ")
	for scanner.Scan() {
		err := r.exec(ctx, scanner.Text())
		if errors.Is(err, errQuit) {
			return nil
		}
		if err != nil {
			fmt.Fprintf(r.out, "error: %v\n", err)
		}
		fmt.Fprint(r.out, "> ")
	}
	return scanner.Err()
}

func (r *repl) exec(ctx context.Context, line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]

	var err error
	switch cmd {
	case "locate":
		err = r.session.UseMyLocation(ctx)
	case "postcode":
		err = r.session.SubmitPostcode(ctx, strings.Join(args, " "))
	case "tap":
		if len(args) != 2 {
			return fmt.Errorf("usage: tap <lat> <long>")
		}
		lat, perr := strconv.ParseFloat(args[0], 64)
		if perr != nil {
			return fmt.Errorf("bad latitude %q", args[0])
		}
		long, perr := strconv.ParseFloat(args[1], 64)
		if perr != nil {
			return fmt.Errorf("bad longitude %q", args[1])
		}
		err = r.session.TapMap(ctx, lat, long)
	case "filter":
		err = r.session.FilterByYear(ctx)
	case "alltime":
		err = r.session.AllTime(ctx)
	case "year":
		if len(args) != 1 {
			return fmt.Errorf("usage: year <0-25>")
		}
		offset, perr := strconv.Atoi(args[0])
		if perr != nil {
			return fmt.Errorf("bad slider value %q", args[0])
		}
		err = r.session.SelectYear(ctx, offset)
	case "back":
		err = r.session.Back()
	case "show":
		n := 5
		if len(args) == 1 {
			if v, perr := strconv.Atoi(args[0]); perr == nil && v >= 0 {
				n = v
			}
		}
		r.render(n)
		return nil
	case "help":
		fmt.Fprintln(r.out, helpText)
		return nil
	case "quit", "exit":
		return errQuit
	default:
		return fmt.Errorf("unknown command %q (try help)", cmd)
	}
	if err != nil {
		return err
	}
	r.render(0)
	return nil
}

func (r *repl) render(points int) {
	snap := r.session.Snapshot()
	if snap.ErrorMessage != "" {
		fmt.Fprintln(r.out, snap.ErrorMessage)
	}

	if snap.Screen == session.ScreenIntro {
		fmt.Fprintln(r.out, "[intro] locate, or enter a postcode")
		if snap.AddressPrompt {
			fmt.Fprintln(r.out, "Please enter an address")
		}
		return
	}

	view := "all time"
	if snap.Mode == session.ModeYear {
		view = strconv.Itoa(snap.Year)
	}
	fmt.Fprintf(r.out, "[map] %.5f, %.5f  view: %s  points: %d\n", snap.Latitude, snap.Longitude, view, len(snap.Points))
	fmt.Fprintln(r.out, r.session.MarkerTitle())
	if snap.FloodMessage != "" {
		fmt.Fprintln(r.out, snap.FloodMessage)
	}
	for i, p := range snap.Points {
		if i >= points {
			break
		}
		away := spatial.DistanceMeters(snap.Latitude, snap.Longitude, p.Latitude, p.Longitude)
		fmt.Fprintf(r.out, "  %.5f, %.5f  %.2f  (%.0f m away)\n", p.Latitude, p.Longitude, p.Weight, away)
	}
}
