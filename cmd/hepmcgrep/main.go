package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/cstockton/go-hepmc/encoding"
	"github.com/cstockton/go-hepmc/event"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
)

const (
	flagHelpUsage       = "display usage information and exit"
	flagPDGUsage        = "comma separated PDG ids, an event matches if it has any such particle"
	flagStatusUsage     = "only match particles with this status, -1 for any"
	flagFinalUsage      = "only match final state particles"
	flagInvertUsage     = "invert matching, like grep -v"
	flagQuietUsage      = "do not write information to stderr"
	flagWeightLineUsage = "write event weights on a separate W line"
)

var (
	flagHelp       bool
	flagQuiet      bool
	flagPDG        string
	flagStatus     int
	flagFinal      bool
	flagInvert     bool
	flagWeightLine bool
)

func init() {
	flag.BoolVar(&flagHelp, "h", false, flagHelpUsage)
	flag.BoolVar(&flagHelp, "help", false, ``)
	flag.BoolVar(&flagQuiet, "q", false, flagQuietUsage)
	flag.BoolVar(&flagQuiet, "quiet", false, ``)
	flag.StringVar(&flagPDG, "p", ``, flagPDGUsage)
	flag.StringVar(&flagPDG, "pdg", ``, ``)
	flag.IntVar(&flagStatus, "s", -1, flagStatusUsage)
	flag.IntVar(&flagStatus, "status", -1, ``)
	flag.BoolVar(&flagFinal, "f", false, flagFinalUsage)
	flag.BoolVar(&flagFinal, "final", false, ``)
	flag.BoolVar(&flagInvert, "v", false, flagInvertUsage)
	flag.BoolVar(&flagInvert, "invert", false, ``)
	flag.BoolVar(&flagWeightLine, "w", false, flagWeightLineUsage)
	flag.BoolVar(&flagWeightLine, "weight-line", false, ``)
}

func setupLogging() {
	level := slog.LevelInfo
	if flagQuiet {
		level = slog.LevelError
	}
	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Stamp}
	log := zerolog.New(output).With().Timestamp().Logger()
	slog.SetDefault(slog.New(
		zeroslog.NewHandler(log, &zeroslog.HandlerOptions{Level: level}),
	))
}

func exit(code int) {
	fmt.Println(help)
	flag.PrintDefaults()
	os.Exit(code)
}

func parsePDG(s string) ([]int, error) {
	var ids []int
	for _, f := range strings.Split(s, `,`) {
		if f = strings.TrimSpace(f); f == `` {
			continue
		}
		id, err := strconv.Atoi(f)
		if err != nil {
			return nil, fmt.Errorf(`pdg id %q: %w`, f, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

var errFound = errors.New(`found`)

// matcher returns a func reporting whether an event has a particle selected by
// the flags.
func matcher(ids []int) func(*event.Event) bool {
	match := func(p *event.Particle) bool {
		if len(ids) > 0 && !slices.Contains(ids, p.PDG) {
			return false
		}
		if flagStatus >= 0 && p.Status != flagStatus {
			return false
		}
		return !flagFinal || p.Final()
	}
	return func(ev *event.Event) bool {
		err := event.Walk(ev, event.ParticleFunc(func(v *event.Vertex, p *event.Particle, incoming bool) error {
			if match(p) {
				return errFound
			}
			return nil
		}))
		return err == errFound
	}
}

func filter(ctx context.Context) error {
	ids, err := parsePDG(flagPDG)
	if err != nil {
		return err
	}
	match := matcher(ids)

	// stdin is read from a goroutine so an interrupt is seen between lines.
	dec := encoding.NewSourceDecoder(encoding.AsyncSource(ctx, os.Stdin))
	enc := encoding.NewEncoder(os.Stdout, encoding.WithWeightLine(flagWeightLine))

	var kept, dropped int
	for ev, err := range dec.Events(ctx) {
		if err != nil {
			if dec.Err() != nil || ctx.Err() != nil {
				return err
			}
			slog.Warn(`skipped event`, slog.Any(`error`, err))
			continue
		}

		// filter input stream
		if match(ev) == flagInvert {
			dropped++
			slog.Debug(`filtered`, slog.Int(`event`, ev.Number))
			continue
		}

		// emit to output stream
		if err := enc.EncodeContext(ctx, ev); err != nil {
			return err
		}
		kept++
	}
	slog.Info(`hepmcgrep done`, slog.Int(`kept`, kept), slog.Int(`dropped`, dropped))
	return enc.CloseContext(ctx)
}

func main() {
	flag.Parse()
	setupLogging()

	if flagHelp {
		exit(0)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := filter(ctx); err != nil {
		slog.Error(`hepmcgrep failed`, slog.Any(`error`, err))
		os.Exit(1)
	}
}

var help = `Small utility for example purposes, for more info see:

  https://github.com/cstockton/go-hepmc

Example:

  # Keep events with a final state muon pair
  cat test.hepmc2 | hepmcgrep -f -p 13,-13 > muons.hepmc2

  # Drop events containing a Z boson with -v
  cat test.hepmc2 | hepmcgrep -v -p 23 > filtered.hepmc2

Usage:

  hepmcgrep [flags...] < input

Flags:
`
