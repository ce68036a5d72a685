package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cstockton/go-hepmc/encoding"
	"github.com/cstockton/go-hepmc/event"
	"github.com/cstockton/go-hepmc/internal/hepmcgen"
	json "github.com/goccy/go-json"
	_ "github.com/joho/godotenv/autoload"
	"github.com/phsym/zeroslog"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	flagHelpUsage       = "display usage information and exit"
	flagCountUsage      = "how many events to generate"
	flagSeedUsage       = "seed for generated events"
	flagGenerateUsage   = "send some event data to test with to stdout"
	flagJSONUsage       = "write each event as a line of JSON"
	flagEncodeUsage     = "re-encode events in canonical form"
	flagWeightLineUsage = "write event weights on a separate W line when encoding"
	flagVerboseUsage    = "log skipped events, same as HEPMC_LOG_LEVEL=debug"
)

var (
	flagHelp       bool
	flagGenerate   bool
	flagCount      int
	flagSeed       uint64
	flagJSON       bool
	flagEncode     bool
	flagWeightLine bool
	flagVerbose    bool
)

func init() {
	flag.BoolVar(&flagHelp, "h", false, flagHelpUsage)
	flag.BoolVar(&flagHelp, "help", false, ``)
	flag.IntVar(&flagCount, "c", 10, flagCountUsage)
	flag.IntVar(&flagCount, "count", 10, ``)
	flag.Uint64Var(&flagSeed, "s", 1, flagSeedUsage)
	flag.Uint64Var(&flagSeed, "seed", 1, ``)
	flag.BoolVar(&flagGenerate, "g", false, flagGenerateUsage)
	flag.BoolVar(&flagGenerate, "generate", false, ``)
	flag.BoolVar(&flagJSON, "j", false, flagJSONUsage)
	flag.BoolVar(&flagJSON, "json", false, ``)
	flag.BoolVar(&flagEncode, "e", false, flagEncodeUsage)
	flag.BoolVar(&flagEncode, "encode", false, ``)
	flag.BoolVar(&flagWeightLine, "w", false, flagWeightLineUsage)
	flag.BoolVar(&flagWeightLine, "weight-line", false, ``)
	flag.BoolVar(&flagVerbose, "v", false, flagVerboseUsage)
	flag.BoolVar(&flagVerbose, "verbose", false, ``)
}

func setupLogging() {
	level := slog.LevelInfo
	if s := os.Getenv(`HEPMC_LOG_LEVEL`); s != `` {
		if err := level.UnmarshalText([]byte(s)); err != nil {
			fmt.Fprintln(os.Stderr, `hepmccat err: HEPMC_LOG_LEVEL:`, err)
		}
	}
	if flagVerbose {
		level = slog.LevelDebug
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

func generate(w io.Writer) error {
	enc := encoding.NewEncoder(w, encoding.WithWeightLine(flagWeightLine))
	for _, ev := range hepmcgen.New(flagSeed).Events(flagCount) {
		if err := enc.Encode(ev); err != nil {
			return err
		}
	}
	return enc.Close()
}

var (
	stdinNotice sync.Once
	eventCount  int64
)

func readerFromStdin() io.Reader {
	stdinNotice.Do(func() {
		go func() {
			<-time.After(time.Second / 2)
			if atomic.LoadInt64(&eventCount) == 0 {
				slog.Info(`waiting for stdin...`)
			}
		}()
	})
	return os.Stdin
}

// printer writes decoded events to stdout in the selected form.
type printer struct {
	w   *bufio.Writer
	enc *encoding.Encoder
	js  *json.Encoder
}

func newPrinter(w io.Writer) *printer {
	p := &printer{w: bufio.NewWriter(w)}
	switch {
	case flagEncode:
		p.enc = encoding.NewEncoder(p.w, encoding.WithWeightLine(flagWeightLine))
	case flagJSON:
		p.js = json.NewEncoder(p.w)
	}
	return p
}

func (p *printer) print(ev *event.Event) error {
	atomic.AddInt64(&eventCount, 1)
	switch {
	case p.enc != nil:
		return p.enc.Encode(ev)
	case p.js != nil:
		return p.js.Encode(ev)
	}
	_, err := fmt.Fprintln(p.w, `hepmccat event:`, ev, ev.Units, ev.NamedWeights())
	return err
}

func (p *printer) close() error {
	if p.enc != nil {
		return p.enc.Close()
	}
	return p.w.Flush()
}

// decode reads every event from r, logging the events that fail to decode.
func decode(ctx context.Context, name string, r io.Reader, fn func(*event.Event) error) error {
	log := slog.Default().With(slog.String(`file`, name))
	dec := encoding.NewDecoder(r, encoding.WithLogger(log))
	var skipped int
	for ev, err := range dec.Events(ctx) {
		if err != nil {
			if dec.Err() != nil || ctx.Err() != nil {
				return fmt.Errorf(`%v: %w`, name, err)
			}
			skipped++
			log.Warn(`skipped event`, slog.Any(`error`, err))
			continue
		}
		if err := fn(ev); err != nil {
			return err
		}
	}
	log.Debug(`decoded`, slog.Int(`lines`, dec.Line()), slog.Int(`skipped`, skipped))
	return nil
}

// cat decodes each file concurrently and prints the events in argument order.
func cat(ctx context.Context, p *printer) error {
	args := flag.Args()
	if len(args) == 0 {
		args = []string{`-`}
	}

	results := make([][]*event.Event, len(args))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))
	for i, arg := range args {
		if arg == `-` {
			continue
		}
		g.Go(func() error {
			f, err := os.Open(arg)
			if err != nil {
				return err
			}
			defer f.Close()

			slog.Debug(`decoding`, slog.String(`file`, arg))
			return decode(ctx, arg, f, func(ev *event.Event) error {
				results[i] = append(results[i], ev)
				return nil
			})
		})
	}

	// stdin is streamed as it is read, files are printed once all are decoded.
	for _, arg := range args {
		if arg == `-` {
			if err := decode(ctx, `stdin`, readerFromStdin(), p.print); err != nil {
				return err
			}
		}
	}
	if err := g.Wait(); err != nil {
		return err
	}
	for _, evs := range results {
		for _, ev := range evs {
			if err := p.print(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

func main() {
	flag.Parse()
	setupLogging()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var err error
	switch {
	case flagHelp:
		exit(0)
	case flagGenerate:
		w := bufio.NewWriter(os.Stdout)
		if err = generate(w); err == nil {
			err = w.Flush()
		}
	default:
		p := newPrinter(os.Stdout)
		err = cat(ctx, p)
		if cerr := p.close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		slog.Error(`hepmccat failed`, slog.Any(`error`, err))
		os.Exit(1)
	}
}

var help = `Small utility for example purposes, for more info see:

  https://github.com/cstockton/go-hepmc

Example:

  # Generate an event file to test with
  hepmccat -g -c 100 > test.hepmc2

  # If no event files given, read stdin
  cat test.hepmc2 | hepmccat

  # If event files are given, decode each of them concurrently
  hepmccat test.hepmc2 test.hepmc2 test.hepmc2

  # Or stdin & event files with "-" in place of stdin
  hepmccat - test.hepmc2

  # Convert to JSON lines, or rewrite in canonical form
  hepmccat -j test.hepmc2 > test.jsonl
  hepmccat -e test.hepmc2 > canonical.hepmc2

Usage:

  hepmccat [flags...] [event files...]

Flags:
`
