package encoding

import (
	"context"
	"errors"
	"io"
	"iter"
	"log/slog"
	"strings"

	"github.com/cstockton/go-hepmc/event"
)

// Decoder reads events encoded in the IO_GenEvent format from a LineSource.
//
// Errors confined to a single event are returned from the Decode call for that
// event and the Decoder resumes at the next event record. Errors from the
// LineSource are permanent and returned from every later call until Reset. A
// Decoder is not safe for concurrent use.
type Decoder struct {
	src    LineSource
	err    error
	cfg    config
	cfgErr error
	state  *state

	// peek holds one line read ahead by More.
	peek    string
	hasPeek bool

	line  int
	ver   event.Version
	skip  bool // discarding lines until the next event record
	ended bool // end of listing banner seen

	// held is an error for the event after the one returned by the last call.
	held error
}

// NewDecoder returns a new decoder that reads from r. If the given r is a
// bufio.Reader then the decoder will use it for buffering, otherwise creating
// a new bufio.Reader.
func NewDecoder(r io.Reader, options ...Option) *Decoder {
	return NewSourceDecoder(ReaderSource(r), options...)
}

// NewSourceDecoder returns a new decoder that reads lines from src.
func NewSourceDecoder(src LineSource, options ...Option) *Decoder {
	d := &Decoder{src: src, state: newState()}
	d.cfg, d.cfgErr = newConfig(options)
	d.err = d.cfgErr
	return d
}

// Reset the Decoder to read from src, discarding any buffered state. The
// options given to the constructor are retained.
func (d *Decoder) Reset(src LineSource) {
	*d = Decoder{src: src, cfg: d.cfg, cfgErr: d.cfgErr, err: d.cfgErr, state: newState()}
}

// Source returns the LineSource given to the Decoder. Once Decode has returned
// io.EOF after the end of listing banner, the source is positioned just past
// that banner and may be used to read whatever follows it.
func (d *Decoder) Source() LineSource {
	return d.src
}

// Err returns the first permanent error that occurred during decoding, if that
// error was io.EOF then Err() returns nil and the decoding was successful.
func (d *Decoder) Err() error {
	if d.err == io.EOF {
		return nil
	}
	return d.err
}

// Line returns the number of lines read so far.
func (d *Decoder) Line() int {
	return d.line
}

// Version returns the format version declared by the version banner, or zero
// if no banner has been read yet.
func (d *Decoder) Version() event.Version {
	return d.ver
}

// More returns true when events may still be retrieved, false otherwise. More
// may read one line ahead from the source, blocking until it is available. The
// first time More returns false, all future calls will return false until Reset
// is called.
func (d *Decoder) More() bool {
	return d.MoreContext(context.Background())
}

// MoreContext is like More but gives up when ctx is done, returning true so the
// caller observes the context error from the next Decode.
func (d *Decoder) MoreContext(ctx context.Context) bool {
	if d.err != nil {
		return false
	}
	if d.state.pending() || d.hasPeek || d.held != nil {
		return true
	}
	for !d.ended {
		line, err := d.read(ctx)
		if err != nil {
			switch {
			case err == io.EOF:
				d.err = io.EOF
			case ctx.Err() != nil:
				return true
			default:
				d.err = &TransportError{Line: d.line, Err: err}
			}
			return false
		}
		if d.banner(line) || strings.TrimSpace(line) == `` {
			continue
		}
		d.peek, d.hasPeek = line, true
		return true
	}
	d.err = io.EOF
	return false
}

// Decode returns the next event from the input stream, see DecodeContext.
func (d *Decoder) Decode() (*event.Event, error) {
	return d.DecodeContext(context.Background())
}

// DecodeContext returns the next event from the input stream. If it returns a
// non-nil error then *event.Event will be nil. When ctx is done the context
// error is returned and the partially read event is kept, so a later call
// resumes exactly where this one stopped. At the end of the stream io.EOF is
// returned.
//
// A *MalformedLineError, *OutOfContextError or *InvariantError affects only the
// event being read, the next call continues with the following event. Each
// rejected event is reported once, later malformed lines of the same event are
// skipped. Any other error is permanent.
func (d *Decoder) DecodeContext(ctx context.Context) (*event.Event, error) {
	if d.err != nil {
		return nil, d.err
	}
	if err := d.held; err != nil {
		d.held = nil
		return nil, err
	}
	for {
		if d.ended {
			return d.eof()
		}

		line, err := d.next(ctx)
		if err != nil {
			if err == io.EOF {
				return d.eof()
			}
			if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
				return nil, err
			}
			d.state.discard()
			d.err = &TransportError{Line: d.line, Err: err}
			return nil, d.err
		}
		if d.banner(line) {
			continue
		}

		rec, err := ParseRecord(line, d.line)
		if err != nil {
			if !isEventLine(err) {
				if d.skip {
					continue
				}
				return nil, d.fail(err)
			}
			if !d.skip && d.state.pending() {
				// The event in progress ended at this line, report the
				// malformed event record on the next call.
				ev, evLine := d.state.finish()
				d.held = d.fail(err)
				return d.complete(ev, evLine)
			}
			return nil, d.fail(err)
		}
		if rec == nil {
			continue
		}
		if d.skip {
			if rec.Tag() != TagEvent {
				continue
			}
			d.skip = false
			d.cfg.logger.Debug(`resuming at next event`, slog.Int(`line`, d.line))
		}

		ev, evLine, err := d.state.visit(rec, d.line)
		if err != nil {
			return nil, d.fail(err)
		}
		if ev != nil {
			return d.complete(ev, evLine)
		}
	}
}

// Events returns an iterator over the remaining events of the stream, yielding
// each event or the error that prevented reading it. Iteration stops at the end
// of the stream, on a permanent error after yielding it, or when ctx is done.
func (d *Decoder) Events(ctx context.Context) iter.Seq2[*event.Event, error] {
	return func(yield func(*event.Event, error) bool) {
		for {
			ev, err := d.DecodeContext(ctx)
			if err == io.EOF {
				return
			}
			if !yield(ev, err) {
				return
			}
			if err != nil && (d.err != nil || ctx.Err() != nil) {
				return
			}
		}
	}
}

// eof emits the event in progress, then reports io.EOF permanently.
func (d *Decoder) eof() (*event.Event, error) {
	if !d.skip {
		if ev, evLine := d.state.finish(); ev != nil {
			return d.complete(ev, evLine)
		}
	}
	d.state.discard()
	d.err = io.EOF
	return nil, d.err
}

// complete validates an assembled event before handing it to the caller.
func (d *Decoder) complete(ev *event.Event, line int) (*event.Event, error) {
	if !d.cfg.validate {
		return ev, nil
	}
	if err := ev.Validate(); err != nil {
		var v *event.Violation
		errors.As(err, &v)
		d.cfg.logger.Debug(`rejected invalid event`,
			slog.Int(`line`, line), slog.Int(`event`, ev.Number), slog.Any(`error`, err))
		return nil, &InvariantError{Line: line, Event: ev, Err: v}
	}
	return ev, nil
}

// fail abandons the event in progress and skips lines until the next event
// record.
func (d *Decoder) fail(err error) error {
	d.state.discard()
	d.skip = true
	d.cfg.logger.Debug(`skipping event`, slog.Int(`line`, d.line), slog.Any(`error`, err))
	return err
}

// isEventLine reports whether err is a malformed event record, which begins a
// new event even though it could not be parsed.
func isEventLine(err error) bool {
	var mle *MalformedLineError
	return errors.As(err, &mle) && mle.Tag == TagEvent
}

// banner reports whether line is a banner, recording the version or the end of
// the listing.
func (d *Decoder) banner(line string) bool {
	text := strings.TrimSpace(line)
	if !strings.HasPrefix(text, event.BannerPrefix) {
		return false
	}
	switch {
	case text == event.BannerEnd:
		d.ended = true
	case strings.HasPrefix(text, event.BannerPrefix+`Version`):
		if ver, err := event.ParseVersion(text); err == nil {
			d.ver = ver
		} else {
			d.cfg.logger.Warn(`ignoring version banner`,
				slog.Int(`line`, d.line), slog.Any(`error`, err))
		}
	}
	return true
}

// next returns the peeked line or reads a new one.
func (d *Decoder) next(ctx context.Context) (string, error) {
	if d.hasPeek {
		line := d.peek
		d.peek, d.hasPeek = ``, false
		return line, nil
	}
	return d.read(ctx)
}

func (d *Decoder) read(ctx context.Context) (string, error) {
	line, err := d.src.ReadLine(ctx)
	if err != nil {
		return ``, err
	}
	d.line++
	return line, nil
}
