package encoding

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"time"

	"github.com/cstockton/go-hepmc/event"
)

// abandonTimeout bounds the footer written for an Encoder that was never
// closed.
const abandonTimeout = 5 * time.Second

// Encoder writes events encoded in the IO_GenEvent format to a LineSink.
//
// The header banners are written before the first event, or by Close when no
// event was written. The end of listing banner is written only by Close. An
// Encoder that becomes unreachable without being closed makes a best effort
// attempt to write the footer, ignoring any failure. Events produced by the
// Encoder are always lexically correct, structural consistency is the
// responsibility of the caller, see event.Validate. An Encoder is not safe for
// concurrent use.
type Encoder struct {
	st      *stream
	cleanup runtime.Cleanup
}

// stream is the state of an Encoder reachable from its cleanup.
type stream struct {
	sink   LineSink
	cfg    config
	err    error
	buf    []byte
	count  int
	lines  int
	began  bool
	closed bool
}

// NewEncoder returns a new encoder that writes events to w through a
// bufio.Writer, flushed on Close.
func NewEncoder(w io.Writer, options ...Option) *Encoder {
	return NewSinkEncoder(WriterSink(w), options...)
}

// NewSinkEncoder returns a new encoder that writes lines to sink.
func NewSinkEncoder(sink LineSink, options ...Option) *Encoder {
	st := &stream{sink: sink, buf: make([]byte, 0, 256)}
	st.cfg, st.err = newConfig(options)
	e := &Encoder{st: st}
	e.cleanup = runtime.AddCleanup(e, abandon, st)
	return e
}

// Err returns the first error that occurred during encoding, once an error
// occurs all future calls to Err() will return the same value.
func (e *Encoder) Err() error {
	return e.st.err
}

// Sink returns the LineSink given to the Encoder.
func (e *Encoder) Sink() LineSink {
	return e.st.sink
}

// Count returns the number of events written.
func (e *Encoder) Count() int {
	return e.st.count
}

// Encode writes a single event, see EncodeContext.
func (e *Encoder) Encode(ev *event.Event) error {
	return e.EncodeContext(context.Background(), ev)
}

// EncodeContext writes a single event to the sink. An event matching
// ErrUnencodable is rejected before anything is written and the Encoder remains
// usable. Any other non-nil error is permanent and all future calls will
// immediately return the same error, since the sink may hold a partial event.
func (e *Encoder) EncodeContext(ctx context.Context, ev *event.Event) error {
	st := e.st
	if st.err != nil {
		return st.err
	}
	if st.closed {
		return ErrClosed
	}
	if ev == nil {
		return errors.New(`encoder given a nil event`)
	}
	if err := encodable(ev); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := st.header(ctx); err != nil {
		return err
	}
	err := eachRecord(ev, st.cfg.weightLine, func(r Record) error {
		return st.write(ctx, r)
	})
	if err != nil {
		return err
	}
	st.count++
	return nil
}

// Close writes the footer and flushes the sink, see CloseContext.
func (e *Encoder) Close() error {
	return e.CloseContext(context.Background())
}

// CloseContext writes the header if no event was written, then the end of
// listing banner, and flushes the sink. It does not close the underlying
// transport. Calling CloseContext more than once returns the result of the
// first call.
func (e *Encoder) CloseContext(ctx context.Context) error {
	e.cleanup.Stop()
	return e.st.close(ctx)
}

func (st *stream) close(ctx context.Context) error {
	if st.closed {
		return st.err
	}
	st.closed = true
	if st.err != nil {
		return st.err
	}
	if err := st.header(ctx); err != nil {
		return err
	}
	if err := st.write(ctx, Banner{Text: event.BannerEnd}); err != nil {
		return err
	}
	if err := st.sink.Flush(ctx); err != nil {
		st.err = &TransportError{Line: st.lines, Err: err}
	}
	return st.err
}

func (st *stream) header(ctx context.Context) error {
	if st.began {
		return nil
	}
	st.began = true
	for _, text := range st.cfg.header {
		if err := st.write(ctx, Banner{Text: text}); err != nil {
			return err
		}
	}
	return nil
}

func (st *stream) write(ctx context.Context, r Record) error {
	st.buf = r.Append(st.buf[:0])
	if err := st.sink.WriteLine(ctx, st.buf); err != nil {
		st.err = &TransportError{Line: st.lines + 1, Err: err}
		return st.err
	}
	st.lines++
	return nil
}

// abandon finishes the stream of an Encoder that was garbage collected without
// being closed. Every failure, including a panic from the sink, is discarded.
func abandon(st *stream) {
	defer func() {
		_ = recover()
	}()
	if st.closed || st.err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), abandonTimeout)
	defer cancel()
	if err := st.close(ctx); err != nil {
		st.cfg.logger.Debug(`abandoned encoder failed to finish`, slog.Any(`error`, err))
	}
}
