package encoding

import (
	"bufio"
	"context"
	"io"
)

// ChanSource returns a LineSource receiving lines from ch. A closed channel
// reports io.EOF. ReadLine suspends on the channel and ctx, so no thread is
// blocked in I/O while waiting for the producer.
func ChanSource(ch <-chan string) LineSource {
	return &chanSource{lines: ch}
}

type chanSource struct {
	lines <-chan string
}

func (s *chanSource) ReadLine(ctx context.Context) (string, error) {
	select {
	case <-ctx.Done():
		return ``, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			return ``, io.EOF
		}
		return line, nil
	}
}

// AsyncSource returns a LineSource that reads r from a background goroutine,
// handing lines over a channel. Callers of ReadLine wait on the channel and
// their own context, so a slow r never prevents cancellation. The goroutine
// exits once r is exhausted or ctx is done, it may remain blocked in a single
// Read of r until that call returns.
func AsyncSource(ctx context.Context, r io.Reader) LineSource {
	s := &asyncSource{
		lines: make(chan string),
		errc:  make(chan error, 1),
	}
	go s.run(ctx, bufio.NewReader(r))
	return s
}

type asyncSource struct {
	lines chan string
	errc  chan error
	err   error
}

func (s *asyncSource) run(ctx context.Context, r *bufio.Reader) {
	defer close(s.lines)
	for {
		line, err := r.ReadString('\n')
		if len(line) > 0 {
			if err := ctx.Err(); err != nil {
				s.errc <- err
				return
			}
			select {
			case s.lines <- trimEOL(line):
			case <-ctx.Done():
				s.errc <- ctx.Err()
				return
			}
		}
		if err != nil {
			s.errc <- err
			return
		}
	}
}

func (s *asyncSource) ReadLine(ctx context.Context) (string, error) {
	if s.err != nil {
		return ``, s.err
	}
	select {
	case <-ctx.Done():
		return ``, ctx.Err()
	case line, ok := <-s.lines:
		if !ok {
			// The reader always reports why it stopped before closing lines.
			s.err = <-s.errc
			return ``, s.err
		}
		return line, nil
	}
}

// ChanSink returns a LineSink sending each line to ch as a string. WriteLine
// suspends until the line is received or ctx is done. Closing ch is left to the
// caller once the Encoder is closed.
func ChanSink(ch chan<- string) LineSink {
	return &chanSink{lines: ch}
}

type chanSink struct {
	lines chan<- string
}

func (s *chanSink) WriteLine(ctx context.Context, line []byte) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case s.lines <- string(line):
		return nil
	}
}

func (s *chanSink) Flush(ctx context.Context) error {
	return ctx.Err()
}
