package encoding

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// LineSource yields the lines of a stream one at a time without their line
// terminators. A line is returned whole or not at all. When the stream is
// exhausted ReadLine returns io.EOF. Implementations must return ctx.Err() once
// ctx is done and may block otherwise.
type LineSource interface {
	ReadLine(ctx context.Context) (string, error)
}

// LineSink accepts the lines of a stream one at a time. The line passed to
// WriteLine does not contain a terminator and may not be retained after the
// call returns.
type LineSink interface {
	WriteLine(ctx context.Context, line []byte) error
	Flush(ctx context.Context) error
}

// ReaderSource returns a LineSource reading from r. If r is a *bufio.Reader it
// is used directly, otherwise r is wrapped in a new one. The context is checked
// before each line, the read itself blocks.
func ReaderSource(r io.Reader) *BufferedSource {
	buf, ok := r.(*bufio.Reader)
	if !ok {
		buf = bufio.NewReader(r)
	}
	return &BufferedSource{r: buf}
}

// BufferedSource is a blocking LineSource over a bufio.Reader.
type BufferedSource struct {
	r   *bufio.Reader
	err error
}

// Reader returns the underlying reader, positioned just past the last line
// returned from ReadLine.
func (s *BufferedSource) Reader() *bufio.Reader {
	return s.r
}

// ReadLine implements LineSource.
func (s *BufferedSource) ReadLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return ``, err
	}
	if s.err != nil {
		return ``, s.err
	}
	line, err := s.r.ReadString('\n')
	if err != nil {
		if len(line) == 0 {
			return ``, err
		}

		// Deliver a final unterminated line and report err on the next call.
		s.err = err
	}
	return trimEOL(line), nil
}

func trimEOL(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// WriterSink returns a LineSink writing newline terminated lines to w through a
// bufio.Writer. Lines reach w once the buffer fills or on Flush.
func WriterSink(w io.Writer) *BufferedSink {
	buf, ok := w.(*bufio.Writer)
	if !ok {
		buf = bufio.NewWriter(w)
	}
	return &BufferedSink{w: buf}
}

// BufferedSink is a blocking LineSink over a bufio.Writer.
type BufferedSink struct {
	w *bufio.Writer
}

// Writer returns the underlying writer.
func (s *BufferedSink) Writer() *bufio.Writer {
	return s.w
}

// WriteLine implements LineSink.
func (s *BufferedSink) WriteLine(ctx context.Context, line []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.w.Write(line); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

// Flush implements LineSink.
func (s *BufferedSink) Flush(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.w.Flush()
}
