package encoding

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/cstockton/go-hepmc/event"
	"github.com/cstockton/go-hepmc/internal/hepmcgen"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func testReadLines(t *testing.T, src LineSource) ([]string, error) {
	t.Helper()
	var out []string
	for {
		line, err := src.ReadLine(context.Background())
		if err != nil {
			return out, err
		}
		out = append(out, line)
	}
}

func TestReaderSource(t *testing.T) {
	tests := []struct {
		in  string
		exp []string
	}{
		{``, nil},
		{"\n", []string{``}},
		{"a\nb\n", []string{`a`, `b`}},
		{"a\r\nb\r\n", []string{`a`, `b`}},
		{"a\nb", []string{`a`, `b`}},
		{"a\r\r\n", []string{"a\r"}},
	}
	for _, test := range tests {
		got, err := testReadLines(t, ReaderSource(strings.NewReader(test.in)))
		require.Equal(t, io.EOF, err)
		assert.Equal(t, test.exp, got, `input %q`, test.in)
	}

	t.Run(`Unterminated`, func(t *testing.T) {
		boom := errors.New(`boom`)
		src := ReaderSource(io.MultiReader(strings.NewReader("a\nb"), iotest.ErrReader(boom)))
		got, err := testReadLines(t, src)
		assert.Equal(t, []string{`a`, `b`}, got)
		assert.Equal(t, boom, err)

		_, err = src.ReadLine(context.Background())
		assert.Equal(t, boom, err, `exp the error to repeat`)
	})
	t.Run(`Buffered`, func(t *testing.T) {
		br := bufio.NewReader(strings.NewReader("a\n"))
		assert.Same(t, br, ReaderSource(br).Reader())
	})
	t.Run(`Context`, func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		src := ReaderSource(strings.NewReader("a\n"))
		_, err := src.ReadLine(ctx)
		assert.ErrorIs(t, err, context.Canceled)

		line, err := src.ReadLine(context.Background())
		require.NoError(t, err)
		assert.Equal(t, `a`, line)
	})
}

func TestWriterSink(t *testing.T) {
	var buf bytes.Buffer
	sink := WriterSink(&buf)
	ctx := context.Background()
	require.NoError(t, sink.WriteLine(ctx, []byte(`a`)))
	require.NoError(t, sink.WriteLine(ctx, nil))
	assert.Equal(t, 0, buf.Len(), `exp lines to be buffered until Flush`)
	require.NoError(t, sink.Flush(ctx))
	assert.Equal(t, "a\n\n", buf.String())

	bw := bufio.NewWriter(&buf)
	assert.Same(t, bw, WriterSink(bw).Writer())

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	assert.ErrorIs(t, sink.WriteLine(cctx, []byte(`b`)), context.Canceled)
	assert.ErrorIs(t, sink.Flush(cctx), context.Canceled)
}

func TestChanSource(t *testing.T) {
	ch := make(chan string, 2)
	ch <- `a`
	ch <- `b`
	close(ch)
	got, err := testReadLines(t, ChanSource(ch))
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []string{`a`, `b`}, got)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = ChanSource(make(chan string)).ReadLine(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestChanSink(t *testing.T) {
	ch := make(chan string, 1)
	sink := ChanSink(ch)
	require.NoError(t, sink.WriteLine(context.Background(), []byte(`a`)))
	assert.Equal(t, `a`, <-ch)
	require.NoError(t, sink.Flush(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, ChanSink(make(chan string)).WriteLine(ctx, []byte(`b`)), context.Canceled)
}

func TestAsyncSource(t *testing.T) {
	ctx := context.Background()
	got, err := testReadLines(t, AsyncSource(ctx, strings.NewReader("a\r\nb\nc")))
	assert.Equal(t, io.EOF, err)
	assert.Equal(t, []string{`a`, `b`, `c`}, got)

	t.Run(`Error`, func(t *testing.T) {
		boom := errors.New(`boom`)
		src := AsyncSource(ctx, io.MultiReader(strings.NewReader("a\n"), iotest.ErrReader(boom)))
		got, err := testReadLines(t, src)
		assert.Equal(t, []string{`a`}, got)
		assert.Equal(t, boom, err)

		_, err = src.ReadLine(ctx)
		assert.Equal(t, boom, err, `exp the error to repeat`)
	})
	t.Run(`Cancel`, func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		src := AsyncSource(ctx, pr)

		rctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := src.ReadLine(rctx)
		assert.ErrorIs(t, err, context.Canceled, `exp ReadLine to return while the reader blocks`)
	})
	t.Run(`Stop`, func(t *testing.T) {
		sctx, cancel := context.WithCancel(ctx)
		cancel()
		pr, pw := io.Pipe()
		src := AsyncSource(sctx, pr)
		go func() {
			_, _ = pw.Write([]byte("a\n"))
			pw.Close()
		}()

		// The goroutine stops once it can not hand over a line.
		_, err := testReadLines(t, src)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestChanPipeline(t *testing.T) {
	evs := hepmcgen.New(7).Events(20)
	ch := make(chan string)

	var got []*event.Event
	g, ctx := errgroup.WithContext(context.Background())
	g.Go(func() error {
		defer close(ch)
		enc := NewSinkEncoder(ChanSink(ch))
		for _, ev := range evs {
			if err := enc.EncodeContext(ctx, ev); err != nil {
				return err
			}
		}
		return enc.CloseContext(ctx)
	})
	g.Go(func() error {
		dec := NewSourceDecoder(ChanSource(ch))
		for ev, err := range dec.Events(ctx) {
			if err != nil {
				return err
			}
			got = append(got, ev)
		}
		return nil
	})
	require.NoError(t, g.Wait())
	if diff := cmp.Diff(evs, got, cmpopts.EquateEmpty()); diff != `` {
		t.Fatalf("exp events (-exp +got):\n%s", diff)
	}
}
