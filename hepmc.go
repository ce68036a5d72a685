// Package hepmc reads and writes HepMC2 IO_GenEvent files. The streaming codec
// lives in the encoding package and the event model in the event package, this
// package holds file level conveniences over both.
package hepmc

import (
	"context"
	"errors"
	"io"
	"os"

	"github.com/cstockton/go-hepmc/encoding"
	"github.com/cstockton/go-hepmc/event"
	"golang.org/x/sync/errgroup"
)

// File is a Decoder reading from a file opened with Open.
type File struct {
	*encoding.Decoder
	f *os.File
}

// Open opens the named file for decoding.
func Open(name string, options ...encoding.Option) (*File, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return &File{Decoder: encoding.NewDecoder(f, options...), f: f}, nil
}

// Name returns the name of the file as presented to Open.
func (f *File) Name() string {
	return f.f.Name()
}

// Close closes the underlying file.
func (f *File) Close() error {
	return f.f.Close()
}

// Writer is an Encoder writing to a file created with Create.
type Writer struct {
	*encoding.Encoder
	f *os.File
}

// Create creates or truncates the named file for encoding.
func Create(name string, options ...encoding.Option) (*Writer, error) {
	f, err := os.Create(name)
	if err != nil {
		return nil, err
	}
	return &Writer{Encoder: encoding.NewEncoder(f, options...), f: f}, nil
}

// Close writes the footer, flushes buffered lines and closes the file. The file
// is closed even when finishing the stream fails.
func (w *Writer) Close() error {
	return errors.Join(w.Encoder.Close(), w.f.Close())
}

// ReadAll decodes every event from r. Events that fail to decode are skipped
// and their errors joined into the returned error, so a non-nil error may be
// returned along with the events that were read. A transport failure ends
// reading early.
func ReadAll(r io.Reader, options ...encoding.Option) ([]*event.Event, error) {
	return readAll(context.Background(), encoding.NewDecoder(r, options...))
}

func readAll(ctx context.Context, dec *encoding.Decoder) ([]*event.Event, error) {
	var (
		evs  []*event.Event
		errs []error
	)
	for ev, err := range dec.Events(ctx) {
		if err != nil {
			errs = append(errs, err)
			continue
		}
		evs = append(evs, ev)
	}
	return evs, errors.Join(errs...)
}

// WriteAll encodes evs to w, including the header and footer.
func WriteAll(w io.Writer, evs []*event.Event, options ...encoding.Option) error {
	enc := encoding.NewEncoder(w, options...)
	for _, ev := range evs {
		if err := enc.Encode(ev); err != nil {
			return errors.Join(err, enc.Close())
		}
	}
	return enc.Close()
}

// ReadFiles decodes the named files concurrently, returning the events of each
// file in the order the names were given. The first file that can not be opened
// or fails to decode cancels the rest.
func ReadFiles(ctx context.Context, names []string, options ...encoding.Option) ([][]*event.Event, error) {
	out := make([][]*event.Event, len(names))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range names {
		g.Go(func() error {
			f, err := Open(name, options...)
			if err != nil {
				return &FileError{Name: name, Err: err}
			}
			defer f.Close()

			evs, err := readAll(ctx, f.Decoder)
			if err != nil {
				return &FileError{Name: name, Err: err}
			}
			out[i] = evs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

// FileError records the file that could not be opened or decoded.
type FileError struct {
	Name string
	Err  error
}

// Error implements error.
func (e *FileError) Error() string {
	return e.Name + `: ` + e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *FileError) Unwrap() error {
	return e.Err
}
