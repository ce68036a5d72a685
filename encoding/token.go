package encoding

import (
	"fmt"
	"strconv"
	"strings"
)

// fields is a cursor over the whitespace separated tokens following the tag of
// a single line. The first error is retained and all later reads return zero
// values, so a record can be read field by field and checked once at the end.
type fields struct {
	tag  Tag
	line int
	text string

	// start is the offset just past the tag, off the position of the next
	// unread byte and want the number of tokens expected so far.
	start int
	off   int
	want  int
	err   error
}

func newFields(tag Tag, text string, off, line int) *fields {
	return &fields{tag: tag, line: line, text: text, start: off, off: off, want: schemas[tag].fixed}
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\r', '\n', '\v', '\f':
		return true
	}
	return false
}

// nextToken returns the token starting at or after off and the offset just past
// it. A token starting with a quote extends to the closing quote, allowing it
// to contain spaces. An empty token means the line has no more tokens.
func nextToken(s string, off int) (string, int) {
	for off < len(s) && isSpace(s[off]) {
		off++
	}
	if off >= len(s) {
		return ``, off
	}
	start := off
	if s[off] == '"' {
		if end := strings.IndexByte(s[off+1:], '"'); end >= 0 {
			off += end + 2
			return s[start:off], off
		}
		return s[start:], len(s)
	}
	for off < len(s) && !isSpace(s[off]) {
		off++
	}
	return s[start:off], off
}

// countTokens returns the number of tokens in s after off.
func countTokens(s string, off int) (n int) {
	for {
		tok, next := nextToken(s, off)
		if tok == `` {
			return n
		}
		n, off = n+1, next
	}
}

func (f *fields) fail(format string, args ...any) {
	if f.err == nil {
		f.err = &MalformedLineError{
			Line: f.line,
			Tag:  f.tag,
			Msg:  f.tag.Name() + ` record: ` + fmt.Sprintf(format, args...),
			Text: f.text,
		}
	}
}

// arity records an error describing the expected and actual token counts.
func (f *fields) arity() {
	if f.err == nil {
		got := countTokens(f.text, f.start)
		f.err = &MalformedLineError{
			Line: f.line,
			Tag:  f.tag,
			Msg: fmt.Sprintf(`%s record expects %d tokens, found %d`,
				f.tag.Name(), f.want, got),
			Text: f.text,
		}
	}
}

func (f *fields) next() (string, bool) {
	if f.err != nil {
		return ``, false
	}
	tok, next := nextToken(f.text, f.off)
	if tok == `` {
		f.arity()
		return ``, false
	}
	f.off = next
	return tok, true
}

// more reports whether any tokens remain on the line.
func (f *fields) more() bool {
	if f.err != nil {
		return false
	}
	tok, _ := nextToken(f.text, f.off)
	return tok != ``
}

func (f *fields) int(name string) int {
	tok, ok := f.next()
	if !ok {
		return 0
	}
	v, err := strconv.Atoi(tok)
	if err != nil {
		f.fail(`%s: invalid integer %q`, name, tok)
	}
	return v
}

func (f *fields) int64(name string) int64 {
	tok, ok := f.next()
	if !ok {
		return 0
	}
	v, err := strconv.ParseInt(tok, 10, 64)
	if err != nil {
		f.fail(`%s: invalid integer %q`, name, tok)
	}
	return v
}

func (f *fields) float(name string) float64 {
	tok, ok := f.next()
	if !ok {
		return 0
	}
	v, err := strconv.ParseFloat(tok, 64)
	if err != nil {
		f.fail(`%s: invalid number %q`, name, tok)
	}
	return v
}

// optInt reads an optional trailing integer, returning zero when the line has
// no more tokens.
func (f *fields) optInt(name string) int {
	if !f.more() {
		return 0
	}
	f.want++
	return f.int(name)
}

func (f *fields) optFloat(name string) float64 {
	if !f.more() {
		return 0
	}
	f.want++
	return f.float(name)
}

// count reads a list length and extends the expected token count by n*per.
func (f *fields) count(name string, per int) int {
	n := f.int(name)
	if f.err != nil {
		return 0
	}
	if n < 0 || n > maxCount {
		f.fail(`%s: count %d out of range`, name, n)
		return 0
	}
	f.want += n * per
	return n
}

// optCount is count for a trailing list length that may be omitted.
func (f *fields) optCount(name string, per int) int {
	if !f.more() {
		return 0
	}
	f.want++
	return f.count(name, per)
}

func (f *fields) quoted(name string) string {
	tok, ok := f.next()
	if !ok {
		return ``
	}
	if len(tok) < 2 || tok[0] != '"' || tok[len(tok)-1] != '"' {
		f.fail(`%s: expected quoted string, found %s`, name, tok)
		return ``
	}
	return tok[1 : len(tok)-1]
}

func (f *fields) floats(name string, n int) []float64 {
	if n == 0 || f.err != nil {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = f.float(name)
	}
	return out
}

// done must be called after the last field is read, it reports trailing tokens
// as an arity error and returns the first error.
func (f *fields) done() error {
	if f.more() {
		f.arity()
	}
	return f.err
}
