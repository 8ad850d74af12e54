package reporting

import (
	"encoding/csv"
	"io"
)

// csvWriter wraps encoding/csv so report sections can emit rows without
// threading an error through every call. The first write error sticks and
// is surfaced by flush.
type csvWriter struct {
	w   *csv.Writer
	err error
}

func newCSVWriter(dst io.Writer) *csvWriter {
	return &csvWriter{w: csv.NewWriter(dst)}
}

func (c *csvWriter) row(fields ...string) {
	if c.err != nil {
		return
	}
	c.err = c.w.Write(fields)
}

func (c *csvWriter) flush() error {
	if c.err != nil {
		return c.err
	}
	c.w.Flush()
	return c.w.Error()
}
