// Package debug provides opt-in byte-level tracing of the reader's I/O,
// toggled per Reader (ParquetOptions.Debug) rather than through a global
// logger.
package debug

import (
	"fmt"
	"io"
)

// Reader wraps r so that every ReadAt call is traced to standard output via
// fmt.Printf, tagged with prefix, the requested length and the offset.
func Reader(r io.ReaderAt, prefix string) io.ReaderAt {
	return &tracingReaderAt{r: r, prefix: prefix}
}

type tracingReaderAt struct {
	r      io.ReaderAt
	prefix string
}

func (d *tracingReaderAt) ReadAt(p []byte, off int64) (int, error) {
	n, err := d.r.ReadAt(p, off)
	fmt.Printf("%s: ReadAt(%d) @%d => %d %v\n", d.prefix, len(p), off, n, err)
	return n, err
}
