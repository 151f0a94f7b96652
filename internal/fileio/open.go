// internal/fileio/open.go
package fileio

import (
	"bufio"
	"compress/gzip"
	"io"
	"os"
	"strings"
)

// multiReadCloser closes multiple io.Closers when Close() is called.
type multiReadCloser struct {
	io.Reader
	closers []io.Closer
}

func (m *multiReadCloser) Close() error {
	var err error
	for _, c := range m.closers {
		if cerr := c.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open returns a reader for path. "-" reads STDIN. Gzip input is detected by
// magic number (1F 8B) or by a .gz suffix, so both classifier output and
// lineage dumps may be stored compressed.
func Open(path string) (io.ReadCloser, error) {
	if path == "-" {
		return wrapGzip(io.NopCloser(os.Stdin), false)
	}
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return wrapGzip(fh, strings.HasSuffix(path, ".gz"))
}

func wrapGzip(rc io.ReadCloser, forced bool) (io.ReadCloser, error) {
	br := bufio.NewReaderSize(rc, 64<<10)
	sig, _ := br.Peek(2)
	if !forced && !(len(sig) == 2 && sig[0] == 0x1f && sig[1] == 0x8b) {
		return &multiReadCloser{Reader: br, closers: []io.Closer{rc}}, nil
	}
	gr, err := gzip.NewReader(br)
	if err != nil {
		_ = rc.Close()
		return nil, err
	}
	return &multiReadCloser{Reader: gr, closers: []io.Closer{gr, rc}}, nil
}
