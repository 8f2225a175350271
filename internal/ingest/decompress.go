// Package ingest reads CFD surface pressure exports into pressure fields.
//
// Exports are CSV files, optionally gzip (.gz, .z) or bzip2 (.bz2)
// compressed. The compression is recognized from the leading magic bytes
// so a misnamed file still decodes.
package ingest

import (
	"bufio"
	"bytes"
	"compress/bzip2"
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
)

var (
	gzipMagic  = []byte{0x1f, 0x8b}
	bzip2Magic = []byte("BZh")
)

// Compression of a file
type Compression int

const (
	None Compression = iota
	Gzip
	Bzip2
)

func (c Compression) String() string {
	switch c {
	case Gzip:
		return "gzip"
	case Bzip2:
		return "bzip2"
	}
	return "none"
}

// Detect returns the compression announced by the first bytes of r
func Detect(r *bufio.Reader) Compression {
	head, _ := r.Peek(3)
	switch {
	case bytes.HasPrefix(head, gzipMagic):
		return Gzip
	case bytes.HasPrefix(head, bzip2Magic):
		return Bzip2
	}
	return None
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var err error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if cerr := rc.closers[i].Close(); cerr != nil && err == nil {
			err = cerr
		}
	}
	return err
}

// Open opens path and returns a reader over its decompressed content
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &IOError{Path: path, Err: err}
	}
	rc, err := newReader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	rc.closers = append([]io.Closer{f}, rc.closers...)
	return rc, nil
}

// NewReader wraps r with the decoder of its compression. path only labels
// errors. Closing the result does not close r.
func NewReader(path string, r io.Reader) (io.ReadCloser, error) {
	rc, err := newReader(path, r)
	if err != nil {
		return nil, err
	}
	return rc, nil
}

func newReader(path string, r io.Reader) (*readCloser, error) {
	br := bufio.NewReader(r)
	switch Detect(br) {
	case Gzip:
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, &DecompressionError{Path: path, Err: err}
		}
		return &readCloser{Reader: &errReader{path: path, r: zr}, closers: []io.Closer{zr}}, nil
	case Bzip2:
		return &readCloser{Reader: &errReader{path: path, r: bzip2.NewReader(br)}}, nil
	}
	return &readCloser{Reader: &errReader{path: path, r: br, plain: true}}, nil
}

// errReader labels read failures of the decoder
type errReader struct {
	path  string
	r     io.Reader
	plain bool
}

func (e *errReader) Read(p []byte) (int, error) {
	n, err := e.r.Read(p)
	if err == nil || err == io.EOF {
		return n, err
	}
	if e.plain {
		return n, &IOError{Path: e.path, Err: err}
	}
	return n, &DecompressionError{Path: e.path, Err: err}
}

// Decompress reads the whole decompressed content of path
func Decompress(path string) ([]byte, error) {
	rc, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}
