package ingest

import "fmt"

// DecompressionError reports a compressed file that could not be decoded
type DecompressionError struct {
	Path string
	Err  error
}

func (e *DecompressionError) Error() string {
	return fmt.Sprintf("decompressing %s: %v", e.Path, e.Err)
}

func (e *DecompressionError) Unwrap() error { return e.Err }

// IOError reports a file that could not be opened or read
type IOError struct {
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("reading %s: %v", e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// SchemaError reports a missing or unparseable column. Row is the 1-based
// line of the file, the header being line 1; it is 0 for a missing column.
type SchemaError struct {
	Path   string
	Column string
	Row    int
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Row == 0 {
		return fmt.Sprintf("%s: column %q: %s", e.Path, e.Column, e.Reason)
	}
	return fmt.Sprintf("%s:%d: column %q: %s", e.Path, e.Row, e.Column, e.Reason)
}
