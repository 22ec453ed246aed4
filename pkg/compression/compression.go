// Package compression provides transparent streaming compression for
// flat-file inputs and outputs. It supports gzip, deflate, zstd, and s2;
// the algorithm can be picked explicitly or inferred from a file
// extension.
package compression

import (
	"io"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/s2"
	"github.com/klauspost/compress/zstd"

	"github.com/vandenbergjp/FlatFiles/pkg/errors"
)

// Algorithm identifies a streaming compression algorithm.
type Algorithm string

const (
	// None performs no compression.
	None Algorithm = "none"
	// Gzip selects gzip streams (.gz).
	Gzip Algorithm = "gzip"
	// Deflate selects raw DEFLATE streams.
	Deflate Algorithm = "deflate"
	// Zstd selects zstandard streams (.zst).
	Zstd Algorithm = "zstd"
	// S2 selects s2 streams (.s2), a snappy-compatible format.
	S2 Algorithm = "s2"
)

// Parse returns the algorithm named by s. The empty string means None.
func Parse(s string) (Algorithm, error) {
	switch Algorithm(strings.ToLower(s)) {
	case "", None:
		return None, nil
	case Gzip:
		return Gzip, nil
	case Deflate:
		return Deflate, nil
	case Zstd:
		return Zstd, nil
	case S2:
		return S2, nil
	default:
		return None, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", s)
	}
}

// ByExtension infers the algorithm from a file name. Unknown extensions
// mean None.
func ByExtension(path string) Algorithm {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	case ".s2":
		return S2
	default:
		return None
	}
}

type nopReadCloser struct{ io.Reader }

func (nopReadCloser) Close() error { return nil }

type nopWriteCloser struct{ io.Writer }

func (nopWriteCloser) Close() error { return nil }

// NewReader wraps r in a decompressing reader for the algorithm. Closing
// the returned reader releases decompressor resources; it never closes r.
func NewReader(r io.Reader, algo Algorithm) (io.ReadCloser, error) {
	switch algo {
	case None:
		return nopReadCloser{r}, nil
	case Gzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open gzip stream")
		}
		return gr, nil
	case Deflate:
		return flate.NewReader(r), nil
	case Zstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open zstd stream")
		}
		return zr.IOReadCloser(), nil
	case S2:
		return nopReadCloser{s2.NewReader(r)}, nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", algo)
	}
}

// NewWriter wraps w in a compressing writer for the algorithm. The
// returned writer must be closed to flush the compressed trailer; it
// never closes w.
func NewWriter(w io.Writer, algo Algorithm) (io.WriteCloser, error) {
	switch algo {
	case None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Deflate:
		fw, err := flate.NewWriter(w, flate.DefaultCompression)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open deflate stream")
		}
		return fw, nil
	case Zstd:
		zw, err := zstd.NewWriter(w)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeIO, "failed to open zstd stream")
		}
		return zw, nil
	case S2:
		return s2.NewWriter(w), nil
	default:
		return nil, errors.Newf(errors.ErrorTypeConfig, "unknown compression algorithm %q", algo)
	}
}
