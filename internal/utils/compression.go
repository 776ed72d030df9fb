package utils

import (
	"errors"
	"io"
	"os"
	"strings"

	"github.com/dsnet/compress/bzip2"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Codec identifies a compression format
type Codec int

const (
	CodecNone Codec = iota
	CodecGzip
	CodecBzip2
	CodecXz
	CodecZstd
)

// String returns the file extension of the codec, without the dot
func (c Codec) String() string {
	switch c {
	case CodecGzip:
		return "gz"
	case CodecBzip2:
		return "bz2"
	case CodecXz:
		return "xz"
	case CodecZstd:
		return "zst"
	default:
		return "none"
	}
}

// CodecFor selects a codec purely from the file name suffix. There is no
// magic-byte sniffing.
func CodecFor(name string) Codec {
	switch {
	case strings.HasSuffix(name, ".gz"):
		return CodecGzip
	case strings.HasSuffix(name, ".bz2"):
		return CodecBzip2
	case strings.HasSuffix(name, ".xz"):
		return CodecXz
	case strings.HasSuffix(name, ".zst"):
		return CodecZstd
	default:
		return CodecNone
	}
}

// StripCodecExt removes the outer extension of an archive name. Unknown
// extensions are removed as well since the caller has already decided the
// file is an archive.
func StripCodecExt(name string) string {
	if i := strings.LastIndex(name, "."); i > 0 {
		return name[:i]
	}
	return name
}

// StreamOption adjusts how uncompressed streams are opened
type StreamOption func(*streamOptions)

type streamOptions struct {
	enc encoding.Encoding
}

// WithEncoding transcodes raw (uncompressed) streams from/to enc. It has
// no effect on compressed streams.
func WithEncoding(enc encoding.Encoding) StreamOption {
	return func(o *streamOptions) {
		o.enc = enc
	}
}

func buildOptions(opts []StreamOption) streamOptions {
	var o streamOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// readCloser closes the codec stream and then the underlying file
type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var errs []error
	for _, c := range r.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (w *writeCloser) Close() error {
	var errs []error
	for _, c := range w.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

type closerFunc func() error

func (f closerFunc) Close() error { return f() }

// NewReader wraps r with the decompressor selected by name's suffix.
// Closing the result does not close r.
func NewReader(r io.Reader, name string, opts ...StreamOption) (io.ReadCloser, error) {
	switch CodecFor(name) {
	case CodecGzip:
		gr, err := gzip.NewReader(r)
		if err != nil {
			return nil, err
		}
		return gr, nil
	case CodecBzip2:
		br, err := bzip2.NewReader(r, nil)
		if err != nil {
			return nil, err
		}
		return br, nil
	case CodecXz:
		xr, err := xz.NewReader(r)
		if err != nil {
			return nil, err
		}
		return io.NopCloser(xr), nil
	case CodecZstd:
		zr, err := zstd.NewReader(r)
		if err != nil {
			return nil, err
		}
		return zr.IOReadCloser(), nil
	default:
		o := buildOptions(opts)
		if o.enc != nil {
			return io.NopCloser(transform.NewReader(r, o.enc.NewDecoder())), nil
		}
		return io.NopCloser(r), nil
	}
}

// NewWriter wraps w with the compressor selected by name's suffix.
// Closing the result flushes the codec but does not close w.
func NewWriter(w io.Writer, name string, opts ...StreamOption) (io.WriteCloser, error) {
	switch CodecFor(name) {
	case CodecGzip:
		return gzip.NewWriter(w), nil
	case CodecBzip2:
		return bzip2.NewWriter(w, nil)
	case CodecXz:
		return xz.NewWriter(w)
	case CodecZstd:
		return zstd.NewWriter(w)
	default:
		o := buildOptions(opts)
		if o.enc != nil {
			return transform.NewWriter(w, o.enc.NewEncoder()), nil
		}
		return &writeCloser{Writer: w, closers: nil}, nil
	}
}

// OpenReader opens path and returns a decompressing reader chosen by its
// suffix. An unreadable stream is reported when the first read fails, not
// necessarily here.
func OpenReader(path string, opts ...StreamOption) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	r, err := NewReader(f, path, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &readCloser{Reader: r, closers: []io.Closer{r, f}}, nil
}

// CreateWriter creates path and returns a compressing writer chosen by its
// suffix. Close must be called to flush the codec and the file.
func CreateWriter(path string, opts ...StreamOption) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	w, err := NewWriter(f, path, opts...)
	if err != nil {
		f.Close()
		return nil, err
	}

	return &writeCloser{Writer: w, closers: []io.Closer{w, closerFunc(f.Sync), f}}, nil
}
