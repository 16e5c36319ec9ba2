package cnf

import (
	"compress/bzip2"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"
	"github.com/ulikunitz/xz/lzma"
)

// Ext returns the extension of the formula stored in path,
// looking behind compression extensions: Ext("f.cnf.xz") is ".cnf".
func Ext(path string) string {
	ext := filepath.Ext(path)
	switch ext {
	case ".xz", ".lzma", ".bz2", ".gz":
		return filepath.Ext(strings.TrimSuffix(path, ext))
	}
	return ext
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (rc *readCloser) Close() error {
	var first error
	for i := len(rc.closers) - 1; i >= 0; i-- {
		if err := rc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Open opens the file at path for reading, decompressing it
// according to its extension.
func Open(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not open %q", path)
	}
	var r io.Reader
	rc := &readCloser{closers: []io.Closer{f}}
	switch filepath.Ext(path) {
	case ".gz":
		gr, err := gzip.NewReader(f)
		if err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "could not read gzip stream %q", path)
		}
		rc.closers = append(rc.closers, gr)
		r = gr
	case ".bz2":
		r = bzip2.NewReader(f)
	case ".xz":
		if r, err = xz.NewReader(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "could not read xz stream %q", path)
		}
	case ".lzma":
		if r, err = lzma.NewReader(f); err != nil {
			_ = f.Close()
			return nil, errors.Wrapf(err, "could not read lzma stream %q", path)
		}
	default:
		r = f
	}
	rc.Reader = r
	return rc, nil
}

// ParseFile opens, decompresses if needed, and parses the DIMACS CNF file at path.
func ParseFile(path string) (*Formula, error) {
	f, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()
	form, err := ParseCNF(f)
	if err != nil {
		return nil, errors.Wrapf(err, "could not parse DIMACS file %q", path)
	}
	return form, nil
}

type writeCloser struct {
	io.Writer
	closers []io.Closer
}

func (wc *writeCloser) Close() error {
	var first error
	for i := len(wc.closers) - 1; i >= 0; i-- {
		if err := wc.closers[i].Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Create creates the file at path, truncating it if it exists.
// Output is gzip-compressed if path ends with ".gz".
func Create(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.Wrapf(err, "could not create %q", path)
	}
	if filepath.Ext(path) != ".gz" {
		return f, nil
	}
	gw := gzip.NewWriter(f)
	return &writeCloser{Writer: gw, closers: []io.Closer{f, gw}}, nil
}
