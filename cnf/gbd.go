package cnf

import (
	"bufio"
	"crypto/md5"
	"encoding/hex"
	"io"
	"strconv"

	"github.com/pkg/errors"
)

// GBDHash returns the GBD identifier of the DIMACS stream read from r:
// the hex-encoded MD5 digest of its clause section, where comments and the
// problem line are dropped, literals are separated by a single space and
// every clause is written on its own line, ending with 0.
// Unlike the isomorphism-sensitive hash, it depends on the order of clauses
// and literals and on variable names.
func GBDHash(r io.Reader) (string, error) {
	h := md5.New()
	w := bufio.NewWriter(h)
	buf := make([]byte, 0, 12)
	first := true
	err := scanDimacs(r, nil, func(val int) error {
		if !first {
			if err := w.WriteByte(' '); err != nil {
				return err
			}
		}
		buf = strconv.AppendInt(buf[:0], int64(val), 10)
		if _, err := w.Write(buf); err != nil {
			return err
		}
		first = val == 0
		if first {
			return w.WriteByte('\n')
		}
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "cannot compute GBD hash")
	}
	if !first {
		return "", errors.New("cannot compute GBD hash: unfinished clause while EOF found")
	}
	if err := w.Flush(); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// GBDHashFile computes the GBD identifier of the (possibly compressed) file at path.
func GBDHashFile(path string) (string, error) {
	f, err := Open(path)
	if err != nil {
		return "", err
	}
	defer func() { _ = f.Close() }()
	hash, err := GBDHash(f)
	if err != nil {
		return "", errors.Wrapf(err, "could not hash %q", path)
	}
	return hash, nil
}
