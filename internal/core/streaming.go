package core

// streaming.go prepares a raw source file for the CSV tokenizer.
//
// World Bank exports are written by Windows tooling: they usually start with
// a UTF-8 BOM and the primary file carries a short preamble ("Data Source",
// "Last Updated Date", blank lines) before the header. encoding/csv silently
// skips blank lines, so the preamble has to be removed on physical lines
// before tokenizing, otherwise the skip count would drift.

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// countingReader tracks bytes read for load logging.
type countingReader struct {
	reader    io.Reader
	BytesRead int64
}

func (r *countingReader) Read(p []byte) (int, error) {
	n, err := r.reader.Read(p)
	r.BytesRead += int64(n)
	return n, err
}

// newSourceReader wraps r in a buffered reader positioned after the BOM,
// if one is present.
func newSourceReader(r io.Reader) (*bufio.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(len(utf8BOM))
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, err
	}
	if bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}
	return br, nil
}

// skipLines discards n physical lines, blank ones included.
// A file with fewer than n lines is not tabular.
func skipLines(br *bufio.Reader, n int) error {
	for i := 0; i < n; i++ {
		_, err := br.ReadSlice('\n')
		for err == bufio.ErrBufferFull {
			_, err = br.ReadSlice('\n')
		}
		if err == io.EOF {
			return fmt.Errorf("%w: file ends after %d of %d preamble lines", ErrParse, i, n)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
