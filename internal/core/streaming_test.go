package core

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

func TestNewSourceReader(t *testing.T) {
	tests := []struct {
		name     string
		input    []byte
		expected string
	}{
		{
			name:     "file with BOM",
			input:    append([]byte{0xEF, 0xBB, 0xBF}, []byte("hello,world")...),
			expected: "hello,world",
		},
		{
			name:     "file without BOM",
			input:    []byte("hello,world"),
			expected: "hello,world",
		},
		{
			name:     "empty file",
			input:    []byte{},
			expected: "",
		},
		{
			name:     "only BOM",
			input:    []byte{0xEF, 0xBB, 0xBF},
			expected: "",
		},
		{
			name:     "partial BOM at start",
			input:    []byte{0xEF, 0xBB, 'a', 'b', 'c'},
			expected: string([]byte{0xEF, 0xBB, 'a', 'b', 'c'}),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader, err := newSourceReader(bytes.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			result, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if string(result) != tt.expected {
				t.Errorf("got %q, want %q", string(result), tt.expected)
			}
		})
	}
}

func TestSkipLines(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		skip    int
		rest    string
		wantErr bool
	}{
		{
			name:  "skip nothing",
			input: "a\nb\n",
			skip:  0,
			rest:  "a\nb\n",
		},
		{
			name:  "blank lines count",
			input: "\"Data Source\",\n\n\"Last Updated\",\n\nheader\n",
			skip:  4,
			rest:  "header\n",
		},
		{
			name:  "crlf endings",
			input: "x\r\ny\r\nheader\r\n",
			skip:  2,
			rest:  "header\r\n",
		},
		{
			name:    "too few lines",
			input:   "x\ny\n",
			skip:    4,
			wantErr: true,
		},
		{
			name:  "long line beyond buffer",
			input: strings.Repeat("z", 10000) + "\nheader\n",
			skip:  1,
			rest:  "header\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			br, err := newSourceReader(strings.NewReader(tt.input))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			err = skipLines(br, tt.skip)
			if tt.wantErr {
				if !errors.Is(err, ErrParse) {
					t.Fatalf("skipLines error = %v, want ErrParse", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			rest, _ := io.ReadAll(br)
			if string(rest) != tt.rest {
				t.Errorf("rest = %q, want %q", rest, tt.rest)
			}
		})
	}
}

func TestCountingReader(t *testing.T) {
	input := "hello, world!"
	cr := &countingReader{reader: strings.NewReader(input)}

	buf := make([]byte, 5)
	var total int
	for {
		n, err := cr.Read(buf)
		total += n
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	}

	if cr.BytesRead != int64(len(input)) {
		t.Errorf("BytesRead = %d, want %d", cr.BytesRead, len(input))
	}
	if total != len(input) {
		t.Errorf("total = %d, want %d", total, len(input))
	}
}
