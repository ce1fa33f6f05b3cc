package core

// decode.go turns an uploaded export into the text the parser reads.
//
// Uploads are read through a size guard, then either flattened (spreadsheet
// workbooks) or streamed through BOM removal and UTF-8 repair (CSV and text
// exports). Invalid bytes become '?' so a stray Latin-1 character in a
// description never fails an import.

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/JonMunkholm/borelog/internal/sheet"
)

var (
	// ErrFileTooLarge is returned when an upload exceeds the configured size.
	ErrFileTooLarge = errors.New("file too large")

	// ErrEmptyFile is returned for uploads with no content.
	ErrEmptyFile = errors.New("empty file")

	// ErrInvalidWorkbook is returned when a spreadsheet upload cannot be read.
	ErrInvalidWorkbook = errors.New("invalid workbook")

	// ErrInvalidUpload is returned by transports when a request body is not
	// a readable upload.
	ErrInvalidUpload = errors.New("invalid upload form")
)

// Decode reads at most maxSize bytes of an export named name and returns its
// text. maxSize <= 0 means no limit.
func Decode(name string, r io.Reader, maxSize int64) (string, error) {
	raw, err := io.ReadAll(&sizeGuard{r: r, max: maxSize})
	if err != nil {
		return "", err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return "", ErrEmptyFile
	}

	if sheet.IsWorkbook(name, raw) {
		text, err := sheet.Flatten(bytes.NewReader(raw), "")
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrInvalidWorkbook, err)
		}
		return text, nil
	}

	var b strings.Builder
	b.Grow(len(raw))
	if _, err := io.Copy(&b, newUTF8Sanitizer(newBOMSkipper(bytes.NewReader(raw)))); err != nil {
		return "", fmt.Errorf("decode %s: %w", name, err)
	}
	return b.String(), nil
}

// sizeGuard fails the read once more than max bytes have passed through.
type sizeGuard struct {
	r    io.Reader
	max  int64
	read int64
}

func (g *sizeGuard) Read(p []byte) (int, error) {
	n, err := g.r.Read(p)
	g.read += int64(n)
	if g.max > 0 && g.read > g.max {
		return n, fmt.Errorf("%w: more than %d bytes", ErrFileTooLarge, g.max)
	}
	return n, err
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper drops a leading UTF-8 byte order mark, which spreadsheet
// programs on Windows add to CSV exports.
type bomSkipper struct {
	br      *bufio.Reader
	checked bool
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{br: bufio.NewReader(r)}
}

func (s *bomSkipper) Read(p []byte) (int, error) {
	if !s.checked {
		s.checked = true
		if head, err := s.br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
			s.br.Discard(len(utf8BOM))
		}
	}
	return s.br.Read(p)
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?' as they stream past.
// A multi-byte rune split across reads is held back until its remaining
// bytes arrive.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}

	data := p[:n]
	if err == nil {
		if cut := splitRuneTail(data); cut > 0 {
			s.pending = append(s.pending, data[len(data)-cut:]...)
			data = data[:len(data)-cut]
		}
	}
	if utf8.Valid(data) {
		return len(data), err
	}
	return repairUTF8(data), err
}

// repairUTF8 rewrites data in place, replacing each invalid byte with '?',
// and returns the new length.
func repairUTF8(data []byte) int {
	w := 0
	for r := 0; r < len(data); {
		c, size := utf8.DecodeRune(data[r:])
		if c == utf8.RuneError && size == 1 {
			data[w] = '?'
			w++
			r++
			continue
		}
		w += copy(data[w:], data[r:r+size])
		r += size
	}
	return w
}

// splitRuneTail returns how many trailing bytes of data begin a multi-byte
// rune that is not yet complete.
func splitRuneTail(data []byte) int {
	for i := 1; i <= utf8.UTFMax-1 && i <= len(data); i++ {
		b := data[len(data)-i]
		if b < utf8.RuneSelf {
			return 0
		}
		if utf8.RuneStart(b) {
			if runeLen(b) > i {
				return i
			}
			return 0
		}
	}
	return 0
}

// runeLen is the encoded length announced by a rune's leading byte.
func runeLen(b byte) int {
	switch {
	case b < 0xC0:
		return 1
	case b < 0xE0:
		return 2
	case b < 0xF0:
		return 3
	default:
		return 4
	}
}
