// Package acf reads, patches and writes line-oriented aircraft property files.
//
// A [Document] is an immutable sequence of text lines. Patch operations
// return a new Document and never touch the receiver, so a caller can keep
// the original around for comparison. Property lines have the form
//
//	P <path> <value>
//
// where path segments are separated by "/" and index tuples are written as
// comma-separated integers, for example "P _body/0/_geo_xyz/3,7,1 1.5".
// Every body's properties live under the prefix returned by [BodyPrefix].
package acf

import (
	"bytes"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/zeebo/blake3"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

// Document is an immutable ordered sequence of lines.
type Document struct {
	lines []string
	// cr[i] is true when line i ended with CRLF in the source.
	cr []bool
	// trailing is true when the source ended with a newline.
	trailing bool
	// crlf is the ending given to lines that did not come from the source.
	crlf bool
}

// NewDocument returns a document holding a copy of lines, rendered with a
// trailing newline.
func NewDocument(lines []string) *Document {
	return &Document{lines: append([]string(nil), lines...), trailing: true}
}

// Parse reads a document from r. Line endings are preserved on output line
// by line, so a file mixing LF and CRLF renders back byte for byte, and a
// missing final newline stays missing. Inserted lines use CRLF when the
// source has any CRLF line.
func Parse(r io.Reader) (*Document, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return parseBytes(data), nil
}

func parseBytes(data []byte) *Document {
	d := &Document{}
	if len(data) == 0 {
		return d
	}
	text := string(data)
	if strings.HasSuffix(text, "\n") {
		d.trailing = true
		text = text[:len(text)-1]
	}
	d.lines = strings.Split(text, "\n")
	d.cr = make([]bool, len(d.lines))
	for i, l := range d.lines {
		terminated := i < len(d.lines)-1 || d.trailing
		if terminated && strings.HasSuffix(l, "\r") {
			d.lines[i] = l[:len(l)-1]
			d.cr[i] = true
			d.crlf = true
		}
	}
	return d
}

// ReadFile parses the document at path.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "acf %s", path)
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return parseBytes(data), nil
}

// Len returns the number of lines.
func (d *Document) Len() int { return len(d.lines) }

// Line returns line i.
func (d *Document) Line(i int) string { return d.lines[i] }

// Lines returns a copy of the document's lines.
func (d *Document) Lines() []string { return append([]string(nil), d.lines...) }

// Bytes renders the document.
func (d *Document) Bytes() []byte {
	var b bytes.Buffer
	for i, l := range d.lines {
		b.WriteString(l)
		if i == len(d.lines)-1 && !d.trailing {
			break
		}
		if d.endsCRLF(i) {
			b.WriteByte('\r')
		}
		b.WriteByte('\n')
	}
	return b.Bytes()
}

func (d *Document) endsCRLF(i int) bool {
	if i < len(d.cr) {
		return d.cr[i]
	}
	return d.crlf
}

// Digest returns the hex BLAKE3 hash of the rendered document.
func (d *Document) Digest() string {
	sum := blake3.Sum256(d.Bytes())
	return hex.EncodeToString(sum[:])
}

// Equal reports whether both documents render to the same bytes.
func (d *Document) Equal(o *Document) bool { return bytes.Equal(d.Bytes(), o.Bytes()) }

func (d *Document) with(lines []string, cr []bool) *Document {
	return &Document{lines: lines, cr: cr, trailing: d.trailing || len(d.lines) == 0, crlf: d.crlf}
}

// WriteFile renders doc and replaces path atomically: the bytes go to a
// temporary file in the same directory which is then renamed over path.
// On failure the destination is left untouched.
func WriteFile(path string, doc *Document) error {
	data := doc.Bytes()
	dir := filepath.Dir(path)

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+"-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, 0o644); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("rename %s: %w", path, err)
	}
	return nil
}
