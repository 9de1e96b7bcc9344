package acf

import (
	"fmt"
	"strings"

	"github.com/matzehuels/obj2acf/pkg/errors"
)

// Section markers bracketing the property lines.
const (
	SectionBegin = "PROPERTIES_BEGIN"
	SectionEnd   = "PROPERTIES_END"
)

// BodyPrefix returns the line prefix owned by body b.
func BodyPrefix(b int) string { return fmt.Sprintf("P _body/%d/", b) }

// StationPrefix returns the line prefix of the geometry lines of station i
// of body b.
func StationPrefix(b, i int) string { return fmt.Sprintf("P _body/%d/_geo_xyz/%d,", b, i) }

// Section returns the line indices of the begin and end markers.
func (d *Document) Section() (begin, end int, err error) {
	begin, end = -1, -1
	for i, l := range d.lines {
		switch strings.TrimSpace(l) {
		case SectionBegin:
			if begin < 0 {
				begin = i
			}
		case SectionEnd:
			if end < 0 {
				end = i
			}
		}
	}
	switch {
	case begin < 0:
		return -1, -1, errors.New(errors.ErrCodeMissingSection, "%s marker not found", SectionBegin)
	case end < 0:
		return -1, -1, errors.New(errors.ErrCodeMissingSection, "%s marker not found", SectionEnd)
	case end < begin:
		return -1, -1, errors.New(errors.ErrCodeMissingSection, "%s precedes %s", SectionEnd, SectionBegin)
	}
	return begin, end, nil
}

func owns(line, prefix string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), prefix)
}

// Extract returns the lines owned by prefix, in document order.
func (d *Document) Extract(prefix string) []string {
	var out []string
	for _, l := range d.lines {
		if owns(l, prefix) {
			out = append(out, l)
		}
	}
	return out
}

// Replace returns a new document in which every line owned by prefix is
// removed and block is inserted where the first owned line was.
//
// When the document has no owned line the block goes immediately after the
// PROPERTIES_BEGIN marker; a document without that marker fails with
// ErrCodeMissingSection. No other line moves relative to the rest.
func (d *Document) Replace(prefix string, block []string) (*Document, error) {
	kept := make([]string, 0, len(d.lines)+len(block))
	keptCR := make([]bool, 0, len(d.lines)+len(block))
	at := -1
	for i, l := range d.lines {
		if owns(l, prefix) {
			if at < 0 {
				at = len(kept)
			}
			continue
		}
		kept = append(kept, l)
		keptCR = append(keptCR, d.endsCRLF(i))
	}

	if at < 0 {
		begin := -1
		for i, l := range kept {
			if strings.TrimSpace(l) == SectionBegin {
				begin = i
				break
			}
		}
		if begin < 0 {
			return nil, errors.New(errors.ErrCodeMissingSection,
				"no lines for %q and no %s marker to insert after", strings.TrimSpace(prefix), SectionBegin)
		}
		at = begin + 1
	}

	out := make([]string, 0, len(kept)+len(block))
	out = append(out, kept[:at]...)
	out = append(out, block...)
	out = append(out, kept[at:]...)

	cr := make([]bool, 0, len(out))
	cr = append(cr, keptCR[:at]...)
	for range block {
		cr = append(cr, d.crlf)
	}
	cr = append(cr, keptCR[at:]...)
	return d.with(out, cr), nil
}
