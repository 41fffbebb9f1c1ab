package gcode

import "strconv"
import "strings"

// Line kinds.
const (
	KindRaw  = iota // passthrough: comments, M-codes, anything unrecognized
	KindMove        // G0/G1 linear motion
)

// A Word is one letter-address field on a motion line, e.g. "X12.345".
// Raw holds the field exactly as it appeared in the input.
type Word struct {
	Letter byte
	Value  float64
	Raw    string
}

// A Line is one line of the input stream. Raw is always the original text
// (without the newline), and is what Render emits unless the planar
// coordinates have been substituted.
type Line struct {
	Num     int // 1-based line number
	Kind    int
	Raw     string
	Words   []Word // motion lines only, in original field order
	Comment string // trailing ;-comment on a motion line, raw

	subst      bool
	newX, newY float64
}

// A Document is the full instruction stream, one Line per input line.
type Document struct {
	Lines []Line

	// Whether the input ended with a newline, so output can match.
	trailingNewline bool
}

// Word returns the word with the given letter, or nil.
func (l *Line) Word(letter byte) *Word {
	for i := range l.Words {
		if l.Words[i].Letter == letter {
			return &l.Words[i]
		}
	}
	return nil
}

// SetXY substitutes the planar target of a motion line. Every other field is
// preserved and re-emitted from its original text.
func (l *Line) SetXY(x, y float64) {
	l.subst = true
	l.newX, l.newY = x, y
}

// Render emits the line, substituting X and Y words when SetXY was called.
// Words the original line omitted are appended before any trailing comment.
func (l *Line) Render() string {
	if !l.subst {
		return l.Raw
	}

	var fields []string
	haveX, haveY := false, false
	for _, w := range l.Words {
		switch w.Letter {
		case 'X':
			fields = append(fields, "X"+formatCoord(l.newX))
			haveX = true
		case 'Y':
			fields = append(fields, "Y"+formatCoord(l.newY))
			haveY = true
		default:
			fields = append(fields, w.Raw)
		}
	}
	if !haveX {
		fields = append(fields, "X"+formatCoord(l.newX))
	}
	if !haveY {
		fields = append(fields, "Y"+formatCoord(l.newY))
	}
	out := strings.Join(fields, " ")
	if l.Comment != "" {
		out += " " + l.Comment
	}
	return out
}

// AppendLine puts a line on the document.
func (d *Document) AppendLine(l Line) {
	d.Lines = append(d.Lines, l)
}

// Render emits the whole document, modified lines re-rendered and everything
// else verbatim.
func (d *Document) Render() string {
	var b strings.Builder
	for i := range d.Lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(d.Lines[i].Render())
	}
	if d.trailingNewline {
		b.WriteByte('\n')
	}
	return b.String()
}

// Formats a coordinate with 3 decimals, stripping useless trailing zeroes.
func formatCoord(f float64) string {
	x := strconv.FormatFloat(f, 'f', 3, 64)

	if strings.IndexRune(x, '.') != -1 {
		for x[len(x)-1] == '0' {
			x = x[:len(x)-1]
		}
		if x[len(x)-1] == '.' {
			x = x[:len(x)-1]
		}
	}

	return x
}
