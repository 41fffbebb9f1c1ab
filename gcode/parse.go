package gcode

import "fmt"
import "strconv"
import "strings"

// A ParseError points at the motion line that could not be understood.
type ParseError struct {
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("gcode: line %d: %s", e.Line, e.Msg)
}

// Parse reads a printer instruction stream, line by line, into a Document.
// G0/G1 lines are tokenized into Words; every other line is kept verbatim as
// passthrough. Only a motion line with an unparsable numeric field is an
// error; comments and unrecognized commands never are.
func Parse(input string) (*Document, error) {
	doc := &Document{}

	if strings.HasSuffix(input, "\n") {
		doc.trailingNewline = true
		input = input[:len(input)-1]
	}

	for idx, raw := range strings.Split(input, "\n") {
		line := Line{Num: idx + 1, Kind: KindRaw, Raw: raw}

		content := strings.TrimRight(raw, "\r")
		if isMotion(content) {
			words, comment, err := parseMotion(content, line.Num)
			if err != nil {
				return nil, err
			}
			line.Kind = KindMove
			line.Words = words
			line.Comment = comment
		}

		doc.AppendLine(line)
	}
	return doc, nil
}

// Reports whether the line is a linear motion command (G0/G1).
func isMotion(content string) bool {
	s := strings.TrimLeft(content, " \t")
	if len(s) < 2 || (s[0] != 'G' && s[0] != 'g') {
		return false
	}
	if s[1] != '0' && s[1] != '1' {
		return false
	}
	return len(s) == 2 || s[2] == ' ' || s[2] == '\t' || s[2] == ';'
}

// Splits a motion line into letter-address words and an optional trailing
// comment. The numeric part of every word must parse.
func parseMotion(content string, num int) ([]Word, string, error) {
	var comment string
	if ci := strings.IndexByte(content, ';'); ci != -1 {
		comment = content[ci:]
		content = content[:ci]
	}

	var words []Word
	for _, field := range strings.Fields(content) {
		letter := field[0]
		if letter >= 'a' && letter <= 'z' {
			letter -= 32 // Make uppercase
		}
		if letter < 'A' || letter > 'Z' {
			return nil, "", &ParseError{num, fmt.Sprintf("expected word address, found %q", field)}
		}
		value, err := strconv.ParseFloat(field[1:], 64)
		if err != nil {
			return nil, "", &ParseError{num, fmt.Sprintf("bad numeric field %q", field)}
		}
		words = append(words, Word{letter, value, field})
	}
	return words, comment, nil
}
