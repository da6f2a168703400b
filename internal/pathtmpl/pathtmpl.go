// Package pathtmpl implements the directory-naming template language used
// for comic and chapter download paths. A template is a UTF-8 string of
// path levels separated by '/', where each level mixes literal text with
// {field} or {field:fill>width} placeholders, e.g.
//
//	{group_title}/{order:0>3} {chapter_title}
//
// Parsing and rendering are pure functions over their inputs and are safe
// for concurrent use.
package pathtmpl

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Sentinel errors returned (wrapped) by Parse and Render. Callers should
// match them with errors.Is.
var (
	ErrUnterminatedPlaceholder = errors.New("unterminated placeholder")
	ErrInvalidFillSpec         = errors.New("invalid fill spec")
	ErrUnknownField            = errors.New("unknown field")
	ErrMissingValue            = errors.New("missing value")
)

// FillSpec is the padding directive attached to a placeholder. Alignment is
// fixed to right-align (pad left), matching the '>' operator in the
// template syntax.
type FillSpec struct {
	Fill  rune
	Width int
}

// Token is either a literal run of text (Field == "") or a placeholder.
type Token struct {
	Literal string
	Field   string
	Fill    *FillSpec
}

// Segment is one path level of a template.
type Segment struct {
	Tokens []Token
}

// Template is the parsed form of a directory-format string.
type Template struct {
	src      string
	segments []Segment
}

// Parse splits the template on '/' and scans each level for placeholders.
// "{{" and "}}" escape literal braces. Field names are not checked here;
// the parser is kind-agnostic and validation against a field set happens at
// render time.
func Parse(template string) (*Template, error) {
	parts := strings.Split(template, "/")
	segments := make([]Segment, 0, len(parts))
	for i, part := range parts {
		seg, err := parseSegment(part)
		if err != nil {
			return nil, fmt.Errorf("segment %d: %w", i+1, err)
		}
		segments = append(segments, seg)
	}
	return &Template{src: template, segments: segments}, nil
}

func parseSegment(s string) (Segment, error) {
	var seg Segment
	var literal strings.Builder
	flush := func() {
		if literal.Len() > 0 {
			seg.Tokens = append(seg.Tokens, Token{Literal: literal.String()})
			literal.Reset()
		}
	}

	for i := 0; i < len(s); {
		switch {
		case strings.HasPrefix(s[i:], "{{"):
			literal.WriteByte('{')
			i += 2
		case strings.HasPrefix(s[i:], "}}"):
			literal.WriteByte('}')
			i += 2
		case s[i] == '{':
			end := strings.IndexByte(s[i:], '}')
			if end < 0 {
				return Segment{}, fmt.Errorf("%q: %w", s[i:], ErrUnterminatedPlaceholder)
			}
			inner := s[i+1 : i+end]
			tok, err := parsePlaceholder(inner)
			if err != nil {
				return Segment{}, err
			}
			flush()
			seg.Tokens = append(seg.Tokens, tok)
			i += end + 1
		default:
			literal.WriteByte(s[i])
			i++
		}
	}
	flush()
	return seg, nil
}

// parsePlaceholder parses the text between braces: a field name optionally
// followed by ":<fill><'>'><digits>".
func parsePlaceholder(inner string) (Token, error) {
	field, spec, hasSpec := strings.Cut(inner, ":")
	if !hasSpec {
		return Token{Field: field}, nil
	}

	fill, size := utf8.DecodeRuneInString(spec)
	if size == 0 || fill == utf8.RuneError {
		return Token{}, fmt.Errorf("%q: %w", inner, ErrInvalidFillSpec)
	}
	rest := spec[size:]
	if !strings.HasPrefix(rest, ">") {
		return Token{}, fmt.Errorf("%q: %w", inner, ErrInvalidFillSpec)
	}
	digits := rest[1:]
	if digits == "" {
		return Token{}, fmt.Errorf("%q: %w", inner, ErrInvalidFillSpec)
	}
	width, err := strconv.Atoi(digits)
	if err != nil || width < 0 {
		return Token{}, fmt.Errorf("%q: %w", inner, ErrInvalidFillSpec)
	}
	return Token{Field: field, Fill: &FillSpec{Fill: fill, Width: width}}, nil
}

// String reconstructs the source template. Re-parsing the result yields an
// equivalent Template.
func (t *Template) String() string {
	var parts []string
	for _, seg := range t.segments {
		var b strings.Builder
		for _, tok := range seg.Tokens {
			if tok.Field == "" {
				b.WriteString(escapeLiteral(tok.Literal))
				continue
			}
			b.WriteByte('{')
			b.WriteString(tok.Field)
			if tok.Fill != nil {
				fmt.Fprintf(&b, ":%c>%d", tok.Fill.Fill, tok.Fill.Width)
			}
			b.WriteByte('}')
		}
		parts = append(parts, b.String())
	}
	return strings.Join(parts, "/")
}

// Fields returns the distinct placeholder field names in the template, in
// order of first appearance.
func (t *Template) Fields() []string {
	seen := make(map[string]bool)
	var fields []string
	for _, seg := range t.segments {
		for _, tok := range seg.Tokens {
			if tok.Field != "" && !seen[tok.Field] {
				seen[tok.Field] = true
				fields = append(fields, tok.Field)
			}
		}
	}
	return fields
}

func escapeLiteral(s string) string {
	s = strings.ReplaceAll(s, "{", "{{")
	return strings.ReplaceAll(s, "}", "}}")
}
