package pathtmpl

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// Context holds the resolved metadata values available for substitution
// during one render call. Values are strings or numbers; "order" in
// particular may be fractional (13.1).
type Context map[string]any

// Render resolves every placeholder against ctx and joins the path levels
// with the platform separator. The engine does not sanitize resolved
// values; a separator inside a field value passes through verbatim and it
// is the caller's job to sanitize each level before touching the
// filesystem.
func (t *Template) Render(ctx Context, known FieldSet) (string, error) {
	segments, err := t.RenderSegments(ctx, known)
	if err != nil {
		return "", err
	}
	return strings.Join(segments, string(filepath.Separator)), nil
}

// RenderSegments renders each path level separately so callers can
// sanitize and filter levels before joining them into a filesystem path.
func (t *Template) RenderSegments(ctx Context, known FieldSet) ([]string, error) {
	segments := make([]string, 0, len(t.segments))
	for _, seg := range t.segments {
		var b strings.Builder
		for _, tok := range seg.Tokens {
			if tok.Field == "" {
				b.WriteString(tok.Literal)
				continue
			}
			resolved, err := resolveField(tok, ctx, known)
			if err != nil {
				return nil, err
			}
			b.WriteString(resolved)
		}
		segments = append(segments, b.String())
	}
	return segments, nil
}

func resolveField(tok Token, ctx Context, known FieldSet) (string, error) {
	if !known.Has(tok.Field) {
		return "", fmt.Errorf("field %q: %w", tok.Field, ErrUnknownField)
	}
	value, ok := ctx[tok.Field]
	if !ok {
		return "", fmt.Errorf("field %q: %w", tok.Field, ErrMissingValue)
	}

	s, numeric := stringify(value)
	if tok.Fill == nil {
		return s, nil
	}
	return pad(s, numeric, *tok.Fill), nil
}

// stringify converts a context value to its string form and reports
// whether the value was numeric.
func stringify(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, false
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32), true
	case int:
		return strconv.Itoa(x), true
	case int64:
		return strconv.FormatInt(x, 10), true
	case uint:
		return strconv.FormatUint(uint64(x), 10), true
	default:
		return fmt.Sprint(v), false
	}
}

// pad left-pads a stringified value to the spec width. Numeric values keep
// their decimals readable: only the integer part is padded and a non-zero
// fractional part is appended after it, so 13.1 with "0>4" becomes
// "0013.1" rather than "13.1" squeezed into four columns.
func pad(s string, numeric bool, spec FillSpec) string {
	if !numeric {
		return padLeft(s, spec)
	}

	intPart, fracPart, _ := strings.Cut(s, ".")
	padded := padLeft(intPart, spec)
	if fracPart != "" && fracPart != "0" {
		return padded + "." + fracPart
	}
	return padded
}

func padLeft(s string, spec FillSpec) string {
	n := spec.Width - len([]rune(s))
	if n <= 0 {
		return s
	}
	return strings.Repeat(string(spec.Fill), n) + s
}
