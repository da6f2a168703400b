package pathtmpl_test

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mhiraki/comi-go/internal/pathtmpl"
)

func mustParse(t *testing.T, src string) *pathtmpl.Template {
	t.Helper()
	tmpl, err := pathtmpl.Parse(src)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", src, err)
	}
	return tmpl
}

func render(t *testing.T, src string, ctx pathtmpl.Context, known pathtmpl.FieldSet) string {
	t.Helper()
	out, err := mustParse(t, src).Render(ctx, known)
	if err != nil {
		t.Fatalf("Render(%q) failed: %v", src, err)
	}
	return out
}

func TestRenderLiteralTemplateUnchanged(t *testing.T) {
	// A template with no placeholders comes back as-is, modulo the
	// platform separator.
	got := render(t, "comics/archive", pathtmpl.Context{}, pathtmpl.ChapterFields)
	want := strings.Join([]string{"comics", "archive"}, string(filepath.Separator))
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderOrderPadding(t *testing.T) {
	cases := []struct {
		name  string
		src   string
		order any
		want  string
	}{
		{"integer padded", "{order:0>4}", 13, "0013"},
		{"integer padded float", "{order:0>4}", 13.0, "0013"},
		{"fraction preserved", "{order:0>4}", 13.1, "0013.1"},
		{"width already met", "{order:0>2}", 133, "133"},
		{"no spec", "{order}", 13.5, "13.5"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := render(t, tc.src, pathtmpl.Context{"order": tc.order}, pathtmpl.ChapterFields)
			if got != tc.want {
				t.Errorf("render %q with order=%v: got %q, want %q", tc.src, tc.order, got, tc.want)
			}
		})
	}
}

func TestRenderComicLevelTemplate(t *testing.T) {
	ctx := pathtmpl.Context{
		"author":      "藤本タツキ",
		"comic_title": "電鋸人",
	}
	got := render(t, "{author}/{comic_title}", ctx, pathtmpl.ComicFields)
	want := "藤本タツキ" + string(filepath.Separator) + "電鋸人"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestRenderChapterLevelTemplate(t *testing.T) {
	ctx := pathtmpl.Context{
		"group_title":   "默認",
		"order":         13,
		"chapter_title": "第13话",
	}
	got := render(t, "{group_title}/{order:0>3} {chapter_title}", ctx, pathtmpl.ChapterFields)
	want := "默認" + string(filepath.Separator) + "013 第13话"
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func TestParseUnterminatedPlaceholder(t *testing.T) {
	_, err := pathtmpl.Parse("{unterminated")
	if !errors.Is(err, pathtmpl.ErrUnterminatedPlaceholder) {
		t.Errorf("expected ErrUnterminatedPlaceholder, got %v", err)
	}
}

func TestParseInvalidFillSpec(t *testing.T) {
	for _, src := range []string{"{order:0<4}", "{order:0>}", "{order:0>x}", "{order:}"} {
		if _, err := pathtmpl.Parse(src); !errors.Is(err, pathtmpl.ErrInvalidFillSpec) {
			t.Errorf("Parse(%q): expected ErrInvalidFillSpec, got %v", src, err)
		}
	}
}

func TestParseEscapedBraces(t *testing.T) {
	got := render(t, "{{literal}} {comic_title}", pathtmpl.Context{"comic_title": "One"}, pathtmpl.ComicFields)
	if got != "{literal} One" {
		t.Errorf("got %q, want %q", got, "{literal} One")
	}
}

func TestRenderUnknownField(t *testing.T) {
	// A chapter-only field against the comic vocabulary is a template
	// bug, never a silently empty directory name.
	tmpl := mustParse(t, "{chapter_title}")
	_, err := tmpl.Render(pathtmpl.Context{"chapter_title": "ch1"}, pathtmpl.ComicFields)
	if !errors.Is(err, pathtmpl.ErrUnknownField) {
		t.Errorf("expected ErrUnknownField, got %v", err)
	}
}

func TestRenderMissingValue(t *testing.T) {
	tmpl := mustParse(t, "{comic_title}")
	_, err := tmpl.Render(pathtmpl.Context{}, pathtmpl.ComicFields)
	if !errors.Is(err, pathtmpl.ErrMissingValue) {
		t.Errorf("expected ErrMissingValue, got %v", err)
	}
}

func TestStringRoundTrip(t *testing.T) {
	srcs := []string{
		"{group_title}/{order:0>3} {chapter_title}",
		"{{x}} {comic_title}",
		"plain/dirs",
		"{author}/{comic_title}",
	}
	ctx := pathtmpl.Context{
		"author":        "a",
		"comic_title":   "t",
		"group_title":   "g",
		"chapter_title": "c",
		"order":         1,
	}
	for _, src := range srcs {
		first := mustParse(t, src)
		second := mustParse(t, first.String())

		want, err1 := first.Render(ctx, pathtmpl.ChapterFields)
		got, err2 := second.Render(ctx, pathtmpl.ChapterFields)
		if err1 != nil || err2 != nil {
			t.Fatalf("round-trip render of %q failed: %v / %v", src, err1, err2)
		}
		if got != want {
			t.Errorf("round-trip of %q changed output: %q vs %q", src, want, got)
		}
	}
}

func TestFields(t *testing.T) {
	tmpl := mustParse(t, "{group_title}/{order:0>3} {chapter_title} {order}")
	got := tmpl.Fields()
	want := []string{"group_title", "order", "chapter_title"}
	if len(got) != len(want) {
		t.Fatalf("Fields() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Fields()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestRenderSegmentsKeepsSeparatorInValues(t *testing.T) {
	// Resolved values are passed through verbatim; sanitization is the
	// caller's job.
	tmpl := mustParse(t, "{comic_title}")
	segs, err := tmpl.RenderSegments(pathtmpl.Context{"comic_title": "a/b"}, pathtmpl.ComicFields)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 || segs[0] != "a/b" {
		t.Errorf("got %v, want [a/b]", segs)
	}
}

func TestStringPaddingUsesWholeValue(t *testing.T) {
	got := render(t, "{chapter_title:_>6}", pathtmpl.Context{"chapter_title": "ch1"}, pathtmpl.ChapterFields)
	if got != "___ch1" {
		t.Errorf("got %q, want %q", got, "___ch1")
	}
}

func TestCacheReusesParsedTemplate(t *testing.T) {
	cache := pathtmpl.NewCache()
	a, err := cache.Parse("{comic_title}")
	if err != nil {
		t.Fatal(err)
	}
	b, err := cache.Parse("{comic_title}")
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("expected cached template instance to be reused")
	}
	if _, err := cache.Parse("{broken"); !errors.Is(err, pathtmpl.ErrUnterminatedPlaceholder) {
		t.Errorf("expected parse error through cache, got %v", err)
	}
}
