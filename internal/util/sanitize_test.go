package util_test

import (
	"testing"

	"github.com/mhiraki/comi-go/internal/util"
)

func TestSanitizeDirName(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"第13话", "第13话"},
		{"a/b", "a b"},
		{`a\b`, "a b"},
		{"what?", "what？"},
		{"a:b", "a：b"},
		{`say "hi"`, "say 'hi'"},
		{"<ruby>", "《ruby》"},
		{"a|b", "a丨b"},
		{"star*", "star⭐"},
		{"  padded  ", "padded"},
	}
	for _, tc := range cases {
		if got := util.SanitizeDirName(tc.in); got != tc.want {
			t.Errorf("SanitizeDirName(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestJoinSanitized(t *testing.T) {
	got := util.JoinSanitized([]string{"默認", "", "  ", "013 第13话"})
	want := []string{"默認", "013 第13话"}
	if len(got) != len(want) {
		t.Fatalf("JoinSanitized returned %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("JoinSanitized[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
