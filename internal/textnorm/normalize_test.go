package textnorm

import "testing"

func TestNormalizeRules(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"line terminators", "a\r\nb\rc", "a\nb\nc"},
		{"equals padding", "==== Title ====\nbody", "Title\nbody"},
		{"dashes", "10\u201312 \u2014 see manual", "10-12 - see manual"},
		{"wrap hyphen", "wind-\nshield", "windshield"},
		{"wrap hyphen across blank line", "wind-\n\nshield", "windshield"},
		{"trailing spaces", "a   \nb", "a\nb"},
		{"blank lines", "a\n\n\n\nb", "a\nb"},
		{"curly quotes", "\u2018a\u2019 \u201cb\u201d", `'a' "b"`},
		{"space runs", "a   b\tc", "a b c"},
		{"keeps real hyphens", "anti-lock brakes", "anti-lock brakes"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(tc.in)
			if got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	samples := []string{
		"",
		"plain sentence.",
		"==== SECTION ====\r\nThe head-\nlight  switch \u2014 see \u201cpage 4\u201d.\n\n\nNext   line.\t\t",
		"a=b stays, = = goes\n=\nend",
		"wind-\n\nshield wipers   work.",
	}
	for _, s := range samples {
		once := Normalize(s)
		twice := Normalize(once)
		if once != twice {
			t.Fatalf("not idempotent for %q:\nonce:  %q\ntwice: %q", s, once, twice)
		}
	}
}
