package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"plain text", "plain text"},
		{"  padded  ", "padded"},
		{"<b>bold</b> claim", "bold claim"},
		{"<script>alert(1)</script>", "alert(1)"},
		{"&lt;img src=x&gt;", ""},
		{"five &amp; six", "five & six"},
	}
	for _, tc := range cases {
		if got := Text(tc.in); got != tc.want {
			t.Fatalf("Text(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTextPtr(t *testing.T) {
	if TextPtr(nil) != nil {
		t.Fatal("expected nil passthrough")
	}
	in := "<i>note</i>"
	out := TextPtr(&in)
	if out == nil || *out != "note" {
		t.Fatalf("expected stripped pointer value, got %v", out)
	}
}
