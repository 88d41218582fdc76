package checksum

import (
	"strings"
	"testing"
)

func TestCalculateRaw_Deterministic(t *testing.T) {
	c := New()
	content := []byte(`<schema><element name="Order"/></schema>`)

	if c.CalculateRaw(content) != c.CalculateRaw(content) {
		t.Error("expected identical checksums for identical content")
	}
	if c.CalculateRaw(content) == c.CalculateRaw([]byte("other")) {
		t.Error("expected different checksums for different content")
	}
	if len(c.CalculateRaw(content)) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(c.CalculateRaw(content)))
	}
}

func TestCalculateRaw_SensitiveToWhitespace(t *testing.T) {
	c := New()
	a := c.CalculateRaw([]byte("<schema>\n</schema>"))
	b := c.CalculateRaw([]byte("<schema> </schema>"))
	if a == b {
		t.Error("raw checksum must change when bytes change")
	}
}

func TestCalculateNormalized_IgnoresComments(t *testing.T) {
	c := New()
	plain := []byte(`<schema><element name="Order"/></schema>`)
	commented := []byte(`<schema><!-- legacy note --><element name="Order"/></schema>`)

	if c.CalculateNormalized(plain) != c.CalculateNormalized(commented) {
		t.Error("normalized checksum should ignore comments")
	}
}

func TestCalculateNormalized_CollapsesWhitespace(t *testing.T) {
	c := New()
	a := []byte("<schema>\n\t<element   name=\"Order\"/>\n</schema>")
	b := []byte("<schema> <element name=\"Order\"/> </schema>")

	if c.CalculateNormalized(a) != c.CalculateNormalized(b) {
		t.Error("normalized checksum should collapse whitespace runs")
	}
}

func TestCalculateNormalized_PreservesCase(t *testing.T) {
	c := New()
	a := []byte(`<element name="Order"/>`)
	b := []byte(`<element name="order"/>`)

	if c.CalculateNormalized(a) == c.CalculateNormalized(b) {
		t.Error("XML names are case-sensitive; checksums must differ")
	}
}

func TestRemoveComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comment", "<a/>", "<a/>"},
		{"single comment", "<a/><!-- x --><b/>", "<a/><b/>"},
		{"two comments", "<!-- 1 --><a/><!-- 2 -->", "<a/>"},
		{"dashes inside", "<a/><!-- a - b --><b/>", "<a/><b/>"},
		{"unterminated swallows rest", "<a/><!-- open <b/>", "<a/>"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := removeComments(tt.in); got != tt.want {
				t.Errorf("removeComments(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestNormalize_TrimsEnds(t *testing.T) {
	c := New()
	got := c.normalize("  <a/>  ")
	if got != "<a/>" || strings.ContainsAny(got[:1]+got[len(got)-1:], " \t\n") {
		t.Errorf("normalize left surrounding whitespace: %q", got)
	}
}
