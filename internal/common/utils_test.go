package common

import "testing"

func TestIsTextContentType(t *testing.T) {
	cases := map[string]bool{
		"image/tiff":                 false,
		"image/png":                  false,
		"":                           false,
		"text/xml; charset=UTF-8":    true,
		"application/vnd.ogc.se_xml": true,
		"application/json":           true,
		"TEXT/HTML":                  true,
		"application/octet-stream":   false,
	}
	for ct, want := range cases {
		if got := IsTextContentType(ct); got != want {
			t.Errorf("%q: expected %v, got %v", ct, want, got)
		}
	}
}

func TestSnippet(t *testing.T) {
	if got := Snippet([]byte("<ServiceException>\n  bad   layer\n</ServiceException>"), 200); got != "<ServiceException> bad layer </ServiceException>" {
		t.Errorf("unexpected snippet %q", got)
	}
	if got := Snippet([]byte("abcdef"), 3); got != "abc" {
		t.Errorf("expected abc, got %q", got)
	}
	// "é" is two bytes; cutting inside it must drop the partial rune.
	if got := Snippet([]byte("aé"), 2); got != "a" {
		t.Errorf("expected a, got %q", got)
	}
}
