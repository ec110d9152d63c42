package smtpclient

import (
	"testing"

	"github.com/eigengrau/smtpconn"
)

func TestParseSMTPFeatures(t *testing.T) {
	data := "mail.example.com greeting\nPIPELINING\nSIZE 35882577\nAUTH PLAIN LOGIN CRAM-MD5\n8BITMIME"

	exts := parseSMTPFeatures(data)

	cases := []struct {
		ext   smtp.Extension
		want  string
		wantOK bool
	}{
		{smtp.ExtPIPELINING, "", true},
		{smtp.ExtSIZE, "35882577", true},
		{smtp.ExtAUTH, "PLAIN LOGIN CRAM-MD5", true},
		{smtp.Ext8BITMIME, "", true},
		{smtp.ExtSTARTTLS, "", false},
	}
	for _, c := range cases {
		got, ok := exts[c.ext]
		if ok != c.wantOK {
			t.Errorf("exts[%s] present = %v, want %v", c.ext, ok, c.wantOK)
			continue
		}
		if ok && got != c.want {
			t.Errorf("exts[%s] = %q, want %q", c.ext, got, c.want)
		}
	}
}

func TestParseSMTPFeatures_EqualsSeparatedStyle(t *testing.T) {
	data := "mail.example.com\n250=XYZ legacy-equals-style"
	exts := parseSMTPFeatures(data)
	if v, ok := exts[smtp.Extension("XYZ")]; !ok || v != "legacy-equals-style" {
		t.Errorf("exts[XYZ] = (%q, %v), want (%q, true)", v, ok, "legacy-equals-style")
	}
}

func TestParseSMTPFeatures_IgnoresBlankLines(t *testing.T) {
	exts := parseSMTPFeatures("greeting\n\nPIPELINING")
	if !exts.Has(smtp.ExtPIPELINING) {
		t.Error("expected PIPELINING to survive a blank line in the middle")
	}
}

func TestHasExtn_InvertedBoolean(t *testing.T) {
	s := &Session{features: smtp.Extensions{smtp.ExtPIPELINING: ""}}

	// Documented bug: HasExtn returns whether the feature is
	// ABSENT, not present.
	if got := s.HasExtn("PIPELINING"); got != false {
		t.Errorf("HasExtn(present feature) = %v, want false (inverted)", got)
	}
	if got := s.HasExtn("STARTTLS"); got != true {
		t.Errorf("HasExtn(absent feature) = %v, want true (inverted)", got)
	}
}
