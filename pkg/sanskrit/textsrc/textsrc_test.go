package textsrc

import (
	"strings"
	"testing"
)

func TestExtractText(t *testing.T) {
	page := `<!doctype html>
<html>
<head><title>गीता</title><style>p { color: red }</style></head>
<body>
<script>var x = "ignored";</script>
<h1>भगवद्गीता</h1>
<p>धर्मक्षेत्रे   कुरुक्षेत्रे <b>समवेता</b> युयुत्सवः ।</p>
<p>मामकाः पाण्डवाश्चैव<br>किमकुर्वत सञ्जय ॥</p>
</body>
</html>`

	got, err := ExtractText(strings.NewReader(page))
	if err != nil {
		t.Fatalf("ExtractText: %v", err)
	}
	want := "भगवद्गीता\nधर्मक्षेत्रे कुरुक्षेत्रे समवेता युयुत्सवः ।\nमामकाः पाण्डवाश्चैव\nकिमकुर्वत सञ्जय ॥"
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if strings.Contains(got, "ignored") || strings.Contains(got, "color") {
		t.Error("script, style and head text must be skipped")
	}
}

func TestExtractStringPlainText(t *testing.T) {
	if got := ExtractString("  रामः गच्छति  "); got != "रामः गच्छति" {
		t.Errorf("got %q", got)
	}
}

func TestExtractEntities(t *testing.T) {
	if got := ExtractString("<p>राम &amp; सीता</p>"); got != "राम & सीता" {
		t.Errorf("got %q", got)
	}
}
