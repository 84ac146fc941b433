package templates

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/survey"
)

func TestUploadPage_EscapesUserData(t *testing.T) {
	user := identity.Identity{ID: "1", Name: "<script>alert(1)</script>"}
	cols := survey.Columns{Frequency: "How \"often\"", Importance: "imp", Numeric: "n", Category: "c"}

	var buf bytes.Buffer
	if err := UploadPage(user, cols, 10<<20).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "<script>alert") {
		t.Error("user name not escaped")
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Error("escaped user name missing")
	}
	if !strings.Contains(out, `action="/analyze"`) || !strings.Contains(out, "10 MB") {
		t.Errorf("upload form incomplete: %s", out)
	}
}

func TestResultsPage(t *testing.T) {
	raw := "id,freq,imp,n,kind\na,Always,very important,3,Rent\nb,Never,very unimportant,1,Food\nc"
	res, err := survey.NewPipeline(survey.Columns{Label: "id", Frequency: "freq", Importance: "imp", Numeric: "n", Category: "kind"}).Analyze(raw)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	view := ResultsView{
		Result: res,
		Images: map[survey.ChartKind][]byte{survey.ChartScatter: []byte("png")},
	}

	var buf bytes.Buffer
	if err := ResultsPage(identity.Identity{ID: "u"}, view).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()

	for _, want := range []string{
		"data:image/png;base64,cG5n",
		"Chart unavailable.",
		"1 malformed rows skipped (first at line 4)",
		"<td>1</td>",
		"<th>Rent</th><td>1</td>",
		"Assistance Types Distribution",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestErrorPage(t *testing.T) {
	var buf bytes.Buffer
	msg := survey.MapError(survey.ErrUnknownColumn)
	if err := ErrorPage(msg, nil).Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "VAL005") || strings.Contains(out, "Sign out") {
		t.Errorf("unexpected error page: %s", out)
	}
}

func TestLoginPage(t *testing.T) {
	var buf bytes.Buffer
	if err := LoginPage().Render(context.Background(), &buf); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.Contains(buf.String(), `href="/auth/login"`) {
		t.Error("login link missing")
	}
}
