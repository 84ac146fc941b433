package templates

import (
	"context"
	"encoding/base64"
	"io"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/surveyviz/internal/identity"
	"github.com/JonMunkholm/surveyviz/internal/survey"
)

// LoginPage offers the sign-in button.
func LoginPage() templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section class="card"><h1>Sign in</h1>`)
		p.raw(`<p>Sign in to upload survey results and view the charts.</p>`)
		p.raw(`<a class="button" href="/auth/login">Sign in with Google</a></section>`)
		return p.err
	})
	return Layout("Sign in", nil, body)
}

// UploadPage is the landing page with the CSV upload form.
func UploadPage(user identity.Identity, cols survey.Columns, maxBytes int64) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section class="card"><h1>Upload survey results</h1>`)
		p.raw(`<form method="post" action="/analyze" enctype="multipart/form-data">`)
		p.raw(`<p><input type="file" name="file" accept=".csv,text/csv" required></p>`)
		p.raw(`<p><button type="submit">Analyze</button></p></form>`)
		p.rawf(`<p class="muted">CSV files up to %s MB. Columns analysed: `, strconv.FormatInt(maxBytes>>20, 10))
		p.text("frequency " + cols.Frequency + ", importance " + cols.Importance +
			", numeric " + cols.Numeric + ", category " + cols.Category)
		p.raw(`.</p></section>`)
		return p.err
	})
	return Layout("Upload", &user, body)
}

// ResultsView is what the results page shows for one analysis.
type ResultsView struct {
	Result *survey.Result
	Images map[survey.ChartKind][]byte
}

// ResultsPage shows the three charts, the correlation table and the tally.
func ResultsPage(user identity.Identity, view ResultsView) templ.Component {
	body := templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		res := view.Result
		p := &page{w: w}

		p.raw(`<section class="card"><h1>Results</h1><p class="muted">Analysis `)
		p.text(res.ID)
		p.rawf(` · %d rows`, len(res.Table.Rows))
		if n := len(res.Table.Skipped); n > 0 {
			p.rawf(` · %d malformed rows skipped (first at line %d)`, n, res.Table.Skipped[0].Line)
		}
		p.raw(`</p></section>`)

		for _, c := range res.Charts() {
			p.raw(`<section class="card">`)
			img, ok := view.Images[c.Kind()]
			if ok {
				p.raw(`<img alt="`)
				p.text(string(c.Kind()))
				p.raw(` chart" src="data:image/png;base64,`)
				p.raw(base64.StdEncoding.EncodeToString(img))
				p.raw(`">`)
			} else {
				p.raw(`<p class="muted">Chart unavailable.</p>`)
			}
			p.raw(`</section>`)
		}

		p.raw(`<section class="card"><h2>Correlation</h2><table><tr><th></th>`)
		for _, l := range res.Heatmap.ColumnLabels {
			p.raw(`<th>`)
			p.text(l)
			p.raw(`</th>`)
		}
		p.raw(`</tr>`)
		for i, row := range res.Matrix.Formatted() {
			p.raw(`<tr><th>`)
			if i < len(res.Heatmap.RowLabels) {
				p.text(res.Heatmap.RowLabels[i])
			}
			p.raw(`</th>`)
			for _, v := range row {
				p.raw(`<td>`)
				p.text(v)
				p.raw(`</td>`)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</table></section>`)

		p.raw(`<section class="card"><h2>`)
		p.text(res.Bar.Title)
		p.raw(`</h2><table>`)
		for _, c := range res.Tally {
			p.raw(`<tr><th>`)
			p.text(c.Value)
			p.rawf(`</th><td>%d</td></tr>`, c.Count)
		}
		p.raw(`</table><p><a class="button" href="/">Analyze another file</a></p></section>`)
		return p.err
	})
	return Layout("Results", &user, body)
}

// ErrorPage renders a user-facing failure with its support code.
func ErrorPage(msg survey.UserMessage, user *identity.Identity) templ.Component {
	return Layout("Error", user, ErrorAlert(msg.Message, msg.Action, msg.Code))
}

// ErrorAlert is the error card on its own.
func ErrorAlert(message, action, code string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<section class="card error" role="alert"><h2>`)
		p.text(message)
		p.raw(`</h2>`)
		if action != "" {
			p.raw(`<p>`)
			p.text(action)
			p.raw(`</p>`)
		}
		p.raw(`<p class="muted">Code: `)
		p.text(code)
		p.raw(`</p><p><a href="/">Back</a></p></section>`)
		return p.err
	})
}
