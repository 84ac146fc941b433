// Package templates holds the HTML components served by the web package.
//
// Components are built with templ.ComponentFunc so they compose with any
// other templ.Component and stream straight to the response writer.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/surveyviz/internal/identity"
)

const styles = `
body{font-family:system-ui,sans-serif;margin:0;background:#f6f6f8;color:#222}
header{display:flex;justify-content:space-between;align-items:center;padding:12px 24px;background:#4b3f72;color:#fff}
header form{margin:0}
main{max-width:960px;margin:24px auto;padding:0 16px}
.card{background:#fff;border-radius:8px;padding:20px;margin-bottom:20px;box-shadow:0 1px 3px rgba(0,0,0,.1)}
.error{border-left:4px solid #b00020}
.muted{color:#666;font-size:.9em}
button,.button{background:#8e7cc3;color:#fff;border:0;border-radius:4px;padding:8px 16px;cursor:pointer;text-decoration:none}
table{border-collapse:collapse}
td,th{border:1px solid #ddd;padding:4px 10px;text-align:right}
img{max-width:100%;height:auto}
`

// page accumulates the first write error so components can emit markup
// without checking every call.
type page struct {
	w   io.Writer
	err error
}

func (p *page) raw(s string) {
	if p.err == nil {
		_, p.err = io.WriteString(p.w, s)
	}
}

func (p *page) text(s string) {
	p.raw(templ.EscapeString(s))
}

func (p *page) rawf(format string, args ...any) {
	if p.err == nil {
		_, p.err = fmt.Fprintf(p.w, format, args...)
	}
}

func (p *page) render(ctx context.Context, c templ.Component) {
	if p.err == nil && c != nil {
		p.err = c.Render(ctx, p.w)
	}
}

// Layout wraps body in the common page chrome. user may be nil on pages
// shown before sign-in.
func Layout(title string, user *identity.Identity, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		p := &page{w: w}
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		p.raw(`<title>`)
		p.text(title)
		p.raw(` · Survey Visualizer</title><style>`)
		p.raw(styles)
		p.raw(`</style></head><body><header><strong>Survey Visualizer</strong>`)
		if user != nil {
			p.raw(`<form method="post" action="/auth/logout"><span>`)
			p.text(user.DisplayName())
			p.raw(`</span> <button type="submit">Sign out</button></form>`)
		}
		p.raw(`</header><main>`)
		p.render(ctx, body)
		p.raw(`</main></body></html>`)
		return p.err
	})
}
