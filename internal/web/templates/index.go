// Package templates holds the server-rendered pages.
package templates

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
)

// TableSummary is one row of the index page's table list.
type TableSummary struct {
	Name    string
	Sheet   string
	IsForm  bool
	Columns int
}

// IndexData feeds the index page.
type IndexData struct {
	Tables     []TableSummary
	GateHolder string // Operation holding the write gate, empty when idle
}

// Index renders the landing page: registered tables and store activity.
func Index(data IndexData) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := io.WriteString(w, pageHead); err != nil {
			return err
		}

		status := "idle"
		if data.GateHolder != "" {
			status = "busy: " + templ.EscapeString(data.GateHolder)
		}
		if _, err := fmt.Fprintf(w, `<p class="status">Store %s</p>`, status); err != nil {
			return err
		}

		if _, err := io.WriteString(w, `<table><thead><tr><th>Table</th><th>Sheet</th><th>Kind</th><th>Columns</th></tr></thead><tbody>`); err != nil {
			return err
		}
		for _, t := range data.Tables {
			kind := "entity"
			if t.IsForm {
				kind = "form"
			}
			if _, err := fmt.Fprintf(w, `<tr><td>%s</td><td>%s</td><td>%s</td><td>%d</td></tr>`,
				templ.EscapeString(t.Name), templ.EscapeString(t.Sheet), kind, t.Columns); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</tbody></table></body></html>`)
		return err
	})
}

const pageHead = `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">` +
	`<title>Tutoring Admin</title>` +
	`<style>body{font-family:sans-serif;margin:2rem}table{border-collapse:collapse}` +
	`td,th{border:1px solid #ccc;padding:.25rem .75rem;text-align:left}</style>` +
	`</head><body><h1>Tutoring Admin</h1>`
