// Package renderer turns reconciliation reports into markdown and HTML.
package renderer

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/etnz/ledgerdiff"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

//go:embed *.md
var templates embed.FS

// ReportRenderOptions holds configuration for rendering a report.
type ReportRenderOptions struct {
	SkipAccounts bool // Do not render the account level sections.
}

// ReportMarkdown renders the full report to a markdown string.
func ReportMarkdown(r *ledgerdiff.Report, opts ReportRenderOptions) string {
	partials := map[string]string{
		"report_title":       "report_title.md",
		"waterfall":          "waterfall.md",
		"rollup":             "rollup.md",
		"report_rollups":     "report_rollups.md",
		"report_diagnostics": "report_diagnostics.md",
	}
	// An empty file name results in an empty template.
	if !opts.SkipAccounts {
		partials["report_accounts"] = "report_accounts.md"
	} else {
		partials["report_accounts"] = ""
	}
	return renderTemplate("report", "report.md", partials, r)
}

// WaterfallMarkdown renders the waterfall table alone.
func WaterfallMarkdown(w ledgerdiff.Waterfall) string {
	return renderTemplate("waterfall", "waterfall.md", nil, w)
}

// AccountsMarkdown renders the settled, new and continuing accounts of r.
func AccountsMarkdown(r *ledgerdiff.Report) string {
	return renderTemplate("report_accounts", "report_accounts.md", nil, r)
}

// RollupMarkdown renders one dimensional rollup.
func RollupMarkdown(r *ledgerdiff.DimensionalRollup) string {
	return renderTemplate("rollup", "rollup.md", nil, r)
}

// HTML converts markdown produced by this package into an HTML fragment.
func HTML(markdown string) (string, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var buf bytes.Buffer
	if err := md.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("converting markdown to html: %w", err)
	}
	return buf.String(), nil
}

var funcs = template.FuncMap{
	"cell":  cell,
	"group": group,
}

// cell escapes a value for a markdown table cell.
func cell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	return strings.Join(strings.Fields(s), " ")
}

// group names a rollup group, blank groups included.
func group(s string) string {
	if s == "" {
		return "_(none)_"
	}
	return cell(s)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		if file != "" {
			content, err = fs.ReadFile(templates, file)
			if err != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, err)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
