// Package report saves analysis results to the results directory.
//
// Every result is written as indented JSON and as a markdown report sharing the
// same base name. An HTML rendering of the markdown can be written too.
package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"text/template"
	"time"

	"github.com/etnz/stocks/analysis"
	"github.com/etnz/stocks/renderer"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"go.uber.org/zap"
)

// DefaultDir is where results are written by default.
const DefaultDir = "results"

// Files lists the files written for one result.
type Files struct {
	JSON     string
	Markdown string
	HTML     string // empty unless HTML is enabled
}

// Writer saves results in a directory.
type Writer struct {
	dir    string
	logger *zap.Logger

	// HTML enables the HTML rendering of the markdown report.
	HTML bool
	// FrontMatter, when set, is executed with the result and prepended to the markdown report.
	FrontMatter *template.Template
	// Now stamps the file names.
	Now func() time.Time
}

// New returns a Writer to dir. A nil logger discards logs.
func New(dir string, logger *zap.Logger) *Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Writer{dir: dir, logger: logger, Now: time.Now}
}

// Path returns the path of a result file, without extension, for the given base name.
func (w *Writer) Path(base string) string {
	return filepath.Join(w.dir, fmt.Sprintf("%s_%s", base, w.Now().Format("20060102_150405")))
}

// Save writes res to the results directory.
func (w *Writer) Save(res *analysis.Result) (Files, error) {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return Files{}, fmt.Errorf("failed to create results directory: %w", err)
	}
	path := w.Path(res.Base())
	files := Files{JSON: path + ".json", Markdown: path + ".md"}

	data, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return Files{}, fmt.Errorf("failed to encode %s: %w", res.Kind, err)
	}
	if err := os.WriteFile(files.JSON, data, 0644); err != nil {
		return Files{}, err
	}

	md := renderer.Analysis(w.linked(res))
	if w.FrontMatter != nil {
		var fm bytes.Buffer
		if err := w.FrontMatter.Execute(&fm, res); err != nil {
			return Files{}, fmt.Errorf("failed to render front matter: %w", err)
		}
		md = fm.String() + "\n" + md
	}
	if err := os.WriteFile(files.Markdown, []byte(md), 0644); err != nil {
		return Files{}, err
	}

	if w.HTML {
		files.HTML = path + ".html"
		html, err := HTML(res.Base(), md)
		if err != nil {
			return Files{}, err
		}
		if err := os.WriteFile(files.HTML, html, 0644); err != nil {
			return Files{}, err
		}
	}
	w.logger.Info("result saved", zap.String("kind", string(res.Kind)), zap.String("file", files.JSON))
	return files, nil
}

// linked returns a copy of res whose charts are relative to the results directory.
func (w *Writer) linked(res *analysis.Result) *analysis.Result {
	view := *res
	view.Charts = make([]string, len(res.Charts))
	for i, c := range res.Charts {
		view.Charts[i] = c
		if rel, err := filepath.Rel(w.dir, c); err == nil {
			view.Charts[i] = filepath.ToSlash(rel)
		}
	}
	return &view
}

var page = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
body { font-family: sans-serif; max-width: 60em; margin: 2em auto; }
table { border-collapse: collapse; }
th, td { border: 1px solid #ccc; padding: 0.2em 0.6em; }
img { max-width: 100%; }
</style>
</head>
<body>
{{.Body}}
</body>
</html>
`))

// HTML converts a markdown report to a standalone HTML page.
func HTML(title, md string) ([]byte, error) {
	conv := goldmark.New(goldmark.WithExtensions(extension.GFM))
	var body bytes.Buffer
	if err := conv.Convert([]byte(md), &body); err != nil {
		return nil, fmt.Errorf("failed to convert markdown: %w", err)
	}
	var out bytes.Buffer
	err := page.Execute(&out, struct{ Title, Body string }{title, body.String()})
	return out.Bytes(), err
}
