package render

import (
	"html/template"
	"io"

	"github.com/rotisserie/eris"

	"github.com/sells-group/citymap/internal/classify"
	"github.com/sells-group/citymap/internal/model"
)

// Page is the data behind the HTML page that hosts the three documents.
type Page struct {
	Attr      model.Attribute
	MapSrc    string
	ChartSrc  string
	BubbleSrc string
	Breaks    []classify.Break
	RunID     string
	// Links lists the attributes a reader can switch to. Empty for static
	// output, where every document is rendered for one attribute.
	Links []PageLink
}

// PageLink points at the page for another attribute.
type PageLink struct {
	Attr    model.Attribute
	Href    string
	Current bool
}

var pageTemplate = template.Must(template.New("page").Funcs(template.FuncMap{
	"label": classify.FormatLabel,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>US Cities by {{.Attr.Title}}</title>
<style>
body { font-family: Arial, sans-serif; margin: 1em 2em; color: #333; }
.legend span { display: inline-block; margin-right: 1em; }
.legend i { display: inline-block; width: 12px; height: 12px; margin-right: 4px; vertical-align: middle; }
nav a { margin-right: 1em; }
nav a.current { font-weight: bold; }
</style>
</head>
<body>
<h1>US Cities by {{.Attr.Title}}</h1>
{{- if .Links}}
<nav>{{range .Links}}<a href="{{.Href}}"{{if .Current}} class="current"{{end}}>{{.Attr.Title}}</a>{{end}}</nav>
{{- end}}
<div id="map"><img src="{{.MapSrc}}" alt="Map of US cities by {{.Attr.Title}}"></div>
<div class="legend">{{range .Breaks}}<span><i style="background: {{.Color}}"></i>{{label .Min}} to {{label .Max}} ({{.Count}})</span>{{end}}</div>
<div id="chart-container"><img src="{{.ChartSrc}}" alt="Top cities from each class"></div>
<div id="bubble"><img src="{{.BubbleSrc}}" alt="Top cities by {{.Attr.Title}}"></div>
{{- if .RunID}}
<footer><small>run {{.RunID}}</small></footer>
{{- end}}
</body>
</html>
`))

// RenderPage writes the HTML page for p.
func RenderPage(w io.Writer, p Page) error {
	if err := pageTemplate.Execute(w, p); err != nil {
		return eris.Wrap(err, "render: write page")
	}
	return nil
}
