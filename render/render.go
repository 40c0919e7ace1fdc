// Package render draws an organization chart as a standalone SVG document,
// using the same layout and connector routes the viewer shows.
package render

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/template"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/layout"
	"github.com/meikuraledutech/orgchart/viewer"
)

// EmptyMessage is drawn when a structure has no members.
const EmptyMessage = "Belum Ada Anggota"

// Options configure a render.
type Options struct {
	Layout  layout.Config
	Padding float64
	Logger  *zap.Logger
}

// DefaultOptions uses the default layout and the viewer's fit padding.
func DefaultOptions() Options {
	return Options{Layout: layout.DefaultConfig(), Padding: viewer.FitPadding}
}

type card struct {
	X, Y          string
	Width, Height string
	CenterX       string
	Initial       string
	Name          string
	Position      string
	PhotoURL      string
}

type line struct {
	Path  string
	Color string
	Dash  string
}

type document struct {
	MinX, MinY    string
	Width, Height string
	Cards         []card
	Lines         []line
	Empty         string
}

var svgTemplate = template.Must(template.New("chart").Parse(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" xmlns:xlink="http://www.w3.org/1999/xlink" width="{{.Width}}" height="{{.Height}}" viewBox="{{.MinX}} {{.MinY}} {{.Width}} {{.Height}}">
<rect x="{{.MinX}}" y="{{.MinY}}" width="{{.Width}}" height="{{.Height}}" fill="#ffffff"/>
{{- if .Empty}}
<text x="{{.MinX}}" y="{{.MinY}}" dx="20" dy="40" font-family="sans-serif" font-size="20" fill="#374151">{{html .Empty}}</text>
{{- end}}
<g class="connectors" fill="none" stroke-width="2">
{{- range .Lines}}
<path d="{{.Path}}" stroke="{{html .Color}}" stroke-dasharray="{{.Dash}}"/>
{{- end}}
</g>
<g class="members" font-family="sans-serif">
{{- range .Cards}}
<g transform="translate({{.X}} {{.Y}})">
<rect width="{{.Width}}" height="{{.Height}}" rx="16" fill="#ffffff" stroke="#e5e7eb" stroke-width="2"/>
<circle cx="44" cy="44" r="28" fill="#f3f4f6" stroke="#e5e7eb" stroke-width="2"/>
{{- if .PhotoURL}}
<image x="16" y="16" width="56" height="56" xlink:href="{{html .PhotoURL}}"/>
{{- else}}
<text x="44" y="52" text-anchor="middle" font-size="22" font-weight="bold" fill="#374151">{{html .Initial}}</text>
{{- end}}
<text x="{{.CenterX}}" y="104" text-anchor="middle" font-size="16" font-weight="bold" fill="#111827">{{html .Name}}</text>
<text x="{{.CenterX}}" y="128" text-anchor="middle" font-size="13" fill="#6b7280">{{html .Position}}</text>
</g>
{{- end}}
</g>
</svg>
`))

func num(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func initial(name string) string {
	r, _ := utf8.DecodeRuneInString(strings.TrimSpace(name))
	if r == utf8.RuneError {
		return "?"
	}
	return string(unicode.ToUpper(r))
}

// Chart renders the chart of structureID from src to w.
// A structure without members renders the empty-state message.
func Chart(ctx context.Context, src orgchart.ChartSource, structureID string, w io.Writer, opts Options) error {
	v := viewer.NewWithConfig(structureID, opts.Layout, viewer.Deps{Source: src, Logger: opts.Logger})
	res, err := v.Load(ctx)
	if err != nil {
		return fmt.Errorf("render: %w", err)
	}

	doc := document{}
	b, ok := layout.BoundingBox(v.Positions(), opts.Layout)
	if res == viewer.Empty || !ok {
		doc.MinX, doc.MinY = "0", "0"
		doc.Width, doc.Height = num(opts.Layout.NodeWidth*2), num(opts.Layout.NodeHeight)
		doc.Empty = EmptyMessage
		return svgTemplate.Execute(w, doc)
	}

	doc.MinX = num(b.Min.X - opts.Padding)
	doc.MinY = num(b.Min.Y - opts.Padding)
	doc.Width = num(b.Width() + 2*opts.Padding)
	doc.Height = num(b.Height() + 2*opts.Padding)

	for _, c := range v.Connectors() {
		doc.Lines = append(doc.Lines, line{Path: c.Path, Color: c.Color, Dash: c.Dash})
	}
	for _, n := range v.Nodes() {
		cd := card{
			X:        num(n.Position.X),
			Y:        num(n.Position.Y),
			Width:    num(n.Width),
			Height:   num(n.Height),
			CenterX:  num(n.Width / 2),
			Initial:  initial(n.Member.Name),
			Name:     n.Member.Name,
			Position: n.Member.Position,
		}
		if n.Member.PhotoURL != nil {
			cd.PhotoURL = *n.Member.PhotoURL
		}
		doc.Cards = append(doc.Cards, cd)
	}
	return svgTemplate.Execute(w, doc)
}
