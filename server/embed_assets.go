package server

import (
	"embed"
	"html/template"
	"io/fs"
	"net/http"
)

//go:embed templates/*
var templateFiles embed.FS

//go:embed static/*
var staticFiles embed.FS

// templateFuncs are available to all page templates. Status content arrives
// from the instance already sanitised, so safeHTML only marks it as such.
var templateFuncs = template.FuncMap{
	"safeHTML": func(s string) template.HTML { return template.HTML(s) },
}

// ParseTemplate parses a template from the embedded filesystem.
func ParseTemplate(name string) (*template.Template, error) {
	content, err := fs.ReadFile(templateFiles, "templates/"+name)
	if err != nil {
		return nil, err
	}
	return template.New(name).Funcs(templateFuncs).Parse(string(content))
}

// MustParseTemplate is ParseTemplate for handler factories, where a missing
// template is a programming error.
func MustParseTemplate(name string) *template.Template {
	tmpl, err := ParseTemplate(name)
	if err != nil {
		panic("Failed to parse template " + name + ": " + err.Error())
	}
	return tmpl
}

func FileServerHandler() http.Handler {
	subFS, err := fs.Sub(staticFiles, "static")
	if err != nil {
		panic("Failed to create static sub filesystem: " + err.Error())
	}
	return http.FileServer(http.FS(subFS))
}
