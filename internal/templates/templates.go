// Package templates provides embedded templates for sketch scaffolding.
package templates

import (
	"bytes"
	"embed"
	"fmt"
	"io/fs"
	"regexp"
	"strings"
	"text/template"
)

//go:embed sketch/*.tmpl
var sketchTemplates embed.FS

// SketchData contains the data used to render sketch templates.
type SketchData struct {
	// Name is the sketch name; the directory and .ino file share it
	Name string
	// Includes are library headers the sketch starts with (e.g. "Servo.h")
	Includes []string
	// Blink fills setup and loop with the LED example
	Blink bool
}

var sketchName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_-]*$`)

// Validate checks that the name can be used as a directory and file name.
func (d SketchData) Validate() error {
	if !sketchName.MatchString(d.Name) {
		return fmt.Errorf("invalid sketch name %q: use letters, digits, '_' or '-' and start with a letter", d.Name)
	}
	for _, inc := range d.Includes {
		if strings.ContainsAny(inc, "<>\"\n") || inc == "" {
			return fmt.Errorf("invalid include %q", inc)
		}
	}
	return nil
}

// SketchTemplates returns the parsed sketch templates.
func SketchTemplates() (*template.Template, error) {
	tmpl := template.New("")

	err := fs.WalkDir(sketchTemplates, "sketch", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, ".tmpl") {
			return nil
		}

		content, err := sketchTemplates.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading template %s: %w", path, err)
		}

		// Use filename without .tmpl as template name
		name := strings.TrimPrefix(path, "sketch/")
		name = strings.TrimSuffix(name, ".tmpl")

		_, err = tmpl.New(name).Parse(string(content))
		if err != nil {
			return fmt.Errorf("parsing template %s: %w", path, err)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("loading templates: %w", err)
	}

	return tmpl, nil
}

// File is one rendered scaffolding file, relative to the sketch directory.
type File struct {
	Path    string
	Content []byte
}

// RenderSketch renders every file of a new sketch directory.
func RenderSketch(data SketchData) ([]File, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := SketchTemplates()
	if err != nil {
		return nil, err
	}

	targets := []struct{ template, path string }{
		{"sketch.ino", data.Name + ".ino"},
		{"gitignore", ".gitignore"},
	}

	files := make([]File, 0, len(targets))
	for _, t := range targets {
		var buf bytes.Buffer
		if err := tmpl.ExecuteTemplate(&buf, t.template, data); err != nil {
			return nil, fmt.Errorf("rendering %s: %w", t.path, err)
		}
		files = append(files, File{Path: t.path, Content: buf.Bytes()})
	}
	return files, nil
}
