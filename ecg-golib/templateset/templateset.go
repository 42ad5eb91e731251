package templateset

import (
	"fmt"
	"html/template"
	"io"
	"io/ioutil"
	"net/http"
	"path"
)

// Set encapsulates a set of templates loaded from an http.FileSystem.
type Set struct {
	fs          http.FileSystem
	templateDir string
	funcMap     template.FuncMap
}

// NewSet builds a new templateset.Set given a http.FileSystem and a directory.
func NewSet(fs http.FileSystem, dir string, funcMap template.FuncMap) *Set {
	return &Set{
		fs:          fs,
		templateDir: dir,
		funcMap:     funcMap,
	}
}

// Render renders the template as HTML, passing along the provided payload,
// and writes the result to the given io.Writer.
func (s *Set) Render(w io.Writer, templateName string, payload interface{}) error {
	templatePath := path.Join(s.templateDir, templateName)

	file, err := s.fs.Open(templatePath)
	if err != nil {
		return fmt.Errorf("error opening template %s: %s", templatePath, err)
	}
	defer file.Close()

	data, err := ioutil.ReadAll(file)
	if err != nil {
		return fmt.Errorf("error reading template %s: %s", templatePath, err)
	}

	tmpl, err := template.New(templateName).Funcs(s.funcMap).Parse(string(data))
	if err != nil {
		return fmt.Errorf("error parsing template %s: %s", templatePath, err)
	}

	if err := tmpl.Execute(w, payload); err != nil {
		return fmt.Errorf("error executing template %s: %s", templatePath, err)
	}
	return nil
}
