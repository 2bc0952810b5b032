package generate

import (
	"bytes"
	"fmt"
	"text/template"

	sprig "github.com/go-task/slim-sprig/v3"

	"tfg/config"
	"tfg/content"
)

// Values is a struct that holds variables we make available for template expansion
type Values struct {
	Context string
	Source  string
	Format  string
	Keys    int
	Values  int
}

func expandTemplate(name config.TemplateFieldName, field string, t *content.Table, src string, format config.ExportFmt) (string, error) {
	funcMap := sprig.FuncMap()

	tmpl, err := template.New(string(name)).Funcs(funcMap).Parse(field)
	if err != nil {
		return "", fmt.Errorf("unable to parse template field %s: %w", name, err)
	}

	values := Values{
		Context: string(name),
		Source:  sourceBase(src),
		Format:  format.String(),
		Keys:    t.Len(),
		Values:  t.Leaves(),
	}

	buf := new(bytes.Buffer)
	if err := tmpl.Execute(buf, values); err != nil {
		return "", err
	}
	return buf.String(), nil
}
