// SPDX-FileCopyrightText: 2026 archtune authors
// SPDX-License-Identifier: Apache-2.0

package templatewriter

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/Masterminds/sprig"
)

// TemplateWriter renders a named template for a generated config
// file. The rendered bytes are handed to the mutation layer rather
// than written directly, so generated files get the same dry-run and
// backup treatment as edited ones.
type TemplateWriter struct {
	Name     string
	Template string
	Data     interface{}
}

// WriteToBuffer writes the executed template to the given writer
func (p *TemplateWriter) WriteToBuffer(w io.Writer) error {
	t, err := template.New(p.Name).Funcs(sprig.TxtFuncMap()).Parse(p.Template)
	if err != nil {
		return fmt.Errorf("failed to parse template for %s: %w", p.Name, err)
	}
	err = t.Execute(w, p.Data)
	if err != nil {
		return fmt.Errorf("failed to execute template for %s: %w", p.Name, err)
	}

	return nil
}

// Render executes the template and returns the resulting content.
func (p *TemplateWriter) Render() ([]byte, error) {
	var buf bytes.Buffer
	if err := p.WriteToBuffer(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
