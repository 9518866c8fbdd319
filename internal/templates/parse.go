package templates

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Parse decodes one YAML template definition, applies defaults and
// validates it.
func Parse(data []byte) (*Template, error) {
	var t Template
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("templates: decode: %w", err)
	}
	t.applyDefaults()
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

func (t *Template) applyDefaults() {
	if t.LineHeight == 0 {
		t.LineHeight = DefaultLineHeight
	}
	if t.BoxSpacing == 0 {
		t.BoxSpacing = DefaultBoxSpacing
	}
	if t.FontSize == 0 {
		t.FontSize = DefaultFontSize
	}
	if t.Layout == "" {
		t.Layout = LayoutStacked
	}
	if t.Fields == nil {
		t.Fields = map[string]FieldSpec{}
	}
	for name, f := range t.Fields {
		f.Name = name
		if f.Mode == "" {
			f.Mode = ModePlain
		}
		t.Fields[name] = f
	}
	if t.Output.Filename == "" && t.Output.FilenamePattern == "" {
		t.Output.Filename = t.ID + ".pdf"
	}
}

// Validate checks the invariants the renderer relies on.
func (t *Template) Validate() error {
	if t.ID == "" {
		return errors.New("templates: id is required")
	}
	if len(t.Pages) == 0 {
		return fmt.Errorf("templates: %s: at least one page is required", t.ID)
	}
	for i, p := range t.Pages {
		switch {
		case p.Background != "" && p.Blank != nil:
			return fmt.Errorf("templates: %s: page %d has both background and blank", t.ID, i)
		case p.Background == "" && p.Blank == nil:
			return fmt.Errorf("templates: %s: page %d needs a background or blank size", t.ID, i)
		case p.Blank != nil && (p.Blank.Width <= 0 || p.Blank.Height <= 0):
			return fmt.Errorf("templates: %s: page %d has invalid blank size", t.ID, i)
		}
	}
	if t.LineHeight <= 0 || t.BoxSpacing <= 0 || t.FontSize <= 0 {
		return fmt.Errorf("templates: %s: line_height, box_spacing and font_size must be positive", t.ID)
	}
	switch t.Layout {
	case LayoutStacked, LayoutPaged:
	default:
		return fmt.Errorf("templates: %s: unknown layout %q", t.ID, t.Layout)
	}
	for name, f := range t.Fields {
		if f.Page < 0 || f.Page >= len(t.Pages) {
			return fmt.Errorf("templates: %s: field %s references page %d", t.ID, name, f.Page)
		}
		if f.Mode != ModePlain && f.Mode != ModeBoxed {
			return fmt.Errorf("templates: %s: field %s has unknown mode %q", t.ID, name, f.Mode)
		}
		if f.Spacing < 0 {
			return fmt.Errorf("templates: %s: field %s has negative spacing", t.ID, name)
		}
	}
	for i, s := range t.Static {
		if s.Page < 0 || s.Page >= len(t.Pages) {
			return fmt.Errorf("templates: %s: static text %d references page %d", t.ID, i, s.Page)
		}
	}
	for i, r := range t.Rules {
		if r.Page < 0 || r.Page >= len(t.Pages) {
			return fmt.Errorf("templates: %s: rule %d references page %d", t.ID, i, r.Page)
		}
	}
	if t.Output.Numbered {
		if strings.Count(t.Output.FilenamePattern, "%d") != 1 {
			return fmt.Errorf("templates: %s: numbered output needs a filename_pattern with one %%d", t.ID)
		}
	}
	return nil
}

// Filename returns the output name for an allocated number (ignored when the
// template is not numbered).
func (t *Template) Filename(number int) string {
	if t.Output.Numbered {
		return fmt.Sprintf(t.Output.FilenamePattern, number)
	}
	return t.Output.Filename
}

// LoadFS parses every *.yaml and *.yml file directly under dir.
func LoadFS(ctx context.Context, fsys fs.FS, dir string) ([]*Template, error) {
	if fsys == nil {
		return nil, errors.New("templates: fs is nil")
	}
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("templates: read %s: %w", dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch path.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	out := make([]*Template, 0, len(names))
	for _, name := range names {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("templates: read %s: %w", name, err)
		}
		t, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", name, err)
		}
		out = append(out, t)
	}
	return out, nil
}
