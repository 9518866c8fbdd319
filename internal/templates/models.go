package templates

import "sort"

// RenderMode decides how a field value is laid onto the page
type RenderMode string

const (
	// ModePlain draws free text, one line per line break.
	ModePlain RenderMode = "plain"
	// ModeBoxed draws one character per pre-printed box.
	ModeBoxed RenderMode = "boxed"
)

// Layout decides how canvases are assembled into the output document
type Layout string

const (
	// LayoutStacked joins every canvas into one tall page.
	LayoutStacked Layout = "stacked"
	// LayoutPaged emits one PDF page per canvas.
	LayoutPaged Layout = "paged"
)

const (
	DefaultLineHeight = 20
	DefaultBoxSpacing = 22
	DefaultFontSize   = 18
)

// Template describes one fixed document layout
type Template struct {
	ID          string               `yaml:"id" json:"id"`
	Name        string               `yaml:"name" json:"name"`
	Description string               `yaml:"description,omitempty" json:"description,omitempty"`
	LineHeight  int                  `yaml:"line_height" json:"line_height"`
	BoxSpacing  int                  `yaml:"box_spacing" json:"box_spacing"`
	FontSize    float64              `yaml:"font_size" json:"font_size"`
	Layout      Layout               `yaml:"layout" json:"layout"`
	Pages       []PageSpec           `yaml:"pages" json:"pages"`
	Fields      map[string]FieldSpec `yaml:"fields" json:"fields"`
	Static      []StaticText         `yaml:"static,omitempty" json:"static,omitempty"`
	Rules       []Rule               `yaml:"rules,omitempty" json:"rules,omitempty"`
	Output      OutputSpec           `yaml:"output" json:"output"`
}

// PageSpec is one physical page: a background asset or a blank sheet
type PageSpec struct {
	Background string     `yaml:"background,omitempty" json:"background,omitempty"`
	Blank      *BlankPage `yaml:"blank,omitempty" json:"blank,omitempty"`
}

// BlankPage is a white page of known size
type BlankPage struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// FieldSpec says where and how one logical field is drawn
type FieldSpec struct {
	Name    string     `yaml:"-" json:"name"`
	X       int        `yaml:"x" json:"x"`
	Y       int        `yaml:"y" json:"y"`
	Page    int        `yaml:"page,omitempty" json:"page"`
	Mode    RenderMode `yaml:"mode,omitempty" json:"mode"`
	Spacing int        `yaml:"spacing,omitempty" json:"spacing,omitempty"`
	Size    float64    `yaml:"size,omitempty" json:"size,omitempty"`
}

// StaticText is printed on every render, e.g. labels of a drawn layout
type StaticText struct {
	Page int     `yaml:"page,omitempty" json:"page"`
	X    int     `yaml:"x" json:"x"`
	Y    int     `yaml:"y" json:"y"`
	Text string  `yaml:"text" json:"text"`
	Size float64 `yaml:"size,omitempty" json:"size,omitempty"`
}

// Rule is a straight line printed on every render
type Rule struct {
	Page  int `yaml:"page,omitempty" json:"page"`
	X1    int `yaml:"x1" json:"x1"`
	Y1    int `yaml:"y1" json:"y1"`
	X2    int `yaml:"x2" json:"x2"`
	Y2    int `yaml:"y2" json:"y2"`
	Width int `yaml:"width,omitempty" json:"width,omitempty"`
}

// OutputSpec names the generated file
type OutputSpec struct {
	Filename        string `yaml:"filename,omitempty" json:"filename,omitempty"`
	FilenamePattern string `yaml:"filename_pattern,omitempty" json:"filename_pattern,omitempty"`
	Numbered        bool   `yaml:"numbered,omitempty" json:"numbered"`
	NumberField     string `yaml:"number_field,omitempty" json:"number_field,omitempty"`
}

// Field returns the spec for name.
func (t *Template) Field(name string) (FieldSpec, bool) {
	f, ok := t.Fields[name]
	return f, ok
}

// FieldNames returns the table's field names in sorted order.
func (t *Template) FieldNames() []string {
	names := make([]string, 0, len(t.Fields))
	for name := range t.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SpacingFor returns the box step of a boxed field.
func (t *Template) SpacingFor(f FieldSpec) int {
	if f.Spacing > 0 {
		return f.Spacing
	}
	return t.BoxSpacing
}

// SizeFor returns the font size of a field.
func (t *Template) SizeFor(f FieldSpec) float64 {
	if f.Size > 0 {
		return f.Size
	}
	return t.FontSize
}

// Summary is the catalogue view of a template
type Summary struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Pages       int    `json:"pages"`
	Fields      int    `json:"fields"`
	Layout      Layout `json:"layout"`
	Numbered    bool   `json:"numbered"`
}

// Summarize builds the catalogue view.
func (t *Template) Summarize() Summary {
	return Summary{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Pages:       len(t.Pages),
		Fields:      len(t.Fields),
		Layout:      t.Layout,
		Numbered:    t.Output.Numbered,
	}
}
