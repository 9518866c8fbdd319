package overlay

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"

	"github.com/techcodex100/BOb-from/internal/templates"
)

type mark struct {
	X, Y int
	Text string
}

// recorder captures draw calls instead of rasterizing them.
type recorder struct {
	marks []mark
	lines int
	face  font.Face
	faces []font.Face
}

func (r *recorder) DrawString(x, y int, s string) {
	r.marks = append(r.marks, mark{X: x, Y: y, Text: s})
	r.faces = append(r.faces, r.face)
}
func (r *recorder) DrawLine(x1, y1, x2, y2, width int) { r.lines++ }
func (r *recorder) Face() font.Face                    { return r.face }
func (r *recorder) SetFace(f font.Face)                { r.face = f }

func newTemplate(lineHeight int, fields map[string]templates.FieldSpec) *templates.Template {
	for name, f := range fields {
		f.Name = name
		if f.Mode == "" {
			f.Mode = templates.ModePlain
		}
		fields[name] = f
	}
	return &templates.Template{
		ID:         "test",
		LineHeight: lineHeight,
		BoxSpacing: 22,
		FontSize:   18,
		Layout:     templates.LayoutStacked,
		Pages:      []templates.PageSpec{{Blank: &templates.BlankPage{Width: 1200, Height: 1600}}, {Blank: &templates.BlankPage{Width: 1200, Height: 1600}}},
		Fields:     fields,
	}
}

func TestOverlayPlainFieldsAtPositions(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"branch_name":    {X: 1000, Y: 100},
		"account_number": {X: 295, Y: 210},
	})
	page := &recorder{}

	err := NewRenderer(nil, nil).Overlay([]Surface{page, &recorder{}}, tmpl, Values{
		"branch_name":    Text("MUMBAI"),
		"account_number": Text("12345"),
	})
	require.NoError(t, err)

	assert.ElementsMatch(t, []mark{
		{X: 1000, Y: 100, Text: "MUMBAI"},
		{X: 295, Y: 210, Text: "12345"},
	}, page.marks)
}

func TestOverlayBoxedDigits(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"shipment_date": {X: 930, Y: 590, Mode: templates.ModeBoxed, Spacing: 34},
	})
	page := &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{
		"shipment_date": Text("01012024"),
	}))

	require.Len(t, page.marks, 8)
	for i, m := range page.marks {
		assert.Equal(t, 930+i*34, m.X)
		assert.Equal(t, 590, m.Y)
		assert.Equal(t, string("01012024"[i]), m.Text)
	}
	assert.Equal(t, 930+7*34, page.marks[7].X)
}

func TestOverlayBoxedUsesTemplateSpacing(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"code": {X: 10, Y: 5, Mode: templates.ModeBoxed},
	})
	page := &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{"code": Text("ЖX")}))

	assert.Equal(t, []mark{{X: 10, Y: 5, Text: "Ж"}, {X: 32, Y: 5, Text: "X"}}, page.marks)
}

func TestOverlayPlainMultiline(t *testing.T) {
	tmpl := newTemplate(40, map[string]templates.FieldSpec{
		"remitter_address": {X: 300, Y: 475},
	})
	page := &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{
		"remitter_address": Text("12 Marine Drive\r\n\nMumbai"),
	}))

	assert.Equal(t, []mark{
		{X: 300, Y: 475, Text: "12 Marine Drive"},
		{X: 300, Y: 515, Text: ""},
		{X: 300, Y: 555, Text: "Mumbai"},
	}, page.marks)
}

func TestOverlayListValue(t *testing.T) {
	tmpl := newTemplate(40, map[string]templates.FieldSpec{
		"seller": {X: 80, Y: 290},
	})
	page := &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{
		"seller": List("ACME EXPORTS", "Plot 4\nSurat"),
	}))

	assert.Equal(t, []mark{
		{X: 80, Y: 290, Text: "ACME EXPORTS"},
		{X: 80, Y: 330, Text: "Plot 4"},
		{X: 80, Y: 370, Text: "Surat"},
	}, page.marks)
}

func TestOverlaySkipsUnknownEmptyAndUnsupported(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"date":    {X: 1, Y: 1, Mode: templates.ModeBoxed},
		"name":    {X: 2, Y: 2},
		"blank":   {X: 3, Y: 3},
		"missing": {X: 4, Y: 4},
	})
	page := &recorder{}

	err := NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{
		"date":      List("0", "1"),
		"name":      {},
		"blank":     Text(""),
		"brnch_nam": Text("typo"),
	})
	require.NoError(t, err)
	assert.Empty(t, page.marks)
}

func TestOverlayRoutesPages(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"signature":       {X: 700, Y: 1375},
		"page2_signature": {X: 700, Y: 1400, Page: 1},
	})
	first, second := &recorder{}, &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{first, second}, tmpl, Values{
		"signature":       Text("A"),
		"page2_signature": Text("B"),
	}))

	assert.Equal(t, []mark{{X: 700, Y: 1375, Text: "A"}}, first.marks)
	assert.Equal(t, []mark{{X: 700, Y: 1400, Text: "B"}}, second.marks)
}

func TestOverlayOutOfRangePageSkipped(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"late": {X: 1, Y: 1, Page: 1},
	})
	page := &recorder{}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{"late": Text("x")}))
	assert.Empty(t, page.marks)
}

func TestOverlayNoPages(t *testing.T) {
	err := NewRenderer(nil, nil).Overlay(nil, newTemplate(20, map[string]templates.FieldSpec{}), Values{})
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestOverlayStaticMarksAndSizes(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"title": {X: 5, Y: 5, Size: 40},
		"body":  {X: 5, Y: 50},
	})
	tmpl.Static = []templates.StaticText{{X: 1, Y: 2, Text: "Label:"}}
	tmpl.Rules = []templates.Rule{{X1: 0, Y1: 10, X2: 100, Y2: 10}, {Page: 5}}
	page := &recorder{face: basicfont.Face7x13}

	require.NoError(t, NewRenderer(nil, nil).Overlay([]Surface{page}, tmpl, Values{
		"title": Text("T"),
		"body":  Text("B"),
	}))

	assert.Equal(t, 1, page.lines)
	require.Len(t, page.marks, 3)
	assert.Equal(t, mark{X: 1, Y: 2, Text: "Label:"}, page.marks[0])
	// fields are drawn in name order: body, then title with its own face
	assert.Equal(t, "B", page.marks[1].Text)
	assert.Equal(t, basicfont.Face7x13, page.faces[1])
	assert.Equal(t, "T", page.marks[2].Text)
	assert.NotEqual(t, basicfont.Face7x13, page.faces[2])
	assert.Equal(t, basicfont.Face7x13, page.face, "face restored after sized field")
}

func TestValuesUnmarshalJSON(t *testing.T) {
	var vs Values
	require.NoError(t, json.Unmarshal([]byte(`{
		"name": "MUMBAI",
		"seller": ["ACME", "Surat"],
		"amount": 1250.50,
		"flag": true,
		"gone": null,
		"nested": {"a": 1},
		"mixed": ["a", 1]
	}`), &vs))

	assert.Equal(t, Text("MUMBAI"), vs["name"])
	assert.Equal(t, List("ACME", "Surat"), vs["seller"])
	assert.Equal(t, "1250.50", vs["amount"].String())
	assert.Equal(t, "true", vs["flag"].String())
	_, ok := vs["gone"]
	assert.False(t, ok)
	assert.Empty(t, vs["nested"].Lines())
	assert.Empty(t, vs["mixed"].Lines())

	out, err := json.Marshal(vs["seller"])
	require.NoError(t, err)
	assert.JSONEq(t, `["ACME","Surat"]`, string(out))
}

func TestRenderStacksPages(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 300, 400))))
	assets := fstest.MapFS{"p1.png": {Data: buf.Bytes()}}

	tmpl := newTemplate(20, map[string]templates.FieldSpec{
		"name": {X: 10, Y: 10},
		"note": {X: 10, Y: 10, Page: 1},
	})
	tmpl.Pages = []templates.PageSpec{
		{Background: "p1.png"},
		{Blank: &templates.BlankPage{Width: 250, Height: 100}},
	}

	r := NewRenderer(templates.NewAssetLoader(assets, nil, false), nil)
	doc, err := r.Render(context.Background(), tmpl, Values{"name": Text("X"), "note": Text("Y")})
	require.NoError(t, err)

	assert.Equal(t, 2, doc.PageCount())
	assert.Equal(t, 300, doc.Width())
	assert.Equal(t, 500, doc.Height())

	imgs := doc.Images()
	require.Len(t, imgs, 1)
	assert.Equal(t, image.Rect(0, 0, 300, 500), imgs[0].Bounds())

	doc.Layout = templates.LayoutPaged
	assert.Len(t, doc.Images(), 2)
}

func TestRenderMissingAsset(t *testing.T) {
	tmpl := newTemplate(20, map[string]templates.FieldSpec{})
	tmpl.Pages = []templates.PageSpec{{Background: "gone.jpg"}}

	r := NewRenderer(templates.NewAssetLoader(fstest.MapFS{}, nil, false), nil)
	doc, err := r.Render(context.Background(), tmpl, Values{})

	var loadErr *templates.TemplateLoadError
	assert.ErrorAs(t, err, &loadErr)
	assert.Nil(t, doc)
}
