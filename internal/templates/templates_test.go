package templates

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"io/fs"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const minimalYAML = `
id: demo
name: Demo
pages:
  - blank: {width: 200, height: 100}
fields:
  name: {x: 10, y: 20}
  date: {x: 30, y: 40, mode: boxed, spacing: 12}
`

func TestParseAppliesDefaults(t *testing.T) {
	tmpl, err := Parse([]byte(minimalYAML))
	require.NoError(t, err)

	assert.Equal(t, DefaultLineHeight, tmpl.LineHeight)
	assert.Equal(t, DefaultBoxSpacing, tmpl.BoxSpacing)
	assert.Equal(t, float64(DefaultFontSize), tmpl.FontSize)
	assert.Equal(t, LayoutStacked, tmpl.Layout)
	assert.Equal(t, "demo.pdf", tmpl.Filename(0))

	name, ok := tmpl.Field("name")
	require.True(t, ok)
	assert.Equal(t, "name", name.Name)
	assert.Equal(t, ModePlain, name.Mode)
	assert.Equal(t, DefaultBoxSpacing, tmpl.SpacingFor(name))

	date, _ := tmpl.Field("date")
	assert.Equal(t, ModeBoxed, date.Mode)
	assert.Equal(t, 12, tmpl.SpacingFor(date))
	assert.Equal(t, []string{"date", "name"}, tmpl.FieldNames())
}

func TestParseRejectsInvalidTemplates(t *testing.T) {
	cases := map[string]string{
		"missing id":       "pages: [{blank: {width: 1, height: 1}}]",
		"no pages":         "id: x",
		"page out of range": `
id: x
pages: [{blank: {width: 1, height: 1}}]
fields: {a: {x: 1, y: 1, page: 1}}`,
		"unknown mode": `
id: x
pages: [{blank: {width: 1, height: 1}}]
fields: {a: {x: 1, y: 1, mode: stamped}}`,
		"both page kinds": `
id: x
pages: [{background: a.jpg, blank: {width: 1, height: 1}}]`,
		"numbered without pattern": `
id: x
pages: [{blank: {width: 1, height: 1}}]
output: {numbered: true, filename: x.pdf}`,
		"unknown layout": `
id: x
layout: spiral
pages: [{blank: {width: 1, height: 1}}]`,
		"negative line height": `
id: x
line_height: -4
pages: [{blank: {width: 1, height: 1}}]`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestBuiltinTemplates(t *testing.T) {
	ts, err := Builtin()
	require.NoError(t, err)

	reg := NewRegistry(ts...)

	bob, ok := reg.Get("bob-remittance")
	require.True(t, ok)
	assert.Len(t, bob.Pages, 2)
	assert.Len(t, bob.Fields, 30)
	assert.Equal(t, 20, bob.LineHeight)
	assert.Equal(t, LayoutStacked, bob.Layout)
	assert.Equal(t, "generated_remittance_form.pdf", bob.Filename(0))

	boxed := 0
	for _, f := range bob.Fields {
		if f.Mode == ModeBoxed {
			boxed++
			assert.Equal(t, 34, bob.SpacingFor(f))
		}
	}
	assert.Equal(t, 10, boxed)

	sig, _ := bob.Field("page2_signature")
	assert.Equal(t, 1, sig.Page)
	branch, _ := bob.Field("branch_name")
	assert.Equal(t, FieldSpec{Name: "branch_name", X: 1000, Y: 100, Mode: ModePlain}, branch)

	contract, ok := reg.Get("sales-contract")
	require.True(t, ok)
	assert.Equal(t, 40, contract.LineHeight)
	assert.Equal(t, LayoutPaged, contract.Layout)
	assert.True(t, contract.Output.Numbered)
	assert.Equal(t, "Sales_Contract_7.pdf", contract.Filename(7))
	_, ok = contract.Field(contract.Output.NumberField)
	assert.True(t, ok)
}

func TestRegistryReplacesByID(t *testing.T) {
	a := &Template{ID: "a", Name: "first"}
	b := &Template{ID: "b"}
	reg := NewRegistry(b, a)
	reg.Register(&Template{ID: "a", Name: "second"})

	got, ok := reg.Get("a")
	require.True(t, ok)
	assert.Equal(t, "second", got.Name)

	list := reg.List()
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, "b", list[1].ID)

	_, ok = reg.Get("missing")
	assert.False(t, ok)
}

func TestLoadFS(t *testing.T) {
	fsys := fstest.MapFS{
		"defs/demo.yaml":  {Data: []byte(minimalYAML)},
		"defs/notes.txt":  {Data: []byte("ignored")},
		"defs/other.yml":  {Data: []byte("id: other\npages: [{blank: {width: 5, height: 5}}]")},
		"defs/sub/x.yaml": {Data: []byte("not: loaded")},
	}

	ts, err := LoadFS(context.Background(), fsys, "defs")
	require.NoError(t, err)
	require.Len(t, ts, 2)
	assert.Equal(t, "demo", ts[0].ID)
	assert.Equal(t, "other", ts[1].ID)
}

func TestLoadFSReportsFile(t *testing.T) {
	fsys := fstest.MapFS{"defs/bad.yaml": {Data: []byte("id: bad")}}

	_, err := LoadFS(context.Background(), fsys, "defs")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.yaml")
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func scannedTemplate() *Template {
	return &Template{
		ID:       "scan",
		FontSize: 18,
		Pages: []PageSpec{
			{Background: "page 1.png"},
			{Blank: &BlankPage{Width: 30, Height: 20}},
		},
	}
}

func TestAssetLoaderLoadsPages(t *testing.T) {
	assets := fstest.MapFS{"page 1.png": {Data: pngBytes(t, 40, 50)}}
	loader := NewAssetLoader(assets, nil, false)

	pages, err := loader.LoadPages(context.Background(), scannedTemplate())
	require.NoError(t, err)
	require.Len(t, pages, 2)
	assert.Equal(t, 40, pages[0].Width())
	assert.Equal(t, 50, pages[0].Height())
	assert.Equal(t, 30, pages[1].Width())
}

func TestAssetLoaderMissingAsset(t *testing.T) {
	loader := NewAssetLoader(fstest.MapFS{}, nil, false)

	_, err := loader.LoadPages(context.Background(), scannedTemplate())
	var loadErr *TemplateLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, "scan", loadErr.Template)
	assert.Equal(t, "page 1.png", loadErr.Asset)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestAssetLoaderCorruptAsset(t *testing.T) {
	assets := fstest.MapFS{"page 1.png": {Data: []byte("garbage")}}
	loader := NewAssetLoader(assets, nil, false)

	_, err := loader.LoadPages(context.Background(), scannedTemplate())
	var loadErr *TemplateLoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestAssetLoaderCacheHandsOutCopies(t *testing.T) {
	assets := fstest.MapFS{"page 1.png": {Data: pngBytes(t, 10, 10)}}
	loader := NewAssetLoader(assets, nil, true)
	require.NoError(t, loader.Preload(context.Background(), scannedTemplate()))

	// the cached image survives removal of the file
	delete(assets, "page 1.png")

	first, err := loader.LoadPages(context.Background(), scannedTemplate())
	require.NoError(t, err)
	first[0].DrawLine(0, 0, 9, 0, 1)

	second, err := loader.LoadPages(context.Background(), scannedTemplate())
	require.NoError(t, err)
	assert.NotEqual(t, first[0].Image().Pix, second[0].Image().Pix)
}

func TestAssetLoaderHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewAssetLoader(fstest.MapFS{}, nil, false).LoadPages(ctx, scannedTemplate())
	assert.ErrorIs(t, err, context.Canceled)
}
