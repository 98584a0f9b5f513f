package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	reg := Default()
	require.Len(t, reg.Entries, 5)

	cats := reg.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, "Landing Pages", cats[0].Name)
	assert.Len(t, cats[0].Entries, 3)
	assert.Equal(t, "Portfolio Websites", cats[1].Name)
	assert.Equal(t, "Ecommerce Sites", cats[2].Name)

	uber, ok := reg.Find("uber")
	require.True(t, ok)
	assert.Equal(t, "Uber.com", uber.Title)

	_, ok = reg.Find("missing")
	assert.False(t, ok)
}

func TestResolve(t *testing.T) {
	reg := Default()
	resolved := reg.Resolve("https://api.example.com/")

	ola, ok := resolved.Find("ola")
	require.True(t, ok)
	assert.Equal(t, "https://api.example.com/static/clones/clone_www_olacabs_com_20250605_183343.html", ola.ViewLink)
	assert.Equal(t, "https://api.example.com/static/previews/ola.png", ola.PreviewImage)

	original, _ := reg.Find("ola")
	assert.Equal(t, "/static/clones/clone_www_olacabs_com_20250605_183343.html", original.ViewLink, "Resolve must not mutate the source")

	abs := &GalleryRegistry{Entries: []GalleryEntry{{ViewLink: "https://cdn.example.com/a.html"}}}
	assert.Equal(t, "https://cdn.example.com/a.html", abs.Resolve("http://x").Entries[0].ViewLink)
}

func TestParse_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "not json", data: `{`},
		{name: "no entries", data: `{"version":"1","entries":[]}`},
		{name: "missing title", data: `{"version":"1","entries":[{"id":"a","category":"c","viewLink":"/a","previewImage":"/a.png"}]}`},
		{name: "unsafe link", data: `{"version":"1","entries":[{"id":"a","category":"c","title":"t","viewLink":"javascript:alert(1)","previewImage":"/a.png"}]}`},
		{name: "protocol relative link", data: `{"version":"1","entries":[{"id":"a","category":"c","title":"t","viewLink":"//evil.example","previewImage":"/a.png"}]}`},
		{name: "duplicate id", data: `{"version":"1","entries":[
			{"id":"a","category":"c","title":"t","viewLink":"/a","previewImage":"/a.png"},
			{"id":"a","category":"c","title":"t","viewLink":"/b","previewImage":"/b.png"}]}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}

func TestLoad(t *testing.T) {
	reg, err := Load("")
	require.NoError(t, err)
	assert.Len(t, reg.Entries, 5)

	path := filepath.Join(t.TempDir(), "gallery.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","entries":[{"id":"a","category":"c","title":"t","viewLink":"https://a.example","previewImage":"https://a.example/p.png"}]}`), 0o644))

	reg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "2", reg.Version)

	_, err = Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
