package portfolio

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultDataset(t *testing.T) {
	ds, err := Default()
	require.NoError(t, err)

	assert.NotEmpty(t, ds.Projects)
	assert.NotEmpty(t, ds.Companies)
	assert.NotEmpty(t, ds.Languages)

	// every featured project in the shipped data must resolve
	for _, c := range ds.Companies {
		for _, name := range c.Projects {
			_, ok := ds.Project(name)
			assert.True(t, ok, "company %s lists unknown project %q", c.ID, name)
		}
	}
}

func TestLoadFormats(t *testing.T) {
	tests := []struct {
		name string
		fsys fstest.MapFS
	}{
		{
			name: "json",
			fsys: fstest.MapFS{
				"projects.json":  {Data: []byte(`[{"name":"A","year_created":2021,"technologies":["Go"]}]`)},
				"companies.json": {Data: []byte(`[{"id":"acme","name":"Acme","projects":["A"]}]`)},
			},
		},
		{
			name: "yaml",
			fsys: fstest.MapFS{
				"projects.yaml": {Data: []byte("- name: A\n  year_created: 2021\n  technologies: [Go]\n")},
				"companies.yml": {Data: []byte("- id: acme\n  name: Acme\n  projects: [A]\n")},
			},
		},
		{
			name: "toml",
			fsys: fstest.MapFS{
				"projects.toml":  {Data: []byte("[[projects]]\nname = \"A\"\nyear_created = 2021\ntechnologies = [\"Go\"]\n")},
				"companies.toml": {Data: []byte("[[companies]]\nid = \"acme\"\nname = \"Acme\"\nprojects = [\"A\"]\n")},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ds, err := Load(tt.fsys)
			require.NoError(t, err)

			require.Len(t, ds.Projects, 1)
			assert.Equal(t, "A", ds.Projects[0].Name)
			assert.Equal(t, 2021, ds.Projects[0].YearCreated)
			assert.Equal(t, []string{"Go"}, ds.Projects[0].Technologies)

			c, ok := ds.Company("acme")
			require.True(t, ok)
			assert.Equal(t, []string{"A"}, c.Projects)
		})
	}
}

func TestLoadLanguagesTOML(t *testing.T) {
	ds, err := Load(fstest.MapFS{
		"projects.json":  {Data: []byte(`[]`)},
		"languages.toml": {Data: []byte("[\"2024-H1\"]\nGo = 10\nC = 5\n")},
	})
	require.NoError(t, err)
	assert.Equal(t, 10, ds.Languages["2024-H1"]["Go"])
}

func TestLoadErrors(t *testing.T) {
	t.Run("missing projects", func(t *testing.T) {
		_, err := Load(fstest.MapFS{"companies.json": {Data: []byte(`[]`)}})
		assert.ErrorIs(t, err, ErrDatasetMissing)
	})

	t.Run("ambiguous", func(t *testing.T) {
		_, err := Load(fstest.MapFS{
			"projects.json": {Data: []byte(`[]`)},
			"projects.yaml": {Data: []byte(`[]`)},
		})
		assert.ErrorIs(t, err, ErrAmbiguous)
	})

	t.Run("optional datasets", func(t *testing.T) {
		ds, err := Load(fstest.MapFS{"projects.json": {Data: []byte(`[]`)}})
		require.NoError(t, err)
		assert.Empty(t, ds.Companies)
		assert.Empty(t, ds.Languages)
	})

	t.Run("malformed", func(t *testing.T) {
		_, err := Load(fstest.MapFS{"projects.json": {Data: []byte(`[{`)}})
		assert.Error(t, err)
	})
}

func TestDecodeUnknownExtension(t *testing.T) {
	var v any
	err := Decode("projects.xml", []byte("<x/>"), &v, &v)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecodeRejectsNonUTF8(t *testing.T) {
	var v any
	latin1 := []byte("- name: Caf\xe9 Cr\xe8me\n  description: r\xe9sum\xe9 builder\n")
	err := Decode("projects.yaml", latin1, &v, &v)
	assert.ErrorIs(t, err, ErrEncoding)
	assert.Contains(t, err.Error(), "projects.yaml")
}

func TestIsDatasetFile(t *testing.T) {
	assert.True(t, IsDatasetFile("projects.json"))
	assert.True(t, IsDatasetFile("companies.yml"))
	assert.True(t, IsDatasetFile("languages.toml"))
	assert.False(t, IsDatasetFile("projects.json.swp"))
	assert.False(t, IsDatasetFile("README.md"))
}

func TestTopLanguages(t *testing.T) {
	usage := LanguageUsage{
		"a": {"Go": 10, "C": 4},
		"b": {"Go": 5, "Zig": 4, "C": 1},
	}

	got := TopLanguages(usage, 2)
	assert.Equal(t, []LanguageTotal{
		{Language: "Go", LinesOfCode: 15},
		{Language: "C", LinesOfCode: 5},
	}, got)

	all := TopLanguages(usage, 0)
	require.Len(t, all, 3)
	assert.Equal(t, "Zig", all[2].Language)
}

func TestTechIcon(t *testing.T) {
	assert.Equal(t, "js.png", TechIcon("JavaScript"))
	assert.Equal(t, "cpp.png", TechIcon("cpp"))
	assert.Equal(t, "c.png", TechIcon("C++"))
	assert.Equal(t, "", TechIcon("Haskell"))
	assert.Equal(t, "rn", NormalizeTech("R.N."))
}

func TestWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	write := func(body string) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "projects.json"), []byte(body), 0o644))
	}
	write(`[{"name":"A","year_created":2021}]`)

	reloaded := make(chan *Dataset, 4)
	w, err := NewWatcher(dir, nil, func(ds *Dataset) { reloaded <- ds })
	require.NoError(t, err)
	defer w.Close()

	write(`[{"name":"A","year_created":2021},{"name":"B","year_created":2022}]`)

	select {
	case ds := <-reloaded:
		assert.Len(t, ds.Projects, 2)
	case <-time.After(3 * time.Second):
		t.Fatal("watcher did not reload")
	}
}
