package portfolio

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/bytedance/sonic"
	"github.com/goccy/go-yaml"
	"github.com/pelletier/go-toml/v2"
	"github.com/saintfish/chardet"
)

//go:embed data
var embedded embed.FS

var (
	ErrDatasetMissing = errors.New("dataset file not found")
	ErrAmbiguous      = errors.New("more than one file for dataset")
	ErrFormat         = errors.New("unsupported dataset format")
	ErrEncoding       = errors.New("dataset file is not UTF-8")
)

// Dataset file stems. Each may be .json, .yaml, .yml or .toml.
const (
	ProjectsFile  = "projects"
	CompaniesFile = "companies"
	LanguagesFile = "languages"
)

// FilePattern matches any dataset file in a data directory
const FilePattern = "{projects,companies,languages}.{json,yaml,yml,toml}"

var (
	defaultOnce sync.Once
	defaultData *Dataset
	defaultErr  error
)

// Default returns the dataset compiled into the binary.
func Default() (*Dataset, error) {
	defaultOnce.Do(func() {
		sub, err := fs.Sub(embedded, "data")
		if err != nil {
			defaultErr = err
			return
		}
		defaultData, defaultErr = Load(sub)
	})
	return defaultData, defaultErr
}

// Load reads projects, companies and languages from the root of fsys.
// Projects are required; the other two datasets are optional.
func Load(fsys fs.FS) (*Dataset, error) {
	var ds Dataset

	// TOML has no top-level arrays, so list datasets sit under a key there.
	var projects struct {
		Projects []Project `toml:"projects"`
	}
	if err := readDataset(fsys, ProjectsFile, &ds.Projects, &projects); err != nil {
		return nil, err
	}
	if ds.Projects == nil {
		ds.Projects = projects.Projects
	}

	var companies struct {
		Companies []Company `toml:"companies"`
	}
	if err := readDataset(fsys, CompaniesFile, &ds.Companies, &companies); err != nil && !errors.Is(err, ErrDatasetMissing) {
		return nil, err
	}
	if ds.Companies == nil {
		ds.Companies = companies.Companies
	}

	if err := readDataset(fsys, LanguagesFile, &ds.Languages, &ds.Languages); err != nil && !errors.Is(err, ErrDatasetMissing) {
		return nil, err
	}

	return &ds, nil
}

// readDataset decodes <stem>.<ext> into v, or into tomlV for TOML files.
func readDataset(fsys fs.FS, stem string, v, tomlV any) error {
	matches, err := doublestar.Glob(fsys, stem+".{json,yaml,yml,toml}")
	if err != nil {
		return fmt.Errorf("glob %s: %w", stem, err)
	}
	switch len(matches) {
	case 0:
		return fmt.Errorf("%s: %w", stem, ErrDatasetMissing)
	case 1:
	default:
		return fmt.Errorf("%s: %w: %s", stem, ErrAmbiguous, strings.Join(matches, ", "))
	}

	name := matches[0]
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return fmt.Errorf("read %s: %w", name, err)
	}
	if err := Decode(name, data, v, tomlV); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}
	return nil
}

// Decode unmarshals data according to the extension of name.
func Decode(name string, data []byte, v, tomlV any) error {
	if !utf8.Valid(data) {
		return fmt.Errorf("%w: %s looks like %s", ErrEncoding, name, guessCharset(data))
	}
	switch strings.ToLower(path.Ext(name)) {
	case ".json":
		return sonic.Unmarshal(data, v)
	case ".yaml", ".yml":
		return yaml.Unmarshal(data, v)
	case ".toml":
		return toml.Unmarshal(data, tomlV)
	default:
		return fmt.Errorf("%w: %s", ErrFormat, name)
	}
}

// IsDatasetFile reports whether a base file name is one of the dataset files.
func IsDatasetFile(base string) bool {
	ok, _ := doublestar.Match(FilePattern, base)
	return ok
}

// guessCharset names the most likely encoding of data for error messages
func guessCharset(data []byte) string {
	res, err := chardet.NewTextDetector().DetectBest(data)
	if err != nil || res.Charset == "" {
		return "an unknown encoding"
	}
	return res.Charset
}
