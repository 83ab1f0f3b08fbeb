package roster

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/listenupapp/binderkeep/internal/domain"
	"github.com/listenupapp/binderkeep/internal/slotkey"
)

//go:embed data/*.toml
var embeddedTables embed.FS

// tableFiles maps each curated family to its data file name.
var tableFiles = map[domain.FormFamily]string{
	domain.FamilyRegional:  "regional_forms.toml",
	domain.FamilyVariation: "variation_groups.toml",
	domain.FamilyMega:      "megas.toml",
	domain.FamilyGmax:      "gmax.toml",
}

// Tables holds the curated extra-entry tables, one slice per family.
type Tables struct {
	Regional  []domain.SpeciesEntry
	Variation []domain.SpeciesEntry
	Mega      []domain.SpeciesEntry
	Gmax      []domain.SpeciesEntry
}

type tableFile struct {
	Entries []domain.SpeciesEntry `toml:"entries"`
}

// DefaultTables returns the tables compiled into the binary.
func DefaultTables() (*Tables, error) {
	sub, err := fs.Sub(embeddedTables, "data")
	if err != nil {
		return nil, err
	}
	return LoadTables(sub)
}

// LoadTablesDir loads tables from dir. Files missing from dir fall back to the embedded copy.
func LoadTablesDir(dir string) (*Tables, error) {
	embedded, err := fs.Sub(embeddedTables, "data")
	if err != nil {
		return nil, err
	}
	return LoadTables(overlayFS{primary: os.DirFS(dir), fallback: embedded})
}

// LoadTables decodes and validates every table file from fsys.
func LoadTables(fsys fs.FS) (*Tables, error) {
	t := &Tables{}
	seen := make(map[string]string)

	for family, name := range tableFiles {
		data, err := fs.ReadFile(fsys, name)
		if err != nil {
			return nil, fmt.Errorf("read table %s: %w", name, err)
		}

		var file tableFile
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&file); err != nil {
			return nil, fmt.Errorf("decode table %s: %w", name, err)
		}

		for i := range file.Entries {
			e := &file.Entries[i]
			e.Family = family
			if e.DexID <= 0 || e.Form == "" || e.Name == "" {
				return nil, fmt.Errorf("table %s entry %d: dex_id, form and name are required", name, i)
			}
			key := slotkey.Species(e.DexID, e.Form)
			if other, dup := seen[key]; dup {
				return nil, fmt.Errorf("table %s entry %d: key %q already defined in %s", name, i, key, other)
			}
			seen[key] = name
		}

		switch family {
		case domain.FamilyRegional:
			t.Regional = file.Entries
		case domain.FamilyVariation:
			t.Variation = file.Entries
		case domain.FamilyMega:
			t.Mega = file.Entries
		case domain.FamilyGmax:
			t.Gmax = file.Entries
		}
	}

	return t, nil
}

// overlayFS reads from primary and falls back to fallback for files primary lacks.
type overlayFS struct {
	primary  fs.FS
	fallback fs.FS
}

func (o overlayFS) Open(name string) (fs.File, error) {
	f, err := o.primary.Open(name)
	if errors.Is(err, fs.ErrNotExist) {
		return o.fallback.Open(name)
	}
	return f, err
}

// isTableFile reports whether path names one of the curated table files.
func isTableFile(path string) bool {
	base := filepath.Base(path)
	for _, name := range tableFiles {
		if name == base {
			return true
		}
	}
	return false
}
