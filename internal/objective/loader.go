package objective

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"
)

// #region parse

// Parse decodes a YAML (or JSON) objective definition and validates it.
// Unknown fields are rejected.
func Parse(data []byte) (*Spec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse objective: empty document")
		}
		return nil, fmt.Errorf("parse objective: %w", err)
	}
	return New(def)
}

// LoadFile reads and validates one objective file.
func LoadFile(path string) (*Spec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read objective %s: %w", path, err)
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("load objective %s: %w", path, err)
	}
	return s, nil
}

// #endregion parse

// #region catalog

// Catalog indexes validated specs by objective id and version.
// It is built once and read-only afterwards.
type Catalog struct {
	specs map[string]map[string]*Spec
}

// NewCatalog indexes the given specs. Duplicate id@version pairs are an error.
func NewCatalog(specs ...*Spec) (*Catalog, error) {
	c := &Catalog{specs: make(map[string]map[string]*Spec)}
	for _, s := range specs {
		versions, ok := c.specs[s.ObjectiveID()]
		if !ok {
			versions = make(map[string]*Spec)
			c.specs[s.ObjectiveID()] = versions
		}
		if _, dup := versions[s.Version()]; dup {
			return nil, fmt.Errorf("duplicate objective %s", s.Key())
		}
		versions[s.Version()] = s
	}
	return c, nil
}

// LoadDir loads every *.yaml, *.yml and *.json file in dir into a Catalog.
func LoadDir(dir string) (*Catalog, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read objectives dir %s: %w", dir, err)
	}
	var specs []*Spec
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		s, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return NewCatalog(specs...)
}

// Get returns the spec for id at version. An empty version selects the latest.
func (c *Catalog) Get(id, version string) (*Spec, bool) {
	versions, ok := c.specs[id]
	if !ok || len(versions) == 0 {
		return nil, false
	}
	if version != "" {
		s, ok := versions[version]
		return s, ok
	}
	var latest *Spec
	for _, s := range versions {
		if latest == nil || versionLess(latest.Version(), s.Version()) {
			latest = s
		}
	}
	return latest, true
}

// List returns every spec sorted by objective id, then version.
func (c *Catalog) List() []*Spec {
	var out []*Spec
	for _, versions := range c.specs {
		for _, s := range versions {
			out = append(out, s)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].ObjectiveID() != out[j].ObjectiveID() {
			return out[i].ObjectiveID() < out[j].ObjectiveID()
		}
		return versionLess(out[i].Version(), out[j].Version())
	})
	return out
}

// Len returns the number of specs in the catalog.
func (c *Catalog) Len() int {
	n := 0
	for _, versions := range c.specs {
		n += len(versions)
	}
	return n
}

// versionLess orders semver strings semantically ("1.2.0" and "v1.2.0" both
// accepted) and anything else lexically.
func versionLess(a, b string) bool {
	va, vb := canonicalSemver(a), canonicalSemver(b)
	if semver.IsValid(va) && semver.IsValid(vb) {
		if c := semver.Compare(va, vb); c != 0 {
			return c < 0
		}
	}
	return a < b
}

func canonicalSemver(v string) string {
	if strings.HasPrefix(v, "v") {
		return v
	}
	return "v" + v
}

// #endregion catalog
