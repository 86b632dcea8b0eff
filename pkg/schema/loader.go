package schema

import (
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Load parses a form document from JSON or YAML, sanitises display text, and
// verifies the document's integrity.
func Load(data []byte) (Form, error) {
	form, err := parse(data, "document")
	if err != nil {
		return Form{}, err
	}
	sanitizeForm(&form)
	if err := Validate(form); err != nil {
		return Form{}, err
	}
	return form, nil
}

// LoadFile reads and parses a single form document from disk.
func LoadFile(path string) (Form, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Form{}, fmt.Errorf("schema: read %s: %w", path, err)
	}
	form, err := parse(data, path)
	if err != nil {
		return Form{}, err
	}
	sanitizeForm(&form)
	if err := Validate(form); err != nil {
		return Form{}, fmt.Errorf("schema: file %s: %w", path, err)
	}
	return form, nil
}

// LoadFS walks a filesystem and loads every JSON/YAML form document found,
// keyed by form id. Duplicate form ids across files are an error.
func LoadFS(fsys fs.FS) (map[string]Form, error) {
	forms := make(map[string]Form)
	if fsys == nil {
		return forms, nil
	}

	err := fs.WalkDir(fsys, ".", func(path string, entry fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if entry.IsDir() || !isSchemaFile(path) {
			return nil
		}

		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return fmt.Errorf("schema: read %s: %w", path, err)
		}
		form, err := parse(data, path)
		if err != nil {
			return err
		}
		sanitizeForm(&form)
		if err := Validate(form); err != nil {
			return fmt.Errorf("schema: file %s: %w", path, err)
		}
		if _, exists := forms[form.ID]; exists {
			return fmt.Errorf("schema: duplicate form id %q (file %s)", form.ID, path)
		}
		forms[form.ID] = form
		return nil
	})
	if err != nil {
		return nil, err
	}
	return forms, nil
}

// LoadDir loads every form document under dir.
func LoadDir(dir string) (map[string]Form, error) {
	if _, err := os.Stat(dir); err != nil {
		return nil, fmt.Errorf("schema: open %s: %w", dir, err)
	}
	return LoadFS(os.DirFS(dir))
}

func parse(data []byte, source string) (Form, error) {
	if len(strings.TrimSpace(string(data))) == 0 {
		return Form{}, fmt.Errorf("schema: file %s is empty", source)
	}

	var form Form
	if err := json.Unmarshal(data, &form); err == nil {
		return form, nil
	}
	if err := yaml.Unmarshal(data, &form); err == nil {
		return form, nil
	}
	return Form{}, fmt.Errorf("schema: parse %s: invalid JSON or YAML", source)
}

func isSchemaFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json", ".yaml", ".yml":
		return true
	default:
		return false
	}
}
