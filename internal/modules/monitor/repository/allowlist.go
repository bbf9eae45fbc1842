package repository

import (
	"os"
	"path/filepath"
	"strings"

	"floodwatch/internal/errs"
)

// Allowlist is the newline-delimited station id file that monitor requests
// are validated against.
type Allowlist struct {
	path string
}

func NewAllowlist(path string) *Allowlist {
	return &Allowlist{path: path}
}

// Path returns the backing file's location, for error messages.
func (a *Allowlist) Path() string {
	return a.path
}

// Load reads the file into a de-duplicated set. A missing file is a
// validation error telling the caller how to create it.
func (a *Allowlist) Load() (map[string]struct{}, error) {
	body, err := os.ReadFile(a.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Newf(errs.Validation, "allowlist.Load",
				"station ids file not found at %s; run with --update-station-ids to create it", a.path)
		}
		return nil, errs.New(errs.IO, "allowlist.Load", err)
	}

	ids := make(map[string]struct{})
	for _, line := range strings.Split(string(body), "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		ids[id] = struct{}{}
	}
	return ids, nil
}

// Has reports whether id is listed in the file.
func (a *Allowlist) Has(id string) (bool, error) {
	ids, err := a.Load()
	if err != nil {
		return false, err
	}
	_, ok := ids[id]
	return ok, nil
}

// Save writes ids to the file, one per line, creating the parent directory
// when needed.
func (a *Allowlist) Save(ids []string) error {
	if err := os.MkdirAll(filepath.Dir(a.path), 0o755); err != nil {
		return errs.New(errs.IO, "allowlist.Save", err)
	}

	var b strings.Builder
	for _, id := range ids {
		b.WriteString(id)
		b.WriteByte('\n')
	}
	if err := os.WriteFile(a.path, []byte(b.String()), 0o644); err != nil {
		return errs.New(errs.IO, "allowlist.Save", err)
	}
	return nil
}
