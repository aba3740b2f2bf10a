package schemaevolution

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/wudi/schemadiff/internal/errors"
	"github.com/wudi/schemadiff/internal/schema"
)

// Record is one stored schema version.
type Record struct {
	Format    schema.Format `json:"format"`
	Version   string        `json:"version"`
	Content   string        `json:"content"`
	Timestamp time.Time     `json:"timestamp"`
}

// Schema rebuilds the stored schema.
func (r *Record) Schema() *schema.Schema {
	return schema.New(r.Format, r.Content, r.Version)
}

// SpecStore persists previous schema versions on the filesystem, one JSON
// file per version named {subject}_{unixnano}.json.
type SpecStore struct {
	dir         string
	maxVersions int
}

// NewSpecStore creates a new filesystem-backed schema store.
func NewSpecStore(dir string, maxVersions int) (*SpecStore, error) {
	if maxVersions <= 0 {
		maxVersions = 10
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "create schema store dir")
	}
	return &SpecStore{dir: dir, maxVersions: maxVersions}, nil
}

// Save stores a schema version for subject and prunes old versions.
func (s *SpecStore) Save(subject string, sc *schema.Schema) error {
	rec := Record{
		Format:    sc.Format(),
		Version:   sc.Version(),
		Content:   sc.Content(),
		Timestamp: time.Now(),
	}

	raw, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, errors.KindJSON, "marshal stored schema")
	}

	// Two saves within the same nanosecond must not overwrite each other.
	for ts := rec.Timestamp.UnixNano(); ; ts++ {
		path := filepath.Join(s.dir, fmt.Sprintf("%s_%d.json", sanitizeID(subject), ts))
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, errors.KindIO, "create schema file")
		}
		_, werr := f.Write(raw)
		if cerr := f.Close(); werr == nil {
			werr = cerr
		}
		if werr != nil {
			return errors.Wrap(werr, errors.KindIO, "write schema file")
		}
		break
	}

	return s.pruneOldVersions(subject)
}

// Latest returns the most recently stored version of subject, or nil when
// there is none.
func (s *SpecStore) Latest(subject string) (*Record, error) {
	entries, err := s.getEntries(subject)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return s.read(entries[len(entries)-1])
}

// History returns every stored version of subject, oldest first.
func (s *SpecStore) History(subject string) ([]Record, error) {
	entries, err := s.getEntries(subject)
	if err != nil {
		return nil, err
	}

	records := make([]Record, 0, len(entries))
	for _, name := range entries {
		rec, err := s.read(name)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, nil
}

func (s *SpecStore) read(name string) (*Record, error) {
	raw, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "read schema file")
	}

	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, errors.Wrap(err, errors.KindJSON, "unmarshal stored schema "+name)
	}
	return &rec, nil
}

// getEntries lists the files of subject in timestamp order.
func (s *SpecStore) getEntries(subject string) ([]string, error) {
	prefix := sanitizeID(subject) + "_"
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, errors.Wrap(err, errors.KindIO, "read store dir")
	}

	type entry struct {
		name string
		ts   int64
	}
	var matching []entry
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, prefix) || !strings.HasSuffix(name, ".json") {
			continue
		}
		// "users_v2_…" must not be listed as a version of "users".
		ts, err := strconv.ParseInt(strings.TrimSuffix(strings.TrimPrefix(name, prefix), ".json"), 10, 64)
		if err != nil {
			continue
		}
		matching = append(matching, entry{name, ts})
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i].ts < matching[j].ts })

	names := make([]string, len(matching))
	for i, m := range matching {
		names[i] = m.name
	}
	return names, nil
}

func (s *SpecStore) pruneOldVersions(subject string) error {
	entries, err := s.getEntries(subject)
	if err != nil {
		return err
	}

	if len(entries) <= s.maxVersions {
		return nil
	}

	toRemove := entries[:len(entries)-s.maxVersions]
	for _, name := range toRemove {
		if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
			return errors.Wrap(err, errors.KindIO, "prune schema file")
		}
	}
	return nil
}

func sanitizeID(id string) string {
	var sb strings.Builder
	for _, c := range id {
		if (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' {
			sb.WriteRune(c)
		} else {
			sb.WriteByte('_')
		}
	}
	return sb.String()
}
