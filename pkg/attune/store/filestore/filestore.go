// Package filestore implements store.Store on the documented JSON/JSONL
// layout:
//
//	lexicon/shared_lexicon.json
//	lexicon/user_overrides/{hash}_lexicon.json
//	logs/hybrid_learning_log.jsonl
//	logs/anonymization_maps/{hash}.json
//	catalog/composites.json
//	learning/near_duplicate_staging.jsonl
//	signals/discovered/{hash}_signals.json
//
// JSON files are replaced whole via same-directory temp file and rename; the
// audit log is the only write that is flushed and fsynced per entry.
package filestore

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"

	"github.com/cognicore/attune/pkg/attune/anonymize"
	"github.com/cognicore/attune/pkg/attune/lexicon"
	"github.com/cognicore/attune/pkg/attune/signal"
	"github.com/cognicore/attune/pkg/attune/store"
)

// Store is the filesystem-backed store.
type Store struct {
	root   string
	debugf func(format string, args ...any)

	auditFile *os.File
}

// New opens (creating if needed) a filestore rooted at root.
func New(root string, debugf func(format string, args ...any)) (*Store, error) {
	if debugf == nil {
		debugf = log.Printf
	}
	for _, dir := range []string{
		"lexicon/user_overrides",
		"logs/anonymization_maps",
		"catalog",
		"learning",
		"signals/discovered",
	} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0o755); err != nil {
			return nil, fmt.Errorf("filestore: init %s: %w", dir, err)
		}
	}

	auditPath := filepath.Join(root, "logs", "hybrid_learning_log.jsonl")
	f, err := os.OpenFile(auditPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("filestore: open audit log: %w", err)
	}

	return &Store{root: root, debugf: debugf, auditFile: f}, nil
}

// Close releases the audit log handle.
func (s *Store) Close() error {
	return s.auditFile.Close()
}

func (s *Store) sharedPath() string {
	return filepath.Join(s.root, "lexicon", "shared_lexicon.json")
}

func (s *Store) userPath(hash string) string {
	return filepath.Join(s.root, "lexicon", "user_overrides", hash+"_lexicon.json")
}

// SharedLexicon loads the shared tier. Missing or corrupt files load as
// empty; the corrupt file stays on disk untouched until the next successful
// write.
func (s *Store) SharedLexicon() (lexicon.Shared, error) {
	lex := make(lexicon.Shared)
	if err := s.readJSON(s.sharedPath(), &lex); err != nil {
		return make(lexicon.Shared), nil
	}
	return lex, nil
}

// PutSharedLexicon replaces the shared lexicon file atomically.
func (s *Store) PutSharedLexicon(lex lexicon.Shared) error {
	return s.writeJSON(s.sharedPath(), lex)
}

// UserOverrides loads a user's record, or a fresh one if absent or corrupt.
func (s *Store) UserOverrides(userHash string) (*lexicon.UserOverrides, error) {
	u := lexicon.NewUserOverrides(userHash)
	if err := s.readJSON(s.userPath(userHash), u); err != nil {
		return lexicon.NewUserOverrides(userHash), nil
	}
	if u.Signals == nil {
		u.Signals = make(map[string]*lexicon.SignalOverride)
	}
	return u, nil
}

// PutUserOverrides replaces a user's record atomically.
func (s *Store) PutUserOverrides(u *lexicon.UserOverrides) error {
	return s.writeJSON(s.userPath(u.UserID), u)
}

// AppendAudit writes one audit entry, flushed and fsynced. This is the
// durability anchor for the whole exchange.
func (s *Store) AppendAudit(e store.LogEntry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("filestore: marshal audit entry: %w", err)
	}
	if _, err := s.auditFile.Write(append(b, '\n')); err != nil {
		return fmt.Errorf("filestore: append audit entry: %w", err)
	}
	if err := s.auditFile.Sync(); err != nil {
		// Best effort: the entry is written, sync may fail on exotic mounts.
		s.debugf("filestore: audit fsync: %v", err)
	}
	return nil
}

// AuditCount returns the number of log lines.
func (s *Store) AuditCount() (int64, error) {
	var n int64
	err := s.ReadAudit(func(store.LogEntry) error { n++; return nil })
	return n, err
}

// ReadAudit streams every audit entry to fn in write order. Unparseable
// lines are skipped with a debug note rather than aborting the scan.
func (s *Store) ReadAudit(fn func(e store.LogEntry) error) error {
	f, err := os.Open(filepath.Join(s.root, "logs", "hybrid_learning_log.jsonl"))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var e store.LogEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			s.debugf("filestore: audit line %d unparseable: %v", line, err)
			continue
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// AppendStaging appends one rejected candidate to the staging stream.
func (s *Store) AppendStaging(r store.StagingRecord) error {
	path := filepath.Join(s.root, "learning", "near_duplicate_staging.jsonl")
	return appendLine(path, r)
}

// AppendAnonymizationMap adds one map to the user's retention file.
func (s *Store) AppendAnonymizationMap(userHash string, m anonymize.Map) error {
	path := filepath.Join(s.root, "logs", "anonymization_maps", userHash+".json")

	var maps []anonymize.Map
	if err := s.readJSON(path, &maps); err != nil {
		maps = nil
	}
	maps = append(maps, m)
	return s.writeJSON(path, maps)
}

// PutDiscoveredSignals replaces the user's discovered-dimension file.
func (s *Store) PutDiscoveredSignals(userHash string, signals map[string]signal.Signal) error {
	path := filepath.Join(s.root, "signals", "discovered", userHash+"_signals.json")
	return s.writeJSON(path, signals)
}

// Catalog loads the prior-composite catalog. Missing or corrupt files yield
// an empty catalog without error.
func (s *Store) Catalog() ([]store.CatalogEntry, error) {
	var entries []store.CatalogEntry
	path := filepath.Join(s.root, "catalog", "composites.json")
	if err := s.readJSON(path, &entries); err != nil {
		return nil, nil
	}
	return entries, nil
}

// readJSON loads path into v. Corruption is logged and returned as an error
// so callers can substitute an empty value; the file itself is left alone.
func (s *Store) readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.debugf("filestore: read %s: %v", path, err)
		}
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		s.debugf("filestore: warning: %s is corrupt, treating as empty: %v", path, err)
		return err
	}
	return nil
}

// writeJSON replaces path atomically: temp file in the same directory,
// fsync, rename.
func (s *Store) writeJSON(path string, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("filestore: marshal %s: %w", path, err)
	}

	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".tmp_attune_*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(append(b, '\n')); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}

func appendLine(path string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
