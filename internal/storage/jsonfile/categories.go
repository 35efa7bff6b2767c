package jsonfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/LSkevi/PieTracker/internal/category"
)

const (
	categoriesFile = "categories.json"

	// categoriesVersion is the current category document schema.
	categoriesVersion = 2
)

// categoriesDoc is the on-disk shape of the category collection.
type categoriesDoc struct {
	Version    int                          `json:"version"`
	Namespaces map[string]map[string]string `json:"namespaces"`
}

// Categories stores per-user category namespaces (category name -> color)
// in a single versioned JSON document.
type Categories struct {
	mu   sync.Mutex
	path string
	doc  categoriesDoc
}

// OpenCategories loads the category collection from dir. Documents in the
// old unversioned formats are migrated to the current schema once, here,
// and written back immediately. The old flat map becomes the reserved
// legacy namespace.
func OpenCategories(dir string, logger *slog.Logger) (*Categories, error) {
	s := &Categories{
		path: filepath.Join(dir, categoriesFile),
		doc: categoriesDoc{
			Version:    categoriesVersion,
			Namespaces: make(map[string]map[string]string),
		},
	}

	var raw json.RawMessage
	exists, err := readDocument(s.path, &raw)
	if err != nil {
		return nil, err
	}
	if !exists {
		return s, nil
	}

	migrated, err := s.decode(raw)
	if err != nil {
		return nil, err
	}

	if migrated {
		logger.Info("migrated category document to versioned schema",
			"path", s.path,
			"version", categoriesVersion,
		)
		if err := writeDocument(s.path, s.doc); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// decode parses raw into the current schema, migrating old shapes.
// It reports whether a migration happened.
func (s *Categories) decode(raw json.RawMessage) (bool, error) {
	// The ancient list form carried no colors, it migrates to an empty
	// document.
	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		return true, nil
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.path, err)
	}

	if _, ok := keys["version"]; ok {
		var doc categoriesDoc
		if err := json.Unmarshal(raw, &doc); err != nil {
			return false, fmt.Errorf("decode %s: %w", s.path, err)
		}
		if doc.Version != categoriesVersion {
			return false, fmt.Errorf("%s: unsupported document version %d", s.path, doc.Version)
		}
		if doc.Namespaces == nil {
			doc.Namespaces = make(map[string]map[string]string)
		}
		s.doc = doc
		return false, nil
	}

	// Unversioned object: the pre-multi-tenant shared map of
	// category name -> color.
	var flat map[string]string
	if err := json.Unmarshal(raw, &flat); err != nil {
		return false, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if len(flat) > 0 {
		s.doc.Namespaces[category.LegacyNamespace] = flat
	}

	return true, nil
}

// Namespace returns a copy of the namespace for userID and whether an
// entry exists. An existing empty namespace reports true.
func (s *Categories) Namespace(_ context.Context, userID string) (map[string]string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.doc.Namespaces[userID]
	if !ok {
		return nil, false, nil
	}

	return copyNamespace(ns), true, nil
}

// Legacy returns a copy of the reserved legacy namespace, if present.
func (s *Categories) Legacy(ctx context.Context) (map[string]string, bool, error) {
	return s.Namespace(ctx, category.LegacyNamespace)
}

// SetNamespace replaces the namespace for userID and persists the
// collection. The provided map is copied, later mutation by the caller
// does not leak into the store.
func (s *Categories) SetNamespace(_ context.Context, userID string, ns map[string]string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.doc.Namespaces[userID]
	s.doc.Namespaces[userID] = copyNamespace(ns)

	if err := writeDocument(s.path, s.doc); err != nil {
		if existed {
			s.doc.Namespaces[userID] = prev
		} else {
			delete(s.doc.Namespaces, userID)
		}
		return err
	}

	return nil
}

// DeleteNamespace removes the namespace for userID, if any, and persists
// the collection.
func (s *Categories) DeleteNamespace(_ context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, existed := s.doc.Namespaces[userID]
	if !existed {
		return nil
	}

	delete(s.doc.Namespaces, userID)

	if err := writeDocument(s.path, s.doc); err != nil {
		s.doc.Namespaces[userID] = prev
		return err
	}

	return nil
}

func copyNamespace(ns map[string]string) map[string]string {
	out := make(map[string]string, len(ns))
	for name, color := range ns {
		out[name] = color
	}
	return out
}
