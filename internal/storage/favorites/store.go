// Package favorites persists the user's favorite-asset selection, the only
// durable state of the desk.
package favorites

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

// MaxFavorites bounds the stored list.
const MaxFavorites = 4

// Store reads and writes the favorites file. Load never fails: any problem
// with the backing file falls back to the configured defaults.
type Store struct {
	path     string
	defaults []string
	allowed  map[string]struct{}
	logger   *zap.Logger
}

type favoritesFile struct {
	Favorites []string `json:"favorites"`
}

// NewStore creates a favorites store backed by the file at path. The allowed
// set and the default list come from configuration; defaults outside the
// allowed set are dropped up front. When none of the configured defaults is
// an allowed asset, the first allowed assets stand in so Load never returns
// an empty list.
func NewStore(path string, allowed []string, defaults []string, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	allowedSet := make(map[string]struct{}, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = struct{}{}
	}
	s := &Store{
		path:    path,
		allowed: allowedSet,
		logger:  logger,
	}
	s.defaults = s.sanitize(defaults)
	if len(s.defaults) == 0 {
		s.defaults = s.sanitize(allowed)
		logger.Warn("no configured default favorite is an allowed asset, using the first allowed assets",
			zap.Strings("defaults", s.defaults))
	}
	return s
}

// Load reads the favorites list from disk. On any failure (missing file,
// malformed content, unknown symbols) the configured defaults are returned;
// the result is always non-empty, deduplicated and capped at MaxFavorites.
func (s *Store) Load() []string {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			s.logger.Warn("failed to read favorites file, using defaults", zap.Error(err))
		}
		return append([]string(nil), s.defaults...)
	}

	var file favoritesFile
	if err := json.Unmarshal(payload, &file); err != nil {
		s.logger.Warn("malformed favorites file, using defaults", zap.Error(err))
		return append([]string(nil), s.defaults...)
	}

	list := s.sanitize(file.Favorites)
	if len(list) == 0 {
		return append([]string(nil), s.defaults...)
	}
	return list
}

// Save writes the full list to disk atomically via temp file. Unknown
// symbols are dropped before writing and the list is capped at MaxFavorites.
func (s *Store) Save(list []string) error {
	list = s.sanitize(list)

	payload, err := json.MarshalIndent(favoritesFile{Favorites: list}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode favorites")
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return errors.Wrap(err, "create favorites dir")
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write favorites temp file")
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist favorites")
	}
	return nil
}

// sanitize filters to the allowed set, removes duplicates and enforces the cap.
func (s *Store) sanitize(list []string) []string {
	seen := make(map[string]struct{}, len(list))
	out := make([]string, 0, MaxFavorites)
	for _, symbol := range list {
		if _, ok := s.allowed[symbol]; !ok {
			continue
		}
		if _, dup := seen[symbol]; dup {
			continue
		}
		seen[symbol] = struct{}{}
		out = append(out, symbol)
		if len(out) == MaxFavorites {
			break
		}
	}
	return out
}
