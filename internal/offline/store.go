package offline

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// Category names a pre-ingested dataset.
type Category string

// Known dataset categories.
const (
	CategoryNoise   Category = "noise"
	CategoryAirPM25 Category = "air_pm25"
	CategoryAirNO2  Category = "air_no2"
)

// GridExt is the filename extension of gob-encoded grid files.
const GridExt = ".grid"

// categoryFiles maps a category to its subdirectory and filename prefix
// under the data dir. PM2.5 and NO2 share the air subdirectory and are told
// apart by prefix.
var categoryFiles = map[Category]struct {
	subdir string
	prefix string
}{
	CategoryNoise:   {subdir: "noise"},
	CategoryAirPM25: {subdir: "air", prefix: "conc_PM25_"},
	CategoryAirNO2:  {subdir: "air", prefix: "conc_NO2_"},
}

// StoreConfig holds configuration for the offline store.
type StoreConfig struct {
	// DataDir is the root directory holding per-category grid files.
	DataDir string

	// Logger for store operations.
	Logger zerolog.Logger
}

// Store samples pre-ingested grids by RD coordinate. Loaded grids are
// cached in memory per file path.
type Store struct {
	dataDir string
	logger  zerolog.Logger

	mu    sync.Mutex
	grids map[string]*Grid
}

// NewStore creates an offline store rooted at cfg.DataDir.
func NewStore(cfg StoreConfig) *Store {
	return &Store{
		dataDir: cfg.DataDir,
		logger:  cfg.Logger,
		grids:   make(map[string]*Grid),
	}
}

// Sample returns the offline value for a category at an RD point, or nil
// when no grid covers it. Absence of offline data is never an error.
func (s *Store) Sample(category Category, x, y float64) *float64 {
	loc, ok := categoryFiles[category]
	if !ok {
		return nil
	}

	path := s.latestFile(loc.subdir, loc.prefix)
	if path == "" {
		return nil
	}

	g, err := s.grid(path)
	if err != nil {
		s.logger.Warn().Err(err).Str("category", string(category)).
			Msg("offline grid load failed")
		return nil
	}

	v, ok := g.Sample(x, y)
	if !ok {
		return nil
	}
	return &v
}

// Datasets reports the latest grid file name per category that has one, for
// operational visibility.
func (s *Store) Datasets() map[Category]string {
	out := make(map[Category]string)
	for category, loc := range categoryFiles {
		if path := s.latestFile(loc.subdir, loc.prefix); path != "" {
			out[category] = filepath.Base(path)
		}
	}
	return out
}

// latestFile picks the lexicographically greatest matching file name, which
// for the date-stamped grid names means the newest dataset.
func (s *Store) latestFile(subdir, prefix string) string {
	entries, err := os.ReadDir(filepath.Join(s.dataDir, subdir))
	if err != nil {
		return ""
	}

	var latest string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasSuffix(name, GridExt) || !strings.HasPrefix(name, prefix) {
			continue
		}
		if name > latest {
			latest = name
		}
	}
	if latest == "" {
		return ""
	}
	return filepath.Join(s.dataDir, subdir, latest)
}

func (s *Store) grid(path string) (*Grid, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, ok := s.grids[path]; ok {
		return g, nil
	}
	g, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	s.grids[path] = g
	return g, nil
}

// forget drops a cached grid after its file is replaced.
func (s *Store) forget(path string) {
	s.mu.Lock()
	delete(s.grids, path)
	s.mu.Unlock()
}
