package offline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// downloadTimeout bounds a single grid download. Grids run to hundreds of
// megabytes, so this is far looser than the API client timeouts.
const downloadTimeout = 5 * time.Minute

// Download names one grid file to ingest.
type Download struct {
	Category Category
	Filename string
	URL      string
}

// Ingest downloads the given grid files into the store's data directory.
// Files that already exist are skipped; partial downloads are removed. One
// failed download does not stop the rest, but any failure makes Ingest
// return an error.
func (s *Store) Ingest(ctx context.Context, client *http.Client, downloads []Download) error {
	if client == nil {
		client = &http.Client{Timeout: downloadTimeout}
	}

	failed := 0
	for _, d := range downloads {
		if err := s.download(ctx, client, d); err != nil {
			s.logger.Error().Err(err).Str("file", d.Filename).Msg("grid download failed")
			failed++
		}
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d grid downloads failed", failed, len(downloads))
	}
	return nil
}

func (s *Store) download(ctx context.Context, client *http.Client, d Download) error {
	loc, ok := categoryFiles[d.Category]
	if !ok {
		return fmt.Errorf("unknown category %q", d.Category)
	}

	dir := filepath.Join(s.dataDir, loc.subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating data dir: %w", err)
	}

	dest := filepath.Join(dir, d.Filename)
	if _, err := os.Stat(dest); err == nil {
		s.logger.Info().Str("file", d.Filename).Msg("grid already present, skipping")
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, http.NoBody)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	tmp := dest + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("creating file: %w", err)
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("writing file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("closing file: %w", err)
	}
	if err := os.Rename(tmp, dest); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming file: %w", err)
	}

	s.forget(dest)
	s.logger.Info().Str("file", d.Filename).Msg("grid downloaded")
	return nil
}
