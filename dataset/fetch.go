package dataset

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/cenkalti/backoff/v5"

	"github.com/lifelens-io/lifelens/pkg/errors"
)

// DefaultDataURL is the hosted global development CSV.
const DefaultDataURL = "https://raw.githubusercontent.com/JohannaViktor/streamlit_practical/refs/heads/main/global_development_data.csv"

const fetchMaxTries = 4

// Fetch loads the development table, downloading the CSV once and caching the
// raw bytes at cachePath. Later calls read the cache without touching the
// network. Transient HTTP failures are retried with exponential backoff.
func Fetch(ctx context.Context, url, cachePath string) (*Table, error) {
	if data, err := os.ReadFile(cachePath); err == nil {
		return ReadCSV(bytes.NewReader(data))
	}

	operation := func() ([]byte, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			err := errors.Newf("unexpected status %s fetching %s", resp.Status, url)
			if resp.StatusCode >= 400 && resp.StatusCode < 500 {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		return io.ReadAll(resp.Body)
	}

	data, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(fetchMaxTries))
	if err != nil {
		return nil, errors.Wrapf(err, "fetch dataset from %s", url)
	}

	if err := writeFileAtomic(cachePath, data); err != nil {
		return nil, errors.Wrap(err, "cache dataset")
	}
	return ReadCSV(bytes.NewReader(data))
}

// writeFileAtomic writes via a temp file and rename so a crashed download
// never leaves a truncated cache behind.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".download-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}
