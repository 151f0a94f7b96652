// Package taxdump downloads NCBI's new_taxdump archive and extracts the
// lineage dump krakviz reads.
package taxdump

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"go.uber.org/zap"

	"krakviz/internal/lineage"
)

// DefaultURL is NCBI's new_taxdump archive.
const DefaultURL = "https://ftp.ncbi.nlm.nih.gov/pub/taxonomy/new_taxdump/new_taxdump.zip"

// ErrMissingMember is returned when the archive has no lineage dump.
var ErrMissingMember = errors.New("archive has no " + lineage.DumpFile)

// Options configures Fetch. Zero fields use DefaultURL, http.DefaultClient
// and a no-op logger.
type Options struct {
	URL    string
	Dir    string
	Force  bool
	Client *http.Client
	Logger *zap.Logger
}

// Result describes what Fetch did.
type Result struct {
	Path       string // extracted dump
	Downloaded bool   // false when an existing dump was kept
	Bytes      int64  // size of the extracted dump
}

// Fetch downloads the archive into o.Dir and extracts the lineage dump next
// to it. An existing dump is kept unless o.Force is set.
func Fetch(ctx context.Context, o Options) (Result, error) {
	if o.URL == "" {
		o.URL = DefaultURL
	}
	if o.Client == nil {
		o.Client = http.DefaultClient
	}
	log := o.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if o.Dir == "" {
		return Result{}, errors.New("fetch: no target directory")
	}

	target := filepath.Join(o.Dir, lineage.DumpFile)
	if fi, err := os.Stat(target); err == nil && !o.Force {
		log.Info("lineage dump already present", zap.String("path", target))
		return Result{Path: target, Bytes: fi.Size()}, nil
	}
	if err := os.MkdirAll(o.Dir, 0o755); err != nil {
		return Result{}, fmt.Errorf("fetch: %w", err)
	}

	archive, err := download(ctx, o.Client, o.URL, o.Dir, log)
	if err != nil {
		return Result{}, err
	}
	defer os.Remove(archive)

	n, err := extract(archive, target)
	if err != nil {
		return Result{}, err
	}
	log.Info("lineage dump extracted", zap.String("path", target), zap.Int64("bytes", n))
	return Result{Path: target, Downloaded: true, Bytes: n}, nil
}

func download(ctx context.Context, c *http.Client, url, dir string, log *zap.Logger) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	log.Info("downloading taxonomy archive", zap.String("url", url))
	resp, err := c.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: unexpected status %s", url, resp.Status)
	}

	tmp, err := os.CreateTemp(dir, "new_taxdump-*.zip")
	if err != nil {
		return "", fmt.Errorf("fetch: %w", err)
	}
	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	log.Debug("archive downloaded", zap.Int64("bytes", n))
	return tmp.Name(), nil
}

// extract copies the lineage dump member of archive to target, via a
// temporary file so an interrupted run never leaves a partial dump.
func extract(archive, target string) (int64, error) {
	zr, err := zip.OpenReader(archive)
	if err != nil {
		return 0, fmt.Errorf("open archive: %w", err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if path.Base(f.Name) != lineage.DumpFile {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return 0, fmt.Errorf("open %s in archive: %w", f.Name, err)
		}
		defer rc.Close()

		tmp := target + ".part"
		out, err := os.Create(tmp)
		if err != nil {
			return 0, fmt.Errorf("extract: %w", err)
		}
		n, err := io.Copy(out, rc)
		if cerr := out.Close(); err == nil {
			err = cerr
		}
		if err == nil {
			err = os.Rename(tmp, target)
		}
		if err != nil {
			os.Remove(tmp)
			return 0, fmt.Errorf("extract %s: %w", f.Name, err)
		}
		return n, nil
	}
	return 0, ErrMissingMember
}
