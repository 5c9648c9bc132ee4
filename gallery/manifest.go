package gallery

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/storage"
)

// ManifestError reports that the list of images could not be obtained.
// The gallery does not start without it.
type ManifestError struct {
	URI string
	Err error
}

func (e *ManifestError) Error() string {
	return fmt.Sprintf("gallery manifest %s: %v", e.URI, e.Err)
}

func (e *ManifestError) Unwrap() error { return e.Err }

// ParseManifest splits a newline-delimited manifest. Blank lines are skipped
// and order is preserved.
func ParseManifest(r io.Reader) ([]string, error) {
	var ids []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		ids = append(ids, line)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}

// ReadManifest fetches and parses the manifest at uri.
func ReadManifest(ctx context.Context, uri fyne.URI) ([]string, error) {
	rc, err := openURI(ctx, uri)
	if err != nil {
		return nil, &ManifestError{URI: uri.String(), Err: err}
	}
	defer rc.Close()

	ids, err := ParseManifest(rc)
	if err != nil {
		return nil, &ManifestError{URI: uri.String(), Err: err}
	}
	return ids, nil
}

// openURI reads http(s) through net/http and everything else through the
// fyne storage repositories.
func openURI(ctx context.Context, uri fyne.URI) (io.ReadCloser, error) {
	switch uri.Scheme() {
	case "http", "https":
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri.String(), nil)
		if err != nil {
			return nil, err
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("unexpected status %s", resp.Status)
		}
		return resp.Body, nil
	default:
		return storage.Reader(uri)
	}
}
