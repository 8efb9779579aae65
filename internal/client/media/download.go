package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/ireporter/internal/filex"
	"github.com/google/uuid"
)

var ErrNoMedia = errors.New("incident has no attachment")

// Download fetches rawURL into dir and returns the written file path. The
// file is named after the last segment of the URL path, or a random name
// when there is none; an existing file of
// that name is overwritten.
func Download(ctx context.Context, hc *http.Client, rawURL, dir string) (string, error) {
	if rawURL == "" {
		return "", ErrNoMedia
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse media url: %w", err)
	}
	if hc == nil {
		hc = http.DefaultClient
	}

	dir, err = filex.EnsureSubDir(dir)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", err
	}
	resp, err := hc.Do(req)
	if err != nil {
		return "", fmt.Errorf("download media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("download media: unexpected status %s", resp.Status)
	}

	base := ""
	if !strings.HasSuffix(u.Path, "/") {
		base = path.Base(u.Path)
	}
	name := filex.SafeName(base, uuid.NewString())
	dst := filepath.Join(dir, name)

	f, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, io.LimitReader(resp.Body, MaxSize+1)); err != nil {
		f.Close()
		_ = os.Remove(dst)
		return "", fmt.Errorf("write %s: %w", dst, err)
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return dst, nil
}
