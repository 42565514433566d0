package modelcache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/sethvargo/go-retry"
)

// fetchArtifact downloads url into dest through a temp file, verifying
// the SHA-256 digest when one is pinned. The temp file only replaces an
// existing artifact after the digest checks out. Transient network and
// 5xx failures are retried with capped exponential backoff.
func (b *Bootstrapper) fetchArtifact(ctx context.Context, url, dest, wantSHA string) (string, error) {
	var digest string
	backoff := retry.WithMaxRetries(b.attempts-1, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var err error
		digest, err = b.fetchOnce(ctx, url, dest, wantSHA)
		return err
	})
	return digest, err
}

func (b *Bootstrapper) fetchOnce(ctx context.Context, url, dest, wantSHA string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return "", retry.RetryableError(err)
	}
	defer resp.Body.Close()
	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode >= http.StatusInternalServerError:
		return "", retry.RetryableError(fmt.Errorf("upstream status %s", resp.Status))
	default:
		return "", fmt.Errorf("upstream status %s", resp.Status)
	}

	tmp, err := os.CreateTemp(filepath.Dir(dest), filepath.Base(dest)+".download-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	hasher := sha256.New()
	if _, err := io.Copy(io.MultiWriter(tmp, hasher), resp.Body); err != nil {
		tmp.Close()
		return "", retry.RetryableError(err)
	}
	if err := tmp.Close(); err != nil {
		return "", err
	}
	digest := hex.EncodeToString(hasher.Sum(nil))
	if wantSHA != "" && digest != wantSHA {
		return "", fmt.Errorf("sha256 mismatch: got %s want %s", digest, wantSHA)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return "", err
	}
	return digest, nil
}

func hashFile(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer file.Close()
	hasher := sha256.New()
	if _, err := io.Copy(hasher, file); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}
