package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	logger "github.com/sirupsen/logrus"
)

const (
	defaultFetchTimeout   = 30 * time.Second
	defaultRetryAttempts  = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
	defaultRetryMaxDelay  = 5 * time.Second
)

// Source is a loaded export.
type Source struct {
	Name string
	Text string
}

// Loader reads exports from local paths or http(s) URLs.
type Loader struct {
	http *resty.Client
}

func isRetryableResp(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}
	if r == nil {
		return false
	}
	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

// NewLoader builds a loader whose remote fetches time out after timeout.
func NewLoader(timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = defaultFetchTimeout
	}
	client := resty.New().
		SetTimeout(timeout).
		SetRetryCount(defaultRetryAttempts - 1).
		SetRetryWaitTime(defaultRetryBaseDelay).
		SetRetryMaxWaitTime(defaultRetryMaxDelay).
		AddRetryCondition(isRetryableResp)
	return &Loader{http: client}
}

// Load returns the contents of location.
func (l *Loader) Load(ctx context.Context, location string) (*Source, error) {
	if isRemote(location) {
		return l.fetch(ctx, location)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	return &Source{Name: filepath.Base(location), Text: string(data)}, nil
}

func (l *Loader) fetch(ctx context.Context, location string) (*Source, error) {
	logger.WithFields(map[string]interface{}{
		"component": "ingest",
		"op":        "fetch",
		"url":       location,
	}).Debug("Fetching remote export")

	resp, err := l.http.R().SetContext(ctx).Get(location)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", location, err)
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: HTTP %d", location, resp.StatusCode())
	}

	return &Source{Name: remoteName(location), Text: string(resp.Body())}, nil
}

func isRemote(location string) bool {
	lower := strings.ToLower(location)
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

func remoteName(location string) string {
	u, err := url.Parse(location)
	if err != nil || path.Base(u.Path) == "/" || path.Base(u.Path) == "." {
		return location
	}
	return path.Base(u.Path)
}
