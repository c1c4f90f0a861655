// Package asset opens the local or remote inputs of a generation run.
package asset

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
	"time"
)

var (
	ErrUnsupportedScheme = errors.New("resource: unsupported scheme")
	ErrFetchFailed       = errors.New("resource: fetch failed")
)

// Timeout applied to remote resource fetches.
var FetchTimeout = 30 * time.Second

// A readable local file or http(s) resource. Callers must close it unless
// they consume it through ReadAll.
type Resource struct {
	io.ReadCloser
	url *url.URL
}

// Get the resource location.
func (r *Resource) Path() string {
	return r.url.String()
}

// Check whether the resource is streamed over http(s).
func (r *Resource) IsRemote() bool {
	return r.url.Scheme == "http" || r.url.Scheme == "https"
}

// Read the remaining resource contents and close it.
func (r *Resource) ReadAll() ([]byte, error) {
	defer r.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("resource: could not read %s: %w", r.Path(), err)
	}
	return data, nil
}

// Open a resource. See NewResourceContext.
func NewResource(location string, relTo *Resource) (*Resource, error) {
	return NewResourceContext(context.Background(), location, relTo)
}

// Open a local path or http(s) url. A location without a scheme is
// resolved against the directory of relTo when relTo is not nil. Remote
// fetches are bound to ctx and FetchTimeout.
func NewResourceContext(ctx context.Context, location string, relTo *Resource) (*Resource, error) {
	target, err := resolve(location, relTo)
	if err != nil {
		return nil, err
	}

	var reader io.ReadCloser
	switch target.Scheme {
	case "":
		if reader, err = os.Open(filepath.Clean(target.Path)); err != nil {
			return nil, fmt.Errorf("resource: %w", err)
		}
	case "http", "https":
		if reader, err = fetch(ctx, target.String()); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedScheme, target.Scheme)
	}

	return &Resource{ReadCloser: reader, url: target}, nil
}

// Wrap a reader as a resource.
func NewResourceFromStream(name string, source io.Reader) *Resource {
	return &Resource{
		ReadCloser: io.NopCloser(source),
		url:        &url.URL{Path: name},
	}
}

func resolve(location string, relTo *Resource) (*url.URL, error) {
	target, err := url.Parse(strings.ReplaceAll(location, `\`, `/`))
	if err != nil {
		return nil, fmt.Errorf("resource: invalid location %q: %w", location, err)
	}
	if target.Scheme != "" || relTo == nil || path.IsAbs(target.Path) {
		return target, nil
	}

	base := *relTo.url
	if base.Scheme == "" {
		abs, err := filepath.Abs(base.Path)
		if err != nil {
			return nil, fmt.Errorf("resource: could not resolve %s: %w", base.Path, err)
		}
		base.Path = filepath.ToSlash(abs)
	}
	base.Path = path.Join(path.Dir(base.Path), target.Path)
	base.RawQuery = target.RawQuery
	return &base, nil
}

func fetch(ctx context.Context, target string) (io.ReadCloser, error) {
	ctx, cancel := context.WithTimeout(ctx, FetchTimeout)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, err)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %s: %w", ErrFetchFailed, target, err)
	}
	if resp.StatusCode >= 400 {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("%w: %s: status %d", ErrFetchFailed, target, resp.StatusCode)
	}

	return &cancelReadCloser{ReadCloser: resp.Body, cancel: cancel}, nil
}

// Releases the request context once the body is closed.
type cancelReadCloser struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelReadCloser) Close() error {
	err := c.ReadCloser.Close()
	c.cancel()
	return err
}
