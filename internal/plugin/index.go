package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Descriptor is a single plugin entry of the index.
type Descriptor struct {
	Name string `yaml:"name" json:"name"`
	// Version is a git revision: tag, branch or commit hash.
	Version string `yaml:"version" json:"version"`
	URL     string `yaml:"url" json:"url"`
}

// Index is the ordered list of plugins published by the remote index.
type Index []Descriptor

// ParseIndex decodes a YAML sequence of descriptors.
func ParseIndex(data []byte) (Index, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("parsing index: document is empty")
	}

	var idx Index
	if err := yaml.Unmarshal(data, &idx); err != nil {
		return nil, fmt.Errorf("parsing index: %w", err)
	}

	for i, d := range idx {
		if d.Name == "" {
			return nil, fmt.Errorf("parsing index: entry %d has no name", i)
		}
		if d.URL == "" {
			return nil, fmt.Errorf("parsing index: entry %d (%s) has no url", i, d.Name)
		}
	}

	return idx, nil
}

// Resolve finds a descriptor by exact name, falling back to a
// case-insensitive match.
func (idx Index) Resolve(identifier string) (Descriptor, error) {
	for _, d := range idx {
		if d.Name == identifier {
			return d, nil
		}
	}
	for _, d := range idx {
		if strings.EqualFold(d.Name, identifier) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("plugin %q: %w", identifier, ErrNotFound)
}

// Names returns plugin names in index order.
func (idx Index) Names() []string {
	names := make([]string, len(idx))
	for i, d := range idx {
		names[i] = d.Name
	}
	return names
}

// IndexProvider fetches the remote index and keeps a local cached copy.
type IndexProvider struct {
	url     string
	path    string
	timeout time.Duration
	client  *http.Client
	log     zerolog.Logger
}

// NewIndexProvider creates a provider caching url at cachePath.
func NewIndexProvider(url, cachePath string, timeout time.Duration, logger zerolog.Logger) *IndexProvider {
	return &IndexProvider{
		url:     url,
		path:    cachePath,
		timeout: timeout,
		client:  http.DefaultClient,
		log:     logger,
	}
}

// Path returns the location of the cached index file.
func (p *IndexProvider) Path() string {
	return p.path
}

// Fetch downloads the raw index body.
func (p *IndexProvider) Fetch(ctx context.Context) ([]byte, error) {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	p.log.Debug().Str("url", p.url).Msg("Fetching index")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching index: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("index returned %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading index: %w", err)
	}
	return body, nil
}

// Refresh replaces the cached index with the remote one. The cache is only
// overwritten when the fetched body parses, so a failed refresh leaves the
// previous copy untouched.
func (p *IndexProvider) Refresh(ctx context.Context) error {
	body, err := p.Fetch(ctx)
	if err != nil {
		return err
	}
	if _, err := ParseIndex(body); err != nil {
		return err
	}

	p.log.Debug().Str("path", p.path).Msg("Writing index cache")
	return writeFileAtomic(p.path, body)
}

// Load refreshes the cache and parses it. A failed refresh is logged and the
// stale cache is used instead.
func (p *IndexProvider) Load(ctx context.Context) (Index, error) {
	if err := p.Refresh(ctx); err != nil {
		p.log.Warn().Err(err).Str("url", p.url).Msg("Error fetching index, using cached copy")
	}
	return p.Cached()
}

// Cached parses the cached index without touching the network.
func (p *IndexProvider) Cached() (Index, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no cached index at %s", ErrIndexUnavailable, p.path)
		}
		return nil, fmt.Errorf("reading index cache: %w", err)
	}
	return ParseIndex(data)
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
