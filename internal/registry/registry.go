// Package registry resolves where the controller image lives: it
// fetches the remote constants document and composes fully-qualified
// image references from its coordinates.
package registry

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/clusterdock/clusterdock/pkg/logger"
)

// Keys consumed from the constants document. Unknown keys are ignored.
const (
	keyRegistryURL = "docker_registry_url"
	keyNamespace   = "cloudera_namespace"
)

// Config holds registry coordinates extracted from the constants
// document. Absent keys yield empty strings.
type Config struct {
	RegistryURL string
	Namespace   string
}

// Status reports how a best-effort resolution ended. A Failed
// resolution never aborts the pipeline; it degrades into empty
// coordinates and is surfaced here instead of being swallowed.
type Status int

const (
	StatusResolved Status = iota
	StatusSkipped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusResolved:
		return "resolved"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Resolver fetches the constants document over HTTP.
type Resolver struct {
	url    string
	client *http.Client
}

// NewResolver creates a resolver for the given constants document URL.
func NewResolver(url string) *Resolver {
	return &Resolver{
		url: url,
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Resolve fetches and parses the constants document. Failures return a
// zero Config and StatusFailed; callers continue with what they have.
func (r *Resolver) Resolve(ctx context.Context) (Config, Status) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.url, nil)
	if err != nil {
		logger.Warn("Failed to build constants request", "url", r.url, "error", err)
		return Config{}, StatusFailed
	}

	resp, err := r.client.Do(req)
	if err != nil {
		logger.Warn("Failed to fetch constants document", "url", r.url, "error", err)
		return Config{}, StatusFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.Warn("Constants document fetch returned non-OK status",
			"url", r.url, "status", resp.StatusCode)
		return Config{}, StatusFailed
	}

	values, err := parseConstants(resp.Body)
	if err != nil {
		logger.Warn("Failed to read constants document", "url", r.url, "error", err)
		return Config{}, StatusFailed
	}

	cfg := Config{
		RegistryURL: values[keyRegistryURL],
		Namespace:   values[keyNamespace],
	}
	logger.Debug("Resolved registry coordinates",
		"registry", cfg.RegistryURL, "namespace", cfg.Namespace)
	return cfg, StatusResolved
}

// ControllerImage returns the fully-qualified controller image
// reference. A non-empty override is used verbatim and skips the
// remote fetch entirely.
func (r *Resolver) ControllerImage(ctx context.Context, override string) (string, Status) {
	if override != "" {
		return override, StatusSkipped
	}
	cfg, status := r.Resolve(ctx)
	return ImageReference(cfg), status
}

// ImageReference composes the controller image reference from registry
// coordinates. Pure and deterministic; malformed components compose
// into a malformed reference for the caller to validate.
func ImageReference(cfg Config) string {
	return fmt.Sprintf("%s/%s/clusterdock:latest", cfg.RegistryURL, cfg.Namespace)
}

// parseConstants reads `key = value` lines, ignoring whitespace around
// the separator, blank lines, and comments.
func parseConstants(r io.Reader) (map[string]string, error) {
	values := make(map[string]string)
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		key, value, found := strings.Cut(line, "=")
		if !found {
			continue
		}
		values[strings.TrimSpace(key)] = strings.TrimSpace(value)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return values, nil
}
