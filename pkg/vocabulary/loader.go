package vocabulary

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
)

// MissingFieldsError is returned by a strict Loader when the reference table
// lacks controlled fields.
type MissingFieldsError struct {
	Source string
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("vocabulary %s is missing controlled fields: %s", e.Source, strings.Join(e.Fields, ", "))
}

// LoaderConfig configures a Loader.
type LoaderConfig struct {
	// Fields are the controlled fields expected in every reference table.
	Fields []string

	// Strict turns missing controlled fields into a load error.
	Strict bool

	// Timeout bounds fetching a remote source.
	Timeout time.Duration

	// MaxBytes bounds the size of a remote source. Zero means 16 MiB.
	MaxBytes int64
}

// Loader reads reference tables from local files or http(s) URLs.
type Loader struct {
	config LoaderConfig
	client *http.Client
	logger *slog.Logger
}

// NewLoader creates a Loader. A nil client uses a client with the configured
// timeout.
func NewLoader(config LoaderConfig, client *http.Client, logger *slog.Logger) *Loader {
	if config.Fields == nil {
		config.Fields = ControlledFields
	}
	if config.Timeout <= 0 {
		config.Timeout = 30 * time.Second
	}
	if config.MaxBytes <= 0 {
		config.MaxBytes = 16 << 20
	}
	if client == nil {
		client = &http.Client{Timeout: config.Timeout}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{config: config, client: client, logger: logger}
}

// IsRemote reports whether source is fetched over HTTP.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Load reads and parses the reference table at source.
func (l *Loader) Load(ctx context.Context, source string) (*Set, error) {
	if source == "" {
		return nil, fmt.Errorf("vocabulary source is empty")
	}

	var (
		set *Set
		err error
	)
	if IsRemote(source) {
		set, err = l.fetch(ctx, source)
	} else {
		set, err = l.open(source)
	}
	if err != nil {
		return nil, err
	}
	set.source = source

	if missing := set.Missing(l.config.Fields); len(missing) > 0 {
		if l.config.Strict {
			return nil, &MissingFieldsError{Source: source, Fields: missing}
		}
		for _, field := range missing {
			l.logger.Warn("vocabulary has no column for controlled field, every value will be rejected",
				"source", source,
				"field", field,
			)
		}
	}

	l.logger.Debug("vocabulary loaded",
		"source", source,
		"columns", len(set.RequiredColumns()),
	)
	return set, nil
}

func (l *Loader) open(path string) (*Set, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open vocabulary: %w", err)
	}
	defer f.Close()

	set, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", path, err)
	}
	return set, nil
}

func (l *Loader) fetch(ctx context.Context, source string) (*Set, error) {
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, source, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create vocabulary request: %w", err)
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch vocabulary: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to fetch vocabulary: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, l.config.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read vocabulary %s: %w", source, err)
	}
	if int64(len(data)) > l.config.MaxBytes {
		return nil, fmt.Errorf("vocabulary %s exceeds %d bytes", source, l.config.MaxBytes)
	}

	set, err := Load(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse vocabulary %s: %w", source, err)
	}
	return set, nil
}
