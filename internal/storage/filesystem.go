package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/marketdesk/server/internal/domain"
)

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// FileStore persists demo-session counters as one JSON document per session,
// the server-side stand-in for browser local storage.
type FileStore struct {
	basePath string
	mu       sync.Mutex
}

type demoDocument struct {
	Counters  map[string]int `json:"counters"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// NewFileStore initializes a FileStore rooted at basePath.
func NewFileStore(basePath string) (*FileStore, error) {
	basePath = strings.TrimSpace(basePath)
	if basePath == "" {
		return nil, errors.New("storage: base path is required")
	}
	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("storage: ensure base path: %w", err)
	}
	return &FileStore{basePath: basePath}, nil
}

// LoadCounters returns the stored counters, all zero when the session has none yet.
func (s *FileStore) LoadCounters(ctx context.Context, sessionID string) (domain.UsageCounters, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path, err := s.pathFor(sessionID)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return readDocument(path)
}

// IncrementCounter adds one use of feature to the stored document. The whole
// read-modify-write runs under the store lock.
func (s *FileStore) IncrementCounter(ctx context.Context, sessionID string, feature domain.FeatureKind) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !feature.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownFeature, feature)
	}
	path, err := s.pathFor(sessionID)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	counters, err := readDocument(path)
	if err != nil {
		return err
	}
	counters.Inc(feature)
	return writeDocument(path, counters)
}

func readDocument(path string) (domain.UsageCounters, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return domain.NewUsageCounters(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage: read session: %w", err)
	}
	var doc demoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("storage: decode session: %w", err)
	}
	counters := make(domain.UsageCounters, len(doc.Counters))
	for name, v := range doc.Counters {
		counters[domain.FeatureKind(name)] = v
	}
	return counters.Normalize(), nil
}

// writeDocument goes through a temp file and rename so readers never see a
// partial document.
func writeDocument(path string, counters domain.UsageCounters) error {
	doc := demoDocument{Counters: make(map[string]int, len(counters)), UpdatedAt: time.Now().UTC()}
	for f, v := range counters.Normalize() {
		doc.Counters[string(f)] = v
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("storage: encode session: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("storage: write file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("storage: commit file: %w", err)
	}
	return nil
}

// pathFor maps a session id to its document, rejecting ids that could escape the root.
func (s *FileStore) pathFor(sessionID string) (string, error) {
	if s == nil {
		return "", errors.New("storage: no store configured")
	}
	sessionID = strings.TrimSpace(sessionID)
	if !sessionIDPattern.MatchString(sessionID) {
		return "", errors.New("storage: invalid session id")
	}
	return filepath.Join(s.basePath, sessionID+".json"), nil
}

var _ domain.LocalStateStore = (*FileStore)(nil)
