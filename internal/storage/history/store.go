// Package history persists futures balance snapshots as a bounded,
// append-only JSON log on disk.
package history

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

// maxLen bounds the persisted history; appending beyond it drops the
// oldest entries first.
const maxLen = 500

// Store persists balance snapshots as a single pretty-printed JSON array.
// Every mutation rewrites the whole file atomically via a temp file; an
// in-process mutex serializes writers so concurrent appends queue instead
// of losing updates.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a history store backed by the given file path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create balance history dir")
	}

	return &Store{path: path}, nil
}

// Load reads the persisted history. A missing file or malformed payload
// counts as an empty history; the file is repaired on the next write.
func (s *Store) Load() ([]domain.BalanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Append records a snapshot of the given balance taken now and trims the
// history to the most recent maxLen entries.
func (s *Store) Append(balance float64) (domain.BalanceSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshots, err := s.load()
	if err != nil {
		return domain.BalanceSnapshot{}, err
	}

	snapshot := domain.NewBalanceSnapshot(balance)

	snapshots = append(snapshots, snapshot)
	if len(snapshots) > maxLen {
		snapshots = snapshots[len(snapshots)-maxLen:]
	}

	if err := s.save(snapshots); err != nil {
		return domain.BalanceSnapshot{}, err
	}

	return snapshot, nil
}

func (s *Store) load() ([]domain.BalanceSnapshot, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.BalanceSnapshot{}, nil
		}

		return nil, errors.Wrap(err, "read balance history")
	}

	var snapshots []domain.BalanceSnapshot
	if err := json.Unmarshal(payload, &snapshots); err != nil {
		// corrupted history is treated as no history yet
		return []domain.BalanceSnapshot{}, nil
	}

	return snapshots, nil
}

func (s *Store) save(snapshots []domain.BalanceSnapshot) error {
	payload, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode balance history")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write balance history temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist balance history")
	}

	return nil
}
