// Package comments persists the anonymous comment feed as a JSON log on
// disk. Comment ids and nicknames are never stored, they are projected
// from list position on every read.
package comments

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/vadiminshakov/walletboard/internal/domain"
)

// ErrEmptyContent rejects comments that are empty after trimming.
var ErrEmptyContent = errors.New("content is empty")

// Store persists comments as a single pretty-printed JSON array, rewritten
// whole on every mutation. An in-process mutex serializes writers.
type Store struct {
	path string
	mu   sync.Mutex
}

// NewStore creates a comment store backed by the given file path.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, errors.Wrap(err, "create comments dir")
	}

	return &Store{path: path}, nil
}

// Load reads the persisted comments. A missing file or malformed payload
// counts as an empty feed; the file is repaired on the next write.
func (s *Store) Load() ([]domain.Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.load()
}

// Append trims the content, validates it is non-empty and persists it with
// the current UTC time. The returned view carries the display rank the new
// comment holds right after the append.
func (s *Store) Append(content string) (domain.CommentView, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return domain.CommentView{}, ErrEmptyContent
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load()
	if err != nil {
		return domain.CommentView{}, err
	}

	comment := domain.Comment{
		Content:   content,
		CreatedAt: domain.NowUTC(),
	}

	stored = append(stored, comment)
	if err := s.save(stored); err != nil {
		return domain.CommentView{}, err
	}

	return domain.NewCommentView(len(stored), comment), nil
}

// List projects every stored comment to its view in stored order.
func (s *Store) List() ([]domain.CommentView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored, err := s.load()
	if err != nil {
		return nil, err
	}

	views := make([]domain.CommentView, 0, len(stored))
	for i, comment := range stored {
		views = append(views, domain.NewCommentView(i+1, comment))
	}

	return views, nil
}

func (s *Store) load() ([]domain.Comment, error) {
	payload, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []domain.Comment{}, nil
		}

		return nil, errors.Wrap(err, "read comments")
	}

	var stored []domain.Comment
	if err := json.Unmarshal(payload, &stored); err != nil {
		// corrupted feed is treated as no comments yet
		return []domain.Comment{}, nil
	}

	return stored, nil
}

func (s *Store) save(stored []domain.Comment) error {
	payload, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode comments")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return errors.Wrap(err, "write comments temp file")
	}

	if err := os.Rename(tmp, s.path); err != nil {
		return errors.Wrap(err, "persist comments")
	}

	return nil
}
