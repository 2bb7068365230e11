// Package coursestore persists per-course state as JSON documents under the
// home directory.
package coursestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/enesgrahovac/book-quest/internal/book"
	"github.com/enesgrahovac/book-quest/internal/plan"
)

// ErrInvalidID is returned for user or course IDs that cannot be used as a
// directory name.
var ErrInvalidID = errors.New("invalid id")

// Document names within a course directory.
const (
	AnalysisFile = "book_analysis.json"
	PagesFile    = "pages.json"
	PlanFile     = "plan.json"
)

// Key identifies one course of one user.
type Key struct {
	UserID   string
	CourseID string
}

// Validate checks both IDs. Errors wrap ErrInvalidID.
func (k Key) Validate() error {
	if err := validateID(k.UserID); err != nil {
		return fmt.Errorf("user id: %w", err)
	}
	if err := validateID(k.CourseID); err != nil {
		return fmt.Errorf("course id: %w", err)
	}
	return nil
}

func validateID(id string) error {
	switch {
	case strings.TrimSpace(id) == "":
		return fmt.Errorf("%w: empty", ErrInvalidID)
	case id == "." || strings.Contains(id, ".."):
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	case strings.ContainsAny(id, `/\`) || strings.ContainsRune(id, 0):
		return fmt.Errorf("%w: %q contains a path separator", ErrInvalidID, id)
	}
	return nil
}

// envelope wraps every stored document.
type envelope[T any] struct {
	UpdatedAt time.Time `json:"updated_at"`
	Data      T         `json:"data"`
}

// Store reads and writes course documents.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

// New creates a store rooted at dir, normally home.Dir.CoursesPath().
func New(dir string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{root: dir, logger: logger, now: time.Now}
}

func (s *Store) courseDir(k Key) string {
	return filepath.Join(s.root, k.UserID, k.CourseID)
}

// SaveAnalysis stores the book analysis of a course.
func (s *Store) SaveAnalysis(k Key, a *book.BookAnalysis) error {
	return save(s, k, AnalysisFile, a)
}

// LoadAnalysis returns the stored analysis, or nil when none exists.
func (s *Store) LoadAnalysis(k Key) (*book.BookAnalysis, error) {
	return load[book.BookAnalysis](s, k, AnalysisFile)
}

// SavePages stores the extracted page text of a course.
func (s *Store) SavePages(k Key, pages book.PageCollection) error {
	return save(s, k, PagesFile, pages)
}

// LoadPages returns the stored page text, or nil when none exists.
func (s *Store) LoadPages(k Key) (book.PageCollection, error) {
	p, err := load[book.PageCollection](s, k, PagesFile)
	if p == nil || err != nil {
		return nil, err
	}
	return *p, nil
}

// SavePlan stores the course plan.
func (s *Store) SavePlan(k Key, p *plan.CoursePlan) error {
	return save(s, k, PlanFile, p)
}

// LoadPlan returns the stored plan, or nil when none exists.
func (s *Store) LoadPlan(k Key) (*plan.CoursePlan, error) {
	return load[plan.CoursePlan](s, k, PlanFile)
}

// UpdatedAt returns when a document was last written. The zero time means
// the document does not exist.
func (s *Store) UpdatedAt(k Key, name string) (time.Time, error) {
	env, err := readEnvelope[json.RawMessage](s, k, name)
	if env == nil || err != nil {
		return time.Time{}, err
	}
	return env.UpdatedAt, nil
}

// Delete removes every document of a course. Deleting an absent course is
// not an error.
func (s *Store) Delete(k Key) error {
	if err := k.Validate(); err != nil {
		return err
	}
	if err := os.RemoveAll(s.courseDir(k)); err != nil {
		return fmt.Errorf("failed to delete course: %w", err)
	}
	return nil
}

func save[T any](s *Store, k Key, name string, v T) error {
	if err := k.Validate(); err != nil {
		return err
	}
	dir := s.courseDir(k)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create course directory: %w", err)
	}

	data, err := json.MarshalIndent(envelope[T]{UpdatedAt: s.now().UTC(), Data: v}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", name, err)
	}
	if err := writeAtomic(filepath.Join(dir, name), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	s.logger.Debug("saved course document", "user_id", k.UserID, "course_id", k.CourseID, "document", name, "bytes", len(data))
	return nil
}

func load[T any](s *Store, k Key, name string) (*T, error) {
	env, err := readEnvelope[T](s, k, name)
	if env == nil || err != nil {
		return nil, err
	}
	return &env.Data, nil
}

func readEnvelope[T any](s *Store, k Key, name string) (*envelope[T], error) {
	if err := k.Validate(); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.courseDir(k), name))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", name, err)
	}
	var env envelope[T]
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", name, err)
	}
	return &env, nil
}

// writeAtomic writes data to a temp file in the target directory and
// renames it into place.
func writeAtomic(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
