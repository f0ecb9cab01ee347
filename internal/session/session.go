// Package session owns the live task collection for one run of the app.
// Controllers and renderers receive a *Session instead of sharing globals.
package session

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"taskcards/internal/storage"
	"taskcards/internal/task"
)

type Session struct {
	store *storage.Store
	ids   task.IDSource
	now   func() time.Time
	log   *logrus.Entry
}

type Option func(*Session)

func WithClock(now func() time.Time) Option {
	return func(s *Session) { s.now = now }
}

func WithLogger(log *logrus.Entry) Option {
	return func(s *Session) { s.log = log }
}

func New(store *storage.Store, opts ...Option) *Session {
	s := &Session{
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		s.log = logrus.NewEntry(l)
	}
	return s
}

// Seed appends the example tasks.
func (s *Session) Seed() error {
	for _, t := range task.Seed(&s.ids, s.now()) {
		if err := s.store.Insert(t); err != nil {
			return fmt.Errorf("seed %q: %w", t.Name, err)
		}
	}
	return nil
}

// Tasks returns the collection in insertion order.
func (s *Session) Tasks() ([]task.Task, error) {
	return s.store.Fetch()
}

func (s *Session) Get(id int64) (task.Task, error) {
	return s.store.Get(id)
}

func (s *Session) Remove(id int64) error {
	if err := s.store.Delete(id); err != nil {
		return fmt.Errorf("remove task %d: %w", id, err)
	}
	s.log.WithField("task_id", id).Debug("task removed")
	return nil
}

func (s *Session) ToggleCompleted(id int64) (task.Task, error) {
	t, err := s.store.ToggleCompleted(id)
	if err != nil {
		return task.Task{}, fmt.Errorf("toggle task %d: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"task_id": id, "completed": t.Completed}).Debug("task toggled")
	return t, nil
}

// IncrementImportance bumps importance by one, capped at task.MaxImportance.
func (s *Session) IncrementImportance(id int64) (task.Task, error) {
	t, err := s.store.IncrementImportance(id, task.MaxImportance)
	if err != nil {
		return task.Task{}, fmt.Errorf("bump task %d: %w", id, err)
	}
	s.log.WithFields(logrus.Fields{"task_id": id, "importance": t.Importance}).Debug("task importance bumped")
	return t, nil
}

// View returns the collection ordered by key. The stored order is untouched.
func (s *Session) View(key SortKey) ([]task.Task, error) {
	tasks, err := s.store.Fetch()
	if err != nil {
		return nil, err
	}
	return Sort(tasks, key), nil
}

// Draft holds raw form input for a task that has not been created yet.
type Draft struct {
	Name        string
	Description string
	Deadline    string
	Priority    string
	ImagePath   string
}

func (d Draft) HasImage() bool {
	return strings.TrimSpace(d.ImagePath) != ""
}

// Create appends a task built from the draft. A blank name creates nothing
// and is not an error; any other name is stored as typed. imageRef replaces
// the draft's attachment once decoded; empty means the default image.
func (s *Session) Create(d Draft, imageRef string) (task.Task, bool, error) {
	if strings.TrimSpace(d.Name) == "" {
		return task.Task{}, false, nil
	}
	now := s.now()
	t := task.New(s.ids.Next(now), now, d.Name, d.Description, task.ParsePriority(d.Priority),
		task.WithDeadline(task.ParseDeadline(d.Deadline, now)),
		task.WithImage(imageRef))
	if err := s.store.Insert(t); err != nil {
		return task.Task{}, false, fmt.Errorf("create task: %w", err)
	}
	s.log.WithFields(logrus.Fields{"task_id": t.ID, "name": t.Name}).Debug("task created")
	return t, true, nil
}
