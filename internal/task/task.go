package task

import (
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	DefaultImage  = "/images/task.png"
	MaxImportance = 5

	dateInputLayout = "2006-01-02"
	displayLayout   = "Jan 2, 2006"
)

type Task struct {
	ID          int64
	Name        string
	Description string
	Importance  int
	Deadline    time.Time
	Completed   bool
	ImageRef    string
}

// Option customizes the optional fields of a new Task.
type Option func(*Task)

func WithDeadline(t time.Time) Option {
	return func(tk *Task) { tk.Deadline = t }
}

func WithImage(ref string) Option {
	return func(tk *Task) { tk.ImageRef = ref }
}

// New builds a task without validating it. A zero deadline becomes now and an
// empty image falls back to DefaultImage.
func New(id int64, now time.Time, name, description string, importance int, opts ...Option) Task {
	t := Task{
		ID:          id,
		Name:        name,
		Description: description,
		Importance:  importance,
	}
	for _, opt := range opts {
		opt(&t)
	}
	if t.Deadline.IsZero() {
		t.Deadline = now
	}
	if t.ImageRef == "" {
		t.ImageRef = DefaultImage
	}
	return t
}

// IDSource hands out creation-timestamp ids that never repeat, even for tasks
// created within the same millisecond.
type IDSource struct {
	mu   sync.Mutex
	last int64
}

func (s *IDSource) Next(now time.Time) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := now.UnixMilli()
	if id <= s.last {
		id = s.last + 1
	}
	s.last = id
	return id
}

type Class string

const (
	ClassLow    Class = "low"
	ClassMedium Class = "medium"
	ClassHigh   Class = "high"
)

func ImportanceClass(importance int) Class {
	switch {
	case importance <= 1:
		return ClassLow
	case importance <= 3:
		return ClassMedium
	default:
		return ClassHigh
	}
}

func FormatDate(t time.Time) string {
	return t.Format(displayLayout)
}

// ParseDeadline reads a YYYY-MM-DD date in local time. Empty or malformed
// input yields now.
func ParseDeadline(v string, now time.Time) time.Time {
	v = strings.TrimSpace(v)
	if v == "" {
		return now
	}
	t, err := time.ParseInLocation(dateInputLayout, v, time.Local)
	if err != nil {
		return now
	}
	return t
}

func ParsePriority(v string) int {
	v = strings.TrimSpace(v)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return n
}

func seedDate(v string) time.Time {
	t, _ := time.ParseInLocation(dateInputLayout, v, time.Local)
	return t
}

// Seed returns the example tasks shown on first launch.
func Seed(ids *IDSource, now time.Time) []Task {
	type row struct {
		name, desc string
		importance int
		due, image string
	}
	rows := []row{
		{"Take Dog for Walk", "Morning walk around the neighborhood park", 3, "2024-01-27", "/images/dog.png"},
		{"Grocery Shopping", "Weekly groceries including fresh produce", 0, "2024-01-28", "/images/grocery.png"},
		{"Team Meeting", "Weekly sprint planning meeting", 1, "2024-01-29", "/images/meeting.png"},
		{"Gym Session", "Cardio and strength training", 5, "2024-01-27", "/images/gym.png"},
		{"Project Deadline", "Complete client presentation", 0, "2024-01-30", DefaultImage},
	}
	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, New(ids.Next(now), now, r.name, r.desc, r.importance,
			WithDeadline(seedDate(r.due)), WithImage(r.image)))
	}
	return tasks
}
