package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"taskcards/internal/task"
)

var ErrNotFound = errors.New("task not found")

// Store keeps the session's tasks in a private in-memory SQLite database.
// Nothing outlives Close.
type Store struct {
	db *sql.DB
}

func Open() (*Store, error) {
	db, err := sql.Open("sqlite", memoryDSN(uuid.NewString()))
	if err != nil {
		return nil, err
	}
	// The in-memory database lives only as long as its connection.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	s := &Store{db: db}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS tasks (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id INTEGER NOT NULL UNIQUE,
	name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	importance INTEGER NOT NULL DEFAULT 0,
	deadline TEXT NOT NULL,
	completed INTEGER NOT NULL DEFAULT 0,
	image_ref TEXT NOT NULL
);`
	_, err := s.db.Exec(ddl)
	return err
}

const selectColumns = `SELECT id, name, description, importance, deadline, completed, image_ref FROM tasks`

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (task.Task, error) {
	var t task.Task
	var completed int
	var deadline string
	if err := row.Scan(&t.ID, &t.Name, &t.Description, &t.Importance, &deadline, &completed, &t.ImageRef); err != nil {
		return task.Task{}, err
	}
	t.Completed = completed == 1
	parsed, err := time.Parse(time.RFC3339Nano, deadline)
	if err != nil {
		return task.Task{}, fmt.Errorf("task %d deadline: %w", t.ID, err)
	}
	t.Deadline = parsed.Local()
	return t, nil
}

// Fetch returns every task in insertion order.
func (s *Store) Fetch() ([]task.Task, error) {
	rows, err := s.db.Query(selectColumns + ` ORDER BY seq;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []task.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *Store) Get(id int64) (task.Task, error) {
	t, err := scanTask(s.db.QueryRow(selectColumns+` WHERE id = ?;`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return task.Task{}, ErrNotFound
	}
	return t, err
}

func (s *Store) Insert(t task.Task) error {
	_, err := s.db.Exec(`INSERT INTO tasks (id, name, description, importance, deadline, completed, image_ref) VALUES (?, ?, ?, ?, ?, ?, ?);`,
		t.ID, t.Name, t.Description, t.Importance, t.Deadline.UTC().Format(time.RFC3339Nano), boolToInt(t.Completed), t.ImageRef)
	return err
}

func (s *Store) Delete(id int64) error {
	res, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?;`, id)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *Store) ToggleCompleted(id int64) (task.Task, error) {
	res, err := s.db.Exec(`UPDATE tasks SET completed = 1 - completed WHERE id = ?;`, id)
	if err != nil {
		return task.Task{}, err
	}
	if err := expectRow(res); err != nil {
		return task.Task{}, err
	}
	return s.Get(id)
}

// IncrementImportance raises importance by one unless it is already at ceiling.
func (s *Store) IncrementImportance(id int64, ceiling int) (task.Task, error) {
	if _, err := s.Get(id); err != nil {
		return task.Task{}, err
	}
	if _, err := s.db.Exec(`UPDATE tasks SET importance = importance + 1 WHERE id = ? AND importance < ?;`, id, ceiling); err != nil {
		return task.Task{}, err
	}
	return s.Get(id)
}

func expectRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func memoryDSN(name string) string {
	u := url.URL{
		Scheme: "file",
		Opaque: name,
	}
	q := u.Query()
	q.Set("mode", "memory")
	q.Set("cache", "private")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
