package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrTaskNotFound is returned by GetTask when no row has the requested id.
var ErrTaskNotFound = errors.New("task not found")

const createdLayout = time.RFC3339

// legacyCreatedLayout is what older files hold: UTC without a zone suffix.
const legacyCreatedLayout = "2006-01-02T15:04:05"

const selectColumns = `id, name, description, COALESCE(completed, 0) AS completed, created_at, due_date, priority`

type Task struct {
	ID          int
	Name        string
	Description string
	Completed   bool
	CreatedAt   time.Time
	DueDate     string
	Priority    int
}

type taskRow struct {
	ID          int            `db:"id"`
	Name        string         `db:"name"`
	Description sql.NullString `db:"description"`
	Completed   int            `db:"completed"`
	CreatedAt   sql.NullString `db:"created_at"`
	DueDate     sql.NullString `db:"due_date"`
	Priority    sql.NullString `db:"priority"`
}

type Store struct {
	db  *sqlx.DB
	now func() time.Time
}

func Open(dbPath string) (*Store, error) {
	if dbPath == "" {
		return nil, errors.New("db path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil && !errors.Is(err, os.ErrExist) {
		return nil, err
	}
	db, err := sqlx.Open("sqlite", sqliteDSN(dbPath))
	if err != nil {
		return nil, err
	}
	// One connection: every call runs alone, so a read after a write sees it.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.Init(); err != nil {
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

// Init creates the task table when missing and backfills columns absent from
// files written by older versions. Safe to call on every launch.
func (s *Store) Init() error {
	const ddl = `
CREATE TABLE IF NOT EXISTS todo (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL,
	description TEXT,
	completed INTEGER DEFAULT 0,
	created_at TEXT,
	due_date TEXT,
	priority INTEGER DEFAULT 2
);`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("create table: %w", err)
	}
	return s.ensureTaskColumns()
}

func (s *Store) ensureTaskColumns() error {
	required := map[string]string{
		"description": "ALTER TABLE todo ADD COLUMN description TEXT;",
		"completed":   "ALTER TABLE todo ADD COLUMN completed INTEGER DEFAULT 0;",
		"created_at":  "ALTER TABLE todo ADD COLUMN created_at TEXT;",
		"due_date":    "ALTER TABLE todo ADD COLUMN due_date TEXT;",
		"priority":    "ALTER TABLE todo ADD COLUMN priority INTEGER DEFAULT 2;",
	}
	existing := map[string]struct{}{}
	rows, err := s.db.Query(`PRAGMA table_info(todo);`)
	if err != nil {
		return err
	}
	for rows.Next() {
		var cid int
		var name, ctype string
		var notnull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &ctype, &notnull, &dflt, &pk); err != nil {
			rows.Close()
			return err
		}
		existing[name] = struct{}{}
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return err
	}
	rows.Close()

	for col, alter := range required {
		if _, ok := existing[col]; ok {
			continue
		}
		if _, err := s.db.Exec(alter); err != nil {
			return fmt.Errorf("add column %s: %w", col, err)
		}
	}
	return nil
}

// AddTask inserts a pending task stamped with the current UTC second. It does
// not validate the name or the priority range.
func (s *Store) AddTask(name, description, dueDate string, priority int) error {
	created := s.now().UTC().Truncate(time.Second).Format(createdLayout)
	_, err := s.db.Exec(
		`INSERT INTO todo (name, description, completed, created_at, due_date, priority) VALUES (?, ?, 0, ?, ?, ?);`,
		name, description, created, nullable(dueDate), priority)
	return err
}

// ListTasks returns the tasks whose name or description contains filter,
// sorted by order. An empty filter returns every task.
func (s *Store) ListTasks(filter string, order Order) ([]Task, error) {
	rows, err := s.selectRows(filter, order)
	if err != nil {
		return nil, err
	}
	tasks := make([]Task, 0, len(rows))
	for _, r := range rows {
		tasks = append(tasks, r.task())
	}
	return tasks, nil
}

func (s *Store) selectRows(filter string, order Order) ([]taskRow, error) {
	var rows []taskRow
	if filter == "" {
		q := `SELECT ` + selectColumns + ` FROM todo ORDER BY ` + order.clause() + `;`
		if err := s.db.Select(&rows, q); err != nil {
			return nil, err
		}
		return rows, nil
	}
	like := "%" + escapeLike(filter) + "%"
	q := `SELECT ` + selectColumns + ` FROM todo WHERE name LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\' ORDER BY ` + order.clause() + `;`
	if err := s.db.Select(&rows, q, like, like); err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *Store) GetTask(id int) (Task, error) {
	var r taskRow
	err := s.db.Get(&r, `SELECT `+selectColumns+` FROM todo WHERE id = ?;`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrTaskNotFound
	}
	if err != nil {
		return Task{}, err
	}
	return r.task(), nil
}

// UpdateTask overwrites the editable fields. Unknown ids are ignored.
func (s *Store) UpdateTask(id int, name, description, dueDate string, priority int) error {
	_, err := s.db.Exec(`UPDATE todo SET name = ?, description = ?, due_date = ?, priority = ? WHERE id = ?;`,
		name, description, nullable(dueDate), priority, id)
	return err
}

func (s *Store) DeleteTask(id int) error {
	_, err := s.db.Exec(`DELETE FROM todo WHERE id = ?;`, id)
	return err
}

// ToggleDone flips the completed flag in place.
func (s *Store) ToggleDone(id int) error {
	_, err := s.db.Exec(`UPDATE todo SET completed = CASE WHEN completed = 0 THEN 1 ELSE 0 END WHERE id = ?;`, id)
	return err
}

func (r taskRow) task() Task {
	t := Task{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description.String,
		Completed:   r.Completed != 0,
		DueDate:     r.DueDate.String,
	}
	if r.Priority.Valid {
		// Left at zero when unparseable; the UI treats it as Medium.
		t.Priority, _ = strconv.Atoi(strings.TrimSpace(r.Priority.String))
	}
	if r.CreatedAt.Valid {
		t.CreatedAt = parseCreated(r.CreatedAt.String)
	}
	return t
}

func parseCreated(v string) time.Time {
	if t, err := time.Parse(createdLayout, v); err == nil {
		return t
	}
	if t, err := time.ParseInLocation(legacyCreatedLayout, v, time.UTC); err == nil {
		return t
	}
	return time.Time{}
}

func nullable(v string) sql.NullString {
	if v == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: v, Valid: true}
}

func escapeLike(v string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(v)
}

func sqliteDSN(path string) string {
	if strings.HasPrefix(path, "file:") {
		return path
	}
	abs, err := filepath.Abs(path)
	if err == nil {
		path = abs
	}
	u := url.URL{
		Scheme: "file",
		Path:   path,
	}
	q := u.Query()
	q.Set("mode", "rwc")
	q.Set("_pragma", "busy_timeout(5000)")
	u.RawQuery = q.Encode()
	return u.String()
}
