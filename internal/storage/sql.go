package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Novip1906/tasks-http/internal/models"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

const (
	dialectPostgres = "postgres"
	dialectSQLite   = "sqlite"
)

var schemas = map[string][]string{
	dialectPostgres: {
		`CREATE TABLE IF NOT EXISTS tasks (
			id BIGSERIAL PRIMARY KEY,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			user_id BIGINT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	},
	dialectSQLite: {
		`CREATE TABLE IF NOT EXISTS tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			title TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			completed BOOLEAN NOT NULL DEFAULT 0,
			user_id INTEGER NOT NULL,
			created_at DATETIME NOT NULL,
			updated_at DATETIME
		)`,
		`CREATE INDEX IF NOT EXISTS tasks_user_id_idx ON tasks (user_id)`,
	},
}

const taskColumns = "id, title, description, completed, user_id, created_at, updated_at"

// SQLStorage stores tasks in postgres or sqlite. Queries are written with
// "?" placeholders and rebound for postgres.
type SQLStorage struct {
	db      *sql.DB
	dialect string
	log     *slog.Logger
	now     func() time.Time
}

func NewPostgresStorage(host, port, user, password, dbname string, log *slog.Logger) (*SQLStorage, error) {
	psqlInfo := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname,
	)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("cannot open db: %w", err)
	}

	return newSQLStorage(db, dialectPostgres, log)
}

// NewSQLiteStorage opens the database file at path; ":memory:" works too.
func NewSQLiteStorage(path string, log *slog.Logger) (*SQLStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("cannot open db: %w", err)
	}
	// sqlite allows one writer, and every connection to ":memory:" is a new database.
	db.SetMaxOpenConns(1)

	return newSQLStorage(db, dialectSQLite, log)
}

func newSQLStorage(db *sql.DB, dialect string, log *slog.Logger) (*SQLStorage, error) {
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot connect to db: %w", err)
	}

	s := &SQLStorage{
		db:      db,
		dialect: dialect,
		log:     log,
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.init(); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot initialize db schema: %w", err)
	}

	log.Info("task storage ready", slog.String("dialect", dialect))
	return s, nil
}

func (s *SQLStorage) init() error {
	for _, stmt := range schemas[s.dialect] {
		if _, err := s.db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLStorage) ListTasks(ctx context.Context, userId int64) ([]*models.Task, error) {
	query := s.rebind("SELECT " + taskColumns + " FROM tasks WHERE user_id = ? ORDER BY id")

	rows, err := s.db.QueryContext(ctx, query, userId)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]*models.Task, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}
	return tasks, nil
}

func (s *SQLStorage) GetTask(ctx context.Context, userId, taskId int64) (*models.Task, error) {
	query := s.rebind("SELECT " + taskColumns + " FROM tasks WHERE id = ? AND user_id = ?")
	return s.queryTask(ctx, query, taskId, userId)
}

func (s *SQLStorage) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	query := s.rebind(`
	INSERT INTO tasks (title, description, completed, user_id, created_at)
	VALUES (?, ?, ?, ?, ?)
	RETURNING ` + taskColumns)

	return s.queryTask(ctx, query, task.Title, task.Description, task.Completed, task.UserId, s.now())
}

func (s *SQLStorage) UpdateTask(ctx context.Context, userId, taskId int64, patch models.TaskPatch) (*models.Task, error) {
	query := s.rebind(`
	UPDATE tasks SET
		title = COALESCE(?, title),
		description = COALESCE(?, description),
		completed = COALESCE(?, completed),
		updated_at = ?
	WHERE id = ? AND user_id = ?
	RETURNING ` + taskColumns)

	return s.queryTask(ctx, query,
		nullable(patch.Title),
		nullable(patch.Description),
		nullable(patch.Completed),
		s.now(),
		taskId,
		userId,
	)
}

func (s *SQLStorage) DeleteTask(ctx context.Context, userId, taskId int64) (*models.Task, error) {
	query := s.rebind("DELETE FROM tasks WHERE id = ? AND user_id = ? RETURNING " + taskColumns)
	return s.queryTask(ctx, query, taskId, userId)
}

func (s *SQLStorage) Close() error {
	return s.db.Close()
}

func (s *SQLStorage) queryTask(ctx context.Context, query string, args ...any) (*models.Task, error) {
	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrTaskNotFound
	}
	if err != nil {
		return nil, err
	}
	return task, nil
}

// rebind turns "?" placeholders into "$1".."$n" for postgres.
func (s *SQLStorage) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}

	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*models.Task, error) {
	var (
		task      models.Task
		updatedAt sql.NullTime
	)
	err := row.Scan(&task.Id, &task.Title, &task.Description, &task.Completed, &task.UserId, &task.CreatedAt, &updatedAt)
	if err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		task.UpdatedAt = &updatedAt.Time
	}
	return &task, nil
}

func nullable[T any](v *T) any {
	if v == nil {
		return nil
	}
	return *v
}
