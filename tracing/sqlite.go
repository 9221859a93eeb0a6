package tracing

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/rs/xid"
	"github.com/tebeka/atexit"
)

// SQLiteTracer writes finished tasks to a SQLite database. Tasks are written
// in batches; the pending batch is also written when the program exits
// through atexit.
type SQLiteTracer struct {
	*sql.DB

	lock      sync.Mutex
	statement *sql.Stmt
	filter    TaskFilter

	dbName           string
	tasksToWriteToDB []Task
	batchSize        int
}

// NewSQLiteTracer creates a SQLiteTracer. If path is empty a unique database
// name is generated when Init is called.
func NewSQLiteTracer(path string) *SQLiteTracer {
	t := &SQLiteTracer{
		dbName:    path,
		batchSize: 10000,
		filter:    AllTasks,
	}

	atexit.Register(func() {
		if err := t.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to flush trace: %v\n", err)
		}
	})

	return t
}

// WithBatchSize sets how many tasks are collected before they are written.
func (t *SQLiteTracer) WithBatchSize(n int) *SQLiteTracer {
	if n < 1 {
		n = 1
	}

	t.batchSize = n

	return t
}

// WithFilter sets which tasks are recorded.
func (t *SQLiteTracer) WithFilter(filter TaskFilter) *SQLiteTracer {
	t.filter = filter
	return t
}

// Name returns the file name of the database.
func (t *SQLiteTracer) Name() string {
	return t.dbName
}

// Init creates the database file and its tables.
func (t *SQLiteTracer) Init() error {
	if t.dbName == "" {
		t.dbName = "eeprom_trace_" + xid.New().String()
	}

	if filepath.Ext(t.dbName) == "" {
		t.dbName += ".sqlite3"
	}

	if _, err := os.Stat(t.dbName); err == nil {
		return fmt.Errorf("file %s already exists", t.dbName)
	}

	db, err := sql.Open("sqlite3", t.dbName)
	if err != nil {
		return err
	}
	t.DB = db

	if err := t.createTable(); err != nil {
		return err
	}

	return t.prepareStatement()
}

func (t *SQLiteTracer) createTable() error {
	stmts := []string{
		`create table trace
		(
			task_id    varchar(200) not null primary key,
			kind       varchar(100) not null,
			what       varchar(100) not null,
			location   varchar(100) not null,
			address    integer      not null,
			byte_size  integer      not null,
			start_time integer      not null,
			end_time   integer      not null,
			error      text         not null default ''
		);`,
		`create index trace_what_index on trace (what);`,
		`create index trace_location_index on trace (location);`,
		`create index trace_start_time_index on trace (start_time);`,
	}

	for _, s := range stmts {
		if _, err := t.Exec(s); err != nil {
			return fmt.Errorf("failed to execute %q: %w", s, err)
		}
	}

	return nil
}

func (t *SQLiteTracer) prepareStatement() error {
	sqlStr := `INSERT INTO trace VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`

	stmt, err := t.Prepare(sqlStr)
	if err != nil {
		return err
	}

	t.statement = stmt

	return nil
}

// StartTask does nothing. Tasks are written when they end.
func (t *SQLiteTracer) StartTask(_ Task) {
	// Do nothing
}

// EndTask queues a finished task for writing.
func (t *SQLiteTracer) EndTask(task Task) {
	if !t.filter(task) {
		return
	}

	t.lock.Lock()
	t.tasksToWriteToDB = append(t.tasksToWriteToDB, task)
	full := len(t.tasksToWriteToDB) >= t.batchSize
	t.lock.Unlock()

	if full {
		if err := t.Flush(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to write trace: %v\n", err)
		}
	}
}

// Flush writes all the queued tasks to the database.
func (t *SQLiteTracer) Flush() error {
	t.lock.Lock()
	defer t.lock.Unlock()

	if len(t.tasksToWriteToDB) == 0 || t.DB == nil {
		return nil
	}

	tx, err := t.Begin()
	if err != nil {
		return err
	}

	stmt := tx.Stmt(t.statement)
	for _, task := range t.tasksToWriteToDB {
		_, err := stmt.Exec(
			task.ID,
			task.Kind,
			task.What,
			task.Where,
			task.Address,
			task.ByteSize,
			task.StartTime.UnixNano(),
			task.EndTime.UnixNano(),
			task.Error,
		)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to insert task %s: %w", task.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}

	t.tasksToWriteToDB = nil

	return nil
}

// Close writes the queued tasks and closes the database.
func (t *SQLiteTracer) Close() error {
	if err := t.Flush(); err != nil {
		return err
	}

	if t.DB == nil {
		return nil
	}

	return t.DB.Close()
}

// TaskQuery selects tasks from a trace database. Empty fields match
// everything.
type TaskQuery struct {
	ID         string
	Where      string
	What       string
	FailedOnly bool

	// Only tasks that overlap [StartTime, EndTime] are returned if
	// EnableTimeRange is set.
	EnableTimeRange bool
	StartTime       time.Time
	EndTime         time.Time
}

// SQLiteTraceReader reads tasks back from a trace database.
type SQLiteTraceReader struct {
	*sql.DB

	filename string
}

// NewSQLiteTraceReader creates a new SQLiteTraceReader.
func NewSQLiteTraceReader(filename string) *SQLiteTraceReader {
	return &SQLiteTraceReader{filename: filename}
}

// Init establishes a connection to the database.
func (r *SQLiteTraceReader) Init() error {
	if _, err := os.Stat(r.filename); err != nil {
		return err
	}

	db, err := sql.Open("sqlite3", r.filename)
	if err != nil {
		return err
	}

	r.DB = db

	return nil
}

// ListLocations returns the names of the controllers found in the trace.
func (r *SQLiteTraceReader) ListLocations() ([]string, error) {
	rows, err := r.Query(
		"SELECT DISTINCT location FROM trace ORDER BY location")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var locations []string
	for rows.Next() {
		var location string
		if err := rows.Scan(&location); err != nil {
			return nil, err
		}

		locations = append(locations, location)
	}

	return locations, rows.Err()
}

// ListTasks returns the tasks selected by the query, ordered by start time.
func (r *SQLiteTraceReader) ListTasks(query TaskQuery) ([]Task, error) {
	sqlStr, args := prepareTaskQuery(query)

	rows, err := r.Query(sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []Task{}
	for rows.Next() {
		var (
			task       Task
			start, end int64
		)

		err := rows.Scan(
			&task.ID,
			&task.Kind,
			&task.What,
			&task.Where,
			&task.Address,
			&task.ByteSize,
			&start,
			&end,
			&task.Error,
		)
		if err != nil {
			return nil, err
		}

		task.StartTime = time.Unix(0, start)
		task.EndTime = time.Unix(0, end)
		tasks = append(tasks, task)
	}

	return tasks, rows.Err()
}

func prepareTaskQuery(query TaskQuery) (string, []any) {
	var (
		conditions []string
		args       []any
	)

	if query.ID != "" {
		conditions = append(conditions, "task_id = ?")
		args = append(args, query.ID)
	}

	if query.Where != "" {
		conditions = append(conditions, "location = ?")
		args = append(args, query.Where)
	}

	if query.What != "" {
		conditions = append(conditions, "what = ?")
		args = append(args, query.What)
	}

	if query.FailedOnly {
		conditions = append(conditions, "error != ''")
	}

	if query.EnableTimeRange {
		conditions = append(conditions, "end_time >= ?", "start_time <= ?")
		args = append(args,
			query.StartTime.UnixNano(), query.EndTime.UnixNano())
	}

	sqlStr := `
		SELECT task_id, kind, what, location, address, byte_size,
			start_time, end_time, error
		FROM trace`

	if len(conditions) > 0 {
		sqlStr += " WHERE " + strings.Join(conditions, " AND ")
	}

	sqlStr += " ORDER BY start_time, task_id"

	return sqlStr, args
}
