// Package sqlite provides a cloud.Client persisted in a local SQLite file.
// It is the sandbox collaborator of the CLI: resources survive between
// invocations so idempotence can be observed from the command line.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/alexisbeaulieu97/otctasks/internal/cloud"
	apperrors "github.com/alexisbeaulieu97/otctasks/pkg/errors"
)

// Client is a cloud.Client backed by SQLite.
type Client struct {
	db       *sql.DB
	mu       sync.Mutex
	path     string
	async    map[cloud.Kind]bool
	jobPolls int
	newID    func() string
}

var _ cloud.Client = (*Client)(nil)

// Option configures a Client.
type Option func(*Client)

// WithAsyncKinds makes creates and deletes of the given kinds return jobs.
func WithAsyncKinds(kinds ...cloud.Kind) Option {
	return func(c *Client) {
		for _, kind := range kinds {
			c.async[kind] = true
		}
	}
}

// WithJobPolls sets how many JobStatus calls a job reports running before it
// completes.
func WithJobPolls(n int) Option {
	return func(c *Client) {
		c.jobPolls = n
	}
}

// DefaultAsyncKinds are the kinds whose mutations the provider runs as jobs.
var DefaultAsyncKinds = []cloud.Kind{cloud.KindRDSInstance}

// Open opens or creates the database at path.
func Open(path string, opts ...Option) (*Client, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	c := &Client{
		db:    db,
		path:  path,
		async: make(map[cloud.Kind]bool),
		newID: func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

func (c *Client) initialize() error {
	resourcesTable := `
	CREATE TABLE IF NOT EXISTS resources (
		kind TEXT NOT NULL,
		id TEXT NOT NULL,
		name TEXT NOT NULL DEFAULT '',
		attrs TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (kind, id)
	);
	CREATE INDEX IF NOT EXISTS idx_resources_name ON resources(kind, name);
	`

	jobsTable := `
	CREATE TABLE IF NOT EXISTS jobs (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		polls_left INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	`

	for _, table := range []string{resourcesTable, jobsTable} {
		if _, err := c.db.Exec(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// Path returns the database file.
func (c *Client) Path() string {
	return c.path
}

// Close closes the database connection.
func (c *Client) Close() error {
	return c.db.Close()
}

// List implements cloud.Client. Filters are matched on the decoded records.
func (c *Client) List(ctx context.Context, kind cloud.Kind, filters cloud.Filters) ([]cloud.Record, error) {
	records, err := c.all(ctx, kind)
	if err != nil {
		return nil, err
	}
	out := make([]cloud.Record, 0, len(records))
	for _, rec := range records {
		if rec.Satisfies(filters) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Find implements cloud.Client. An id match wins over a name match.
func (c *Client) Find(ctx context.Context, kind cloud.Kind, nameOrID string, scope cloud.Filters) (cloud.Record, bool, error) {
	if nameOrID == "" {
		return nil, false, nil
	}
	rows, err := c.db.QueryContext(ctx,
		`SELECT attrs FROM resources WHERE kind = ? AND (id = ? OR name = ?) ORDER BY CASE WHEN id = ? THEN 0 ELSE 1 END, rowid`,
		string(kind), nameOrID, nameOrID, nameOrID)
	if err != nil {
		return nil, false, fmt.Errorf("find %s %s: %w", kind, nameOrID, err)
	}
	records, err := scanRecords(rows)
	if err != nil {
		return nil, false, err
	}
	for _, rec := range records {
		if rec.Satisfies(scope) {
			return rec, true, nil
		}
	}
	return nil, false, nil
}

// Create implements cloud.Client.
func (c *Client) Create(ctx context.Context, kind cloud.Kind, attrs map[string]any) (cloud.Record, error) {
	rec := cloud.Record(attrs).Clone()
	if rec == nil {
		rec = cloud.Record{}
	}
	if rec.ID() == "" {
		rec["id"] = c.newID()
	}

	err := c.inTx(ctx, func(tx *sql.Tx) error {
		if err := c.insert(ctx, tx, kind, rec); err != nil {
			return err
		}
		if !c.async[kind] {
			return nil
		}
		jobID, err := c.startJob(ctx, tx)
		if err != nil {
			return err
		}
		rec["job_id"] = jobID
		return nil
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// Update implements cloud.Client.
func (c *Client) Update(ctx context.Context, kind cloud.Kind, id string, attrs map[string]any) (cloud.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec, err := c.byID(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	for k, v := range cloud.Record(attrs).Clone() {
		if k == "id" {
			continue
		}
		rec[k] = v
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode %s %s: %w", kind, id, err)
	}
	_, err = c.db.ExecContext(ctx,
		`UPDATE resources SET name = ?, attrs = ?, updated_at = CURRENT_TIMESTAMP WHERE kind = ? AND id = ?`,
		rec.Name(), string(data), string(kind), id)
	if err != nil {
		return nil, fmt.Errorf("update %s %s: %w", kind, id, err)
	}
	return rec, nil
}

// Delete implements cloud.Client.
func (c *Client) Delete(ctx context.Context, kind cloud.Kind, id string) (cloud.Job, error) {
	var job cloud.Job
	err := c.inTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, `DELETE FROM resources WHERE kind = ? AND id = ?`, string(kind), id)
		if err != nil {
			return fmt.Errorf("delete %s %s: %w", kind, id, err)
		}
		if n, err := res.RowsAffected(); err == nil && n == 0 {
			return fmt.Errorf("%s %s: resource not found", kind, id)
		}
		if !c.async[kind] {
			return nil
		}
		job.ID, err = c.startJob(ctx, tx)
		return err
	})
	if err != nil {
		return cloud.Job{}, err
	}
	return job, nil
}

// JobStatus implements cloud.Client. Each call counts down the job's
// remaining running polls.
func (c *Client) JobStatus(ctx context.Context, jobID string) (cloud.JobState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var state string
	var pollsLeft int
	err := c.db.QueryRowContext(ctx, `SELECT state, polls_left FROM jobs WHERE id = ?`, jobID).Scan(&state, &pollsLeft)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("job %s: not found", jobID)
	}
	if err != nil {
		return "", fmt.Errorf("job %s: %w", jobID, err)
	}

	if pollsLeft > 0 {
		if _, err := c.db.ExecContext(ctx, `UPDATE jobs SET polls_left = polls_left - 1 WHERE id = ?`, jobID); err != nil {
			return "", fmt.Errorf("job %s: %w", jobID, err)
		}
		return cloud.JobRunning, nil
	}
	if cloud.JobState(state) == cloud.JobRunning {
		if _, err := c.db.ExecContext(ctx, `UPDATE jobs SET state = ? WHERE id = ?`, string(cloud.JobCompleted), jobID); err != nil {
			return "", fmt.Errorf("job %s: %w", jobID, err)
		}
		return cloud.JobCompleted, nil
	}
	return cloud.JobState(state), nil
}

// Seed stores records as they are. Records without an id get one.
func (c *Client) Seed(ctx context.Context, kind cloud.Kind, records ...cloud.Record) error {
	for _, rec := range records {
		stored := rec.Clone()
		if stored.ID() == "" {
			stored["id"] = c.newID()
		}
		if err := c.insert(ctx, c.db, kind, stored); err != nil {
			return err
		}
	}
	return nil
}

// Fixture maps kinds to the records seeded for them.
type Fixture map[cloud.Kind][]cloud.Record

// LoadFixture reads a YAML fixture such as
//
//	network.router:
//	  - name: main
//	dns.zone:
//	  - name: example.com.
//	    ttl: 300
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.NewParseError(path, 0, err)
	}

	var raw map[string][]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, apperrors.NewParseError(path, 0, err)
	}

	fixture := make(Fixture, len(raw))
	for name, records := range raw {
		kind := cloud.Kind(name)
		if !kind.Valid() {
			return nil, apperrors.NewValidationError(name, fmt.Sprintf("unknown resource kind (known: %s)", knownKinds()), nil)
		}
		for _, rec := range records {
			fixture[kind] = append(fixture[kind], cloud.Record(rec))
		}
	}
	return fixture, nil
}

// SeedFixture seeds every record of fixture and returns how many were stored.
func (c *Client) SeedFixture(ctx context.Context, fixture Fixture) (int, error) {
	kinds := make([]string, 0, len(fixture))
	for kind := range fixture {
		kinds = append(kinds, string(kind))
	}
	sort.Strings(kinds)

	count := 0
	for _, name := range kinds {
		kind := cloud.Kind(name)
		if err := c.Seed(ctx, kind, fixture[kind]...); err != nil {
			return count, err
		}
		count += len(fixture[kind])
	}
	return count, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// inTx runs fn in a transaction committed only when fn succeeds, so a
// mutation and the job tracking it are stored together or not at all.
func (c *Client) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

func (c *Client) insert(ctx context.Context, db execer, kind cloud.Kind, rec cloud.Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode %s: %w", kind, err)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO resources (kind, id, name, attrs) VALUES (?, ?, ?, ?)`,
		string(kind), rec.ID(), rec.Name(), string(data))
	if err != nil {
		return fmt.Errorf("insert %s %s: %w", kind, rec.ID(), err)
	}
	return nil
}

func (c *Client) all(ctx context.Context, kind cloud.Kind) ([]cloud.Record, error) {
	rows, err := c.db.QueryContext(ctx, `SELECT attrs FROM resources WHERE kind = ? ORDER BY name, rowid`, string(kind))
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", kind, err)
	}
	return scanRecords(rows)
}

func (c *Client) byID(ctx context.Context, kind cloud.Kind, id string) (cloud.Record, error) {
	var data string
	err := c.db.QueryRowContext(ctx, `SELECT attrs FROM resources WHERE kind = ? AND id = ?`, string(kind), id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s %s: resource not found", kind, id)
	}
	if err != nil {
		return nil, fmt.Errorf("find %s %s: %w", kind, id, err)
	}
	return decode(data)
}

func (c *Client) startJob(ctx context.Context, db execer) (string, error) {
	id := c.newID()
	_, err := db.ExecContext(ctx,
		`INSERT INTO jobs (id, state, polls_left) VALUES (?, ?, ?)`,
		id, string(cloud.JobRunning), c.jobPolls)
	if err != nil {
		return "", fmt.Errorf("start job: %w", err)
	}
	return id, nil
}

func scanRecords(rows *sql.Rows) ([]cloud.Record, error) {
	defer rows.Close()

	var out []cloud.Record
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec, err := decode(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func decode(data string) (cloud.Record, error) {
	dec := json.NewDecoder(strings.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("decode record: %w", err)
	}
	rec, _ := numbers(raw).(map[string]any)
	return cloud.Record(rec), nil
}

// numbers turns json.Number values into int64 when integral and float64
// otherwise.
func numbers(v any) any {
	switch typed := v.(type) {
	case json.Number:
		if i, err := typed.Int64(); err == nil {
			return i
		}
		f, _ := typed.Float64()
		return f
	case map[string]any:
		for k, inner := range typed {
			typed[k] = numbers(inner)
		}
		return typed
	case []any:
		for i, inner := range typed {
			typed[i] = numbers(inner)
		}
		return typed
	default:
		return v
	}
}

func knownKinds() string {
	kinds := cloud.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
