// Package docstore provides a generic document store on top of SQLite.
// Records are JSON documents grouped into named collections and queried by
// field-equality filters, which keeps the managers above it independent of
// the storage engine.
package docstore

import (
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/lovedhomes/lovedhomes/internal/oid"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Doc is one stored document. The store injects the record id under the
// "id" key when reading; Insert strips it when writing.
type Doc map[string]any

// Filter selects documents by field equality. The key "_id" targets the
// record id; a nil value matches documents where the field is JSON null
// or absent.
type Filter map[string]any

// Store is a handle to one SQLite-backed document database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens (or creates) the database at the given path and runs
// migrations. Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// An in-memory database exists per connection; keep the pool at one so
	// migrations and queries see the same database.
	if strings.Contains(path, ":memory:") {
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

func runMigrations(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping reports whether the database is reachable.
func (s *Store) Ping() error {
	return s.db.Ping()
}

// Path returns the database path the store was opened with.
func (s *Store) Path() string {
	return s.path
}

// whereClause renders a filter as SQL. Keys are sorted so generated SQL is
// stable. Returns the clause (without the leading WHERE) and bind args.
func whereClause(filter Filter) (string, []any) {
	conds := []string{"collection = ?"}
	args := []any{}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		v := filter[k]
		if k == "_id" {
			conds = append(conds, "id = ?")
			args = append(args, v)
			continue
		}
		if v == nil {
			conds = append(conds, fmt.Sprintf("json_extract(doc, '$.%s') IS NULL", k))
			continue
		}
		conds = append(conds, fmt.Sprintf("json_extract(doc, '$.%s') = ?", k))
		args = append(args, bindValue(v))
	}
	return strings.Join(conds, " AND "), args
}

// bindValue converts filter values to their json_extract representation.
// SQLite surfaces JSON booleans as 0/1 integers.
func bindValue(v any) any {
	if b, ok := v.(bool); ok {
		if b {
			return 1
		}
		return 0
	}
	return v
}

// Insert stores a new document in the collection and returns its id. Any
// "id" key in the document is discarded; the store assigns identifiers.
func (s *Store) Insert(collection string, doc Doc) (string, error) {
	body := make(Doc, len(doc))
	for k, v := range doc {
		if k == "id" {
			continue
		}
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("marshal doc: %w", err)
	}

	id := oid.New().Hex()
	_, err = s.db.Exec(
		`INSERT INTO documents (collection, id, doc) VALUES (?, ?, ?)`,
		collection, id, string(data),
	)
	if err != nil {
		return "", fmt.Errorf("insert %s: %w", collection, err)
	}
	return id, nil
}

// Find returns all documents matching the filter. If orderBy names a field,
// results are sorted by it ascending (SQLite binary collation, so text sorts
// byte-wise). Otherwise rows come back in store-native order.
func (s *Store) Find(collection string, filter Filter, orderBy string) ([]Doc, error) {
	where, args := whereClause(filter)
	query := `SELECT id, doc FROM documents WHERE ` + where
	if orderBy != "" {
		query += fmt.Sprintf(" ORDER BY json_extract(doc, '$.%s') ASC", orderBy)
	}

	rows, err := s.db.Query(query, append([]any{collection}, args...)...)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer rows.Close()

	var docs []Doc
	for rows.Next() {
		var id, raw string
		if err := rows.Scan(&id, &raw); err != nil {
			return nil, fmt.Errorf("scan %s: %w", collection, err)
		}
		doc, err := decodeDoc(id, raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

// FindOne returns one matching document, or nil if none match.
func (s *Store) FindOne(collection string, filter Filter) (Doc, error) {
	where, args := whereClause(filter)
	row := s.db.QueryRow(
		`SELECT id, doc FROM documents WHERE `+where+` LIMIT 1`,
		append([]any{collection}, args...)...,
	)

	var id, raw string
	err := row.Scan(&id, &raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find one %s: %w", collection, err)
	}
	return decodeDoc(id, raw)
}

// UpdateOne merges set into the first document matching the filter and
// reports whether a document matched.
func (s *Store) UpdateOne(collection string, filter Filter, set Doc) (bool, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return false, fmt.Errorf("begin update %s: %w", collection, err)
	}
	defer tx.Rollback()

	where, args := whereClause(filter)
	row := tx.QueryRow(
		`SELECT id, doc FROM documents WHERE `+where+` LIMIT 1`,
		append([]any{collection}, args...)...,
	)

	var id, raw string
	err = row.Scan(&id, &raw)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read for update %s: %w", collection, err)
	}

	var body Doc
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", collection, id, err)
	}
	for k, v := range set {
		if k == "id" {
			continue
		}
		body[k] = v
	}

	data, err := json.Marshal(body)
	if err != nil {
		return false, fmt.Errorf("marshal doc: %w", err)
	}

	if _, err := tx.Exec(
		`UPDATE documents SET doc = ? WHERE collection = ? AND id = ?`,
		string(data), collection, id,
	); err != nil {
		return false, fmt.Errorf("update %s: %w", collection, err)
	}
	return true, tx.Commit()
}

// DeleteOne removes documents matching the filter. Deleting a document that
// does not exist is not an error.
func (s *Store) DeleteOne(collection string, filter Filter) error {
	where, args := whereClause(filter)
	_, err := s.db.Exec(
		`DELETE FROM documents WHERE `+where,
		append([]any{collection}, args...)...,
	)
	if err != nil {
		return fmt.Errorf("delete %s: %w", collection, err)
	}
	return nil
}

// DeleteMany removes all documents matching the filter and returns how many
// were removed.
func (s *Store) DeleteMany(collection string, filter Filter) (int64, error) {
	where, args := whereClause(filter)
	result, err := s.db.Exec(
		`DELETE FROM documents WHERE `+where,
		append([]any{collection}, args...)...,
	)
	if err != nil {
		return 0, fmt.Errorf("delete many %s: %w", collection, err)
	}
	count, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// Count returns the number of documents matching the filter.
func (s *Store) Count(collection string, filter Filter) (int64, error) {
	where, args := whereClause(filter)
	row := s.db.QueryRow(
		`SELECT COUNT(*) FROM documents WHERE `+where,
		append([]any{collection}, args...)...,
	)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Collections lists the distinct collection names that hold documents.
func (s *Store) Collections() ([]string, error) {
	rows, err := s.db.Query(`SELECT DISTINCT collection FROM documents ORDER BY collection`)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

func decodeDoc(id, raw string) (Doc, error) {
	var doc Doc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode doc %s: %w", id, err)
	}
	doc["id"] = id
	return doc, nil
}
