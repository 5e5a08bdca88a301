// Copyright (c) 2024 The Meridian developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package auditdb persists the structured signals the oracle emits: record
// commits, pending transitions, governance changes and pause events. It backs
// the audit query API so operators can reconstruct every state transition.
package auditdb

import (
	"database/sql"
	"encoding/json"
	"time"

	sqlite3 "github.com/mattn/go-sqlite3"
)

// Kind classifies an audit event.
type Kind string

const (
	KindRecordCommitted Kind = "record-committed"
	KindRecordModified  Kind = "record-modified"
	KindPendingEntered  Kind = "pending-entered"
	KindPendingAccepted Kind = "pending-accepted"
	KindPendingRejected Kind = "pending-rejected"
	KindConfigChanged   Kind = "config-changed"
	KindPaused          Kind = "paused"
	KindResumed         Kind = "resumed"
)

// Event is one audit log entry.
type Event struct {
	Seq       uint64          `json:"seq"`
	Timestamp int64           `json:"timestamp"`
	Kind      Kind            `json:"kind"`
	Name      string          `json:"name"`
	Data      json.RawMessage `json:"data"`
}

// OrderType result ordering by sequence number.
type OrderType string

const (
	ASC  OrderType = "ASC"
	DESC OrderType = "DESC"
)

// Filter contains the query options.
type Filter struct {
	Kind   *Kind     `json:"kind"`
	Order  OrderType `json:"order"` // default asc
	Offset uint64    `json:"offset"`
	Limit  uint64    `json:"limit"`
}

const auditTableSchema = `CREATE TABLE IF NOT EXISTS audit (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	ts INTEGER NOT NULL,
	kind TEXT NOT NULL,
	name TEXT NOT NULL,
	data TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS audit_kind_index ON audit(kind);`

// AuditDB manages the audit event log.
type AuditDB struct {
	path          string
	db            *sql.DB
	sqliteVersion string
}

// New opens an audit db at the given path, creating the schema if needed.
func New(path string) (*AuditDB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(auditTableSchema); err != nil {
		return nil, err
	}
	s, _, _ := sqlite3.Version()
	return &AuditDB{
		path:          path,
		db:            db,
		sqliteVersion: s,
	}, nil
}

// NewMem creates a memory-backed audit db.
func NewMem() (*AuditDB, error) {
	return New(":memory:")
}

// Record appends one event. data is JSON-marshaled into the entry.
func (db *AuditDB) Record(kind Kind, name string, data any) error {
	blob, err := json.Marshal(data)
	if err != nil {
		return err
	}
	_, err = db.db.Exec(
		"INSERT INTO audit(ts, kind, name, data) VALUES(?,?,?,?)",
		time.Now().Unix(), string(kind), name, string(blob),
	)
	return err
}

// Query returns events matching the filter.
func (db *AuditDB) Query(filter *Filter) ([]*Event, error) {
	stmt := "SELECT seq, ts, kind, name, data FROM audit"
	var args []any

	if filter != nil && filter.Kind != nil {
		stmt += " WHERE kind = ?"
		args = append(args, string(*filter.Kind))
	}

	order := ASC
	if filter != nil && filter.Order == DESC {
		order = DESC
	}
	stmt += " ORDER BY seq " + string(order)

	if filter != nil && filter.Limit > 0 {
		stmt += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := db.db.Query(stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []*Event
	for rows.Next() {
		var (
			ev   Event
			kind string
			data string
		)
		if err := rows.Scan(&ev.Seq, &ev.Timestamp, &kind, &ev.Name, &data); err != nil {
			return nil, err
		}
		ev.Kind = Kind(kind)
		ev.Data = json.RawMessage(data)
		events = append(events, &ev)
	}
	return events, rows.Err()
}

// Path returns the db file path.
func (db *AuditDB) Path() string {
	return db.path
}

// Close closes the db.
func (db *AuditDB) Close() error {
	return db.db.Close()
}
