package server

import (
	"database/sql"
	"fmt"
	"log"
	"sync/atomic"

	_ "github.com/cznic/ql/driver"
)

// This file implements the history log using the QL embedded database.
// It is used when no MySQL server is configured.

type qlHistory struct {
	db *sql.DB
}

var _ HistoryDB = &qlHistory{}

const qlHistoryInit = `
	CREATE TABLE IF NOT EXISTS history (
		word string,
		letters string,
		size int64,
		status string,
		created time
	);
	CREATE INDEX IF NOT EXISTS historycreated ON history (created);
`

var memCount int64

// NewQlHistory opens a QL database and makes sure the history table exists.
// filename is the name of the file to save the database to. The filename
// "memory" means to keep everything in memory.
func NewQlHistory(filename string) (*qlHistory, error) {
	var db *sql.DB
	var err error
	if filename == "memory" {
		// each memory database is separate
		n := atomic.AddInt64(&memCount, 1)
		db, err = sql.Open("ql-mem", fmt.Sprintf("mem%d.db", n))
	} else {
		db, err = sql.Open("ql", filename)
	}
	if err == nil {
		_, err = performExec(db, qlHistoryInit)
	}
	if err != nil {
		log.Printf("Open QL: %s", err.Error())
		return nil, err
	}
	return &qlHistory{db: db}, nil
}

func (qh *qlHistory) Record(e HistoryEntry) error {
	const query = `INSERT INTO history VALUES (?1, ?2, ?3, ?4, ?5)`

	_, err := performExec(qh.db, query, e.Word, e.Letters, e.Size, e.Status, e.Created)
	return err
}

func (qh *qlHistory) Recent(n int) ([]HistoryEntry, error) {
	query := fmt.Sprintf(`
		SELECT word, letters, size, status, created
		FROM history
		ORDER BY created DESC
		LIMIT %d`, n)

	rows, err := qh.db.Query(query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var result []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		err = rows.Scan(&e.Word, &e.Letters, &e.Size, &e.Status, &e.Created)
		if err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// performExec runs a statement inside a transaction, which QL requires for
// anything that changes the database.
func performExec(db *sql.DB, query string, args ...interface{}) (sql.Result, error) {
	tx, err := db.Begin()
	if err != nil {
		return nil, err
	}
	var result sql.Result
	result, err = tx.Exec(query, args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, err
	}
	err = tx.Commit()
	return result, err
}
