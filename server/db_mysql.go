package server

import (
	"database/sql"
	"log"

	"github.com/BurntSushi/migration"
	"github.com/go-sql-driver/mysql"
)

// This file implements the history log using MySQL as a storage medium.

type mysqlHistory struct {
	db *sql.DB
}

var _ HistoryDB = &mysqlHistory{}

// List of migrations to perform. Add new ones to the end.
// DO NOT change the order of items already in this list.
var mysqlMigrations = []migration.Migrator{
	mysqlschema1,
	mysqlschema2,
}

// Adapt the schema versioning for MySQL

var mysqlVersioning = dbVersion{
	GetSQL:    `SELECT max(version) FROM migration_version`,
	SetSQL:    `INSERT INTO migration_version (version, applied) VALUES (?, now())`,
	CreateSQL: `CREATE TABLE migration_version (version INTEGER, applied datetime)`,
}

// NewMysqlHistory connects to a MySQL database, migrating the schema if
// needed. The dial string is in the form used by the mysql driver, e.g.
// "user:password@tcp(localhost:3306)/dbname".
func NewMysqlHistory(dial string) (*mysqlHistory, error) {
	conf, err := mysql.ParseDSN(dial)
	if err != nil {
		log.Printf("Open Mysql: %s", err.Error())
		return nil, err
	}
	// scan datetime columns into time.Time
	conf.ParseTime = true
	db, err := migration.OpenWith(
		"mysql",
		conf.FormatDSN(),
		mysqlMigrations,
		mysqlVersioning.Get,
		mysqlVersioning.Set)
	if err != nil {
		log.Printf("Open Mysql: %s", err.Error())
		return nil, err
	}
	return &mysqlHistory{db: db}, nil
}

func (mh *mysqlHistory) Record(e HistoryEntry) error {
	const query = `INSERT INTO history (word, letters, size, status, created) VALUES (?,?,?,?,?)`

	_, err := mh.db.Exec(query, e.Word, e.Letters, e.Size, e.Status, e.Created)
	return err
}

func (mh *mysqlHistory) Recent(n int) ([]HistoryEntry, error) {
	const query = `
		SELECT word, letters, size, status, created
		FROM history
		ORDER BY created DESC, id DESC
		LIMIT ?`

	rows, err := mh.db.Query(query, n)
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

// database migrations. each one is a go function. Add them to the
// list mysqlMigrations at top of this file for them to be run.

func mysqlschema1(tx migration.LimitedTx) error {
	var s = []string{
		`CREATE TABLE IF NOT EXISTS history (
		id int PRIMARY KEY AUTO_INCREMENT,
		word varchar(32),
		letters varchar(32),
		size bigint,
		status varchar(32),
		created datetime)`,
	}
	return execlist(tx, s)
}

func mysqlschema2(tx migration.LimitedTx) error {
	var s = []string{
		`ALTER TABLE history ADD INDEX history_created (created)`,
	}
	return execlist(tx, s)
}

// execlist exec's each item in the list, return if there is an error.
// Used to work around mysql driver not handling compound exec statements.
func execlist(tx migration.LimitedTx, stms []string) error {
	var err error
	for _, s := range stms {
		_, err = tx.Exec(s)
		if err != nil {
			break
		}
	}
	return err
}
