package server

import (
	"log"

	"github.com/BurntSushi/migration"
)

// dbVersion tells the migration package how to read and write the schema
// version of a history database. The package's own version table does not
// work with MySQL, so each database supplies its SQL here.
type dbVersion struct {
	// returns one row and one column, the current version
	GetSQL string
	// takes one parameter, the new version
	SetSQL string
	// creates the version table
	CreateSQL string
}

// Get returns the schema version. A database without a version table is at
// version 0.
func (d dbVersion) Get(tx migration.LimitedTx) (int, error) {
	var version int
	err := tx.QueryRow(d.GetSQL).Scan(&version)
	if err != nil {
		log.Println("History schema version:", err)
		return 0, nil
	}
	return version, nil
}

// Set records version as the schema version, creating the version table
// the first time.
func (d dbVersion) Set(tx migration.LimitedTx, version int) error {
	_, err := tx.Exec(d.SetSQL, version)
	if err == nil {
		return nil
	}
	if _, err = tx.Exec(d.CreateSQL); err != nil {
		return err
	}
	_, err = tx.Exec(d.SetSQL, version)
	return err
}
