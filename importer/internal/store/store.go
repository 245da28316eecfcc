// Package store provides the SQLite persistence layer for imported MCQs.
package store

import (
	"database/sql"
	"errors"

	"github.com/hazyhaar/quizdoc/dbopen"
)

// ErrNotFound is returned when a batch or record does not exist.
var ErrNotFound = errors.New("store: not found")

// Store is the quizdoc database handle.
type Store struct {
	DB *sql.DB
}

// Open opens (or creates) the SQLite database at path and applies the schema.
func Open(path string, opts ...dbopen.Option) (*Store, error) {
	allOpts := append([]dbopen.Option{
		dbopen.WithMkdirAll(),
		dbopen.WithSchema(Schema),
	}, opts...)

	db, err := dbopen.Open(path, allOpts...)
	if err != nil {
		return nil, err
	}
	return &Store{DB: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.DB.Close()
}
