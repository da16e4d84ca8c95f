package store

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/dgraph-io/badger/v4"
)

// Badger implements KV on top of an embedded BadgerDB instance.
type Badger struct {
	db *badger.DB
}

// Open opens (or creates) a badger-backed store rooted at dir.
func Open(dir string) (*Badger, error) {
	opts := badger.DefaultOptions(dir).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open store at %s: %w", dir, err)
	}
	return &Badger{db: db}, nil
}

// OpenInMemory opens an ephemeral store that is lost on Close. Used by
// tests and the --ephemeral server mode.
func OpenInMemory() (*Badger, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	return &Badger{db: db}, nil
}

// Load reads the JSON value stored under key into v, which must be a
// non-nil pointer. Missing and corrupt values both read as "nothing
// stored": v is left untouched and no error is returned.
func (s *Badger) Load(key string, v any) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return fmt.Errorf("load %s: destination must be a non-nil pointer", key)
	}

	var data []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil
	}

	// Decode into a fresh value so a half-parsed corrupt payload never
	// leaks into the destination.
	fresh := reflect.New(rv.Elem().Type())
	if err := json.Unmarshal(data, fresh.Interface()); err != nil {
		return nil
	}
	rv.Elem().Set(fresh.Elem())
	return nil
}

// Save serializes v as JSON and writes it under key.
func (s *Badger) Save(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
	if err != nil {
		return fmt.Errorf("failed to save %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *Badger) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}
