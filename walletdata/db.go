package walletdata

import (
	"errors"
	"fmt"
	"time"

	"github.com/asdine/storm"
	bolt "go.etcd.io/bbolt"
)

// DB is a storm-backed database for storing a wallet's settings, encrypted
// secrets and indexed transactions.
type DB struct {
	db *storm.DB
}

// Ensure DB implements SettingsDB and SecretsDB.
var _ SettingsDB = (*DB)(nil)
var _ SecretsDB = (*DB)(nil)

// Initialize creates or open a database at the specified path.
func Initialize(dbPath string) (*DB, error) {
	db, err := storm.Open(dbPath, storm.BoltOptions(0600, &bolt.Options{Timeout: 3 * time.Second}))
	if err != nil {
		switch err {
		case bolt.ErrTimeout: // storm failed to acquire a lock on the db file
			return nil, fmt.Errorf("database is in use by another process")
		default:
			return nil, fmt.Errorf("open db error: %w", err)
		}
	}

	return &DB{db: db}, nil
}

// Close closes the underlying database file.
func (db *DB) Close() error {
	return db.db.Close()
}

// drop deletes a bucket. It is not an error if the bucket does not exist.
func (db *DB) drop(bucketNameOrStruct interface{}) error {
	err := db.db.Drop(bucketNameOrStruct)
	if err != nil && !IsBucketNotFound(err) {
		return err
	}
	return nil
}

// IsBucketNotFound is true if err means a bucket does not exist yet.
func IsBucketNotFound(err error) bool {
	return errors.Is(err, bolt.ErrBucketNotFound)
}
