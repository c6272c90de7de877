package cache

import (
	"context"
	"path/filepath"
	"time"

	"github.com/crytic/contractops/utils"
	"github.com/pkg/errors"
	"go.etcd.io/bbolt"
)

var boltBucket = []byte("abi")

// BoltStore keeps all entries in a single bbolt database file. Each Put is its own transaction, which gives the
// same all-or-nothing guarantee per key as FileStore.
type BoltStore struct {
	db   *bbolt.DB
	path string
}

// NewBoltStore opens (or creates) the database at path.
func NewBoltStore(path string) (*BoltStore, error) {
	if err := utils.MakeDirectory(filepath.Dir(path)); err != nil {
		return nil, errors.Wrap(err, "failed to create cache directory")
	}
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "could not open cache database %s", path)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(boltBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.WithStack(err)
	}
	return &BoltStore{db: db, path: path}, nil
}

func (s *BoltStore) Name() string {
	return "bolt"
}

func (s *BoltStore) Get(_ context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket(boltBucket).Get([]byte(key))
		if data == nil {
			return ErrCacheMiss
		}
		// bbolt memory is only valid for the lifetime of the transaction
		value = append([]byte(nil), data...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BoltStore) Put(_ context.Context, key string, value []byte) error {
	return errors.WithStack(s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(boltBucket).Put([]byte(key), value)
	}))
}

// Clear drops and recreates the bucket.
func (s *BoltStore) Clear(_ context.Context) error {
	err := s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(boltBucket); err != nil && !errors.Is(err, bbolt.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket(boltBucket)
		return err
	})
	return errors.Wrapf(err, "failed to clear cache database %s", s.path)
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}
