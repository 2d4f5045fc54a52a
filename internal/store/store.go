package store

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

var (
	sessionBucket = []byte("session")
	tokenKey      = []byte("token")
)

// TokenStore persists the bearer token across restarts. A missing key
// means logged out.
type TokenStore interface {
	Load() (string, bool, error)
	Save(token string) error
	Clear() error
}

type Bolt struct {
	db *bbolt.DB
}

// Open opens (or creates) the session database at path.
func Open(path string) (*Bolt, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("create store dir: %w", err)
	}

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open store %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(sessionBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create session bucket: %w", err)
	}

	return &Bolt{db: db}, nil
}

func (s *Bolt) Close() error {
	return s.db.Close()
}

func (s *Bolt) Load() (string, bool, error) {
	var token string
	var found bool
	err := s.db.View(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return fmt.Errorf("bucket %s not found", sessionBucket)
		}
		v := b.Get(tokenKey)
		if v == nil {
			return nil
		}
		token = string(v)
		found = token != ""
		return nil
	})
	if err != nil {
		return "", false, err
	}
	return token, found, nil
}

func (s *Bolt) Save(token string) error {
	if token == "" {
		return fmt.Errorf("refusing to persist an empty token")
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		b, err := tx.CreateBucketIfNotExists(sessionBucket)
		if err != nil {
			return err
		}
		return b.Put(tokenKey, []byte(token))
	})
}

func (s *Bolt) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		b := tx.Bucket(sessionBucket)
		if b == nil {
			return nil
		}
		return b.Delete(tokenKey)
	})
}
