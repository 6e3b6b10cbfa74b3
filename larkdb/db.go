package larkdb

import (
	"github.com/go-errors/errors"
	"go.etcd.io/bbolt"
	"path/filepath"
	"time"
)

const dbFilename = "lark.db"

// DB persists settings across restarts.
type DB struct {
	*bbolt.DB
}

// Open creates or opens the settings database inside dataDir.
func Open(dataDir string) (*DB, error) {
	path := filepath.Join(dataDir, dbFilename)

	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Errorf("could not open %v: %v", path, err)
	}

	return &DB{DB: db}, nil
}
