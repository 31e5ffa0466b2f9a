package document

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.etcd.io/bbolt"
)

const (
	boltBucketDocuments = "documents" // key: document name -> JSON
	boltKeyGroceries    = "groceries"
	boltKeyList         = "list"
)

// BoltSink stores the two documents as keys of one bbolt bucket. Both keys
// are replaced in a single update transaction.
type BoltSink struct {
	db     *bbolt.DB
	logger *slog.Logger
}

// OpenBoltSink opens or creates the bolt file at path.
func OpenBoltSink(path string, logger *slog.Logger) (*BoltSink, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create bolt dir: %w", err)
	}

	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(boltBucketDocuments))
		return err
	}); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create bolt bucket: %w", err)
	}

	return &BoltSink{db: db, logger: logger}, nil
}

// Load reads both documents in one view transaction.
func (s *BoltSink) Load(ctx context.Context) (*Snapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	snap := NewSnapshot()

	err := s.db.View(func(tx *bbolt.Tx) error {
		docs := tx.Bucket([]byte(boltBucketDocuments))
		if data := docs.Get([]byte(boltKeyGroceries)); data != nil {
			if err := decodeGroceries(data, &snap.Groceries); err != nil {
				return err
			}
		}
		if data := docs.Get([]byte(boltKeyList)); data != nil {
			if err := decodeList(data, &snap.List); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	snap.normalize()
	return snap, nil
}

// Save replaces both documents atomically.
func (s *BoltSink) Save(ctx context.Context, snap *Snapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	groceries, err := json.Marshal(snap.Groceries)
	if err != nil {
		return fmt.Errorf("encode groceries: %w", err)
	}
	list, err := json.Marshal(snap.List)
	if err != nil {
		return fmt.Errorf("encode list: %w", err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		docs := tx.Bucket([]byte(boltBucketDocuments))
		if err := docs.Put([]byte(boltKeyGroceries), groceries); err != nil {
			return err
		}
		return docs.Put([]byte(boltKeyList), list)
	})
	if err != nil {
		return fmt.Errorf("save bolt documents: %w", err)
	}

	s.logger.Debug("documents saved", "path", s.db.Path(),
		"items", len(snap.Groceries.Collection),
		"list_items", len(snap.List.Items))
	return nil
}

// Close closes the bolt file.
func (s *BoltSink) Close() error {
	return s.db.Close()
}
