package database

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	bolt "go.etcd.io/bbolt"

	"github.com/amaumene/packarr/internal/models"
)

const (
	dbFileMode = 0600
	dbDirMode  = 0755

	defaultDBFile = "packs.db"
)

var packsBucket = []byte("packs")

// BoltDB implements the Database interface on top of bbolt. Every
// upsert runs read-merge-write inside a single update transaction, so
// concurrent resolvers of the same pack cannot revert each other's
// annotations.
type BoltDB struct {
	db  *bolt.DB
	now func() time.Time
}

// NewBolt opens (or creates) the pack store at dbPath.
func NewBolt(dbPath string) (*BoltDB, error) {
	return NewBoltWithClock(dbPath, time.Now)
}

// NewBoltWithClock opens the store with an injectable clock, used by
// tests to control TTL expiry.
func NewBoltWithClock(dbPath string, now func() time.Time) (*BoltDB, error) {
	if dbPath == "" {
		dbPath = filepath.Join(".", defaultDBFile)
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), dbDirMode); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := bolt.Open(dbPath, dbFileMode, &bolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(packsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create packs bucket: %w", err)
	}

	return &BoltDB{db: db, now: now}, nil
}

func (b *BoltDB) Close() error {
	return b.db.Close()
}

func (b *BoltDB) GetPackIndex(infoHash string, ttl time.Duration) (*models.PackIndex, bool, error) {
	key := []byte(normalizeHash(infoHash))

	var pack *models.PackIndex
	err := b.db.View(func(tx *bolt.Tx) error {
		raw := tx.Bucket(packsBucket).Get(key)
		if raw == nil {
			return nil
		}

		var decoded models.PackIndex
		if err := json.Unmarshal(raw, &decoded); err != nil {
			return fmt.Errorf("failed to decode pack index: %w", err)
		}
		pack = &decoded
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	if pack == nil {
		return nil, false, nil
	}

	expired := ttl > 0 && b.now().Sub(pack.CreatedAt) > ttl
	return pack, expired, nil
}

func (b *BoltDB) UpsertPackEntries(infoHash, packTitle string, entries []models.PackFileEntry) (int, error) {
	key := []byte(normalizeHash(infoHash))

	count := 0
	err := b.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(packsBucket)

		pack := models.PackIndex{
			InfoHash:  string(key),
			CreatedAt: b.now(),
		}
		if raw := bucket.Get(key); raw != nil {
			if err := json.Unmarshal(raw, &pack); err != nil {
				return fmt.Errorf("failed to decode pack index: %w", err)
			}
		}

		if pack.PackTitle == "" {
			pack.PackTitle = packTitle
		}
		pack.Entries = mergeEntries(pack.Entries, entries)
		count = len(pack.Entries)

		encoded, err := json.Marshal(&pack)
		if err != nil {
			return fmt.Errorf("failed to encode pack index: %w", err)
		}
		return bucket.Put(key, encoded)
	})
	if err != nil {
		return 0, err
	}

	return count, nil
}
