package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketPrefs   = []byte("prefs")
	bucketRefresh = []byte("refresh")
)

// Well-known preference keys
const (
	KeyMediaType = "ui.media_type"
	KeyCategory  = "ui.category"
	KeyGenre     = "ui.genre"
	KeyAdult     = "ui.include_adult"
)

// Store implements domain.Preferences using BoltDB.
type Store struct {
	db *bolt.DB
	mu sync.RWMutex // Protects memory cache

	// In-memory cache for hot-path reads (promoted on access)
	cache map[string][]byte
}

// Open opens (or creates) prefs.db inside dir. An empty dir yields a memory-only store.
func Open(dir string) (*Store, error) {
	if dir == "" {
		return &Store{cache: make(map[string][]byte)}, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := bolt.Open(filepath.Join(dir, "prefs.db"), 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketPrefs, bucketRefresh} {
			if _, err := tx.CreateBucketIfNotExists(bucket); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db, cache: make(map[string][]byte)}, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Preferences ===

func (s *Store) GetString(key string) (string, bool) {
	var v string
	ok := s.get(bucketPrefs, key, &v)
	return v, ok
}

func (s *Store) SetString(key, value string) error {
	return s.set(bucketPrefs, key, value)
}

func (s *Store) GetBool(key string) (bool, bool) {
	var v bool
	ok := s.get(bucketPrefs, key, &v)
	return v, ok
}

func (s *Store) SetBool(key string, value bool) error {
	return s.set(bucketPrefs, key, value)
}

// === Refresh stamps ===

// LastRefreshed returns when the list identified by key was last fetched
func (s *Store) LastRefreshed(key string) (time.Time, bool) {
	var unix int64
	if !s.get(bucketRefresh, key, &unix) {
		return time.Time{}, false
	}
	return time.Unix(unix, 0), true
}

func (s *Store) SetLastRefreshed(key string, at time.Time) error {
	return s.set(bucketRefresh, key, at.Unix())
}

// ClearRefreshStamp forgets the refresh stamp of one list
func (s *Store) ClearRefreshStamp(key string) error {
	return s.remove(bucketRefresh, key)
}

// ClearRefreshStamps forgets every refresh stamp, so the next read of any list fetches
func (s *Store) ClearRefreshStamps() error {
	return s.deletePrefix(bucketRefresh, "")
}

// === Generic helpers ===

func (s *Store) get(bucket []byte, key string, dest any) bool {
	cacheKey := string(bucket) + ":" + key

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return json.Unmarshal(data, dest) == nil
	}
	s.mu.RUnlock()

	if s.db == nil {
		return false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get([]byte(key)); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})
	if data == nil {
		return false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return json.Unmarshal(data, dest) == nil
}

func (s *Store) set(bucket []byte, key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.cache[string(bucket)+":"+key] = data
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(bucket).Put([]byte(key), data)
	})
}

func (s *Store) remove(bucket []byte, key string) error {
	s.mu.Lock()
	delete(s.cache, string(bucket)+":"+key)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		return b.Delete([]byte(key))
	})
}

func (s *Store) deletePrefix(bucket []byte, prefix string) error {
	s.mu.Lock()
	cachePrefix := string(bucket) + ":" + prefix
	for k := range s.cache {
		if strings.HasPrefix(k, cachePrefix) {
			delete(s.cache, k)
		}
	}
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		// Collect first; deleting while iterating skips keys in bbolt
		var keys [][]byte
		c := b.Cursor()
		p := []byte(prefix)
		for k, _ := c.Seek(p); k != nil && strings.HasPrefix(string(k), prefix); k, _ = c.Next() {
			keys = append(keys, append([]byte(nil), k...))
		}
		for _, k := range keys {
			if err := b.Delete(k); err != nil {
				return err
			}
		}
		return nil
	})
}
