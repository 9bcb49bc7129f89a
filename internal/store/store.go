package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	bolt "go.etcd.io/bbolt"
)

// Bucket names
var (
	bucketIdentity = []byte("identity")
	bucketSession  = []byte("session")
	bucketPrefs    = []byte("prefs")
)

// Keys within buckets
var (
	keyGuestCartID = []byte("guest_cart_id")
	keyToken       = []byte("token")
	keyLanguage    = []byte("language")
)

// ClientStore is the durable client-side key/value state: the guest
// cart identifier, the session token, and user preferences. It is the
// terminal analogue of the browser's persistent storage.
//
// With an empty dir it runs memory-only (no persistence), which tests
// and ephemeral sessions use.
type ClientStore struct {
	db *bolt.DB
	mu sync.RWMutex

	// In-memory copy of all values; the guest id is write-once and the
	// rest are tiny, so everything stays promoted after first read.
	cache map[string][]byte
}

// Open opens (or creates) the store under dir.
func Open(dir string) (*ClientStore, error) {
	if dir == "" {
		return &ClientStore{cache: make(map[string][]byte)}, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	dbPath := filepath.Join(dir, "tiketto.db")
	db, err := bolt.Open(dbPath, 0600, &bolt.Options{Timeout: 1 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("failed to open bolt db: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, bucket := range [][]byte{bucketIdentity, bucketSession, bucketPrefs} {
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

	return &ClientStore{db: db, cache: make(map[string][]byte)}, nil
}

func (s *ClientStore) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// === Generic helpers ===

func (s *ClientStore) get(bucket, key []byte) ([]byte, bool) {
	cacheKey := string(bucket) + ":" + string(key)

	s.mu.RLock()
	if data, ok := s.cache[cacheKey]; ok {
		s.mu.RUnlock()
		return data, true
	}
	s.mu.RUnlock()

	if s.db == nil {
		return nil, false
	}

	var data []byte
	s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b == nil {
			return nil
		}
		if v := b.Get(key); v != nil {
			data = make([]byte, len(v))
			copy(data, v)
		}
		return nil
	})

	if data == nil {
		return nil, false
	}

	s.mu.Lock()
	s.cache[cacheKey] = data
	s.mu.Unlock()

	return data, true
}

func (s *ClientStore) set(bucket, key, value []byte) error {
	cacheKey := string(bucket) + ":" + string(key)

	s.mu.Lock()
	s.cache[cacheKey] = value
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		return b.Put(key, value)
	})
}

func (s *ClientStore) delete(bucket, key []byte) error {
	cacheKey := string(bucket) + ":" + string(key)

	s.mu.Lock()
	delete(s.cache, cacheKey)
	s.mu.Unlock()

	if s.db == nil {
		return nil
	}

	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucket)
		if b != nil {
			return b.Delete(key)
		}
		return nil
	})
}

// === Guest identity ===

// GuestCartID returns the durable guest cart identifier, generating
// and persisting a UUID on first use. The value is write-once: once
// created it is reused for the lifetime of the store.
func (s *ClientStore) GuestCartID() (string, error) {
	if data, ok := s.get(bucketIdentity, keyGuestCartID); ok {
		return string(data), nil
	}

	id := uuid.NewString()
	if err := s.set(bucketIdentity, keyGuestCartID, []byte(id)); err != nil {
		return "", fmt.Errorf("failed to persist guest cart id: %w", err)
	}
	return id, nil
}

// === Session ===

// Token returns the stored bearer token, if any.
func (s *ClientStore) Token() (string, bool) {
	data, ok := s.get(bucketSession, keyToken)
	if !ok || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// SaveToken stores the bearer token for an authenticated session.
func (s *ClientStore) SaveToken(token string) error {
	return s.set(bucketSession, keyToken, []byte(token))
}

// ClearToken drops the session token, reverting to guest identity.
func (s *ClientStore) ClearToken() error {
	return s.delete(bucketSession, keyToken)
}

// === Preferences ===

// Language returns the persisted UI language, if set.
func (s *ClientStore) Language() (string, bool) {
	data, ok := s.get(bucketPrefs, keyLanguage)
	if !ok || len(data) == 0 {
		return "", false
	}
	return string(data), true
}

// SaveLanguage persists the preferred UI language.
func (s *ClientStore) SaveLanguage(lang string) error {
	return s.set(bucketPrefs, keyLanguage, []byte(lang))
}
