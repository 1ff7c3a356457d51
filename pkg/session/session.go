package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ecoaction/ecoaction/pkg/types"
	bolt "go.etcd.io/bbolt"
)

var (
	bucketSession = []byte("session")

	keyUser  = []byte("user")
	keyToken = []byte("token")
)

// Store persists the single authenticated user's identity across process
// restarts. It is the only state that survives a restart; cached mission
// and participation data never does.
type Store struct {
	db *bolt.DB
}

// Open creates or opens the session database under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "session.db")

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open session database: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(bucketSession)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create session bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database
func (s *Store) Close() error {
	return s.db.Close()
}

// Save stores the authenticated user and their token, replacing any
// previous session.
func (s *Store) Save(user types.User, token string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		data, err := json.Marshal(user)
		if err != nil {
			return err
		}
		if err := b.Put(keyUser, data); err != nil {
			return err
		}
		return b.Put(keyToken, []byte(token))
	})
}

// Current returns the stored user and token, or (nil, "") when logged out.
func (s *Store) Current() (*types.User, string, error) {
	var user *types.User
	var token string
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		data := b.Get(keyUser)
		if data == nil {
			return nil
		}
		var u types.User
		if err := json.Unmarshal(data, &u); err != nil {
			return err
		}
		user = &u
		token = string(b.Get(keyToken))
		return nil
	})
	return user, token, err
}

// CurrentUserID returns the logged-in user's id, or "" when logged out.
func (s *Store) CurrentUserID() string {
	user, _, err := s.Current()
	if err != nil || user == nil {
		return ""
	}
	return user.ID
}

// Clear removes the stored session.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(bucketSession)
		if err := b.Delete(keyUser); err != nil {
			return err
		}
		return b.Delete(keyToken)
	})
}
