// Package snapshot persists sessions to an embedded Badger store so a
// rebuilt process can restore its graph without re-running extraction.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/soundprediction/legame/pkg/types"
)

const sessionPrefix = "session/"

// Session is everything needed to rebuild a working graph: the validated
// entities, their relationships, and the resolved clusters.
type Session struct {
	Name          string                 `json:"name"`
	SavedAt       time.Time              `json:"saved_at"`
	Entities      []*types.Entity        `json:"entities,omitempty"`
	Relationships []*types.Relationship  `json:"relationships,omitempty"`
	Clusters      []*types.EntityCluster `json:"clusters,omitempty"`
}

// Store is a Badger-backed snapshot store.
type Store struct {
	db     *badger.DB
	logger *slog.Logger
}

// Open opens a snapshot store rooted at dir. An empty dir opens an
// in-memory store for tests and ephemeral sessions. A nil logger falls back
// to slog.Default().
func Open(dir string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts := badger.DefaultOptions(dir)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	opts = opts.WithLogger(badgerLogger{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}
	return &Store{db: db, logger: logger}, nil
}

// Save persists the session under its name, overwriting any previous save.
func (s *Store) Save(ctx context.Context, session *Session) error {
	if session == nil || strings.TrimSpace(session.Name) == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	session.SavedAt = time.Now().UTC()
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(sessionKey(session.Name), data)
	})
	if err != nil {
		return fmt.Errorf("failed to persist session %q: %w", session.Name, err)
	}

	s.logger.Info("Session snapshot saved", "session", session.Name,
		"entities", len(session.Entities),
		"relationships", len(session.Relationships),
		"clusters", len(session.Clusters))
	return nil
}

// Load returns the named session, or nil when none was saved.
func (s *Store) Load(ctx context.Context, name string) (*Session, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("session name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var session *Session
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(sessionKey(name))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			var decoded Session
			if err := json.Unmarshal(val, &decoded); err != nil {
				return fmt.Errorf("failed to unmarshal session: %w", err)
			}
			session = &decoded
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load session %q: %w", name, err)
	}
	return session, nil
}

// Delete removes the named session. Deleting a missing session is not an
// error.
func (s *Store) Delete(ctx context.Context, name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("session name cannot be empty")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(sessionKey(name))
	})
	if err != nil {
		return fmt.Errorf("failed to delete session %q: %w", name, err)
	}
	return nil
}

// List returns the names of all saved sessions in key order.
func (s *Store) List(ctx context.Context) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var names []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()

		prefix := []byte(sessionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			names = append(names, strings.TrimPrefix(string(it.Item().Key()), sessionPrefix))
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	return names, nil
}

// Close closes the underlying store.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("failed to close snapshot store: %w", err)
	}
	return nil
}

func sessionKey(name string) []byte {
	return []byte(sessionPrefix + name)
}

// badgerLogger routes Badger's internal logging into slog. Routine info
// output lands at debug.
type badgerLogger struct {
	logger *slog.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.logger.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Infof(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (l badgerLogger) Debugf(format string, args ...interface{}) {
	l.logger.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
