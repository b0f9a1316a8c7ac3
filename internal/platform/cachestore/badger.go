package cachestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"

	"github.com/yungbote/sportsreel-backend/internal/platform/logger"
)

// BadgerStore is an embedded store for single-node deployments and tests.
// An empty dir keeps everything in memory.
type BadgerStore struct {
	log *logger.Logger
	db  *badger.DB
}

func NewBadgerStore(log *logger.Logger, dir string) (*BadgerStore, error) {
	storeLog := log.With("service", "BadgerStore")
	opts := badger.DefaultOptions(dir).WithLogger(badgerLogger{log: storeLog})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{log: storeLog, db: db}, nil
}

func (s *BadgerStore) Get(ctx context.Context, key string) (string, error) {
	var out []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		out, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", ErrMiss
	}
	if err != nil {
		return "", fmt.Errorf("badger get %s: %w", key, err)
	}
	return string(out), nil
}

func (s *BadgerStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	if ttl <= 0 {
		return fmt.Errorf("badger set %s: ttl must be positive", key)
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.SetEntry(badger.NewEntry([]byte(key), []byte(value)).WithTTL(ttl))
	})
	if err != nil {
		return fmt.Errorf("badger set %s: %w", key, err)
	}
	return nil
}

func (s *BadgerStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	err := s.db.Update(func(txn *badger.Txn) error {
		for _, k := range keys {
			if err := txn.Delete([]byte(k)); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("badger delete: %w", err)
	}
	return nil
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerLogger struct {
	log *logger.Logger
}

func (l badgerLogger) Errorf(format string, args ...interface{}) {
	l.log.SugaredLogger.Errorf(format, args...)
}
func (l badgerLogger) Warningf(format string, args ...interface{}) {
	l.log.SugaredLogger.Warnf(format, args...)
}
func (l badgerLogger) Infof(format string, args ...interface{}) {}
func (l badgerLogger) Debugf(format string, args ...interface{}) {}
