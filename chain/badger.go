package chain

import (
	"errors"
	"fmt"
	"os"

	badger "github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"
)

// BadgerStore keeps chain state in badger. An empty dir runs badger in memory.
type BadgerStore struct {
	db *badger.DB
}

func NewBadgerStore(dir string, logger *zap.Logger) (*BadgerStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	var opts badger.Options
	if dir == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data dir: %w", err)
		}
		opts = badger.DefaultOptions(dir)
	}
	opts = opts.
		WithLogger(newBadgerLogger(logger)).
		// the default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	return &BadgerStore{db: db}, nil
}

func (s *BadgerStore) NewTxn(update bool) Txn {
	return &badgerTxn{tx: s.db.NewTransaction(update), update: update}
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

type badgerTxn struct {
	tx       *badger.Txn
	update   bool
	finished bool
}

func (t *badgerTxn) Get(key string) (string, bool, error) {
	if t.finished {
		return "", false, ErrTxnDone
	}
	item, err := t.tx.Get([]byte(key))
	if err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return "", false, err
	}
	return string(val), true, nil
}

func (t *badgerTxn) Set(key, value string) error {
	if t.finished {
		return ErrTxnDone
	}
	if !t.update {
		return ErrReadOnly
	}
	return t.tx.Set([]byte(key), []byte(value))
}

func (t *badgerTxn) Delete(key string) error {
	if t.finished {
		return ErrTxnDone
	}
	if !t.update {
		return ErrReadOnly
	}
	return t.tx.Delete([]byte(key))
}

func (t *badgerTxn) Iterate(prefix string, fn func(key, value string) error) error {
	if t.finished {
		return ErrTxnDone
	}
	it := t.tx.NewIterator(badger.IteratorOptions{Prefix: []byte(prefix), PrefetchValues: true, PrefetchSize: 16})
	defer it.Close()
	for it.Rewind(); it.Valid(); it.Next() {
		item := it.Item()
		val, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}
		if err := fn(string(item.KeyCopy(nil)), string(val)); err != nil {
			return err
		}
	}
	return nil
}

func (t *badgerTxn) Commit() error {
	if t.finished {
		return nil
	}
	t.finished = true
	return t.tx.Commit()
}

func (t *badgerTxn) Discard() {
	if t.finished {
		return
	}
	t.finished = true
	t.tx.Discard()
}

// badgerLogger bridges badger's printf style logger to zap.
type badgerLogger struct {
	s *zap.SugaredLogger
}

func newBadgerLogger(l *zap.Logger) *badgerLogger {
	return &badgerLogger{s: l.Named("badger").Sugar()}
}

func (b *badgerLogger) Errorf(format string, args ...any)   { b.s.Errorf(format, args...) }
func (b *badgerLogger) Warningf(format string, args ...any) { b.s.Warnf(format, args...) }
func (b *badgerLogger) Infof(format string, args ...any)    { b.s.Infof(format, args...) }
func (b *badgerLogger) Debugf(format string, args ...any)   { b.s.Debugf(format, args...) }
