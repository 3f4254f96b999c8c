package chain

import "errors"

// ErrTxnDone is returned when a finished txn is used again.
var ErrTxnDone = errors.New("transaction already finished")

// ErrReadOnly is returned for writes on a read-only txn.
var ErrReadOnly = errors.New("transaction is read-only")

// Store is the committed key space behind the chain. Keys and values are opaque strings.
type Store interface {
	NewTxn(update bool) Txn
	Close() error
}

// Txn is one isolated unit of work. Discard after Commit is a no-op, so callers can
// always defer it.
type Txn interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(key string) error
	// Iterate walks keys with the prefix in ascending order.
	Iterate(prefix string, fn func(key, value string) error) error
	Commit() error
	Discard()
}
