package badger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/ragchat/storage"
)

// maxCommitAttempts bounds retries when concurrent writers touch the same keys,
// as two turns of one session saved at once do.
const maxCommitAttempts = 3

// Backend owns the BadgerDB handle shared by the conversation repository and
// the local passage index.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// slogAdapter routes badger's printf-style logging through slog.
type slogAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = slogAdapter{}

func (a slogAdapter) Errorf(format string, args ...any) { a.logger.Error(fmt.Sprintf(format, args...)) }
func (a slogAdapter) Warningf(format string, args ...any) {
	a.logger.Warn(fmt.Sprintf(format, args...))
}
func (a slogAdapter) Infof(format string, args ...any) { a.logger.Debug(fmt.Sprintf(format, args...)) }
func (a slogAdapter) Debugf(format string, args ...any) {
	a.logger.Debug(fmt.Sprintf(format, args...))
}

// OpenBackend opens the database in dir, creating the directory when needed.
// With inMemory set dir is ignored and nothing touches disk.
func OpenBackend(dir string, inMemory bool) (*Backend, error) {
	logger := slog.Default().With("component", "badger")

	opts := badger.DefaultOptions("").WithInMemory(true)
	if !inMemory {
		if err := mkdirIfMissing(dir); err != nil {
			return nil, err
		}
		opts = badger.DefaultOptions(dir)
	}
	// Values are small mus-encoded records; compression buys nothing.
	opts = opts.WithCompression(options.None).WithLogger(slogAdapter{logger: logger})

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger at %q: %w", dir, err)
	}
	logger.Debug("backend opened", "dir", dir, "in_memory", inMemory)
	return &Backend{db: db, logger: logger}, nil
}

func mkdirIfMissing(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	info, err := os.Stat(dir)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}

// Close releases the database. A second Close returns nil.
func (b *Backend) Close() error {
	if b.db.IsClosed() {
		return nil
	}
	return b.db.Close()
}

func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// view runs fn in a read-only transaction.
func (b *Backend) view(fn func(tx *badger.Txn) error) error {
	if b.db.IsClosed() {
		return storage.ErrStorageClosed
	}
	return b.db.View(fn)
}

// update runs fn in a read-write transaction and commits it. A commit that
// loses a conflict is rerun from scratch, so fn must not keep state between calls.
// Badger's optimistic transactions report a lost read-write race as
// ErrConflict at commit and expect the caller to rerun the transaction; that
// rerun is the only retry here. Every other error, from fn or from badger,
// returns on the first attempt.
func (b *Backend) update(ctx context.Context, fn func(tx *badger.Txn) error) error {
	var err error
	for attempt := 1; attempt <= maxCommitAttempts; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if b.db.IsClosed() {
			return storage.ErrStorageClosed
		}
		err = b.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
		b.logger.Debug("write conflict, retrying", "attempt", attempt)
	}
	return err
}

// scanPrefix calls fn with the value of every key under prefix, in key order.
func (b *Backend) scanPrefix(prefix []byte, fn func(val []byte) error) error {
	return b.view(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := iter.Item().Value(fn); err != nil {
				return err
			}
		}
		return nil
	})
}
