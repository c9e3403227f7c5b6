package db

import (
	"bytes"
	"fmt"
	"log"

	"github.com/dgraph-io/badger/v2"
)

// BadgerOptions configures a BadgerStore.
type BadgerOptions struct {
	// Dir is the on-disk directory Badger stores its files in. Ignored
	// if InMemory is set.
	Dir string
	// InMemory runs Badger in in-memory mode, for tests that want
	// Badger's exact read/write/iteration semantics without touching
	// disk.
	InMemory bool
	// Logger receives Badger's internal log output. Defaults to the
	// standard library logger if nil.
	Logger *log.Logger
}

// BadgerStore is a KeyValueStore backed by a Badger database.
type BadgerStore struct {
	db *badger.DB
}

// OpenBadgerStore opens (creating if necessary) a Badger-backed store.
func OpenBadgerStore(opts BadgerOptions) (*BadgerStore, error) {
	var badgerOpts badger.Options
	if opts.InMemory {
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if opts.Dir == "" {
			return nil, fmt.Errorf("db: badger store requires a directory unless InMemory is set")
		}
		badgerOpts = badger.DefaultOptions(opts.Dir)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	badgerOpts = badgerOpts.WithLogger(&badgerLogAdapter{l: logger})

	bdb, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("db: opening badger store: %w", err)
	}
	return &BadgerStore{db: bdb}, nil
}

func (s *BadgerStore) Has(key []byte) (bool, error) {
	var found bool
	err := s.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(key)
		switch err {
		case nil:
			found = true
			return nil
		case badger.ErrKeyNotFound:
			return nil
		default:
			return err
		}
	})
	return found, err
}

func (s *BadgerStore) Get(key []byte) ([]byte, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return value, nil
}

func (s *BadgerStore) Put(key, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, value)
	})
}

func (s *BadgerStore) Delete(key []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *BadgerStore) Close() error {
	return s.db.Close()
}

func (s *BadgerStore) NewBatch() Batch {
	return &badgerBatch{store: s, wb: s.db.NewWriteBatch()}
}

func (s *BadgerStore) NewSnapshot() (Snapshot, error) {
	txn := s.db.NewTransaction(false)
	return &badgerSnapshot{txn: txn}, nil
}

type badgerBatch struct {
	store *BadgerStore
	wb    *badger.WriteBatch
	n     int
}

func (b *badgerBatch) Put(key, value []byte) error {
	b.n++
	return b.wb.Set(key, value)
}

func (b *badgerBatch) Delete(key []byte) error {
	b.n++
	return b.wb.Delete(key)
}

func (b *badgerBatch) Len() int { return b.n }

func (b *badgerBatch) Commit() error {
	return b.wb.Flush()
}

func (b *badgerBatch) Reset() {
	b.wb.Cancel()
	b.wb = b.store.db.NewWriteBatch()
	b.n = 0
}

type badgerSnapshot struct {
	txn *badger.Txn
}

func (s *badgerSnapshot) Has(key []byte) (bool, error) {
	_, err := s.txn.Get(key)
	switch err {
	case nil:
		return true, nil
	case badger.ErrKeyNotFound:
		return false, nil
	default:
		return false, err
	}
}

func (s *badgerSnapshot) Get(key []byte) ([]byte, error) {
	item, err := s.txn.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var value []byte
	err = item.Value(func(val []byte) error {
		value = append([]byte(nil), val...)
		return nil
	})
	return value, err
}

func (s *badgerSnapshot) NewIterator(start, end []byte) Iterator {
	opts := badger.DefaultIteratorOptions
	it := s.txn.NewIterator(opts)
	if start != nil {
		it.Seek(start)
	} else {
		it.Rewind()
	}
	return &badgerIterator{it: it, end: end, started: true}
}

func (s *badgerSnapshot) Release() {
	s.txn.Discard()
}

type badgerIterator struct {
	it      *badger.Iterator
	end     []byte
	started bool
	err     error
}

func (it *badgerIterator) Next() bool {
	if it.started {
		it.started = false
	} else {
		it.it.Next()
	}
	if !it.it.Valid() {
		return false
	}
	if it.end != nil && bytes.Compare(it.it.Item().Key(), it.end) >= 0 {
		return false
	}
	return true
}

func (it *badgerIterator) Key() []byte {
	return append([]byte(nil), it.it.Item().Key()...)
}

func (it *badgerIterator) Value() []byte {
	var value []byte
	it.err = it.it.Item().Value(func(val []byte) error {
		value = append([]byte(nil), val...)
		return nil
	})
	return value
}

func (it *badgerIterator) Error() error { return it.err }

func (it *badgerIterator) Release() { it.it.Close() }

// badgerLogAdapter routes Badger's internal logging through the
// standard library logger, matching the store's ambient logging style
// rather than pulling in Badger's own logging dependency surface.
type badgerLogAdapter struct {
	l *log.Logger
}

func (a *badgerLogAdapter) Errorf(f string, v ...interface{})   { a.l.Printf("badger error: "+f, v...) }
func (a *badgerLogAdapter) Warningf(f string, v ...interface{}) { a.l.Printf("badger warn: "+f, v...) }
func (a *badgerLogAdapter) Infof(f string, v ...interface{})    { a.l.Printf("badger info: "+f, v...) }
func (a *badgerLogAdapter) Debugf(f string, v ...interface{})   {}
