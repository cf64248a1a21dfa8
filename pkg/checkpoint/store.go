// Package checkpoint persists statevector chunk snapshots outside the
// container's in-buffer checkpoint slots.
//
// In-buffer checkpoint slots are the fast path, but they consume amplitude
// memory one-for-one with the live state. When the state is large or a run
// needs more snapshots than the container reserved, chunks spill here
// instead: a BadgerDB store keyed by container identity and slot, with
// optional authenticated encryption at rest.
package checkpoint

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"golang.org/x/crypto/chacha20poly1305"
)

// Errors
var (
	// ErrNotFound reports that no snapshot exists for the requested
	// container and slot.
	ErrNotFound = errors.New("checkpoint: no snapshot for this container and slot")

	// ErrBadKey reports an encryption key of the wrong length.
	ErrBadKey = errors.New("checkpoint: encryption key must be 32 bytes")

	// ErrClosed reports an operation against a closed store.
	ErrClosed = errors.New("checkpoint: store is closed")
)

// Key prefixes for store organization. Single-byte prefixes keep keys
// compact.
const (
	prefixSnapshot = byte(0x01) // snapshot: containerID + slot -> payload
)

// Options configures a Store.
type Options struct {
	// Dir is the directory for the BadgerDB files. Created if missing.
	// Ignored when InMemory is set.
	Dir string

	// InMemory keeps all data in RAM. Snapshots are lost on Close; used
	// for testing.
	InMemory bool

	// EncryptionKey enables authenticated encryption of payloads at
	// rest. Must be exactly 32 bytes (XChaCha20-Poly1305) or empty.
	EncryptionKey []byte

	// SyncWrites forces an fsync after each snapshot write.
	SyncWrites bool
}

// Store is a spill store for chunk snapshots.
//
// Keys combine the owning container's ID with the slot index, so multiple
// containers share one store without coordination. Payloads are opaque
// bytes; the chunk codec produces and consumes them.
//
// Thread safety: safe for concurrent use. BadgerDB provides the
// transactional guarantees.
type Store struct {
	db     *badger.DB
	aead   func() (aeadCipher, error)
	sealed bool
	closed bool
}

// aeadCipher is the subset of cipher.AEAD the store uses.
type aeadCipher interface {
	NonceSize() int
	Seal(dst, nonce, plaintext, additionalData []byte) []byte
	Open(dst, nonce, ciphertext, additionalData []byte) ([]byte, error)
}

// Open opens (or creates) a snapshot store.
//
// Example:
//
//	store, err := checkpoint.Open(checkpoint.Options{Dir: "./data/checkpoints"})
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer store.Close()
func Open(opts Options) (*Store, error) {
	if len(opts.EncryptionKey) > 0 && len(opts.EncryptionKey) != chacha20poly1305.KeySize {
		return nil, ErrBadKey
	}

	badgerOpts := badger.DefaultOptions(opts.Dir)
	if opts.InMemory {
		badgerOpts = badgerOpts.WithInMemory(true)
	}
	if opts.SyncWrites {
		badgerOpts = badgerOpts.WithSyncWrites(true)
	}
	// Quiet logger by default; Badger's own chatter drowns diagnostics.
	badgerOpts = badgerOpts.WithLogger(nil)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: open store: %w", err)
	}

	s := &Store{db: db}
	if len(opts.EncryptionKey) > 0 {
		key := append([]byte(nil), opts.EncryptionKey...)
		s.sealed = true
		s.aead = func() (aeadCipher, error) {
			return chacha20poly1305.NewX(key)
		}
	}
	return s, nil
}

// Sealed reports whether payloads are encrypted at rest.
func (s *Store) Sealed() bool {
	return s.sealed
}

// Put stores a snapshot payload for one container slot, replacing any
// previous snapshot under the same key.
func (s *Store) Put(id uuid.UUID, slot int, payload []byte) error {
	if s.closed {
		return ErrClosed
	}
	data := payload
	if s.sealed {
		var err error
		data, err = s.seal(payload)
		if err != nil {
			return err
		}
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(snapshotKey(id, slot), data)
	})
}

// Get loads a snapshot payload. Returns ErrNotFound when no snapshot
// exists for the container and slot.
func (s *Store) Get(id uuid.UUID, slot int) ([]byte, error) {
	if s.closed {
		return nil, ErrClosed
	}
	var payload []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(snapshotKey(id, slot))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		payload, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
	}
	if s.sealed {
		return s.open(payload)
	}
	return payload, nil
}

// Delete removes a snapshot. Deleting a missing snapshot is not an error.
func (s *Store) Delete(id uuid.UUID, slot int) error {
	if s.closed {
		return ErrClosed
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(snapshotKey(id, slot))
	})
}

// DeleteContainer removes every snapshot belonging to one container.
func (s *Store) DeleteContainer(id uuid.UUID) error {
	if s.closed {
		return ErrClosed
	}
	prefix := append([]byte{prefixSnapshot}, id[:]...)
	return s.db.Update(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.IteratorOptions{Prefix: prefix})
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			key := it.Item().KeyCopy(nil)
			if err := txn.Delete(key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close releases the store. Further operations fail with ErrClosed.
func (s *Store) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// seal encrypts a payload, prepending a random nonce.
func (s *Store) seal(payload []byte) ([]byte, error) {
	c, err := s.aead()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, c.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, fmt.Errorf("checkpoint: nonce: %w", err)
	}
	return c.Seal(nonce, nonce, payload, nil), nil
}

// open decrypts a sealed payload.
func (s *Store) open(data []byte) ([]byte, error) {
	c, err := s.aead()
	if err != nil {
		return nil, err
	}
	if len(data) < c.NonceSize() {
		return nil, fmt.Errorf("checkpoint: sealed payload too short")
	}
	nonce, ciphertext := data[:c.NonceSize()], data[c.NonceSize():]
	plain, err := c.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("checkpoint: unseal: %w", err)
	}
	return plain, nil
}

// snapshotKey builds the key for one container slot:
// prefix + containerID + big-endian slot.
func snapshotKey(id uuid.UUID, slot int) []byte {
	key := make([]byte, 0, 1+16+8)
	key = append(key, prefixSnapshot)
	key = append(key, id[:]...)
	key = binary.BigEndian.AppendUint64(key, uint64(slot))
	return key
}
