// Package keystore keeps named key pairs in a bolt database. Each scheme
// gets its own bucket and every entry is stored TOML encoded with the keys
// in hex.
package keystore

import (
	"bytes"
	"encoding/hex"
	"sort"
	"sync"

	"github.com/BurntSushi/toml"
	bolt "go.etcd.io/bbolt"
	"golang.org/x/xerrors"

	"pqgo/pkg/encoding"
	"pqgo/pkg/log"
)

// OpenPerm is the file mode of a newly created store.
const OpenPerm = 0o600

var (
	ErrNotFound  = xerrors.New("keystore: no such key")
	ErrEmptyName = xerrors.New("keystore: empty scheme or key name")
)

// KeyPair is a stored key pair. SecretKey may be empty for a public-only
// entry.
type KeyPair struct {
	Scheme    string
	Name      string
	PublicKey []byte
	SecretKey []byte
}

// HexSecret is hex text held in a byte slice, so that it can be wiped once
// the TOML encoder or decoder is done with it.
type HexSecret []byte

func (h HexSecret) MarshalText() ([]byte, error) {
	return h, nil
}

func (h *HexSecret) UnmarshalText(b []byte) error {
	*h = append((*h)[:0], b...)
	return nil
}

// PairTOML is the on-disk form of a KeyPair.
type PairTOML struct {
	PublicKey string
	SecretKey HexSecret `toml:",omitempty"`
}

// Wipe zeroes the hex encoded secret key.
func (t *PairTOML) Wipe() {
	encoding.Wipe(t.SecretKey)
}

// TOML returns the hex encoded form of k. Callers wipe the result when
// done with it.
func (k *KeyPair) TOML() *PairTOML {
	t := &PairTOML{PublicKey: hex.EncodeToString(k.PublicKey)}
	if len(k.SecretKey) > 0 {
		t.SecretKey = make(HexSecret, hex.EncodedLen(len(k.SecretKey)))
		hex.Encode(t.SecretKey, k.SecretKey)
	}
	return t
}

// FromTOML fills the key material of k from t.
func (k *KeyPair) FromTOML(t *PairTOML) error {
	pk, err := hex.DecodeString(t.PublicKey)
	if err != nil {
		return xerrors.Errorf("public key: %w", err)
	}
	sk := make([]byte, hex.DecodedLen(len(t.SecretKey)))
	if _, err := hex.Decode(sk, t.SecretKey); err != nil {
		return xerrors.Errorf("secret key: %w", err)
	}
	k.PublicKey, k.SecretKey = pk, sk
	return nil
}

// Store is a bolt backed key store. It is safe for concurrent use.
type Store struct {
	sync.Mutex
	db  *bolt.DB
	log log.Logger
}

// Open opens or creates the store at path.
func Open(path string, l log.Logger) (*Store, error) {
	db, err := bolt.Open(path, OpenPerm, nil)
	if err != nil {
		return nil, xerrors.Errorf("opening key store %s: %w", path, err)
	}
	if l == nil {
		l = log.DefaultLogger()
	}
	return &Store{db: db, log: l.Named("keystore")}, nil
}

// Close releases the database file.
func (s *Store) Close() error {
	return s.db.Close()
}

// Put stores k under its scheme and name, replacing any previous entry.
func (s *Store) Put(k *KeyPair) error {
	if k.Scheme == "" || k.Name == "" {
		return ErrEmptyName
	}
	t := k.TOML()
	defer t.Wipe()
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(t); err != nil {
		return xerrors.Errorf("toml encoding: %w", err)
	}
	defer encoding.Wipe(buf.Bytes())

	s.Lock()
	defer s.Unlock()
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket, err := tx.CreateBucketIfNotExists([]byte(k.Scheme))
		if err != nil {
			return err
		}
		return bucket.Put([]byte(k.Name), buf.Bytes())
	})
	if err != nil {
		return xerrors.Errorf("storing %s/%s: %w", k.Scheme, k.Name, err)
	}
	s.log.Debugw("stored key pair", "scheme", k.Scheme, "name", k.Name, "secret", len(k.SecretKey) > 0)
	return nil
}

// Get returns the entry stored under scheme and name.
func (s *Store) Get(scheme, name string) (*KeyPair, error) {
	var raw []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(scheme))
		if bucket == nil {
			return ErrNotFound
		}
		v := bucket.Get([]byte(name))
		if v == nil {
			return ErrNotFound
		}
		// v is only valid inside the transaction
		raw = append([]byte(nil), v...)
		return nil
	})
	if err != nil {
		return nil, xerrors.Errorf("%s/%s: %w", scheme, name, err)
	}
	defer encoding.Wipe(raw)

	t := new(PairTOML)
	defer t.Wipe()
	if _, err := toml.NewDecoder(bytes.NewReader(raw)).Decode(t); err != nil {
		return nil, xerrors.Errorf("toml decoding %s/%s: %w", scheme, name, err)
	}
	k := &KeyPair{Scheme: scheme, Name: name}
	if err := k.FromTOML(t); err != nil {
		return nil, xerrors.Errorf("%s/%s: %w", scheme, name, err)
	}
	return k, nil
}

// List returns the sorted key names stored for scheme.
func (s *Store) List(scheme string) ([]string, error) {
	var names []string
	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(scheme))
		if bucket == nil {
			return nil
		}
		return bucket.ForEach(func(k, _ []byte) error {
			names = append(names, string(k))
			return nil
		})
	})
	if err != nil {
		return nil, xerrors.Errorf("listing %s: %w", scheme, err)
	}
	sort.Strings(names)
	return names, nil
}

// Schemes returns the names of the non-empty scheme buckets.
func (s *Store) Schemes() ([]string, error) {
	var schemes []string
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.ForEach(func(name []byte, b *bolt.Bucket) error {
			if b.Stats().KeyN > 0 {
				schemes = append(schemes, string(name))
			}
			return nil
		})
	})
	return schemes, err
}

// Delete removes an entry. Deleting a missing entry returns ErrNotFound.
func (s *Store) Delete(scheme, name string) error {
	s.Lock()
	defer s.Unlock()
	err := s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket([]byte(scheme))
		if bucket == nil || bucket.Get([]byte(name)) == nil {
			return ErrNotFound
		}
		return bucket.Delete([]byte(name))
	})
	if err != nil {
		return xerrors.Errorf("deleting %s/%s: %w", scheme, name, err)
	}
	return nil
}
