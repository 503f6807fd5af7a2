package persist

import (
	"github.com/cockroachdb/pebble"
	"github.com/pkg/errors"
)

var writeOptions = pebble.WriteOptions{Sync: false}

// PebbleStorage is the durable Storage backend over a pebble LSM database.
type PebbleStorage struct {
	db  *pebble.DB
	dir string
}

func OpenPebble(dir string) (*PebbleStorage, error) {
	db, err := pebble.Open(dir, &pebble.Options{})
	if err != nil {
		return nil, errors.Wrap(err, "persist: open pebble")
	}
	return &PebbleStorage{db: db, dir: dir}, nil
}

func (p *PebbleStorage) GetItem(key string) ([]byte, error) {
	val, clo, err := p.db.Get([]byte(key))
	if err == pebble.ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "persist: pebble get")
	}
	out := make([]byte, len(val))
	copy(out, val)
	_ = clo.Close()
	return out, nil
}

func (p *PebbleStorage) SetItem(key string, value []byte) error {
	return errors.Wrap(p.db.Set([]byte(key), value, &writeOptions), "persist: pebble set")
}

func (p *PebbleStorage) RemoveItem(key string) error {
	return errors.Wrap(p.db.Delete([]byte(key), &writeOptions), "persist: pebble delete")
}

func (p *PebbleStorage) Clear() error {
	it, err := p.db.NewIter(&pebble.IterOptions{})
	if err != nil {
		return errors.Wrap(err, "persist: pebble iter")
	}
	for valid := it.First(); valid; valid = it.Next() {
		if err := p.db.Delete(it.Key(), &writeOptions); err != nil {
			_ = it.Close()
			return errors.Wrap(err, "persist: pebble clear")
		}
	}
	return it.Close()
}

func (p *PebbleStorage) Purge() error {
	if err := p.Clear(); err != nil {
		return err
	}
	return errors.Wrap(p.db.Compact([]byte{0}, []byte{0xff}, false), "persist: pebble compact")
}

func (p *PebbleStorage) Close() error {
	return p.db.Close()
}
