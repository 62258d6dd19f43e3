package repo

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"
	log "github.com/sirupsen/logrus"
)

// collection is a whole-file record store: the complete mapping of id to
// record is serialized as a single JSON document. Writes replace the file
// atomically (temp file + rename) while holding an exclusive file lock, so a
// concurrent reader sees either the previous or the next state but never a
// partial write. The normalize hook runs on every load and save to recompute
// denormalized fields, keeping the stored data self-consistent even when a
// caller passes stale derived values.
type collection[T any] struct {
	path      string
	mu        sync.Mutex
	flk       *flock.Flock
	normalize func(map[string]T) map[string]T
}

func newCollection[T any](dir, file string, normalize func(map[string]T) map[string]T) *collection[T] {
	path := filepath.Join(dir, file)
	return &collection[T]{
		path:      path,
		flk:       flock.New(path + ".lock"),
		normalize: normalize,
	}
}

// load returns the whole collection. A missing or unreadable file yields an
// empty mapping so the caller always gets something usable - the failure is
// only logged.
func (c *collection[T]) load() map[string]T {
	m := make(map[string]T)
	b, err := os.ReadFile(c.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.WithError(err).Warnf("Failed reading collection file %s", c.path)
		}
		return m
	}
	if len(b) == 0 {
		return m
	}
	if err = json.Unmarshal(b, &m); err != nil {
		log.WithError(err).Errorf("Failed decoding collection file %s", c.path)
		return make(map[string]T)
	}
	if c.normalize != nil {
		m = c.normalize(m)
	}
	return m
}

// save serializes the entire mapping and replaces the file. On any failure
// the previous file is left untouched and the error is returned to the
// caller - a lost write is never silent.
func (c *collection[T]) save(m map[string]T) error {
	if c.normalize != nil {
		m = c.normalize(m)
	}
	b, err := json.Marshal(m)
	if err != nil {
		log.WithError(err).Errorf("Failed encoding collection %s", c.path)
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err = c.flk.Lock(); err != nil {
		log.WithError(err).Errorf("Failed locking collection %s", c.path)
		return err
	}
	defer c.flk.Unlock()
	tmp := c.path + ".tmp"
	if err = os.WriteFile(tmp, b, 0664); err != nil {
		log.WithError(err).Errorf("Failed writing collection %s", c.path)
		return err
	}
	if err = os.Rename(tmp, c.path); err != nil {
		log.WithError(err).Errorf("Failed replacing collection %s", c.path)
		os.Remove(tmp)
		return err
	}
	return nil
}
