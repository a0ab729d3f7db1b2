package storage

import (
	"hash/fnv"
	"sync"

	"jsonvault/internal/metrics"
)

const shardCount = 32

type shard struct {
	mu   sync.RWMutex
	docs map[string]any
}

// Store holds JSON documents keyed by string. Keys are spread over a
// fixed set of shards so operations on independent keys do not contend
// on a single lock; mutations of the same key serialize on its shard.
type Store struct {
	shards [shardCount]*shard
	keys   int64
	keysMu sync.Mutex
}

func NewStore() *Store {
	s := &Store{}
	for i := range s.shards {
		s.shards[i] = &shard{docs: make(map[string]any)}
	}
	return s
}

func (s *Store) shardFor(key string) *shard {
	h := fnv.New32a()
	h.Write([]byte(key))
	return s.shards[h.Sum32()%shardCount]
}

// Get returns the document stored at key. Absence is reported through
// the boolean, never as an error.
func (s *Store) Get(key string) (any, bool) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	doc, ok := sh.docs[key]
	metrics.StorageOperationsTotal.WithLabelValues("get").Inc()
	return doc, ok
}

// Set unconditionally creates or overwrites the document at key.
func (s *Store) Set(key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, existed := sh.docs[key]
	sh.docs[key] = value
	sh.mu.Unlock()

	if !existed {
		s.addKeys(1)
	}
	metrics.StorageOperationsTotal.WithLabelValues("set").Inc()
}

// Delete removes the key if present. Deleting an absent key is not an
// error.
func (s *Store) Delete(key string) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	_, existed := sh.docs[key]
	delete(sh.docs, key)
	sh.mu.Unlock()

	if existed {
		s.addKeys(-1)
	}
	metrics.StorageOperationsTotal.WithLabelValues("delete").Inc()
}

// Merge deep-merges value into the document at key, creating it when
// absent. Object fields merge recursively; any other type pairing is
// replaced wholesale by the incoming value.
func (s *Store) Merge(key string, value any) {
	sh := s.shardFor(key)
	sh.mu.Lock()
	existing, existed := sh.docs[key]
	if existed {
		sh.docs[key] = deepMerge(existing, value)
	} else {
		sh.docs[key] = value
	}
	sh.mu.Unlock()

	if !existed {
		s.addKeys(1)
	}
	metrics.StorageOperationsTotal.WithLabelValues("merge").Inc()
}

// QueryGet evaluates a path query against the document at key and
// returns every match. A missing key is reported as found=false,
// distinct from a present document with zero matches.
func (s *Store) QueryGet(key, query string) (matches []any, found bool, err error) {
	sh := s.shardFor(key)
	sh.mu.RLock()
	doc, ok := sh.docs[key]
	sh.mu.RUnlock()

	metrics.StorageOperationsTotal.WithLabelValues("qget").Inc()
	if !ok {
		return nil, false, nil
	}

	matches, err = evalQuery(doc, query)
	if err != nil {
		return nil, true, err
	}
	return matches, true, nil
}

// QuerySet writes value at a dotted path inside the document at key,
// creating the document and any missing intermediate objects. It fails
// when the path descends through a scalar or indexes an array out of
// range.
func (s *Store) QuerySet(key, path string, value any) error {
	sh := s.shardFor(key)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	existing, existed := sh.docs[key]
	if !existed {
		existing = map[string]any{}
	}

	updated, err := setPath(existing, path, value)
	if err != nil {
		return err
	}
	sh.docs[key] = updated

	if !existed {
		s.addKeys(1)
	}
	metrics.StorageOperationsTotal.WithLabelValues("qset").Inc()
	return nil
}

// Len returns the number of stored documents.
func (s *Store) Len() int {
	s.keysMu.Lock()
	defer s.keysMu.Unlock()
	return int(s.keys)
}

func (s *Store) addKeys(delta int64) {
	s.keysMu.Lock()
	s.keys += delta
	metrics.StorageKeysTotal.Set(float64(s.keys))
	s.keysMu.Unlock()
}
