// Package artifact persists and serves the trained pricing model together
// with its feature-column schema. The two are only meaningful as a pair: a
// model scored against a different column order produces garbage silently,
// so the pair is written together and cross-checked on load.
package artifact

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"smartrate/internal/domain"
	"smartrate/internal/ml/forest"
)

const (
	modelFile   = "price_model.json"
	columnsFile = "feature_columns.json"
)

// Pair is the loaded artifact: the fitted model and the canonical feature
// schema recorded when it was trained. Read-only after load.
type Pair struct {
	Model   *forest.Forest
	Columns []string
}

// Store reads and writes the artifact pair under a fixed directory and
// caches the loaded pair for the lifetime of the process. A retrained
// artifact is only picked up after restart; callers needing hot reload must
// construct a fresh Store.
type Store struct {
	dir    string
	cached atomic.Pointer[Pair]
	group  singleflight.Group
}

func NewStore(dir string) *Store { return &Store{dir: dir} }

// modelBlob is the on-disk shape of the model file. SchemaHash ties the
// model to the exact column list it was trained with.
type modelBlob struct {
	SchemaHash string         `json:"schema_hash"`
	Forest     *forest.Forest `json:"forest"`
}

func schemaHash(columns []string) string {
	sum := sha1.Sum([]byte(strings.Join(columns, "\x00")))
	return hex.EncodeToString(sum[:])
}

// Load returns the cached pair, reading it from disk at most once per
// process. Concurrent first calls are collapsed so the files are read a
// single time and every caller observes the same pair.
func (s *Store) Load(ctx context.Context) (*Pair, error) {
	if p := s.cached.Load(); p != nil {
		return p, nil
	}
	v, err, _ := s.group.Do("load", func() (any, error) {
		if p := s.cached.Load(); p != nil {
			return p, nil
		}
		p, err := s.read()
		if err != nil {
			return nil, err
		}
		s.cached.Store(p)
		return p, nil
	})
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return v.(*Pair), nil
}

func (s *Store) read() (*Pair, error) {
	mb, err := os.ReadFile(filepath.Join(s.dir, modelFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, modelFile)
		}
		return nil, fmt.Errorf("read model: %w", err)
	}
	cb, err := os.ReadFile(filepath.Join(s.dir, columnsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", domain.ErrArtifactNotFound, columnsFile)
		}
		return nil, fmt.Errorf("read feature columns: %w", err)
	}

	var blob modelBlob
	if err := json.Unmarshal(mb, &blob); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	var columns []string
	if err := json.Unmarshal(cb, &columns); err != nil {
		return nil, fmt.Errorf("decode feature columns: %w", err)
	}
	if blob.Forest == nil || len(columns) == 0 {
		return nil, fmt.Errorf("%w: empty artifact", domain.ErrSchemaMismatch)
	}
	if blob.SchemaHash != schemaHash(columns) {
		return nil, fmt.Errorf("%w: model was trained against a different column list", domain.ErrSchemaMismatch)
	}
	if blob.Forest.Features != len(columns) {
		return nil, fmt.Errorf("%w: model expects %d features, schema has %d",
			domain.ErrSchemaMismatch, blob.Forest.Features, len(columns))
	}
	return &Pair{Model: blob.Forest, Columns: columns}, nil
}

// Save writes the pair. Each blob goes to a temp file in the artifact
// directory and is renamed into place, so readers see either the previous
// complete file or the new one; the schema hash embedded in the model blob
// lets Load reject a mixed pair from an interrupted save. Training runs are
// serialized externally, concurrent Saves are not supported.
func (s *Store) Save(model *forest.Forest, columns []string) error {
	if model == nil || len(columns) == 0 {
		return fmt.Errorf("artifact: nothing to save")
	}
	if model.Features != len(columns) {
		return fmt.Errorf("%w: model expects %d features, schema has %d",
			domain.ErrSchemaMismatch, model.Features, len(columns))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	mb, err := json.Marshal(modelBlob{SchemaHash: schemaHash(columns), Forest: model})
	if err != nil {
		return fmt.Errorf("encode model: %w", err)
	}
	cb, err := json.Marshal(columns)
	if err != nil {
		return fmt.Errorf("encode feature columns: %w", err)
	}

	if err := s.writeAtomic(modelFile, mb); err != nil {
		return err
	}
	return s.writeAtomic(columnsFile, cb)
}

func (s *Store) writeAtomic(name string, b []byte) error {
	tmp, err := os.CreateTemp(s.dir, name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	return nil
}
