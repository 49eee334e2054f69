package archive

import (
	"encoding/json"
	"fmt"
	"time"

	"go.etcd.io/bbolt"
)

var runsBucket = []byte("runs")

// Run is one journal entry describing a digest build.
type Run struct {
	Digest       string    `json:"digest"`
	StartedAt    time.Time `json:"started_at"`
	FinishedAt   time.Time `json:"finished_at"`
	Topics       int       `json:"topics"`
	Collected    int       `json:"collected"`
	Kept         int       `json:"kept"`
	Failures     []string  `json:"failures,omitempty"`
	ArtifactPath string    `json:"artifact_path,omitempty"`
}

// Store is a bbolt-backed journal of aggregation runs. Only run metadata is
// persisted, never the articles themselves.
type Store struct {
	db *bbolt.DB
}

// Open opens the journal at path, creating it if needed.
func Open(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0o600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("open run journal %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(runsBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init run journal: %w", err)
	}

	return &Store{db: db}, nil
}

// Close releases the underlying database.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// RecordRun appends one run, keyed by its start time.
func (s *Store) RecordRun(run Run) error {
	payload, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	key := []byte(run.StartedAt.UTC().Format(time.RFC3339Nano))
	err = s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(runsBucket).Put(key, payload)
	})
	if err != nil {
		return fmt.Errorf("store run: %w", err)
	}
	return nil
}

// RecentRuns returns up to limit runs, newest first.
func (s *Store) RecentRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		return nil, nil
	}

	var runs []Run
	err := s.db.View(func(tx *bbolt.Tx) error {
		c := tx.Bucket(runsBucket).Cursor()
		for k, v := c.Last(); k != nil && len(runs) < limit; k, v = c.Prev() {
			var run Run
			if err := json.Unmarshal(v, &run); err != nil {
				return fmt.Errorf("decode run %s: %w", k, err)
			}
			runs = append(runs, run)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return runs, nil
}
