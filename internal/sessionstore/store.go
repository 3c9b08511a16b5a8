// ABOUTME: Badger-backed persistence for the live tracking session between CLI runs
// ABOUTME: Holds one record: activity type, session state, collected track and stop time

package sessionstore

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	badger "github.com/dgraph-io/badger/v3"
	"github.com/harper/stride/internal/models"
	"github.com/harper/stride/internal/tracker"
)

// ErrNoSession is returned by Load when nothing has been saved.
var ErrNoSession = errors.New("no tracking session")

var currentKey = []byte("session:current")

// Record is the persisted live session.
type Record struct {
	ActivityType models.ActivityType `json:"activity_type"`
	Session      tracker.Session     `json:"session"`
	Track        []models.TrackPoint `json:"track,omitempty"`
	StoppedAt    *time.Time          `json:"stopped_at,omitempty"`
}

// Duration is the session's elapsed seconds at stop time, or at now while running.
func (r *Record) Duration(now time.Time) int64 {
	if r.StoppedAt != nil {
		return r.Session.ElapsedSeconds(*r.StoppedAt)
	}
	return r.Session.ElapsedSeconds(now)
}

// AppendPoint adds a sample to the track.
func (r *Record) AppendPoint(s tracker.GeoSample) {
	r.Track = append(r.Track, models.TrackPoint{
		Latitude:   s.Latitude,
		Longitude:  s.Longitude,
		RecordedAt: s.Timestamp,
	})
}

// Store wraps a badger database.
type Store struct {
	db *badger.DB
}

// Open opens or creates the store at dir.
func Open(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("create session dir: %w", err)
	}
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return &Store{db: db}, nil
}

// Load returns the saved record or ErrNoSession.
func (s *Store) Load() (*Record, error) {
	var rec Record
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(currentKey)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &rec, nil
}

// Save replaces the stored record.
func (s *Store) Save(rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(currentKey, data)
	})
}

// Clear removes the stored record. Clearing an empty store is not an error.
func (s *Store) Clear() error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(currentKey)
	})
}

func (s *Store) Close() error {
	return s.db.Close()
}
