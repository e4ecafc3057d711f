// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package state persists the status cache between runs in a pebble database.
// Records come back stale: the engine seeds them at reflection None and
// re-checks paths on demand.
package state

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/pebble"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/svnsync/pkg/status"
)

// key layout:
//
//	status:<lower-case path> -> JSON status.Record
//	meta:saved_at            -> RFC3339 time of the last Save
const (
	statusPrefix = "status:"
	statusEnd    = "status;" // ';' sorts right after ':'
	savedAtKey   = "meta:saved_at"
)

// 💾 Store is a pebble-backed snapshot of status records
type Store struct {
	db   *pebble.DB
	path string
}

// Open opens (or creates) the snapshot database at path
func Open(ctx context.Context, path string) (*Store, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("opening snapshot database")

	db, err := pebble.Open(path, &pebble.Options{Logger: pebbleLogger{logger: logger}})
	if err != nil {
		return nil, errors.Errorf("opening snapshot database %s: %w", path, err)
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	if err := s.db.Close(); err != nil {
		return errors.Errorf("closing snapshot database: %w", err)
	}
	s.db = nil
	return nil
}

func recordKey(path string) []byte {
	return []byte(statusPrefix + strings.ToLower(status.NormalizePath(path)))
}

// Save replaces the stored snapshot with records in one synced batch
func (s *Store) Save(ctx context.Context, records []status.Record) error {
	if s.db == nil {
		return errors.New("snapshot database is closed")
	}

	b := s.db.NewBatch()
	defer b.Close()

	if err := b.DeleteRange([]byte(statusPrefix), []byte(statusEnd), nil); err != nil {
		return errors.Errorf("clearing previous snapshot: %w", err)
	}
	for _, r := range records {
		data, err := json.Marshal(r)
		if err != nil {
			return errors.Errorf("encoding record %s: %w", r.Path, err)
		}
		if err := b.Set(recordKey(r.Path), data, nil); err != nil {
			return errors.Errorf("writing record %s: %w", r.Path, err)
		}
	}
	if err := b.Set([]byte(savedAtKey), []byte(time.Now().UTC().Format(time.RFC3339)), nil); err != nil {
		return errors.Errorf("writing snapshot time: %w", err)
	}
	if err := b.Commit(pebble.Sync); err != nil {
		return errors.Errorf("committing snapshot: %w", err)
	}

	zerolog.Ctx(ctx).Debug().Int("records", len(records)).Str("path", s.path).Msg("snapshot saved")
	return nil
}

// Load reads every stored record. Entries that fail to decode are skipped.
func (s *Store) Load(ctx context.Context) ([]status.Record, error) {
	if s.db == nil {
		return nil, errors.New("snapshot database is closed")
	}
	logger := zerolog.Ctx(ctx)

	iter, err := s.db.NewIter(&pebble.IterOptions{
		LowerBound: []byte(statusPrefix),
		UpperBound: []byte(statusEnd),
	})
	if err != nil {
		return nil, errors.Errorf("creating iterator: %w", err)
	}
	defer iter.Close()

	records := []status.Record{}
	for iter.First(); iter.Valid(); iter.Next() {
		var r status.Record
		if err := json.Unmarshal(iter.Value(), &r); err != nil {
			logger.Warn().Err(err).Str("key", string(iter.Key())).Msg("skipping unreadable snapshot record")
			continue
		}
		records = append(records, r)
	}
	if err := iter.Error(); err != nil {
		return nil, errors.Errorf("iterating snapshot: %w", err)
	}

	logger.Debug().Int("records", len(records)).Msg("snapshot loaded")
	return records, nil
}

// SavedAt returns when the snapshot was last written; zero if never
func (s *Store) SavedAt() (time.Time, error) {
	if s.db == nil {
		return time.Time{}, errors.New("snapshot database is closed")
	}
	val, closer, err := s.db.Get([]byte(savedAtKey))
	if errors.Is(err, pebble.ErrNotFound) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, errors.Errorf("reading snapshot time: %w", err)
	}
	defer closer.Close()

	t, err := time.Parse(time.RFC3339, string(val))
	if err != nil {
		return time.Time{}, errors.Errorf("parsing snapshot time: %w", err)
	}
	return t, nil
}

// pebbleLogger routes pebble's internal logging into zerolog
type pebbleLogger struct {
	logger *zerolog.Logger
}

func (l pebbleLogger) Infof(format string, args ...interface{}) {
	l.logger.Trace().Str("component", "pebble").Msg(fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Errorf(format string, args ...interface{}) {
	l.logger.Error().Str("component", "pebble").Msg(fmt.Sprintf(format, args...))
}

func (l pebbleLogger) Fatalf(format string, args ...interface{}) {
	l.logger.Fatal().Str("component", "pebble").Msg(fmt.Sprintf(format, args...))
}
