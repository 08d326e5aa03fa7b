// Copyright (c) 2020-2025 Zhang Jingcheng <diogin@gmail.com>.
// Copyright (c) 2022-2024 HexInfra Co., Ltd.
// All rights reserved.
// Use of this source code is governed by a BSD-style license that can be found in the LICENSE file.

// Credential store: a username/password-hash table persisted as a
// gob-encoded file, the same shape as the original's users table but
// without the SQLite dependency nothing else in this tree needs. The
// original hashed passwords with a dedicated password-hashing library
// (libsodium's crypto_pwhash) rather than a general-purpose digest;
// Go's equivalent in the retrieved corpus is golang.org/x/crypto/bcrypt.
package credstore

import (
	"encoding/gob"
	"errors"
	"os"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

// ErrUnknownUser is returned by Verify when the username has no
// record, distinct from a wrong password so callers can log
// accordingly without leaking which case occurred to the client.
var ErrUnknownUser = errors.New("credstore: unknown user")

// ErrWrongPassword is returned by Verify when the username exists but
// the supplied password does not match.
var ErrWrongPassword = errors.New("credstore: wrong password")

type record struct {
	PasswordHash string
}

// Store is a username -> bcrypt hash table, safe for concurrent use
// by multiple worker goroutines.
type Store struct {
	mu   sync.RWMutex
	path string
	recs map[string]record
}

// Open loads path if it exists, or starts an empty store if it
// doesn't; a missing file is not an error, matching the original
// creating its table on first run.
func Open(path string) (*Store, error) {
	s := &Store{path: path, recs: make(map[string]record)}

	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&s.recs); err != nil {
		return nil, err
	}
	return s, nil
}

// Add hashes password and stores it under username, overwriting any
// existing record, then persists the store to disk.
func (s *Store) Add(username, password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.recs[username] = record{PasswordHash: string(hash)}
	recs := cloneRecords(s.recs)
	s.mu.Unlock()

	return s.persist(recs)
}

// Verify reports whether password matches the stored hash for
// username.
func (s *Store) Verify(username, password string) error {
	s.mu.RLock()
	rec, ok := s.recs[username]
	s.mu.RUnlock()

	if !ok {
		return ErrUnknownUser
	}
	if err := bcrypt.CompareHashAndPassword([]byte(rec.PasswordHash), []byte(password)); err != nil {
		return ErrWrongPassword
	}
	return nil
}

func (s *Store) persist(recs map[string]record) error {
	tmp := s.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(f).Encode(recs); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}

func cloneRecords(recs map[string]record) map[string]record {
	out := make(map[string]record, len(recs))
	for k, v := range recs {
		out[k] = v
	}
	return out
}
