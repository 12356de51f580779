// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package clinic_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"

	"codeberg.org/oliverandrich/nutrilab/internal/models"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/clinic"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

// memStore keeps objects in memory.
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string
	err     error
	// afterPut runs once an object has been stored.
	afterPut func()
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key string, r io.Reader, contentType string) error {
	if s.err != nil {
		return s.err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.objects[key] = b
	s.types[key] = contentType
	s.mu.Unlock()
	if s.afterPut != nil {
		s.afterPut()
	}
	return nil
}

func (s *memStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, key)
	delete(s.types, key)
	s.deleted = append(s.deleted, key)
	return nil
}

func (s *memStore) URL(key string) string {
	return "/media/" + key
}

type fixture struct {
	db    *sqlx.DB
	svc   *clinic.Service
	repo  *repository.Repository
	store *memStore
	owner *models.User
	other *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, repo := testutil.NewTestDB(t)
	store := newMemStore()
	return &fixture{
		db:    db,
		svc:   clinic.NewService(repo, store),
		repo:  repo,
		store: store,
		owner: testutil.NewActiveTestUser(t, repo, "andre"),
		other: testutil.NewActiveTestUser(t, repo, "bruna"),
	}
}

// pngHeader is enough for content sniffing to report image/png.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func pngUpload(name string) *clinic.Upload {
	return &clinic.Upload{Filename: name, ContentType: "image/png", Body: bytes.NewReader(pngHeader)}
}

func mustPatient(t *testing.T, f *fixture, ownerID int64, name string) *models.Patient {
	t.Helper()
	return testutil.NewTestPatient(t, f.repo, ownerID, name)
}

var errStore = errors.New("bucket unavailable")

func TestNewService(t *testing.T) {
	f := newFixture(t)

	require.NotNil(t, f.svc)
}
