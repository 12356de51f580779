// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package database_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"codeberg.org/oliverandrich/nutrilab/internal/database"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vinovest/sqlx"
)

func TestOpen_InMemory(t *testing.T) {
	db, err := database.Open(":memory:")

	require.NoError(t, err)
	require.NotNil(t, db)
	require.NoError(t, db.Close())
}

func TestOpen_DefaultDSN(t *testing.T) {
	tmpDir := t.TempDir()
	oldWd, _ := os.Getwd()
	require.NoError(t, os.Chdir(tmpDir))
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	db, err := database.Open("")

	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()
	assert.FileExists(t, filepath.Join(tmpDir, "data", "nutrilab.db"))
}

func TestOpen_MigrationsApplied(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	for _, table := range []string{"users", "activation_tokens", "patients", "measurements", "meals", "meal_options"} {
		var count int64
		err = db.Get(&count, "SELECT count(*) FROM sqlite_master WHERE type='table' AND name=?", table)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, table)
	}
}

func TestOpen_ForeignKeysEnabled(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var enabled int
	require.NoError(t, db.Get(&enabled, "PRAGMA foreign_keys"))
	assert.Equal(t, 1, enabled)
}

func TestOpen_FileDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "subdir", "test.db")

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	var journalMode string
	require.NoError(t, db.Get(&journalMode, "PRAGMA journal_mode"))
	assert.Equal(t, "wal", journalMode)
}

func TestWithTx_Commit(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	err = database.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		_, execErr := tx.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('a', 'a@x.com', 'h')`)
		return execErr
	})
	require.NoError(t, err)

	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM users"))
	assert.Equal(t, 1, count)
}

func TestWithTx_Rollback(t *testing.T) {
	db, err := database.Open(":memory:")
	require.NoError(t, err)
	defer func() {
		_ = db.Close()
	}()

	boom := errors.New("boom")
	err = database.WithTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, execErr := tx.Exec(`INSERT INTO users (username, email, password_hash) VALUES ('a', 'a@x.com', 'h')`); execErr != nil {
			return execErr
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	var count int
	require.NoError(t, db.Get(&count, "SELECT count(*) FROM users"))
	assert.Zero(t, count)
}
