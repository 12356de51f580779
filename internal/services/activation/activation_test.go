// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

package activation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"codeberg.org/oliverandrich/nutrilab/internal/apperr"
	"codeberg.org/oliverandrich/nutrilab/internal/repository"
	"codeberg.org/oliverandrich/nutrilab/internal/services/activation"
	"codeberg.org/oliverandrich/nutrilab/internal/testutil"
)

type sentMail struct {
	to, username, link string
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendActivation(_ context.Context, to, username, link string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, sentMail{to, username, link})
	return nil
}

func newService(t *testing.T, repo *repository.Repository, ttl time.Duration) (*activation.Service, *fakeMailer) {
	t.Helper()
	mailer := &fakeMailer{}
	return activation.NewService(repo, mailer, "http://localhost:8080/", ttl), mailer
}

func TestHashToken(t *testing.T) {
	// sha256("andreandre@x.com")
	token := activation.HashToken("andre", "andre@x.com")

	assert.Len(t, token, 64)
	assert.Equal(t, token, activation.HashToken("andre", "andre@x.com"))
	assert.NotEqual(t, token, activation.HashToken("andre", "andre@y.com"))
	assert.Equal(t, activation.HashToken("andrea", "ndre@x.com"), token, "token depends on the concatenation only")
}

func TestHashToken_KnownValue(t *testing.T) {
	assert.Equal(t,
		"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855",
		activation.HashToken("", ""))
}

func TestIssueToken(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, mailer := newService(t, repo, 0)
	user := testutil.NewTestUser(t, repo, "andre")

	issued, err := svc.IssueToken(context.Background(), user)

	require.NoError(t, err)
	assert.Equal(t, activation.HashToken(user.Username, user.Email), issued.Token)
	assert.Equal(t, "http://localhost:8080/auth/ativar_conta/"+issued.Token, issued.Link)
	assert.Nil(t, issued.ExpiresAt)

	require.Len(t, mailer.sent, 1)
	assert.Equal(t, user.Email, mailer.sent[0].to)
	assert.Equal(t, "andre", mailer.sent[0].username)
	assert.Equal(t, issued.Link, mailer.sent[0].link)

	tok, err := repo.GetActivationToken(context.Background(), issued.Token)
	require.NoError(t, err)
	assert.False(t, tok.Consumed)
	assert.Equal(t, user.ID, tok.UserID)
}

func TestIssueToken_WithTTL(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, _ := newService(t, repo, 48*time.Hour)
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })
	user := testutil.NewTestUser(t, repo, "andre")

	issued, err := svc.IssueToken(context.Background(), user)

	require.NoError(t, err)
	require.NotNil(t, issued.ExpiresAt)
	assert.True(t, now.Add(48*time.Hour).Equal(*issued.ExpiresAt))
}

func TestIssueToken_DispatchFailure(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, mailer := newService(t, repo, 0)
	mailer.err = errors.New("smtp down")
	user := testutil.NewTestUser(t, repo, "andre")

	_, err := svc.IssueToken(context.Background(), user)

	require.ErrorIs(t, err, activation.ErrDispatch)
	assert.NotErrorIs(t, err, activation.ErrIssue)
	assert.Contains(t, err.Error(), "smtp down")
}

func TestIssueToken_PersistFailure(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, mailer := newService(t, repo, 0)
	user := testutil.NewTestUser(t, repo, "andre")
	_, err := svc.IssueToken(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.IssueToken(context.Background(), user)

	require.ErrorIs(t, err, activation.ErrIssue)
	assert.Len(t, mailer.sent, 1, "no email for a token that was not stored")
}

func TestConsumeToken_ActivatesOnce(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, _ := newService(t, repo, 0)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "andre")
	issued, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	require.NoError(t, svc.ConsumeToken(ctx, issued.Token))

	active, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, active.IsActive)
	tok, err := repo.GetActivationToken(ctx, issued.Token)
	require.NoError(t, err)
	assert.True(t, tok.Consumed)

	err = svc.ConsumeToken(ctx, issued.Token)
	require.ErrorIs(t, err, apperr.ErrAlreadyUsed)

	again, err := repo.GetActivationToken(ctx, issued.Token)
	require.NoError(t, err)
	assert.Equal(t, tok.ConsumedAt, again.ConsumedAt)
	still, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, still.IsActive)
}

func TestConsumeToken_Unknown(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, _ := newService(t, repo, 0)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "andre")
	issued, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	err = svc.ConsumeToken(ctx, activation.HashToken("nobody", "nobody@x.com"))

	require.ErrorIs(t, err, apperr.ErrNotFound)
	tok, err := repo.GetActivationToken(ctx, issued.Token)
	require.NoError(t, err)
	assert.False(t, tok.Consumed)
	u, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestConsumeToken_Expired(t *testing.T) {
	_, repo := testutil.NewTestDB(t)
	svc, _ := newService(t, repo, time.Hour)
	ctx := context.Background()
	now := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	svc.SetClock(func() time.Time { return now })
	user := testutil.NewTestUser(t, repo, "andre")
	issued, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	now = now.Add(2 * time.Hour)
	err = svc.ConsumeToken(ctx, issued.Token)

	require.ErrorIs(t, err, activation.ErrExpired)
	u, err := repo.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.False(t, u.IsActive)
}

func TestConsumeToken_ConcurrentVisits(t *testing.T) {
	_, repo := testutil.NewFileTestDB(t)
	svc, _ := newService(t, repo, 0)
	ctx := context.Background()
	user := testutil.NewTestUser(t, repo, "andre")
	issued, err := svc.IssueToken(ctx, user)
	require.NoError(t, err)

	const visits = 10
	var wg sync.WaitGroup
	results := make([]error, visits)
	for i := range visits {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = svc.ConsumeToken(ctx, issued.Token)
		}()
	}
	wg.Wait()

	var ok, used int
	for _, err := range results {
		if err == nil {
			ok++
			continue
		}
		if errors.Is(err, apperr.ErrAlreadyUsed) {
			used++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, visits-1, used)
}
