package memory

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/cookie-auth/internal/models"
	"github.com/magabrotheeeer/cookie-auth/internal/storage"
)

func account(id string) func() models.Account {
	return func() models.Account {
		return models.Account{ID: id, PasswordHash: "hash", FullName: "Test User"}
	}
}

func TestInsertIfAbsentByEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	got, err := s.InsertIfAbsentByEmail(ctx, "  Alice@Example.com ", account("id-1"))
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, "alice@example.com", got.Email)

	tests := []struct {
		name  string
		email string
	}{
		{name: "same email", email: "alice@example.com"},
		{name: "different case", email: "ALICE@EXAMPLE.COM"},
		{name: "surrounding spaces", email: " alice@example.com\t"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			_, err := s.InsertIfAbsentByEmail(ctx, tt.email, func() models.Account {
				called = true
				return models.Account{ID: "id-2"}
			})
			require.ErrorIs(t, err, storage.ErrUserExists)
			assert.False(t, called, "factory must not run on conflict")
			assert.Equal(t, 1, s.Len())
		})
	}
}

func TestInsertIfAbsentByEmail_DuplicateID(t *testing.T) {
	ctx := context.Background()
	s := New()

	_, err := s.InsertIfAbsentByEmail(ctx, "a@example.com", account("same"))
	require.NoError(t, err)

	_, err = s.InsertIfAbsentByEmail(ctx, "b@example.com", account("same"))
	require.Error(t, err)
	assert.Equal(t, 1, s.Len())

	_, err = s.FindByEmail(ctx, "b@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestInsertIfAbsentByEmail_Concurrent(t *testing.T) {
	ctx := context.Background()
	s := New()

	const workers = 64
	var (
		wg        sync.WaitGroup
		succeeded atomic.Int32
		conflicts atomic.Int32
	)

	start := make(chan struct{})
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			_, err := s.InsertIfAbsentByEmail(ctx, "race@example.com", account(fmt.Sprintf("id-%d", i)))
			switch {
			case err == nil:
				succeeded.Add(1)
			case assert.ErrorIs(t, err, storage.ErrUserExists):
				conflicts.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.EqualValues(t, 1, succeeded.Load())
	assert.EqualValues(t, workers-1, conflicts.Load())
	assert.Equal(t, 1, s.Len())
}

func TestGetAndFindByEmail(t *testing.T) {
	ctx := context.Background()
	s := New()

	created, err := s.InsertIfAbsentByEmail(ctx, "bob@example.com", account("bob"))
	require.NoError(t, err)

	got, err := s.Get(ctx, "bob")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	got, err = s.FindByEmail(ctx, "BOB@example.COM")
	require.NoError(t, err)
	assert.Equal(t, created, got)

	_, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)

	_, err = s.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, storage.ErrUserNotFound)
}

func TestCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := New()

	_, err := s.InsertIfAbsentByEmail(ctx, "a@example.com", account("a"))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, s.Len())

	_, err = s.Get(ctx, "a")
	assert.ErrorIs(t, err, context.Canceled)

	_, err = s.FindByEmail(ctx, "a@example.com")
	assert.ErrorIs(t, err, context.Canceled)
}
