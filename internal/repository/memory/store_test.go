package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"vault/internal/domain"
	"vault/internal/domain/models"
	"vault/internal/domain/models/docsystem"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, store *Store, email, username string) *models.User {
	t.Helper()
	user := &models.User{Base: models.NewBase(time.Now()), Email: email, Username: username, IsActive: true}
	require.NoError(t, NewUserRepository(store).Create(context.Background(), user))
	return user
}

func TestUserUniqueness(t *testing.T) {
	store := NewStore()
	seedUser(t, store, "alice@x.com", "alice")
	repo := NewUserRepository(store)

	err := repo.Create(context.Background(), &models.User{Base: models.NewBase(time.Now()), Email: "alice@x.com", Username: "other"})
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "email", conflict.Field)

	err = repo.Create(context.Background(), &models.User{Base: models.NewBase(time.Now()), Email: "b@x.com", Username: "alice"})
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "username", conflict.Field)
}

func TestExecTxRollsBack(t *testing.T) {
	store := NewStore()
	user := seedUser(t, store, "alice@x.com", "alice")
	tx := NewTransactionManager(store)
	docs := NewDocumentRepository(store)

	doc := &docsystem.Document{Base: models.NewBase(time.Now()), UserID: user.ID, Title: "draft"}
	boom := errors.New("boom")

	err := tx.ExecTx(context.Background(), func(ctx context.Context) error {
		require.NoError(t, docs.Create(ctx, doc))
		return tx.ExecTx(ctx, func(ctx context.Context) error { return boom })
	})
	assert.ErrorIs(t, err, boom)

	_, err = docs.GetByID(context.Background(), doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteCascadesLinks(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	user := seedUser(t, store, "alice@x.com", "alice")
	docs := NewDocumentRepository(store)
	tags := NewTagRepository(store)

	doc := &docsystem.Document{Base: models.NewBase(time.Now()), UserID: user.ID, Title: "a"}
	require.NoError(t, docs.Create(ctx, doc))
	tag, err := tags.FindOrCreate(ctx, user.ID, "idea", docsystem.DefaultTagColor)
	require.NoError(t, err)
	require.NoError(t, tags.AddDocumentTag(ctx, &docsystem.DocumentTag{DocumentID: doc.ID, TagID: tag.ID}))

	again, err := tags.FindOrCreate(ctx, user.ID, "idea", "#000000")
	require.NoError(t, err)
	assert.Equal(t, tag.ID, again.ID)

	require.NoError(t, docs.Delete(ctx, doc.ID, user.ID))

	listed, err := tags.ListByUser(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, 0, listed[0].DocumentCount)
}

func TestListPastTheEnd(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	user := seedUser(t, store, "alice@x.com", "alice")
	docs := NewDocumentRepository(store)
	require.NoError(t, docs.Create(ctx, &docsystem.Document{Base: models.NewBase(time.Now()), UserID: user.ID, Title: "only"}))

	for _, page := range []int{2, docsystem.MaxPage, 100_000_000_000_000_000} {
		items, total, err := docs.List(ctx, &docsystem.DocumentFilter{UserID: user.ID, Page: page, Limit: 100})
		require.NoError(t, err)
		assert.Equal(t, 1, total)
		assert.Empty(t, items, "page %d", page)
	}
}

func TestRollbackKeepsWritesFromOutsideTheTransaction(t *testing.T) {
	store := NewStore()
	ctx := context.Background()
	owner := seedUser(t, store, "alice@x.com", "alice")
	tx := NewTransactionManager(store)
	users := NewUserRepository(store)
	docs := NewDocumentRepository(store)

	doc := &docsystem.Document{Base: models.NewBase(time.Now()), UserID: owner.ID, Title: "discarded"}
	boom := errors.New("boom")
	started := make(chan struct{})
	release := make(chan struct{})

	var wg sync.WaitGroup
	var txErr error
	wg.Add(1)
	go func() {
		defer wg.Done()
		txErr = tx.ExecTx(ctx, func(ctx context.Context) error {
			if err := docs.Create(ctx, doc); err != nil {
				return err
			}
			close(started)
			<-release
			return boom
		})
	}()

	<-started
	created := make(chan error, 1)
	go func() {
		created <- users.Create(ctx, &models.User{Base: models.NewBase(time.Now()), Email: "bob@x.com", Username: "bob", IsActive: true})
	}()
	// Give the concurrent write a chance to land while the unit of work is open
	time.Sleep(20 * time.Millisecond)
	close(release)

	require.NoError(t, <-created)
	wg.Wait()
	assert.ErrorIs(t, txErr, boom)

	_, err := users.GetByEmail(ctx, "bob@x.com")
	assert.NoError(t, err, "write from outside the transaction survives its rollback")

	_, err = docs.GetByID(ctx, doc.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
