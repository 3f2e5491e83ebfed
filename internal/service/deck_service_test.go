package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type deckFixture struct {
	svc    *deckService
	decks  *fakeDecks
	cards  *fakeCards
	states *fakeStates
}

func newDeckFixture(t *testing.T) (*deckFixture, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := newTxDB(t)
	f := &deckFixture{decks: newFakeDecks(), cards: newFakeCards(), states: newFakeStates()}

	svc, err := NewDeckService(db, f.decks, f.cards, f.states, discardLogger())
	require.NoError(t, err)
	f.svc = svc.(*deckService)
	return f, mock
}

var cardContent = json.RawMessage(`{"front":"el perro","back":"the dog"}`)

func TestDeckService_CreateAndListDecks(t *testing.T) {
	ctx := context.Background()
	f, _ := newDeckFixture(t)
	userID := uuid.New()

	_, err := f.svc.CreateDeck(ctx, userID, "Verbs")
	require.NoError(t, err)
	_, err = f.svc.CreateDeck(ctx, userID, "Animals")
	require.NoError(t, err)
	_, err = f.svc.CreateDeck(ctx, uuid.New(), "Someone else's")
	require.NoError(t, err)

	decks, err := f.svc.ListDecks(ctx, userID)
	require.NoError(t, err)
	require.Len(t, decks, 2)
	assert.Equal(t, "Animals", decks[0].Name)

	_, err = f.svc.CreateDeck(ctx, userID, "")
	assert.ErrorIs(t, err, domain.ErrEmptyDeckName)
}

func TestDeckService_CreateCard(t *testing.T) {
	ctx := context.Background()
	f, mock := newDeckFixture(t)
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	f.svc.now = func() time.Time { return now }

	userID := uuid.New()
	deck, err := f.svc.CreateDeck(ctx, userID, "Animals")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()

	card, err := f.svc.CreateCard(ctx, userID, deck.ID, cardContent)
	require.NoError(t, err)
	assert.Equal(t, deck.ID, card.DeckID)

	state, ok := f.states.states[card.ID]
	require.True(t, ok, "initial review state must be stored")
	assert.Equal(t, domain.DefaultInterval, state.Interval)
	assert.Equal(t, domain.DefaultEaseFactor, state.EaseFactor)
	assert.Equal(t, now, state.NextReviewAt)
}

func TestDeckService_CreateCard_RollsBack(t *testing.T) {
	ctx := context.Background()
	f, mock := newDeckFixture(t)
	userID := uuid.New()
	deck, err := f.svc.CreateDeck(ctx, userID, "Animals")
	require.NoError(t, err)

	f.states.createErr = errors.New("constraint violated")
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err = f.svc.CreateCard(ctx, userID, deck.ID, cardContent)
	var svcErr *ServiceError
	require.ErrorAs(t, err, &svcErr)
	assert.Equal(t, "create_card", svcErr.Operation)
}

func TestDeckService_CreateCard_Rejected(t *testing.T) {
	ctx := context.Background()
	f, _ := newDeckFixture(t)
	owner := uuid.New()
	deck, err := f.svc.CreateDeck(ctx, owner, "Animals")
	require.NoError(t, err)

	_, err = f.svc.CreateCard(ctx, uuid.New(), deck.ID, cardContent)
	assert.ErrorIs(t, err, ErrNotOwned)

	_, err = f.svc.CreateCard(ctx, owner, uuid.New(), cardContent)
	assert.ErrorIs(t, err, store.ErrDeckNotFound)

	_, err = f.svc.CreateCard(ctx, owner, deck.ID, json.RawMessage(`{not json`))
	assert.ErrorIs(t, err, domain.ErrCardContentInvalid)
}

func TestDeckService_UpdateAndDeleteCard(t *testing.T) {
	ctx := context.Background()
	f, mock := newDeckFixture(t)
	owner := uuid.New()
	deck, err := f.svc.CreateDeck(ctx, owner, "Animals")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectCommit()
	card, err := f.svc.CreateCard(ctx, owner, deck.ID, cardContent)
	require.NoError(t, err)

	updated := json.RawMessage(`{"front":"el gato","back":"the cat"}`)
	_, err = f.svc.UpdateCardContent(ctx, uuid.New(), card.ID, updated)
	assert.ErrorIs(t, err, ErrNotOwned)

	got, err := f.svc.UpdateCardContent(ctx, owner, card.ID, updated)
	require.NoError(t, err)
	assert.JSONEq(t, string(updated), string(got.Content))
	assert.JSONEq(t, string(updated), string(f.cards.cards[card.ID].Content))

	assert.ErrorIs(t, f.svc.DeleteCard(ctx, uuid.New(), card.ID), ErrNotOwned)
	require.NoError(t, f.svc.DeleteCard(ctx, owner, card.ID))
	assert.True(t, store.IsNotFoundError(f.svc.DeleteCard(ctx, owner, card.ID)))
}
