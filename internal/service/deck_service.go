package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/platform/logger"
	"github.com/phrazzld/quill-api/internal/store"
)

// DeckService manages decks and the cards in them.
type DeckService interface {
	CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error)
	ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)

	// CreateCard stores the card and its initial review state atomically.
	// The new card is due immediately.
	CreateCard(ctx context.Context, userID, deckID uuid.UUID, content json.RawMessage) (*domain.Card, error)

	UpdateCardContent(ctx context.Context, userID, cardID uuid.UUID, content json.RawMessage) (*domain.Card, error)
	DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error
}

type deckService struct {
	db     *sql.DB
	decks  store.DeckStore
	cards  store.CardStore
	states store.ReviewStateStore
	logger *slog.Logger
	now    func() time.Time
}

// NewDeckService creates a DeckService. db is used to open transactions.
func NewDeckService(
	db *sql.DB,
	decks store.DeckStore,
	cards store.CardStore,
	states store.ReviewStateStore,
	logger *slog.Logger,
) (DeckService, error) {
	switch {
	case db == nil:
		return nil, nilDependency("db")
	case decks == nil:
		return nil, nilDependency("decks")
	case cards == nil:
		return nil, nilDependency("cards")
	case states == nil:
		return nil, nilDependency("states")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &deckService{
		db:     db,
		decks:  decks,
		cards:  cards,
		states: states,
		logger: logger.With(slog.String("component", "deck_service")),
		now:    time.Now,
	}, nil
}

func (s *deckService) CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	deck, err := domain.NewDeck(userID, name)
	if err != nil {
		return nil, err
	}
	if err := s.decks.Create(ctx, deck); err != nil {
		return nil, NewServiceError("create_deck", "failed to save deck", err)
	}
	return deck, nil
}

func (s *deckService) ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	decks, err := s.decks.ListByUser(ctx, userID)
	if err != nil {
		return nil, NewServiceError("list_decks", "failed to list decks", err)
	}
	return decks, nil
}

func (s *deckService) CreateCard(
	ctx context.Context,
	userID, deckID uuid.UUID,
	content json.RawMessage,
) (*domain.Card, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	deck, err := s.decks.GetByID(ctx, deckID)
	if err != nil {
		return nil, NewServiceError("create_card", "failed to load deck", err)
	}
	if deck.UserID != userID {
		return nil, ErrNotOwned
	}

	card, err := domain.NewCard(userID, deckID, content)
	if err != nil {
		return nil, err
	}
	state, err := domain.NewReviewState(userID, card.ID, s.now())
	if err != nil {
		return nil, err
	}

	err = store.RunInTransaction(ctx, s.db, func(ctx context.Context, tx *sql.Tx) error {
		if err := s.cards.WithTx(tx).Create(ctx, card); err != nil {
			return NewServiceError("create_card", "failed to save card", err)
		}
		if err := s.states.WithTx(tx).Create(ctx, state); err != nil {
			return NewServiceError("create_card", "failed to save review state", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Debug("card created",
		slog.String("card_id", card.ID.String()),
		slog.String("deck_id", deckID.String()))
	return card, nil
}

func (s *deckService) UpdateCardContent(
	ctx context.Context,
	userID, cardID uuid.UUID,
	content json.RawMessage,
) (*domain.Card, error) {
	card, err := s.ownedCard(ctx, "update_card", userID, cardID)
	if err != nil {
		return nil, err
	}
	if err := card.UpdateContent(content); err != nil {
		return nil, err
	}
	if err := s.cards.UpdateContent(ctx, cardID, card.Content); err != nil {
		return nil, NewServiceError("update_card", "failed to save content", err)
	}
	return card, nil
}

func (s *deckService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	if _, err := s.ownedCard(ctx, "delete_card", userID, cardID); err != nil {
		return err
	}
	if err := s.cards.Delete(ctx, cardID); err != nil {
		return NewServiceError("delete_card", "failed to delete card", err)
	}
	logger.FromContextOrDefault(ctx, s.logger).Info("card deleted", slog.String("card_id", cardID.String()))
	return nil
}

func (s *deckService) ownedCard(ctx context.Context, op string, userID, cardID uuid.UUID) (*domain.Card, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return nil, NewServiceError(op, "failed to load card", err)
	}
	if card.UserID != userID {
		return nil, ErrNotOwned
	}
	return card, nil
}
