package store

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/domain"
)

// DeckStore persists decks.
type DeckStore interface {
	Create(ctx context.Context, deck *domain.Deck) error

	// GetByID returns ErrDeckNotFound if the deck does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Deck, error)

	// ListByUser returns the user's decks ordered by name.
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error)
}

// DueCard is a card together with its review state.
type DueCard struct {
	Card  *domain.Card        `json:"card"`
	State *domain.ReviewState `json:"review_state"`
}

// CardStore persists flashcards.
type CardStore interface {
	// Create stores a single card. Callers that also create the card's
	// review state must run both in one transaction.
	Create(ctx context.Context, card *domain.Card) error

	// GetByID returns ErrCardNotFound if the card does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Card, error)

	// UpdateContent replaces a card's content.
	// Returns ErrCardNotFound if the card does not exist.
	UpdateContent(ctx context.Context, id uuid.UUID, content []byte) error

	// Delete removes a card. Review state and logs are removed by
	// ON DELETE CASCADE. Returns ErrCardNotFound if the card does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// ListDue returns up to limit of the user's cards whose next review is
	// at or before now, most overdue first.
	ListDue(ctx context.Context, userID uuid.UUID, now time.Time, limit int) ([]DueCard, error)

	// WithTx returns a CardStore bound to tx.
	WithTx(tx *sql.Tx) CardStore
}

// ReviewStateStore persists per-card scheduling state.
type ReviewStateStore interface {
	// Create stores the state of a new card.
	Create(ctx context.Context, state *domain.ReviewState) error

	// Get returns ErrReviewStateNotFound if the card has no state. It takes
	// no lock and must not be used for read-modify-write.
	Get(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error)

	// GetForUpdate is Get with SELECT ... FOR UPDATE. It must run inside a
	// transaction so concurrent reviews of one card serialize.
	GetForUpdate(ctx context.Context, userID, cardID uuid.UUID) (*domain.ReviewState, error)

	// Update overwrites the state identified by its user and card IDs.
	// Returns ErrReviewStateNotFound if no row matched.
	Update(ctx context.Context, state *domain.ReviewState) error

	// WithTx returns a ReviewStateStore bound to tx.
	WithTx(tx *sql.Tx) ReviewStateStore
}

// ReviewLogStore appends review history.
type ReviewLogStore interface {
	Create(ctx context.Context, entry *domain.ReviewLog) error

	// CountSince returns how many reviews the user has logged since t.
	CountSince(ctx context.Context, userID uuid.UUID, t time.Time) (int, error)

	// WithTx returns a ReviewLogStore bound to tx.
	WithTx(tx *sql.Tx) ReviewLogStore
}
