package api

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/phrazzld/quill-api/internal/analysis"
	"github.com/phrazzld/quill-api/internal/domain"
	"github.com/phrazzld/quill-api/internal/domain/srs"
	"github.com/phrazzld/quill-api/internal/service"
	"github.com/phrazzld/quill-api/internal/service/auth"
	"github.com/phrazzld/quill-api/internal/service/card_review"
	"github.com/phrazzld/quill-api/internal/store"
	"github.com/stretchr/testify/mock"
)

type mockUserService struct{ mock.Mock }

var _ service.UserService = (*mockUserService)(nil)

func (m *mockUserService) Register(ctx context.Context, email, password, lang string) (*domain.User, error) {
	args := m.Called(ctx, email, password, lang)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) Authenticate(ctx context.Context, email, password string) (*domain.User, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

func (m *mockUserService) GetUser(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*domain.User)
	return u, args.Error(1)
}

type mockJWTService struct{ mock.Mock }

var _ auth.JWTService = (*mockJWTService)(nil)

func (m *mockJWTService) GenerateToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockJWTService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	c, _ := args.Get(0).(*auth.Claims)
	return c, args.Error(1)
}

func (m *mockJWTService) GenerateRefreshToken(ctx context.Context, userID uuid.UUID) (string, error) {
	args := m.Called(ctx, userID)
	return args.String(0), args.Error(1)
}

func (m *mockJWTService) ValidateRefreshToken(ctx context.Context, token string) (*auth.Claims, error) {
	args := m.Called(ctx, token)
	c, _ := args.Get(0).(*auth.Claims)
	return c, args.Error(1)
}

type mockDeckService struct{ mock.Mock }

var _ service.DeckService = (*mockDeckService)(nil)

func (m *mockDeckService) CreateDeck(ctx context.Context, userID uuid.UUID, name string) (*domain.Deck, error) {
	args := m.Called(ctx, userID, name)
	d, _ := args.Get(0).(*domain.Deck)
	return d, args.Error(1)
}

func (m *mockDeckService) ListDecks(ctx context.Context, userID uuid.UUID) ([]*domain.Deck, error) {
	args := m.Called(ctx, userID)
	d, _ := args.Get(0).([]*domain.Deck)
	return d, args.Error(1)
}

func (m *mockDeckService) CreateCard(ctx context.Context, userID, deckID uuid.UUID, content json.RawMessage) (*domain.Card, error) {
	args := m.Called(ctx, userID, deckID, content)
	c, _ := args.Get(0).(*domain.Card)
	return c, args.Error(1)
}

func (m *mockDeckService) UpdateCardContent(ctx context.Context, userID, cardID uuid.UUID, content json.RawMessage) (*domain.Card, error) {
	args := m.Called(ctx, userID, cardID, content)
	c, _ := args.Get(0).(*domain.Card)
	return c, args.Error(1)
}

func (m *mockDeckService) DeleteCard(ctx context.Context, userID, cardID uuid.UUID) error {
	return m.Called(ctx, userID, cardID).Error(0)
}

type mockReviewService struct{ mock.Mock }

var _ card_review.CardReviewService = (*mockReviewService)(nil)

func (m *mockReviewService) GetDueCards(ctx context.Context, userID uuid.UUID, limit int) ([]store.DueCard, error) {
	args := m.Called(ctx, userID, limit)
	d, _ := args.Get(0).([]store.DueCard)
	return d, args.Error(1)
}

func (m *mockReviewService) SubmitReview(
	ctx context.Context,
	userID, cardID uuid.UUID,
	answer card_review.ReviewAnswer,
) (*domain.ReviewState, error) {
	args := m.Called(ctx, userID, cardID, answer)
	s, _ := args.Get(0).(*domain.ReviewState)
	return s, args.Error(1)
}

func (m *mockReviewService) PreviewIntervals(ctx context.Context, userID, cardID uuid.UUID) (srs.Intervals, error) {
	args := m.Called(ctx, userID, cardID)
	i, _ := args.Get(0).(srs.Intervals)
	return i, args.Error(1)
}

func (m *mockReviewService) PostponeReview(ctx context.Context, userID, cardID uuid.UUID, days int) (*domain.ReviewState, error) {
	args := m.Called(ctx, userID, cardID, days)
	s, _ := args.Get(0).(*domain.ReviewState)
	return s, args.Error(1)
}

type mockJournalService struct{ mock.Mock }

var _ service.JournalService = (*mockJournalService)(nil)

func (m *mockJournalService) CreateEntry(ctx context.Context, userID uuid.UUID, text string) (*domain.JournalEntry, error) {
	args := m.Called(ctx, userID, text)
	e, _ := args.Get(0).(*domain.JournalEntry)
	return e, args.Error(1)
}

func (m *mockJournalService) GetEntry(ctx context.Context, userID, entryID uuid.UUID) (*service.EntryWithAnalysis, error) {
	args := m.Called(ctx, userID, entryID)
	e, _ := args.Get(0).(*service.EntryWithAnalysis)
	return e, args.Error(1)
}

func (m *mockJournalService) ListEntries(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.JournalEntry, error) {
	args := m.Called(ctx, userID, limit, offset)
	e, _ := args.Get(0).([]*domain.JournalEntry)
	return e, args.Error(1)
}

func (m *mockJournalService) GetEntryForAnalysis(ctx context.Context, entryID uuid.UUID) (*domain.JournalEntry, string, error) {
	args := m.Called(ctx, entryID)
	e, _ := args.Get(0).(*domain.JournalEntry)
	return e, args.String(1), args.Error(2)
}

func (m *mockJournalService) UpdateEntryStatus(ctx context.Context, entryID uuid.UUID, status domain.EntryStatus) error {
	return m.Called(ctx, entryID, status).Error(0)
}

func (m *mockJournalService) RecordAnalysis(ctx context.Context, entry *domain.JournalEntry, result *analysis.Result) error {
	return m.Called(ctx, entry, result).Error(0)
}

type mockProficiencyService struct{ mock.Mock }

var _ service.ProficiencyService = (*mockProficiencyService)(nil)

func (m *mockProficiencyService) GetForecast(ctx context.Context, userID uuid.UUID, horizon int) (*domain.ProficiencyForecast, error) {
	args := m.Called(ctx, userID, horizon)
	f, _ := args.Get(0).(*domain.ProficiencyForecast)
	return f, args.Error(1)
}
