// Package study drives flash-card study sessions: card ordering, position
// tracking and the transitions between selecting, studying and complete.
package study

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"github.com/google/uuid"

	"github.com/example/lembra/pkg/models"
)

// State is the lifecycle state of a session
type State string

const (
	StateIdle      State = "idle"
	StateSelecting State = "selecting"
	StateStudying  State = "studying"
	StateComplete  State = "complete"
)

// Order selects how a session's cards are arranged
type Order string

const (
	// OrderRandom is an unbiased Fisher-Yates shuffle, freshly drawn on
	// every start and restart
	OrderRandom Order = "random"
	// OrderByProgress sorts ascending by stored mastery score, worst-known
	// first. Ties keep store iteration order.
	OrderByProgress Order = "progress"
)

// CardSource supplies the cards a session studies
type CardSource interface {
	GetByCategory(ctx context.Context, categoryID string) ([]models.FlashCard, error)
	GetByCategorySortedByProgress(ctx context.Context, categoryID string) ([]models.FlashCard, error)
}

// Session is one study pass over a category's cards. It is not safe for
// concurrent use; the Registry serializes access.
type Session struct {
	ID         string
	CategoryID string
	Order      Order
	State      State
	Cards      []models.FlashCard
	Index      int
	Revealed   bool
	// History is the ephemeral list of AI-generated phrases produced during
	// this session, kept to avoid duplicate generation
	History []models.GeneratedPhrase

	source CardSource
	rnd    *rand.Rand
}

// NewSession creates a session in the selecting state
func NewSession(source CardSource, rnd *rand.Rand, categoryID string, order Order) *Session {
	return &Session{
		ID:         uuid.NewString(),
		CategoryID: categoryID,
		Order:      order,
		State:      StateSelecting,
		source:     source,
		rnd:        rnd,
	}
}

// Start fetches the category's cards, applies the ordering policy and moves
// the session into studying (or straight to complete when empty)
func (s *Session) Start(ctx context.Context) error {
	cards, err := s.fetch(ctx)
	if err != nil {
		return err
	}
	s.Cards = cards
	s.Index = 0
	s.Revealed = false
	if len(s.Cards) == 0 {
		s.State = StateComplete
	} else {
		s.State = StateStudying
	}
	return nil
}

// Restart re-fetches and re-orders the cards rather than reusing the stale
// in-memory ordering, so progress recorded during the session is reflected
func (s *Session) Restart(ctx context.Context) error {
	return s.Start(ctx)
}

func (s *Session) fetch(ctx context.Context) ([]models.FlashCard, error) {
	switch s.Order {
	case OrderByProgress:
		return s.source.GetByCategorySortedByProgress(ctx, s.CategoryID)
	case OrderRandom:
		cards, err := s.source.GetByCategory(ctx, s.CategoryID)
		if err != nil {
			return nil, err
		}
		Shuffle(cards, s.rnd)
		return cards, nil
	default:
		return nil, fmt.Errorf("unknown ordering policy %q", s.Order)
	}
}

// Current returns the card being studied, or nil outside the studying state
func (s *Session) Current() *models.FlashCard {
	if s.State != StateStudying || s.Index >= len(s.Cards) {
		return nil
	}
	return &s.Cards[s.Index]
}

// Reveal marks the current card's answer as shown
func (s *Session) Reveal() {
	if s.State == StateStudying {
		s.Revealed = true
	}
}

// Advance moves to the next card, clearing the revealed flag. The session
// completes once the index passes the last card.
func (s *Session) Advance() {
	if s.State != StateStudying {
		return
	}
	s.Index++
	s.Revealed = false
	if s.Index >= len(s.Cards) {
		s.State = StateComplete
	}
}

// ProgressPercent is how far through the session the student is, in [0,100]
func (s *Session) ProgressPercent() float64 {
	if len(s.Cards) == 0 {
		return 0
	}
	return float64(s.Index) / float64(len(s.Cards)) * 100
}

// Shuffle permutes cards in place with an unbiased Fisher-Yates shuffle
func Shuffle(cards []models.FlashCard, rnd *rand.Rand) {
	rnd.Shuffle(len(cards), func(i, j int) {
		cards[i], cards[j] = cards[j], cards[i]
	})
}

// SortByProgress orders cards ascending by mastery score, preserving the
// incoming order for equal scores
func SortByProgress(cards []models.FlashCard) {
	sort.SliceStable(cards, func(i, j int) bool {
		return cards[i].Progress < cards[j].Progress
	})
}
