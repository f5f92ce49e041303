package study

import (
	"context"
	"fmt"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/lembra/pkg/models"
)

// stubSource returns canned card slices and counts fetches
type stubSource struct {
	cards   []models.FlashCard
	sorted  []models.FlashCard
	fetches int
}

func (s *stubSource) GetByCategory(_ context.Context, _ string) ([]models.FlashCard, error) {
	s.fetches++
	out := make([]models.FlashCard, len(s.cards))
	copy(out, s.cards)
	return out, nil
}

func (s *stubSource) GetByCategorySortedByProgress(_ context.Context, _ string) ([]models.FlashCard, error) {
	s.fetches++
	out := make([]models.FlashCard, len(s.sorted))
	copy(out, s.sorted)
	return out, nil
}

func cardsNamed(names ...string) []models.FlashCard {
	out := make([]models.FlashCard, len(names))
	for i, n := range names {
		out[i] = models.FlashCard{ID: n, Portuguese: n}
	}
	return out
}

func idsOf(cards []models.FlashCard) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.ID
	}
	return out
}

func TestShuffleIsPermutation(t *testing.T) {
	rnd := rand.New(rand.NewSource(42))
	for _, size := range []int{0, 1, 2, 7, 50} {
		original := make([]models.FlashCard, size)
		for i := range original {
			original[i] = models.FlashCard{ID: fmt.Sprintf("card-%d", i)}
		}
		shuffled := make([]models.FlashCard, len(original))
		copy(shuffled, original)

		Shuffle(shuffled, rnd)

		assert.Len(t, shuffled, size)
		assert.ElementsMatch(t, idsOf(original), idsOf(shuffled), "shuffle must keep the same multiset")
	}
}

func TestSortByProgressAscendingAndStable(t *testing.T) {
	cards := []models.FlashCard{
		{ID: "c", Progress: 50},
		{ID: "a", Progress: 0},
		{ID: "b1", Progress: 25},
		{ID: "b2", Progress: 25},
		{ID: "d", Progress: 100},
	}

	SortByProgress(cards)

	assert.Equal(t, []string{"a", "b1", "b2", "c", "d"}, idsOf(cards))
	for i := 1; i < len(cards); i++ {
		assert.LessOrEqual(t, cards[i-1].Progress, cards[i].Progress)
	}
}

func TestSessionLifecycle(t *testing.T) {
	source := &stubSource{cards: cardsNamed("x", "y")}
	sess := NewSession(source, rand.New(rand.NewSource(1)), "cat", OrderRandom)
	assert.Equal(t, StateSelecting, sess.State)
	assert.Nil(t, sess.Current())

	require.NoError(t, sess.Start(context.Background()))
	assert.Equal(t, StateStudying, sess.State)
	assert.False(t, sess.Revealed)
	require.NotNil(t, sess.Current())
	assert.Equal(t, 0.0, sess.ProgressPercent())

	sess.Reveal()
	assert.True(t, sess.Revealed)

	sess.Advance()
	assert.Equal(t, StateStudying, sess.State)
	assert.False(t, sess.Revealed, "advancing clears the revealed flag")
	assert.Equal(t, 50.0, sess.ProgressPercent())

	sess.Advance()
	assert.Equal(t, StateComplete, sess.State)
	assert.Nil(t, sess.Current())

	// Advancing past the end is a no-op
	sess.Advance()
	assert.Equal(t, StateComplete, sess.State)
}

func TestSessionEmptyCategoryCompletesImmediately(t *testing.T) {
	source := &stubSource{}
	sess := NewSession(source, rand.New(rand.NewSource(1)), "cat", OrderRandom)

	require.NoError(t, sess.Start(context.Background()))
	assert.Equal(t, StateComplete, sess.State)
	assert.Equal(t, 0.0, sess.ProgressPercent())
}

func TestSessionByProgressUsesSortedFetch(t *testing.T) {
	source := &stubSource{
		cards:  cardsNamed("unsorted"),
		sorted: cardsNamed("weakest", "strongest"),
	}
	sess := NewSession(source, rand.New(rand.NewSource(1)), "cat", OrderByProgress)

	require.NoError(t, sess.Start(context.Background()))
	assert.Equal(t, []string{"weakest", "strongest"}, idsOf(sess.Cards))
}

func TestSessionRestartRefetches(t *testing.T) {
	source := &stubSource{cards: cardsNamed("x", "y", "z")}
	sess := NewSession(source, rand.New(rand.NewSource(1)), "cat", OrderRandom)
	require.NoError(t, sess.Start(context.Background()))
	sess.Advance()
	sess.Advance()
	sess.Advance()
	require.Equal(t, StateComplete, sess.State)

	// The store changed between passes; restart must see it
	source.cards = cardsNamed("x")
	require.NoError(t, sess.Restart(context.Background()))

	assert.Equal(t, StateStudying, sess.State)
	assert.Equal(t, 0, sess.Index)
	assert.Len(t, sess.Cards, 1)
	assert.Equal(t, 2, source.fetches)
}

func TestSessionUnknownOrder(t *testing.T) {
	sess := NewSession(&stubSource{}, rand.New(rand.NewSource(1)), "cat", Order("alphabetical"))
	assert.Error(t, sess.Start(context.Background()))
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry()
	sess := NewSession(&stubSource{}, rand.New(rand.NewSource(1)), "cat", OrderRandom)
	reg.Put(sess)

	got := reg.Get(sess.ID)
	require.NotNil(t, got)
	assert.Same(t, sess, got)

	found, err := reg.WithSession(sess.ID, func(s *Session) error {
		s.State = StateComplete
		return nil
	})
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, StateComplete, sess.State)

	reg.Delete(sess.ID)
	assert.Nil(t, reg.Get(sess.ID))

	found, err = reg.WithSession("missing", func(*Session) error { return nil })
	require.NoError(t, err)
	assert.False(t, found)
}
