package server

import (
	"math/rand"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/example/lembra/internal/progress"
	"github.com/example/lembra/internal/study"
	"github.com/example/lembra/pkg/models"
)

func (s *Server) listCategories(c echo.Context) error {
	categories, err := s.categories.GetAll(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, categories)
}

func (s *Server) createCategory(c echo.Context) error {
	var req struct {
		Name string `json:"name"`
	}
	if err := c.Bind(&req); err != nil || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category name is required"})
	}
	category, err := s.categories.Create(c.Request().Context(), req.Name)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, category)
}

// deleteCategory removes a category; with ?cascade=true its cards go too.
// The client asks the user for confirmation before calling this.
func (s *Server) deleteCategory(c echo.Context) error {
	ctx := c.Request().Context()
	id := c.Param("id")
	if c.QueryParam("cascade") == "true" {
		if err := s.cards.DeleteByCategory(ctx, id); err != nil {
			return s.fail(c, err)
		}
	}
	if err := s.categories.Delete(ctx, id); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) listCards(c echo.Context) error {
	ctx := c.Request().Context()
	if categoryID := c.QueryParam("category"); categoryID != "" {
		cards, err := s.cards.GetByCategory(ctx, categoryID)
		if err != nil {
			return s.fail(c, err)
		}
		return c.JSON(http.StatusOK, cards)
	}
	cards, err := s.cards.GetAll(ctx)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, cards)
}

func (s *Server) createCard(c echo.Context) error {
	ctx := c.Request().Context()
	var card models.FlashCard
	if err := c.Bind(&card); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid card"})
	}
	if card.Portuguese == "" || card.Russian == "" || card.CategoryID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "portuguese, russian and category_id are required"})
	}
	card.ID = ""
	card.Progress = progress.Clamp(card.Progress)
	if err := s.cards.Create(ctx, &card); err != nil {
		return s.fail(c, err)
	}
	if err := s.refreshWordCount(c, card.CategoryID); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusCreated, card)
}

func (s *Server) deleteCard(c echo.Context) error {
	ctx := c.Request().Context()
	card, err := s.cards.GetByID(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if card == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "card not found"})
	}
	if err := s.cards.Delete(ctx, card.ID); err != nil {
		return s.fail(c, err)
	}
	if err := s.refreshWordCount(c, card.CategoryID); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// clearCards deletes every card. The client asks for confirmation first.
func (s *Server) clearCards(c echo.Context) error {
	if err := s.cards.Clear(c.Request().Context()); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) answerCard(c echo.Context) error {
	ctx := c.Request().Context()
	var req struct {
		Correct bool `json:"correct"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid answer"})
	}
	card, err := s.cards.GetByID(ctx, c.Param("id"))
	if err != nil {
		return s.fail(c, err)
	}
	if card == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "card not found"})
	}
	progress.ApplyAnswer(card, req.Correct, time.Now().UTC())
	if err := s.cards.Update(ctx, card); err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, card)
}

func (s *Server) importCards(c echo.Context) error {
	categoryName := c.FormValue("category")
	if categoryName == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category is required"})
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}
	file, err := fileHeader.Open()
	if err != nil {
		return s.fail(c, err)
	}
	defer file.Close()

	result, err := s.importer.ImportFile(c.Request().Context(), fileHeader.Filename, file, categoryName)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

func (s *Server) listWords(c echo.Context) error {
	list, err := s.words.List(c.Request().Context())
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

func (s *Server) toggleWord(c echo.Context) error {
	var req struct {
		Word string `json:"word"`
	}
	if err := c.Bind(&req); err != nil || req.Word == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "word is required"})
	}
	added, err := s.words.Toggle(c.Request().Context(), req.Word)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"word": req.Word, "added": added})
}

// sessionView is the JSON shape of a study session
type sessionView struct {
	ID              string            `json:"id"`
	State           study.State       `json:"state"`
	Order           study.Order       `json:"order"`
	CategoryID      string            `json:"category_id"`
	Index           int               `json:"index"`
	Total           int               `json:"total"`
	Revealed        bool              `json:"revealed"`
	ProgressPercent float64           `json:"progress_percent"`
	Current         *models.FlashCard `json:"current,omitempty"`
}

func viewOf(sess *study.Session) sessionView {
	return sessionView{
		ID:              sess.ID,
		State:           sess.State,
		Order:           sess.Order,
		CategoryID:      sess.CategoryID,
		Index:           sess.Index,
		Total:           len(sess.Cards),
		Revealed:        sess.Revealed,
		ProgressPercent: sess.ProgressPercent(),
		Current:         sess.Current(),
	}
}

func (s *Server) startSession(c echo.Context) error {
	var req struct {
		CategoryID string      `json:"category_id"`
		Order      study.Order `json:"order"`
	}
	if err := c.Bind(&req); err != nil || req.CategoryID == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "category_id is required"})
	}
	if req.Order == "" {
		req.Order = study.OrderRandom
	}

	rnd := rand.New(rand.NewSource(time.Now().UnixNano()))
	sess := study.NewSession(s.cards, rnd, req.CategoryID, req.Order)
	if err := sess.Start(c.Request().Context()); err != nil {
		return s.fail(c, err)
	}
	s.sessions.Put(sess)
	return c.JSON(http.StatusCreated, viewOf(sess))
}

func (s *Server) getSession(c echo.Context) error {
	sess := s.sessions.Get(c.Param("id"))
	if sess == nil {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	return c.JSON(http.StatusOK, viewOf(sess))
}

func (s *Server) revealSession(c echo.Context) error {
	var view sessionView
	found, err := s.sessions.WithSession(c.Param("id"), func(sess *study.Session) error {
		sess.Reveal()
		view = viewOf(sess)
		return nil
	})
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// answerSession records the answer for the current card, persists the
// updated progress and advances the session
func (s *Server) answerSession(c echo.Context) error {
	ctx := c.Request().Context()
	var req struct {
		Correct bool `json:"correct"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid answer"})
	}

	var view sessionView
	found, err := s.sessions.WithSession(c.Param("id"), func(sess *study.Session) error {
		if card := sess.Current(); card != nil {
			progress.ApplyAnswer(card, req.Correct, time.Now().UTC())
			if err := s.cards.Update(ctx, card); err != nil {
				return err
			}
		}
		sess.Advance()
		view = viewOf(sess)
		return nil
	})
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

func (s *Server) restartSession(c echo.Context) error {
	ctx := c.Request().Context()
	var view sessionView
	found, err := s.sessions.WithSession(c.Param("id"), func(sess *study.Session) error {
		if err := sess.Restart(ctx); err != nil {
			return err
		}
		view = viewOf(sess)
		return nil
	})
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, view)
}

// rollSession asks for an AI-generated variant of the current card's
// phrase, excluding everything already generated in this session
func (s *Server) rollSession(c echo.Context) error {
	ctx := c.Request().Context()

	// Snapshot the card text and history under the lock; the network call
	// must not hold it. Rolls overlapping an answer or another roll generate
	// from their own snapshot and each result is appended.
	var (
		portuguese, russian string
		history             []models.GeneratedPhrase
		studying            bool
	)
	found, _ := s.sessions.WithSession(c.Param("id"), func(sess *study.Session) error {
		if card := sess.Current(); card != nil {
			studying = true
			portuguese = card.Portuguese
			russian = card.Russian
			history = append([]models.GeneratedPhrase(nil), sess.History...)
		}
		return nil
	})
	if !found {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
	}
	if !studying {
		return c.JSON(http.StatusConflict, echo.Map{"error": "no card is being studied"})
	}

	phrase, err := s.client.GeneratePhrase(ctx, portuguese, russian, history)
	if err != nil {
		return s.fail(c, err)
	}

	_, _ = s.sessions.WithSession(c.Param("id"), func(sess *study.Session) error {
		sess.History = append(sess.History, *phrase)
		return nil
	})
	return c.JSON(http.StatusOK, phrase)
}

func (s *Server) endSession(c echo.Context) error {
	s.sessions.Delete(c.Param("id"))
	return c.NoContent(http.StatusNoContent)
}

// studyInteresting generates a validated phrase from the interesting-words
// list. The caller supplies its own ephemeral history.
func (s *Server) studyInteresting(c echo.Context) error {
	var req struct {
		History []models.GeneratedPhrase `json:"history"`
	}
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}
	phrase, err := s.words.GenerateValidated(c.Request().Context(), req.History)
	if err != nil {
		return s.fail(c, err)
	}
	return c.JSON(http.StatusOK, phrase)
}

func (s *Server) setAPIKey(c echo.Context) error {
	var req struct {
		APIKey string `json:"api_key"`
	}
	if err := c.Bind(&req); err != nil || req.APIKey == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "api_key is required"})
	}
	// The key is stored as-is; validity is only discovered on first use
	if err := s.creds.Set(req.APIKey); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) clearAPIKey(c echo.Context) error {
	if err := s.creds.Clear(); err != nil {
		return s.fail(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// refreshWordCount recomputes a category's denormalized count after a
// membership change
func (s *Server) refreshWordCount(c echo.Context, categoryID string) error {
	ctx := c.Request().Context()
	count, err := s.cards.CountByCategory(ctx, categoryID)
	if err != nil {
		return err
	}
	return s.categories.UpdateWordCount(ctx, categoryID, count)
}
