package httpapi

import (
	"context"
	"net/http"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/client/session"
	"github.com/gin-gonic/gin"
)

func (s *Server) listCards(c *gin.Context) {
	cards, err := s.app.Cards.GetAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, cards)
}

// saveCard needs a signed-in user. Signed out, the save is parked behind
// the login prompt and the request answers 202; it runs once someone signs
// in. ?returnTo= is handed to the prompt.
func (s *Server) saveCard(c *gin.Context) {
	var card models.VerseCard
	if err := c.ShouldBindJSON(&card); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	if err := card.Validate(); err != nil {
		fail(c, err)
		return
	}

	var (
		saved   models.VerseCard
		saveErr error
	)
	returnTo := c.DefaultQuery("returnTo", "/cards")
	out := s.app.Gate.RequireAuth(c.Request.Context(), func(ctx context.Context) {
		saved, saveErr = s.app.Cards.Save(ctx, card)
		if saveErr != nil {
			s.log.Warn(ctx, "card save failed", "error", saveErr)
		}
	}, returnTo)

	if out == session.Deferred {
		c.JSON(http.StatusAccepted, gin.H{"status": "deferred", "returnTo": returnTo})
		return
	}
	if saveErr != nil {
		fail(c, saveErr)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

func (s *Server) deleteCard(c *gin.Context) {
	if err := s.app.Cards.Delete(c.Request.Context(), c.Param("id")); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
