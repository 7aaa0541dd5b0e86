package httpapi

import (
	"net/http"

	"github.com/dailygrace/dailygrace/internal/client/models"
	"github.com/dailygrace/dailygrace/internal/timex"
	"github.com/gin-gonic/gin"
)

// kindQuery reads the optional ?type= filter. An unknown value is an error;
// an absent one means every kind.
func kindQuery(c *gin.Context) (models.Kind, bool) {
	t := c.Query("type")
	if t == "" {
		return "", true
	}
	k, ok := models.ParseKind(t)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown type " + t})
		return "", false
	}
	return k, true
}

func (s *Server) feed(c *gin.Context) {
	es, err := s.app.Feed.ListAllRecords(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, es)
}

func (s *Server) customFeed(c *gin.Context) {
	es, err := s.app.Feed.ListCustomRecords(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, es)
}

// feedOnDate lists the entries of one day. With ?type= it answers only
// whether that kind has an entry.
func (s *Server) feedOnDate(c *gin.Context) {
	day := c.Param("date")
	if _, err := timex.ParseDay(day); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	if c.Query("type") != "" {
		k, ok := kindQuery(c)
		if !ok {
			return
		}
		has, err := s.app.Feed.HasRecordOnDate(c.Request.Context(), day, k)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": day, "type": k, "has": has})
		return
	}

	es, err := s.app.Feed.RecordsOnDate(c.Request.Context(), day)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, es)
}

func (s *Server) search(c *gin.Context) {
	k, ok := kindQuery(c)
	if !ok {
		return
	}
	es, err := s.app.Feed.SearchRecords(c.Request.Context(), c.Query("q"), k)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, es)
}

func (s *Server) goal(c *gin.Context) {
	g, err := s.app.Feed.TodayGoalCount(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) streak(c *gin.Context) {
	n, err := s.app.Feed.StreakDays(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": n, "today": s.app.Feed.Today()})
}
