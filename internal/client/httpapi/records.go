package httpapi

import (
	"context"
	"net/http"

	"github.com/dailygrace/dailygrace/internal/client/store"
	"github.com/gin-gonic/gin"
)

// collection is what a record store offers the API.
type collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id string) (T, error)
	Create(ctx context.Context, v T) (T, error)
	Update(ctx context.Context, id string, patch store.Patch[T]) (T, error)
	Remove(ctx context.Context, id string) error
}

// mount registers list, get, create, patch and delete for one kind. P is
// the kind's partial update, decoded from the PATCH body.
func mount[T any, P store.Patch[T]](g *gin.RouterGroup, path string, coll collection[T]) {
	r := g.Group(path)

	r.GET("", func(c *gin.Context) {
		items, err := coll.List(c.Request.Context())
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	})

	r.GET("/:id", func(c *gin.Context) {
		v, err := coll.Get(c.Request.Context(), c.Param("id"))
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, v)
	})

	r.POST("", func(c *gin.Context) {
		var v T
		if err := c.ShouldBindJSON(&v); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		out, err := coll.Create(c.Request.Context(), v)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, out)
	})

	r.PATCH("/:id", func(c *gin.Context) {
		var p P
		if err := c.ShouldBindJSON(&p); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
			return
		}
		out, err := coll.Update(c.Request.Context(), c.Param("id"), p)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, out)
	})

	r.DELETE("/:id", func(c *gin.Context) {
		if err := coll.Remove(c.Request.Context(), c.Param("id")); err != nil {
			fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})
}
