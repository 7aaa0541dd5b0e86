package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type sessionView struct {
	State   string `json:"state"`
	UserID  string `json:"userId,omitempty"`
	Email   string `json:"email,omitempty"`
	Pending bool   `json:"pending"`
}

func (s *Server) view() sessionView {
	v := sessionView{State: s.app.Gate.State().String(), Pending: s.app.Gate.HasPending()}
	if sess := s.app.Gate.Session(); sess != nil {
		v.UserID, v.Email = sess.UserID, sess.Email
	}
	return v
}

func (s *Server) session(c *gin.Context) {
	c.JSON(http.StatusOK, s.view())
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
	SignUp   bool   `json:"signUp"`
}

func (s *Server) login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email and password are required"})
		return
	}

	var err error
	if req.SignUp {
		_, err = s.app.Gate.SignUp(c.Request.Context(), req.Email, req.Password)
	} else {
		_, err = s.app.Gate.SignIn(c.Request.Context(), req.Email, req.Password)
	}
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view())
}

func (s *Server) cancelLogin(c *gin.Context) {
	s.app.Gate.CancelLogin()
	c.JSON(http.StatusOK, s.view())
}

func (s *Server) logout(c *gin.Context) {
	if err := s.app.Gate.SignOut(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view())
}

func (s *Server) deleteAccount(c *gin.Context) {
	if err := s.app.Gate.DeleteAccount(c.Request.Context()); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s.view())
}
