package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) followUser(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	if err := s.follow.Follow(c.Request.Context(), currentUser(c).ID, req.UserID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) unfollowUser(c *gin.Context) {
	var req followRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "user_id is required")
		return
	}

	if err := s.follow.Unfollow(c.Request.Context(), currentUser(c).ID, req.UserID); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) listFollowers(c *gin.Context) {
	items, err := s.follow.Followers(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaries(items))
}

func (s *Server) listFollowing(c *gin.Context) {
	items, err := s.follow.Following(c.Request.Context(), currentUser(c).ID)
	if err != nil {
		s.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaries(items))
}
