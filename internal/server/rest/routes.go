package rest

import "github.com/dmitrijs2005/healthtracker/internal/server/auth"

func (s *Server) routes() {
	api := s.engine.Group(s.prefix)
	access := s.requireToken(auth.KindAccess)

	user := api.Group("/user")
	user.POST("/call", s.call)
	user.POST("/verify", s.verify)
	user.POST("/refresh", s.requireToken(auth.KindRefresh), s.refresh)
	user.GET("/me", access, s.me)
	user.DELETE("/me", access, s.deleteMe)
	user.PUT("/update", access, s.updateProfile)
	user.POST("/avatar", access, s.avatar)

	stats := api.Group("/stats", access)
	stats.PUT("/", s.uploadStats)
	stats.GET("/", s.queryStats)

	follower := api.Group("/follower", access)
	follower.POST("/follow", s.followUser)
	follower.DELETE("/unfollow", s.unfollowUser)
	follower.GET("/followers", s.listFollowers)
	follower.GET("/following", s.listFollowing)

	health := api.Group("/health")
	health.GET("/liveness", s.liveness)
	health.GET("/readiness", s.readiness)
}
