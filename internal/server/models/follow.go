package models

import "time"

// FollowEdge records that FollowerID follows FollowedID.
type FollowEdge struct {
	ID         int64
	FollowerID string
	FollowedID string
	CreatedAt  time.Time
}

// UserSummary is the short form of a user shown in follower listings.
type UserSummary struct {
	ID       string
	Username *string
}
