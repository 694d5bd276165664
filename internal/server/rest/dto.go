package rest

import (
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
)

type successResponse struct {
	Success bool `json:"success"`
}

type callRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
}

type verifyRequest struct {
	PhoneNumber string `json:"phone_number" binding:"required"`
	Code        string `json:"code" binding:"required"`
}

type verifyResponse struct {
	Success      bool   `json:"success"`
	Error        string `json:"error,omitempty"`
	AccessToken  string `json:"access_token,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type measurementResponse struct {
	RecordedAt time.Time `json:"recorded_at"`
	Value      float64   `json:"value"`
}

type profileResponse struct {
	ID          string                `json:"id"`
	PhoneNumber string                `json:"phone_number"`
	Username    *string               `json:"username"`
	Height      *float64              `json:"height"`
	AvatarURL   string                `json:"avatar_url,omitempty"`
	Weight      []measurementResponse `json:"weight"`
	Water       []measurementResponse `json:"water"`
	Steps       []measurementResponse `json:"steps"`
}

type weightInput struct {
	Weight     *float64 `json:"weight" binding:"required"`
	RecordedAt string   `json:"recorded_at" binding:"required"`
}

type waterInput struct {
	WaterAmount *float64 `json:"water_amount" binding:"required"`
	RecordedAt  string   `json:"recorded_at" binding:"required"`
}

type stepsInput struct {
	StepsCount *int64 `json:"steps_count" binding:"required"`
	RecordedAt string `json:"recorded_at" binding:"required"`
}

type updateRequest struct {
	Username *string      `json:"username"`
	Height   *float64     `json:"height"`
	Weight   *weightInput `json:"weight"`
	Water    *waterInput  `json:"water"`
	Steps    *stepsInput  `json:"steps"`
}

type avatarRequest struct {
	ContentType string `json:"content_type" binding:"required"`
}

type avatarResponse struct {
	UploadURL string `json:"upload_url"`
	AvatarKey string `json:"avatar_key"`
}

type statsUploadRequest struct {
	WeightAmount *float64 `json:"weight_amount"`
	WaterAmount  *float64 `json:"water_amount"`
	StepsAmount  *int64   `json:"steps_amount"`
	RecordedAt   string   `json:"recorded_at"`
}

type statsQuery struct {
	Arg       string `form:"arg"`
	Limit     int    `form:"limit,default=10"`
	Offset    int    `form:"offset,default=0"`
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}

type followRequest struct {
	UserID string `json:"user_id" binding:"required"`
}

type userSummaryResponse struct {
	ID       string  `json:"id"`
	Username *string `json:"username"`
}

type healthResponse struct {
	Status string `json:"status"`
}

func toMeasurements(items []models.Measurement) []measurementResponse {
	out := make([]measurementResponse, 0, len(items))
	for _, m := range items {
		out = append(out, measurementResponse{RecordedAt: m.RecordedAt, Value: m.Value})
	}
	return out
}

func toProfile(p *services.Profile) profileResponse {
	return profileResponse{
		ID:          p.User.ID,
		PhoneNumber: p.User.PhoneNumber,
		Username:    p.User.Username,
		Height:      p.User.Height,
		AvatarURL:   p.AvatarURL,
		Weight:      toMeasurements(p.History[models.KindWeight]),
		Water:       toMeasurements(p.History[models.KindWater]),
		Steps:       toMeasurements(p.History[models.KindSteps]),
	}
}

func toSummaries(items []models.UserSummary) []userSummaryResponse {
	out := make([]userSummaryResponse, 0, len(items))
	for _, u := range items {
		out = append(out, userSummaryResponse{ID: u.ID, Username: u.Username})
	}
	return out
}
