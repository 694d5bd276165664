package rest

import (
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/dmitrijs2005/healthtracker/internal/timex"
	"github.com/gin-gonic/gin"
)

func (s *Server) call(c *gin.Context) {
	var req callRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "phone_number is required")
		return
	}

	if err := s.auth.RequestCode(c.Request.Context(), req.PhoneNumber); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "phone_number and code are required")
		return
	}

	pair, err := s.auth.VerifyCode(c.Request.Context(), req.PhoneNumber, req.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCode) {
			c.AbortWithStatusJSON(http.StatusBadRequest, verifyResponse{Success: false, Error: "Invalid code"})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, verifyResponse{
		Success:      true,
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
	})
}

func (s *Server) refresh(c *gin.Context) {
	pair, err := s.auth.Refresh(c.Request.Context(), currentUser(c), c.GetString(tokenKey))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tokenResponse{AccessToken: pair.AccessToken, RefreshToken: pair.RefreshToken})
}

func (s *Server) me(c *gin.Context) {
	p, err := s.profile.Get(c.Request.Context(), currentUser(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfile(p))
}

func (s *Server) deleteMe(c *gin.Context) {
	if err := s.profile.Delete(c.Request.Context(), currentUser(c)); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) updateProfile(c *gin.Context) {
	var req updateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	in, err := req.toInput()
	if err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, err.Error())
		return
	}

	p, err := s.profile.Update(c.Request.Context(), currentUser(c), in)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProfile(p))
}

func (s *Server) avatar(c *gin.Context) {
	var req avatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "content_type is required")
		return
	}

	up, err := s.profile.StartAvatarUpload(c.Request.Context(), currentUser(c), req.ContentType)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, avatarResponse{UploadURL: up.URL, AvatarKey: up.Key})
}

func (r updateRequest) toInput() (services.ProfileInput, error) {
	in := services.ProfileInput{Username: r.Username, Height: r.Height}

	if r.Weight != nil {
		at, err := parseRecordedAt(r.Weight.RecordedAt)
		if err != nil {
			return in, err
		}
		in.Weight = &services.MeasurementInput{Value: *r.Weight.Weight, RecordedAt: at}
	}
	if r.Water != nil {
		at, err := parseRecordedAt(r.Water.RecordedAt)
		if err != nil {
			return in, err
		}
		in.Water = &services.MeasurementInput{Value: *r.Water.WaterAmount, RecordedAt: at}
	}
	if r.Steps != nil {
		at, err := parseRecordedAt(r.Steps.RecordedAt)
		if err != nil {
			return in, err
		}
		in.Steps = &services.MeasurementInput{Value: float64(*r.Steps.StepsCount), RecordedAt: at}
	}

	return in, nil
}

func parseRecordedAt(s string) (time.Time, error) {
	t, err := timex.ParseInstant(s)
	if err != nil {
		return time.Time{}, errors.New("invalid recorded_at")
	}
	return t, nil
}
