package rest

import (
	"errors"
	"net/http"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/dmitrijs2005/healthtracker/internal/timex"
	"github.com/gin-gonic/gin"
)

func (s *Server) uploadStats(c *gin.Context) {
	var req statsUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortDetail(c, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	in := services.StatsUpload{
		Weight: req.WeightAmount,
		Water:  req.WaterAmount,
		Steps:  req.StepsAmount,
	}
	if req.RecordedAt != "" {
		at, err := parseRecordedAt(req.RecordedAt)
		if err != nil {
			abortDetail(c, http.StatusUnprocessableEntity, err.Error())
			return
		}
		in.RecordedAt = at
	}

	if err := s.stats.Upload(c.Request.Context(), currentUser(c).ID, in); err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, successResponse{Success: true})
}

// queryStats reports every parameter problem as 400, unlike the JSON
// endpoints, and an empty page as 404.
func (s *Server) queryStats(c *gin.Context) {
	var q statsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		abortDetail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}

	p := services.QueryParams{Limit: q.Limit, Offset: q.Offset}
	if q.StartDate != "" {
		t, err := timex.ParseInstant(q.StartDate)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "invalid start_date")
			return
		}
		p.Start = &t
	}
	if q.EndDate != "" {
		t, err := timex.ParseInstant(q.EndDate)
		if err != nil {
			abortDetail(c, http.StatusBadRequest, "invalid end_date")
			return
		}
		p.End = &t
	}

	items, err := s.stats.Query(c.Request.Context(), currentUser(c).ID, q.Arg, p)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			abortDetail(c, http.StatusBadRequest, err.Error())
			return
		}
		s.fail(c, err)
		return
	}
	if len(items) == 0 {
		abortDetail(c, http.StatusNotFound, "no records found")
		return
	}

	c.JSON(http.StatusOK, toMeasurements(items))
}
