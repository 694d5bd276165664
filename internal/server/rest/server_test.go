package rest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/server/avatars"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (f *fixture) do(method, path, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if token != "" {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
	}
	rec := httptest.NewRecorder()
	f.srv.Handler().ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	return decode[errorResponse](t, rec).Detail
}

func TestCall(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "ok", body: `{"phone_number":"+79183394882"}`, wantStatus: http.StatusOK},
		{name: "missing phone", body: `{}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "bad phone", body: `{"phone_number":"123"}`, err: fmt.Errorf("%w: invalid phone number", common.ErrorValidation), wantStatus: http.StatusUnprocessableEntity},
		{name: "delivery failed", body: `{"phone_number":"+79183394882"}`, err: fmt.Errorf("%w: %w", services.ErrDelivery, errBoom), wantStatus: http.StatusBadGateway},
		{name: "store failed", body: `{"phone_number":"+79183394882"}`, err: errBoom, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.auth.requestErr = tt.err

			rec := f.do(http.MethodPost, "/api/user/call", tt.body, "")
			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, decode[successResponse](t, rec).Success)
				assert.Equal(t, "+79183394882", f.auth.lastPhone)
			} else {
				assert.NotEmpty(t, detail(t, rec))
			}
		})
	}
}

func TestCall_InternalErrorHidesCause(t *testing.T) {
	f := newFixture()
	f.auth.requestErr = fmt.Errorf("db error: %w", errBoom)

	rec := f.do(http.MethodPost, "/api/user/call", `{"phone_number":"+79183394882"}`, "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal error", detail(t, rec))
}

func TestVerify(t *testing.T) {
	f := newFixture()
	f.auth.pair = &services.TokenPair{AccessToken: "a", RefreshToken: "r"}

	rec := f.do(http.MethodPost, "/api/user/verify", `{"phone_number":"+79183394882","code":"4821"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[verifyResponse](t, rec)
	assert.Equal(t, verifyResponse{Success: true, AccessToken: "a", RefreshToken: "r"}, resp)
	assert.Equal(t, "4821", f.auth.lastCode)
}

func TestVerify_InvalidCode(t *testing.T) {
	f := newFixture()
	f.auth.verifyErr = services.ErrInvalidCode

	rec := f.do(http.MethodPost, "/api/user/verify", `{"phone_number":"+79183394882","code":"0000"}`, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)

	resp := decode[verifyResponse](t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid code", resp.Error)
	assert.Empty(t, resp.AccessToken)
	assert.Empty(t, resp.RefreshToken)
}

func TestVerify_MissingCode(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/api/user/verify", `{"phone_number":"+79183394882"}`, "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestRequireToken(t *testing.T) {
	f := newFixture()
	f.profile.profile = &services.Profile{User: testUser}

	tests := []struct {
		name       string
		method     string
		path       string
		header     string
		wantStatus int
		wantDetail string
	}{
		{name: "no header", method: http.MethodGet, path: "/api/user/me", wantStatus: http.StatusUnauthorized, wantDetail: "not authenticated"},
		{name: "not bearer", method: http.MethodGet, path: "/api/user/me", header: "Basic abc", wantStatus: http.StatusUnauthorized, wantDetail: "not authenticated"},
		{name: "empty bearer", method: http.MethodGet, path: "/api/user/me", header: "Bearer   ", wantStatus: http.StatusUnauthorized, wantDetail: "not authenticated"},
		{name: "refresh as access", method: http.MethodGet, path: "/api/user/me", header: "Bearer " + refreshToken, wantStatus: http.StatusUnauthorized, wantDetail: "could not validate credentials"},
		{name: "access as refresh", method: http.MethodPost, path: "/api/user/refresh", header: "Bearer " + accessToken, wantStatus: http.StatusUnauthorized, wantDetail: "could not validate credentials"},
		{name: "expired", method: http.MethodGet, path: "/api/user/me", header: "Bearer expired", wantStatus: http.StatusUnauthorized, wantDetail: "token expired"},
		{name: "lowercase scheme", method: http.MethodGet, path: "/api/user/me", header: "bearer " + accessToken, wantStatus: http.StatusOK},
		{name: "stats require access", method: http.MethodGet, path: "/api/stats/?arg=weight", wantStatus: http.StatusUnauthorized, wantDetail: "not authenticated"},
		{name: "user gone", method: http.MethodGet, path: "/api/user/me", header: "Bearer orphaned", wantStatus: http.StatusUnauthorized, wantDetail: "could not validate credentials"},
		{name: "store failure is internal", method: http.MethodGet, path: "/api/user/me", header: "Bearer unreachable", wantStatus: http.StatusInternalServerError, wantDetail: "internal error"},
		{name: "follow requires access", method: http.MethodGet, path: "/api/follower/followers", header: "Bearer " + refreshToken, wantStatus: http.StatusUnauthorized, wantDetail: "could not validate credentials"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			if tt.header != "" {
				req.Header.Set(common.AuthorizationHeaderName, tt.header)
			}
			rec := httptest.NewRecorder()
			f.srv.Handler().ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			if tt.wantDetail != "" {
				assert.Equal(t, tt.wantDetail, detail(t, rec))
			}
		})
	}
}

func TestRefresh(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPost, "/api/user/refresh", "", refreshToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, tokenResponse{AccessToken: "new-access", RefreshToken: refreshToken}, decode[tokenResponse](t, rec))
}

func TestMe(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	name := "alice"
	f.profile.profile = &services.Profile{
		User:      &models.User{ID: testUser.ID, PhoneNumber: testUser.PhoneNumber, Username: &name},
		AvatarURL: "https://s3/get",
		History: map[models.MeasurementKind][]models.Measurement{
			models.KindWeight: {{Kind: models.KindWeight, Value: 70.5, RecordedAt: at}},
		},
	}

	rec := f.do(http.MethodGet, "/api/user/me", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[profileResponse](t, rec)
	assert.Equal(t, testUser.ID, resp.ID)
	assert.Equal(t, "alice", *resp.Username)
	assert.Nil(t, resp.Height)
	assert.Equal(t, "https://s3/get", resp.AvatarURL)
	require.Len(t, resp.Weight, 1)
	assert.Equal(t, 70.5, resp.Weight[0].Value)
	assert.True(t, resp.Weight[0].RecordedAt.Equal(at))
	assert.NotNil(t, resp.Water)
	assert.Empty(t, resp.Water)
	assert.Contains(t, rec.Body.String(), `"steps":[]`)
}

func TestDeleteMe(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodDelete, "/api/user/me", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.profile.deleted)
}

func TestUpdateProfile(t *testing.T) {
	f := newFixture()
	f.profile.profile = &services.Profile{User: testUser}

	body := `{"username":"alice","height":172.5,
		"weight":{"weight":60.2,"recorded_at":"2024-05-01T07:00:00Z"},
		"water":{"water_amount":1.5,"recorded_at":"2024-05-01"},
		"steps":{"steps_count":12000,"recorded_at":"2024-05-01T07:00:00"}}`
	rec := f.do(http.MethodPut, "/api/user/update", body, accessToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	in := f.profile.lastInput
	require.NotNil(t, in.Username)
	assert.Equal(t, "alice", *in.Username)
	assert.Equal(t, 172.5, *in.Height)
	require.NotNil(t, in.Weight)
	assert.Equal(t, 60.2, in.Weight.Value)
	assert.True(t, in.Weight.RecordedAt.Equal(time.Date(2024, 5, 1, 7, 0, 0, 0, time.UTC)))
	assert.Equal(t, 1.5, in.Water.Value)
	assert.Equal(t, float64(12000), in.Steps.Value)
}

func TestUpdateProfile_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		err        error
		wantStatus int
	}{
		{name: "username taken", body: `{"username":"alice"}`, err: services.ErrUsernameTaken, wantStatus: http.StatusUnprocessableEntity},
		{name: "validation", body: `{"height":-1}`, err: fmt.Errorf("%w: height out of range", common.ErrorValidation), wantStatus: http.StatusUnprocessableEntity},
		{name: "bad recorded_at", body: `{"weight":{"weight":60,"recorded_at":"soon"}}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "missing measurement value", body: `{"water":{"recorded_at":"2024-05-01"}}`, wantStatus: http.StatusUnprocessableEntity},
		{name: "not json", body: `{`, wantStatus: http.StatusUnprocessableEntity},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.profile.err = tt.err

			rec := f.do(http.MethodPut, "/api/user/update", tt.body, accessToken)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, detail(t, rec))
		})
	}
}

func TestAvatar(t *testing.T) {
	f := newFixture()
	f.profile.upload = &avatars.Upload{Key: "avatars/k.png", URL: "https://s3/put"}

	rec := f.do(http.MethodPost, "/api/user/avatar", `{"content_type":"image/png"}`, accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, avatarResponse{UploadURL: "https://s3/put", AvatarKey: "avatars/k.png"}, decode[avatarResponse](t, rec))

	f.profile.err = fmt.Errorf("%w: presign failed", common.ErrorUpstream)
	rec = f.do(http.MethodPost, "/api/user/avatar", `{"content_type":"image/png"}`, accessToken)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestUploadStats(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodPut, "/api/stats/", `{"weight_amount":70.5,"recorded_at":"2024-01-01T10:00:00Z"}`, accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	in := f.stats.lastUpload
	require.NotNil(t, in.Weight)
	assert.Equal(t, 70.5, *in.Weight)
	assert.Nil(t, in.Water)
	assert.Nil(t, in.Steps)
	assert.True(t, in.RecordedAt.Equal(time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)))
}

func TestUploadStats_Errors(t *testing.T) {
	f := newFixture()
	f.stats.uploadErr = services.ErrNoData

	rec := f.do(http.MethodPut, "/api/stats/", `{}`, accessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "no data supplied", detail(t, rec))

	rec = f.do(http.MethodPut, "/api/stats/", `{"weight_amount":70,"recorded_at":"nope"}`, accessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestQueryStats(t *testing.T) {
	f := newFixture()
	at := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	f.stats.items = []models.Measurement{{Value: 70.5, RecordedAt: at}}

	rec := f.do(http.MethodGet, "/api/stats/?arg=weight&start_date=2024-01-01&end_date=2024-01-31T23:59:59Z", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)

	items := decode[[]measurementResponse](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, 70.5, items[0].Value)

	assert.Equal(t, "weight", f.stats.lastKind)
	assert.Equal(t, 10, f.stats.lastQuery.Limit)
	assert.Equal(t, 0, f.stats.lastQuery.Offset)
	require.NotNil(t, f.stats.lastQuery.Start)
	assert.True(t, f.stats.lastQuery.Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)))
	require.NotNil(t, f.stats.lastQuery.End)
}

func TestQueryStats_Errors(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		err        error
		wantStatus int
	}{
		{name: "invalid arg", query: "arg=sleep", err: fmt.Errorf("%w: sleep", services.ErrInvalidKind), wantStatus: http.StatusBadRequest},
		{name: "limit out of range", query: "arg=weight&limit=500", err: fmt.Errorf("%w: limit", common.ErrorValidation), wantStatus: http.StatusBadRequest},
		{name: "limit not a number", query: "arg=weight&limit=ten", wantStatus: http.StatusBadRequest},
		{name: "bad start date", query: "arg=weight&start_date=yesterday", wantStatus: http.StatusBadRequest},
		{name: "empty result", query: "arg=water", wantStatus: http.StatusNotFound},
		{name: "store failure", query: "arg=water", err: errBoom, wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.stats.queryErr = tt.err

			rec := f.do(http.MethodGet, "/api/stats/?"+tt.query, "", accessToken)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.NotEmpty(t, detail(t, rec))
		})
	}
}

func TestFollowRoutes(t *testing.T) {
	target := "00000000-0000-0000-0000-000000000002"
	body := `{"user_id":"` + target + `"}`

	tests := []struct {
		name       string
		method     string
		path       string
		err        error
		wantStatus int
	}{
		{name: "follow", method: http.MethodPost, path: "/api/follower/follow", wantStatus: http.StatusOK},
		{name: "follow self", method: http.MethodPost, path: "/api/follower/follow", err: services.ErrSelfFollow, wantStatus: http.StatusBadRequest},
		{name: "follow twice", method: http.MethodPost, path: "/api/follower/follow", err: services.ErrAlreadyFollowing, wantStatus: http.StatusBadRequest},
		{name: "follow missing", method: http.MethodPost, path: "/api/follower/follow", err: services.ErrUserNotFound, wantStatus: http.StatusNotFound},
		{name: "unfollow", method: http.MethodDelete, path: "/api/follower/unfollow", wantStatus: http.StatusOK},
		{name: "unfollow twice", method: http.MethodDelete, path: "/api/follower/unfollow", err: services.ErrNotFollowing, wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.follow.err = tt.err

			rec := f.do(tt.method, tt.path, body, accessToken)
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, target, f.follow.lastTarget)
			if tt.wantStatus == http.StatusOK {
				assert.True(t, decode[successResponse](t, rec).Success)
			}
		})
	}
}

func TestFollow_MissingUserID(t *testing.T) {
	f := newFixture()
	rec := f.do(http.MethodPost, "/api/follower/follow", `{}`, accessToken)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestFollowerLists(t *testing.T) {
	f := newFixture()
	name := "bob"
	f.follow.followers = []models.UserSummary{{ID: "u2", Username: &name}}

	rec := f.do(http.MethodGet, "/api/follower/followers", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []userSummaryResponse{{ID: "u2", Username: &name}}, decode[[]userSummaryResponse](t, rec))

	rec = f.do(http.MethodGet, "/api/follower/following", "", accessToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", rec.Body.String())
}

func TestHealth(t *testing.T) {
	f := newFixture()

	rec := f.do(http.MethodGet, "/api/health/liveness", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "alive", decode[healthResponse](t, rec).Status)

	rec = f.do(http.MethodGet, "/api/health/readiness", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ready", decode[healthResponse](t, rec).Status)

	f.srv.db = fakePinger{err: errBoom}
	rec = f.do(http.MethodGet, "/api/health/readiness", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "error", decode[healthResponse](t, rec).Status)
}

func TestCustomPrefix(t *testing.T) {
	srv := NewServer(":0", "/v1", nopLogger{}, Dependencies{Auth: &fakeAuth{}, DB: fakePinger{}})

	rec := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/health/liveness", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health/liveness", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
