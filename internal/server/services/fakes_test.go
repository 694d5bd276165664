package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/dmitrijs2005/healthtracker/internal/dbx"
	"github.com/dmitrijs2005/healthtracker/internal/logging"
	"github.com/dmitrijs2005/healthtracker/internal/server/avatars"
	"github.com/dmitrijs2005/healthtracker/internal/server/models"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/followers"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/measurements"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/users"
	"github.com/dmitrijs2005/healthtracker/internal/server/repositories/verifications"
)

// --- helpers ---

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

type nopLogger struct{}

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (l nopLogger) With(...any) logging.Logger          { return l }

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

// --- in-memory repositories ---

type fakeVerifications struct {
	mu      sync.Mutex
	nextID  int64
	records []models.VerificationRecord
	err     error
}

func (f *fakeVerifications) Create(ctx context.Context, phone, codeHash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	f.nextID++
	f.records = append(f.records, models.VerificationRecord{ID: f.nextID, PhoneNumber: phone, CodeHash: codeHash})
	return f.nextID, nil
}

func (f *fakeVerifications) Consume(ctx context.Context, phone, codeHash string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	for i, r := range f.records {
		if r.PhoneNumber == phone && r.CodeHash == codeHash {
			f.records = append(f.records[:i], f.records[i+1:]...)
			return r.ID, nil
		}
	}
	return 0, common.ErrorNotFound
}

type fakeUsers struct {
	mu      sync.Mutex
	byPhone map[string]*models.User
	nextID  int
	err     error
}

func newFakeUsers(existing ...*models.User) *fakeUsers {
	f := &fakeUsers{byPhone: map[string]*models.User{}}
	for _, u := range existing {
		f.byPhone[u.PhoneNumber] = u
	}
	return f
}

func (f *fakeUsers) GetOrCreate(ctx context.Context, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	if u, ok := f.byPhone[phone]; ok {
		u.IsDeleted = false
		return u, nil
	}
	f.nextID++
	u := &models.User{
		ID:          fmt.Sprintf("00000000-0000-0000-0000-%012d", f.nextID),
		PhoneNumber: phone,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	f.byPhone[phone] = u
	return u, nil
}

func (f *fakeUsers) GetByPhone(ctx context.Context, phone string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.byPhone[phone]
	if !ok || u.IsDeleted {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeUsers) byID(id string) *models.User {
	for _, u := range f.byPhone {
		if u.ID == id {
			return u
		}
	}
	return nil
}

func (f *fakeUsers) Exists(ctx context.Context, id string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return false, f.err
	}
	u := f.byID(id)
	return u != nil && !u.IsDeleted, nil
}

func (f *fakeUsers) Update(ctx context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	u := f.byID(id)
	if u == nil || u.IsDeleted {
		return nil, common.ErrorNotFound
	}
	if upd.Username != nil {
		for _, other := range f.byPhone {
			if other != u && other.Username != nil && *other.Username == *upd.Username {
				return nil, common.ErrorAlreadyExists
			}
		}
		u.Username = upd.Username
	}
	if upd.Height != nil {
		u.Height = upd.Height
	}
	if upd.AvatarKey != nil {
		u.AvatarKey = upd.AvatarKey
	}
	return u, nil
}

func (f *fakeUsers) SoftDelete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := f.byID(id)
	if u == nil || u.IsDeleted {
		return common.ErrorNotFound
	}
	u.IsDeleted = true
	return nil
}

func (f *fakeUsers) DeleteByPhone(ctx context.Context, phone string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.byPhone[phone]; !ok {
		return common.ErrorNotFound
	}
	delete(f.byPhone, phone)
	return nil
}

func (f *fakeUsers) PurgeDeleted(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return 0, f.err
	}
	var n int64
	for phone, u := range f.byPhone {
		if u.IsDeleted {
			delete(f.byPhone, phone)
			n++
		}
	}
	return n, nil
}

type fakeMeasurements struct {
	mu     sync.Mutex
	nextID int64
	byKind map[models.MeasurementKind][]models.Measurement
	err    error

	lastFilter models.MeasurementFilter
}

func newFakeMeasurements() *fakeMeasurements {
	return &fakeMeasurements{byKind: map[models.MeasurementKind][]models.Measurement{}}
}

func (f *fakeMeasurements) Insert(ctx context.Context, m *models.Measurement) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.nextID++
	m.ID = f.nextID
	f.byKind[m.Kind] = append(f.byKind[m.Kind], *m)
	return nil
}

func (f *fakeMeasurements) List(ctx context.Context, userID string, kind models.MeasurementKind, filter models.MeasurementFilter) ([]models.Measurement, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFilter = filter
	if f.err != nil {
		return nil, f.err
	}
	out := make([]models.Measurement, 0)
	skipped := 0
	for _, m := range f.byKind[kind] {
		if m.UserID != userID {
			continue
		}
		if filter.Start != nil && m.RecordedAt.Before(*filter.Start) {
			continue
		}
		if filter.End != nil && m.RecordedAt.After(*filter.End) {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if len(out) == filter.Limit {
			break
		}
		out = append(out, m)
	}
	return out, nil
}

func (f *fakeMeasurements) History(ctx context.Context, userID string, kind models.MeasurementKind) ([]models.Measurement, error) {
	return f.List(ctx, userID, kind, models.MeasurementFilter{Limit: 1 << 30})
}

type edge struct{ from, to string }

type fakeFollowers struct {
	mu    sync.Mutex
	edges []edge
	users *fakeUsers
}

func (f *fakeFollowers) index(a, b string) int {
	for i, e := range f.edges {
		if e.from == a && e.to == b {
			return i
		}
	}
	return -1
}

func (f *fakeFollowers) Exists(ctx context.Context, a, b string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.index(a, b) >= 0, nil
}

func (f *fakeFollowers) Create(ctx context.Context, a, b string) (*models.FollowEdge, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.index(a, b) >= 0 {
		return nil, common.ErrorAlreadyExists
	}
	f.edges = append(f.edges, edge{a, b})
	return &models.FollowEdge{ID: int64(len(f.edges)), FollowerID: a, FollowedID: b}, nil
}

func (f *fakeFollowers) Delete(ctx context.Context, a, b string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.index(a, b)
	if i < 0 {
		return common.ErrorNotFound
	}
	f.edges = append(f.edges[:i], f.edges[i+1:]...)
	return nil
}

func (f *fakeFollowers) summaries(match func(edge) (string, bool)) []models.UserSummary {
	out := make([]models.UserSummary, 0)
	for _, e := range f.edges {
		id, ok := match(e)
		if !ok {
			continue
		}
		s := models.UserSummary{ID: id}
		if f.users != nil {
			if u := f.users.byID(id); u != nil {
				s.Username = u.Username
			}
		}
		out = append(out, s)
	}
	return out
}

func (f *fakeFollowers) Followers(ctx context.Context, userID string) ([]models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries(func(e edge) (string, bool) { return e.from, e.to == userID }), nil
}

func (f *fakeFollowers) Following(ctx context.Context, userID string) ([]models.UserSummary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.summaries(func(e edge) (string, bool) { return e.to, e.from == userID }), nil
}

// fakeRepoManager hands out the same in-memory repositories for any DBTX.
type fakeRepoManager struct {
	users         *fakeUsers
	verifications *fakeVerifications
	measurements  *fakeMeasurements
	followers     *fakeFollowers
}

func newFakeRepoManager() *fakeRepoManager {
	u := newFakeUsers()
	return &fakeRepoManager{
		users:         u,
		verifications: &fakeVerifications{},
		measurements:  newFakeMeasurements(),
		followers:     &fakeFollowers{users: u},
	}
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error     { return nil }
func (m *fakeRepoManager) RollbackMigration(context.Context, *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                   { return m.users }
func (m *fakeRepoManager) Verifications(dbx.DBTX) verifications.Repository   { return m.verifications }
func (m *fakeRepoManager) Measurements(dbx.DBTX) measurements.Repository     { return m.measurements }
func (m *fakeRepoManager) Followers(dbx.DBTX) followers.Repository           { return m.followers }

// --- collaborators ---

type fakeSender struct {
	code  string
	err   error
	calls []string
}

func (f *fakeSender) SendCode(ctx context.Context, phone string) (string, error) {
	f.calls = append(f.calls, phone)
	if f.err != nil {
		return "", f.err
	}
	return f.code, nil
}

type fakePresigner struct {
	upload    *avatars.Upload
	uploadErr error
	url       string
	getErr    error
}

func (f *fakePresigner) PresignUpload(ctx context.Context, userID, contentType string) (*avatars.Upload, error) {
	if f.uploadErr != nil {
		return nil, f.uploadErr
	}
	return f.upload, nil
}

func (f *fakePresigner) PresignDownload(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	return f.url, nil
}
