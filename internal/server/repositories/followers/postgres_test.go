package followers

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/healthtracker/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

const insertQuery = `(?s)^INSERT\s+INTO\s+followers\s*\(follower_id,\s*followed_id\)\s*VALUES\s*\(\$1,\s*\$2\)\s*RETURNING\s+id,\s*created_at$`

func TestExists(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+EXISTS\s*\(\s*SELECT\s+1\s+FROM\s+followers\s+WHERE\s+follower_id\s*=\s*\$1\s+AND\s+followed_id\s*=\s*\$2\s*\)$`
	mock.ExpectQuery(q).WithArgs("a", "b").WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	ok, err := repo.Exists(context.Background(), "a", "b")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v", ok, err)
	}
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	now := time.Now()
	mock.ExpectQuery(insertQuery).
		WithArgs("a", "b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(int64(5), now))

	edge, err := repo.Create(context.Background(), "a", "b")
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if edge.ID != 5 || edge.FollowerID != "a" || edge.FollowedID != "b" {
		t.Fatalf("unexpected edge: %+v", edge)
	}
}

func TestCreate_ConstraintErrors(t *testing.T) {
	tests := []struct {
		name string
		code string
		want error
	}{
		{"duplicate", "23505", common.ErrorAlreadyExists},
		{"missing user", "23503", common.ErrorNotFound},
		{"self follow", "23514", common.ErrorValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, db := newRepoWithMock(t)
			defer db.Close()

			mock.ExpectQuery(insertQuery).
				WithArgs("a", "b").
				WillReturnError(&pgconn.PgError{Code: tt.code})

			_, err := repo.Create(context.Background(), "a", "b")
			if !errors.Is(err, tt.want) {
				t.Fatalf("want %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCreate_DBError(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(insertQuery).WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "a", "b")
	if err == nil || !regexp.MustCompile(`db error: .*db down`).MatchString(err.Error()) {
		t.Fatalf("expected wrapped db error, got %v", err)
	}
}

func TestDelete_TwiceFails(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+followers\s+WHERE\s+follower_id\s*=\s*\$1\s+AND\s+followed_id\s*=\s*\$2$`
	mock.ExpectExec(q).WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(q).WithArgs("a", "b").WillReturnResult(sqlmock.NewResult(0, 0))

	if err := repo.Delete(context.Background(), "a", "b"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if err := repo.Delete(context.Background(), "a", "b"); !errors.Is(err, common.ErrorNotFound) {
		t.Fatalf("second Delete: want common.ErrorNotFound, got %v", err)
	}
}

func TestFollowersAndFollowing(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT\s+u\.id,\s*u\.username\s+FROM\s+followers\s+f\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*f\.follower_id\s+WHERE\s+f\.followed_id\s*=\s*\$1`).
		WithArgs("b").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow("a", "alice").AddRow("c", nil))
	mock.ExpectQuery(`(?s)^SELECT\s+u\.id,\s*u\.username\s+FROM\s+followers\s+f\s+JOIN\s+users\s+u\s+ON\s+u\.id\s*=\s*f\.followed_id\s+WHERE\s+f\.follower_id\s*=\s*\$1`).
		WithArgs("a").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}))

	followers, err := repo.Followers(context.Background(), "b")
	if err != nil {
		t.Fatalf("Followers error: %v", err)
	}
	if len(followers) != 2 || followers[0].ID != "a" || *followers[0].Username != "alice" || followers[1].Username != nil {
		t.Fatalf("unexpected followers: %+v", followers)
	}

	following, err := repo.Following(context.Background(), "a")
	if err != nil {
		t.Fatalf("Following error: %v", err)
	}
	if len(following) != 0 {
		t.Fatalf("want no following, got %+v", following)
	}
}
