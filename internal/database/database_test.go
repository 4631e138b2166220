package database

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func TestDSNInjectsPasswordAndFlags(t *testing.T) {
	got, err := DSN("sitekit@tcp(db:3306)/sitekit?charset=utf8mb4", "p@ss")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"sitekit:p@ss@tcp(db:3306)/sitekit", "parseTime=true", "clientFoundRows=true", "charset=utf8mb4"} {
		if !strings.Contains(got, want) {
			t.Errorf("dsn %q missing %q", got, want)
		}
	}

	got, err = DSN("u:keep@tcp(db:3306)/x", "")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "u:keep@") {
		t.Errorf("empty password must keep the DSN's own: %q", got)
	}

	if _, err := DSN("not a dsn", ""); err == nil {
		t.Error("expected parse error")
	}
}

func mockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	t.Helper()
	raw, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { raw.Close() })
	return sqlx.NewDb(raw, "sqlmock"), mock
}

func TestPingRetriesThenSucceeds(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing().WillReturnError(errors.New("connection refused"))
	mock.ExpectPing()

	opts := Options{Retries: 3, RetryBackoff: time.Millisecond}
	if err := ping(context.Background(), db, opts); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatal(err)
	}
}

func TestPingGivesUp(t *testing.T) {
	db, mock := mockDB(t)
	down := errors.New("down")
	mock.ExpectPing().WillReturnError(down)
	mock.ExpectPing().WillReturnError(down)

	err := ping(context.Background(), db, Options{Retries: 1, RetryBackoff: time.Millisecond})
	if !errors.Is(err, down) {
		t.Fatalf("want wrapped cause, got %v", err)
	}
}

func TestPingHonoursContext(t *testing.T) {
	db, mock := mockDB(t)
	mock.ExpectPing().WillReturnError(errors.New("down"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ping(ctx, db, Options{Retries: 5, RetryBackoff: time.Hour})
	if err == nil {
		t.Fatal("expected error")
	}
}
