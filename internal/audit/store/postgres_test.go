package store

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vertical/internal/audit/models"
	id "vertical/pkg/domain"
	"vertical/pkg/platform/sentinel"
)

const (
	insertRequestSQL  = `INSERT INTO requests \(request_id, remote, method, path, body, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4, \$5, \$6\)`
	insertResponseSQL = `INSERT INTO responses \(request_id, body, code, created_at\)\s+VALUES \(\$1, \$2, \$3, \$4\)`
)

var recordedAt = time.Date(2024, 3, 15, 9, 30, 0, 0, time.UTC)

func newMock(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgres(db, time.Second), mock
}

func TestPostgresSaveRequest(t *testing.T) {
	t.Run("stores body as jsonb", func(t *testing.T) {
		store, mock := newMock(t)
		req := &models.Request{
			ID: id.NewRequestID(), RemoteAddr: "10.0.0.1:4242", Method: "POST",
			Path: "/reliability/phone", Body: []byte(`{"number":"79991234567"}`), CreatedAt: recordedAt,
		}
		mock.ExpectExec(insertRequestSQL).
			WithArgs(req.ID.String(), "10.0.0.1:4242", "POST", "/reliability/phone", `{"number":"79991234567"}`, recordedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.SaveRequest(context.Background(), req))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty body and address become NULL", func(t *testing.T) {
		store, mock := newMock(t)
		req := &models.Request{ID: id.NewRequestID(), Method: "GET", Path: "/health", CreatedAt: recordedAt}
		mock.ExpectExec(insertRequestSQL).
			WithArgs(req.ID.String(), nil, "GET", "/health", nil, recordedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.SaveRequest(context.Background(), req))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("long address is truncated", func(t *testing.T) {
		store, mock := newMock(t)
		addr := strings.Repeat("f", 100)
		req := &models.Request{ID: id.NewRequestID(), RemoteAddr: addr, Method: "GET", Path: "/health", CreatedAt: recordedAt}
		mock.ExpectExec(insertRequestSQL).
			WithArgs(req.ID.String(), addr[:models.RemoteAddrMaxLen], "GET", "/health", nil, recordedAt).
			WillReturnResult(sqlmock.NewResult(0, 1))

		require.NoError(t, store.SaveRequest(context.Background(), req))
	})

	t.Run("duplicate correlation id", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(insertRequestSQL).WillReturnError(&pgconn.PgError{Code: "23505"})

		err := store.SaveRequest(context.Background(), &models.Request{ID: id.NewRequestID(), Method: "GET", Path: "/"})
		assert.ErrorIs(t, err, sentinel.ErrAlreadyUsed)
	})

	t.Run("database error", func(t *testing.T) {
		store, mock := newMock(t)
		mock.ExpectExec(insertRequestSQL).WillReturnError(errors.New("connection reset"))

		err := store.SaveRequest(context.Background(), &models.Request{ID: id.NewRequestID(), Method: "GET", Path: "/"})
		assert.EqualError(t, err, "insert request: connection reset")
	})

	t.Run("nil record", func(t *testing.T) {
		store, _ := newMock(t)
		assert.Error(t, store.SaveRequest(context.Background(), nil))
	})
}

func TestPostgresSaveResponse(t *testing.T) {
	tests := []struct {
		name     string
		body     []byte
		wantBody any
		dbErr    error
		wantErr  error
	}{
		{name: "json body", body: []byte(`{"message":"OK","data":{}}`), wantBody: `{"message":"OK","data":{}}`},
		{name: "non-json body is quoted", body: []byte("oops"), wantBody: `"oops"`},
		{name: "empty body", wantBody: nil},
		{name: "request missing", body: []byte(`{}`), wantBody: `{}`, dbErr: &pgconn.PgError{Code: "23503"}, wantErr: sentinel.ErrNotFound},
		{name: "already recorded", body: []byte(`{}`), wantBody: `{}`, dbErr: &pgconn.PgError{Code: "23505"}, wantErr: sentinel.ErrAlreadyUsed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, mock := newMock(t)
			resp := &models.Response{RequestID: id.NewRequestID(), Body: tt.body, StatusCode: 200, CreatedAt: recordedAt}
			exec := mock.ExpectExec(insertResponseSQL).
				WithArgs(resp.RequestID.String(), tt.wantBody, int64(200), recordedAt)
			if tt.dbErr != nil {
				exec.WillReturnError(tt.dbErr)
			} else {
				exec.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			err := store.SaveResponse(context.Background(), resp)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}
