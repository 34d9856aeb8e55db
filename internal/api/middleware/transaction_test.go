package middleware

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nwmlabs/nwm-api/internal/api/shared"
)

func newTxDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

func serveTx(db *sql.DB, handler http.HandlerFunc) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil)
	Transaction(db)(handler).ServeHTTP(rr, req)
	return rr
}

func TestTransaction_CommitsOnSuccessStatus(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rr := serveTx(db, func(w http.ResponseWriter, r *http.Request) {
		assert.NotNil(t, shared.TxFromContext(r.Context()))
		w.WriteHeader(http.StatusCreated)
	})

	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_ImplicitOKCommits(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectCommit()

	rr := serveTx(db, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("{}"))
	})

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnErrorStatus(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	rr := serveTx(db, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnServerErrorStatus(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	serveTx(db, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnPanicAndRepanics(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	assert.PanicsWithValue(t, "kaboom", func() {
		serveTx(db, func(w http.ResponseWriter, r *http.Request) {
			panic("kaboom")
		})
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTransaction_RollsBackOnClientDisconnect(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	ctx, cancel := context.WithCancel(context.Background())
	req := httptest.NewRequest(http.MethodGet, "/api/users", nil).WithContext(ctx)
	rr := httptest.NewRecorder()

	// The handler succeeds, but the connection is gone by the time the
	// scope closes; the work must not commit.
	Transaction(db)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rr, req)

	// database/sql may deliver the rollback from its context watcher
	// goroutine rather than from the scope's own Rollback call.
	assert.Eventually(t, func() bool {
		return mock.ExpectationsWereMet() == nil
	}, time.Second, 10*time.Millisecond)
}

func TestTransaction_BeginFailureIsAnErrorResponse(t *testing.T) {
	db, mock := newTxDB(t)
	mock.ExpectBegin().WillReturnError(context.DeadlineExceeded)

	handlerRan := false
	rr := serveTx(db, func(w http.ResponseWriter, r *http.Request) {
		handlerRan = true
	})

	assert.False(t, handlerRan)
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
