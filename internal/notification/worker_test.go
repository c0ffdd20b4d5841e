package notification

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"beo-inventory-backend/internal/store"
)

// mockSender is a mock implementation of the NotificationSender interface.
type mockSender struct {
	SendFunc func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error)
}

// Send calls the mock SendFunc.
func (m *mockSender) Send(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
	return m.SendFunc(payload, sub, options)
}

// A helper function to create a mock database connection.
func newTestDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock
}

func TestWorkerPool_Dispatch(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), &webpush.Options{})

	wp.Dispatch(Alert{Title: "Inventory integrity", Body: "1 divergence(s) need an operator"})

	select {
	case job := <-wp.Jobs():
		assert.Equal(t, "Inventory integrity", job.Title)
	case <-time.After(1 * time.Second):
		t.Fatal("timed out waiting for job to be dispatched")
	}
}

func TestWorkerPool_DispatchDropsWhenFull(t *testing.T) {
	db, _ := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(db), &webpush.Options{})

	wp.Dispatch(Alert{Title: "first"})
	wp.Dispatch(Alert{Title: "second"})

	assert.Len(t, wp.Jobs(), 1)
	assert.Equal(t, "first", (<-wp.Jobs()).Title)
}

func TestWorkerPool_WorkerLogic(t *testing.T) {
	gormDB, mock := newTestDB(t)
	wp := NewWorkerPool(1, store.NewGormStore(gormDB), &webpush.Options{})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	wp.Start(ctx)

	t.Run("sends alert to every subscription", func(t *testing.T) {
		var wg sync.WaitGroup
		wg.Add(2)

		var mu sync.Mutex
		var endpoints []string
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				assert.JSONEq(t, `{"title":"Inventory integrity","body":"2 divergence(s) need an operator"}`, string(payload))
				mu.Lock()
				endpoints = append(endpoints, sub.Endpoint)
				mu.Unlock()
				wg.Done()
				return &http.Response{
					StatusCode: http.StatusCreated,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "alert_subscriptions" ORDER BY created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "operator", "created_at"}).
				AddRow("https://example.com/a", "k1", "a1", "ana", time.Now()).
				AddRow("https://example.com/b", "k2", "a2", "luis", time.Now()))

		wp.Dispatch(Alert{Title: "Inventory integrity", Body: "2 divergence(s) need an operator"})
		wg.Wait()
		assert.ElementsMatch(t, []string{"https://example.com/a", "https://example.com/b"}, endpoints)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("deletes expired subscription", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				return &http.Response{
					StatusCode: http.StatusGone,
					Body:       io.NopCloser(bytes.NewBufferString("")),
				}, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "alert_subscriptions" ORDER BY created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "operator", "created_at"}).
				AddRow("https://example.com/expired", "k", "a", "ana", time.Now()))

		mock.ExpectBegin()
		mock.ExpectExec(`DELETE FROM "alert_subscriptions" WHERE "alert_subscriptions"."endpoint" = \$1`).
			WithArgs("https://example.com/expired").
			WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		wp.Dispatch(Alert{Title: "Inventory integrity", Body: "1 divergence(s) need an operator"})

		// A short sleep to allow the worker to process the job
		time.Sleep(100 * time.Millisecond)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no subscriptions sends nothing", func(t *testing.T) {
		wp.sender = &mockSender{
			SendFunc: func(payload []byte, sub *webpush.Subscription, options *webpush.Options) (*http.Response, error) {
				t.Error("sender must not be called")
				return nil, nil
			},
		}

		mock.ExpectQuery(`SELECT \* FROM "alert_subscriptions" ORDER BY created_at`).
			WillReturnRows(sqlmock.NewRows([]string{"endpoint", "p256dh", "auth", "operator", "created_at"}))

		wp.Dispatch(Alert{Title: "Inventory integrity"})
		time.Sleep(100 * time.Millisecond)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}
