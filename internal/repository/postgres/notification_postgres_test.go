package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentapi/internal/model"
	"rentapi/internal/repository"
)

func notificationRows(n *model.Notification) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "recipient_id", "title", "body", "subject_ref", "dedupe_key", "read", "created_at"}).
		AddRow(n.ID, n.RecipientID, n.Title, n.Body, n.SubjectRef, n.DedupeKey, n.Read, n.CreatedAt)
}

func TestNotificationPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	n := &model.Notification{
		ID:          "test-uuid",
		RecipientID: "owner-1",
		Title:       "Invoice Due Soon",
		Body:        "Invoice INV-202507-0001 amounting to Rp 18,000 is due in 3 day(s) on 13 Jul 2025.",
		SubjectRef:  "INV-202507-0001",
		DedupeKey:   "abc123",
		CreatedAt:   time.Now().UTC(),
	}

	mock.ExpectQuery("INSERT INTO notifications").
		WithArgs(n.ID, n.RecipientID, n.Title, n.Body, n.SubjectRef, n.DedupeKey, n.Read, n.CreatedAt).
		WillReturnRows(notificationRows(n))

	result, err := repo.Create(ctx, n)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, n.Title, result.Title)
	assert.False(t, result.Read)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationPostgres_ListByRecipient(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	n := &model.Notification{ID: "n-1", RecipientID: "owner-1", Title: "Invoice Due Soon", CreatedAt: time.Now().UTC()}

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery("SELECT (.+) FROM notifications").
		WithArgs("owner-1", 20, 0).
		WillReturnRows(notificationRows(n))

	res, err := repo.ListByRecipient(ctx, "owner-1", repository.PageQuery{Limit: 20, Offset: 0})

	assert.NoError(t, err)
	assert.Equal(t, 1, res.Total)
	assert.Len(t, res.Items, 1)
}

func TestNotificationPostgres_UnreadCount(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM notifications").
		WithArgs("owner-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))

	n, err := repo.UnreadCount(ctx, "owner-1")

	assert.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestNotificationPostgres_ExistsWithDedupeKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()
	since := time.Now().UTC().Add(-24 * time.Hour)

	t.Run("exists", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("key-1", since).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

		exists, err := repo.ExistsWithDedupeKey(ctx, "key-1", since)

		assert.NoError(t, err)
		assert.True(t, exists)
	})

	t.Run("absent", func(t *testing.T) {
		mock.ExpectQuery("SELECT EXISTS").
			WithArgs("key-2", since).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

		exists, err := repo.ExistsWithDedupeKey(ctx, "key-2", since)

		assert.NoError(t, err)
		assert.False(t, exists)
	})
}

func TestNotificationPostgres_MarkRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	t.Run("updates one row", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET read = TRUE").
			WithArgs("n-1", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.MarkRead(ctx, "n-1", "owner-1"))
	})

	t.Run("missing row reports ErrNoRows", func(t *testing.T) {
		mock.ExpectExec("UPDATE notifications SET read = TRUE").
			WithArgs("missing", "owner-1").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.MarkRead(ctx, "missing", "owner-1"), sql.ErrNoRows)
	})
}

func TestNotificationPostgres_MarkAllRead(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("UPDATE notifications SET read = TRUE").
		WithArgs("owner-1").
		WillReturnResult(sqlmock.NewResult(0, 4))

	n, err := repo.MarkAllRead(ctx, "owner-1")

	assert.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestNotificationPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewNotificationPostgres(db)
	ctx := context.Background()

	mock.ExpectExec("DELETE FROM notifications").
		WithArgs("n-1", "owner-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.Delete(ctx, "n-1", "owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
