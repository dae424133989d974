package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"rentapi/internal/model"
)

func TestContractPostgres_ListActiveEndingBetween(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewContractPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	to := now.AddDate(0, 0, 30)

	rows := sqlmock.NewRows([]string{"id", "owner_id", "room_name", "tenant_name", "status", "start_date", "end_date", "created_at"}).
		AddRow("ct-1", "owner-1", "A-101", "Jane Tenant", string(model.ContractStatusActive), now.AddDate(-1, 0, 0), now.AddDate(0, 0, 14), now.AddDate(-1, 0, 0))

	mock.ExpectQuery("SELECT (.+) FROM contracts").
		WithArgs(model.ContractStatusActive, now, to).
		WillReturnRows(rows)

	items, err := repo.ListActiveEndingBetween(ctx, now, to)

	assert.NoError(t, err)
	assert.Len(t, items, 1)
	assert.Equal(t, "A-101", items[0].RoomName)
	assert.Equal(t, model.ContractStatusActive, items[0].Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}
