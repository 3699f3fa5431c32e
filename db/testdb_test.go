package db

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"lender/models"
	"lender/validate"
)

// openTestDB gives each test an isolated in-memory database with the real
// schema, including the one-open-loan-per-item partial index.
func openTestDB(t *testing.T) *Repo {
	t.Helper()

	conn, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// a single connection keeps every session on the same :memory: database
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, Migrate(conn))
	return NewRepo(conn)
}

func seedMember(t *testing.T, r *Repo, name, email string) *models.Member {
	t.Helper()
	m, err := r.CreateMember(context.Background(), validate.MemberInput{Name: name, Email: email})
	require.NoError(t, err)
	return m
}

func seedItem(t *testing.T, r *Repo, ownerID, title string) *models.Item {
	t.Helper()
	it, err := r.CreateItem(context.Background(), validate.ItemInput{
		Title:   title,
		Type:    models.ItemTypeBook,
		OwnerID: ownerID,
	})
	require.NoError(t, err)
	return it
}

func seedLoan(t *testing.T, r *Repo, itemID, borrowerID string, due time.Time) *models.Loan {
	t.Helper()
	l, err := r.BorrowItem(context.Background(), validate.BorrowInput{
		ItemID:     itemID,
		BorrowerID: borrowerID,
		DueDate:    due,
	})
	require.NoError(t, err)
	return l
}

// forceDue rewinds a loan's due date so overdue paths can be exercised
// without waiting.
func forceDue(t *testing.T, r *Repo, loanID string, due time.Time) {
	t.Helper()
	err := r.DB.Model(&models.Loan{}).Where("id = ?", loanID).
		Update("due_date", due).Error
	require.NoError(t, err)
}

// requireAvailabilityInvariant asserts available == false iff an open loan
// references the item, for every item in the store.
func requireAvailabilityInvariant(t *testing.T, r *Repo) {
	t.Helper()
	var items []models.Item
	require.NoError(t, r.DB.Find(&items).Error)
	for _, it := range items {
		var open int64
		require.NoError(t, r.DB.Model(&models.Loan{}).
			Where("item_id = ? AND status IN ?", it.ID, openStatuses).
			Count(&open).Error)
		if it.Available {
			require.Zero(t, open, "item %s is available but has %d open loan(s)", it.ID, open)
		} else {
			require.Equal(t, int64(1), open, "item %s is unavailable but has %d open loan(s)", it.ID, open)
		}
	}
}
