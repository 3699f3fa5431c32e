package db

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lender/models"
)

func TestListOverdueLoans_PersistsTransition(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	owner := seedMember(t, r, "Alice Owner", "alice@example.com")
	borrower := seedMember(t, r, "Bob Borrower", "bob@example.com")
	item := seedItem(t, r, owner.ID, "Router")
	loan := seedLoan(t, r, item.ID, borrower.ID, time.Now().UTC().Add(time.Hour))

	rows, err := r.ListOverdueLoans(ctx)
	require.NoError(t, err)
	assert.Empty(t, rows)

	// due date passes, the report both shows and persists the transition
	forceDue(t, r, loan.ID, time.Now().UTC().Add(-26*time.Hour))

	rows, err = r.ListOverdueLoans(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, loan.ID, rows[0].LoanID)
	assert.Equal(t, "Router", rows[0].ItemTitle)
	assert.Equal(t, "Bob Borrower", rows[0].BorrowerName)
	assert.Equal(t, models.LoanStatusOverdue, rows[0].Status)
	assert.Equal(t, 1, rows[0].DaysOverdue)
	assert.Nil(t, rows[0].ReturnDate)

	var stored models.Loan
	require.NoError(t, r.DB.First(&stored, "id = ?", loan.ID).Error)
	assert.Equal(t, models.LoanStatusOverdue, stored.Status)
}

func TestListOverdueLoans_DanglingReferencesRenderUnknown(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	owner := seedMember(t, r, "Alice Owner", "alice@example.com")
	borrower := seedMember(t, r, "Bob Borrower", "bob@example.com")
	item := seedItem(t, r, owner.ID, "Vanishing Item")
	loan := seedLoan(t, r, item.ID, borrower.ID, time.Now().UTC().Add(time.Hour))
	forceDue(t, r, loan.ID, time.Now().UTC().Add(-time.Hour))

	// bypass the consistency guard to simulate a record that vanished
	// outside the application's control
	require.NoError(t, r.DB.Exec("DELETE FROM "+models.ItemTable+" WHERE id = ?", item.ID).Error)
	require.NoError(t, r.DB.Exec("DELETE FROM "+models.MemberTable+" WHERE id = ?", borrower.ID).Error)

	rows, err := r.ListOverdueLoans(ctx)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Unknown", rows[0].ItemTitle)
	assert.Equal(t, "Unknown", rows[0].BorrowerName)
}

func TestListCurrentBorrows(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	owner := seedMember(t, r, "Alice Owner", "alice@example.com")
	borrower := seedMember(t, r, "Bob Borrower", "bob@example.com")
	i1 := seedItem(t, r, owner.ID, "First")
	i2 := seedItem(t, r, owner.ID, "Second")

	l1 := seedLoan(t, r, i1.ID, borrower.ID, time.Now().UTC().Add(time.Hour))
	seedLoan(t, r, i2.ID, borrower.ID, time.Now().UTC().Add(2*time.Hour))
	_, err := r.ReturnLoan(ctx, l1.ID)
	require.NoError(t, err)

	rows, err := r.ListCurrentBorrows(ctx, nil, nil)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, i2.ID, rows[0].ItemID)

	past := time.Now().UTC().Add(-time.Hour)
	older := past.Add(-time.Hour)
	rows, err = r.ListCurrentBorrows(ctx, &older, &past)
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestDashboardStats(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	owner := seedMember(t, r, "Alice Owner", "alice@example.com")
	borrower := seedMember(t, r, "Bob Borrower", "bob@example.com")
	i1 := seedItem(t, r, owner.ID, "Popular Item")
	seedItem(t, r, owner.ID, "Quiet Item")
	due := time.Now().UTC().Add(time.Hour)

	l1 := seedLoan(t, r, i1.ID, borrower.ID, due)
	_, err := r.ReturnLoan(ctx, l1.ID)
	require.NoError(t, err)
	seedLoan(t, r, i1.ID, borrower.ID, due)

	s, err := r.DashboardStats(ctx)
	require.NoError(t, err)

	assert.Equal(t, int64(2), s.Overall.TotalMembers)
	assert.Equal(t, int64(2), s.Overall.TotalItems)
	assert.Equal(t, int64(1), s.Overall.AvailableItems)
	assert.Equal(t, int64(1), s.Overall.BorrowedItems)
	assert.Equal(t, int64(2), s.Overall.TotalLoans)
	assert.Equal(t, int64(1), s.Overall.ActiveLoans)
	assert.Equal(t, int64(1), s.Overall.ReturnedLoans)
	assert.Equal(t, int64(0), s.Overall.OverdueLoans)

	require.NotEmpty(t, s.MostBorrowedItems)
	assert.Equal(t, i1.ID, s.MostBorrowedItems[0].ItemID)
	assert.Equal(t, "Popular Item", s.MostBorrowedItems[0].Title)
	assert.Equal(t, int64(2), s.MostBorrowedItems[0].BorrowCount)
	assert.Equal(t, int64(1), s.MostBorrowedItems[0].ActiveBorrows)

	require.NotEmpty(t, s.TopBorrowers)
	assert.Equal(t, borrower.ID, s.TopBorrowers[0].MemberID)
	assert.Equal(t, int64(2), s.TopBorrowers[0].BorrowCount)
	assert.Equal(t, int64(1), s.TopBorrowers[0].ReturnedCount)
}

func TestListNotifications(t *testing.T) {
	r := openTestDB(t)
	ctx := context.Background()
	owner := seedMember(t, r, "Alice Owner", "alice@example.com")
	borrower := seedMember(t, r, "Bob Borrower", "bob@example.com")
	item := seedItem(t, r, owner.ID, "Flashlight")
	loan := seedLoan(t, r, item.ID, borrower.ID, time.Now().UTC().Add(time.Hour))
	forceDue(t, r, loan.ID, time.Now().UTC().Add(-49*time.Hour))

	ns, err := r.ListNotifications(ctx)
	require.NoError(t, err)
	require.Len(t, ns, 1)
	assert.Equal(t, "overdue", ns[0].Type)
	assert.Equal(t, loan.ID, ns[0].LoanID)
	assert.Equal(t, 2, ns[0].DaysOverdue)
	assert.Contains(t, ns[0].Message, "Flashlight")
	assert.Contains(t, ns[0].Message, "Bob Borrower")
}
