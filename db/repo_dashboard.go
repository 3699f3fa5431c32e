package db

import (
	"context"
	"fmt"
	"time"

	"lender/apperr"
	"lender/models"
)

// Read-only projections for the dashboard. These derive everything from the
// three collections and add no invariants of their own. Item and member
// references are resolved with LEFT JOINs so a loan whose item or member has
// since vanished renders as "Unknown" instead of failing.

type OverdueRow struct {
	LoanID        string     `json:"loanId"`
	ItemID        string     `json:"itemId"`
	ItemTitle     string     `json:"itemTitle"`
	BorrowerID    string     `json:"borrowerId"`
	BorrowerName  string     `json:"borrowerName"`
	BorrowerEmail string     `json:"borrowerEmail"`
	BorrowDate    time.Time  `json:"borrowDate"`
	DueDate       time.Time  `json:"dueDate"`
	ReturnDate    *time.Time `json:"returnDate"`
	Status        string     `json:"status"`
	DaysOverdue   int        `json:"daysOverdue"`
}

const overdueRowSelect = `
	l.id AS loan_id,
	l.item_id,
	COALESCE(i.title, 'Unknown') AS item_title,
	l.borrower_member_id AS borrower_id,
	COALESCE(m.name, 'Unknown')  AS borrower_name,
	COALESCE(m.email, '')        AS borrower_email,
	l.borrow_date, l.due_date, l.return_date, l.status`

// ListOverdueLoans runs the sweep eagerly, then returns every open overdue
// loan, earliest due date first.
func (r *Repo) ListOverdueLoans(ctx context.Context) ([]OverdueRow, error) {
	now := time.Now().UTC()
	if _, err := r.ApplyOverdueSweep(ctx, now); err != nil {
		return nil, err
	}

	var rows []OverdueRow
	err := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(overdueRowSelect).
		Joins("LEFT JOIN "+models.ItemTable+" i ON i.id = l.item_id").
		Joins("LEFT JOIN "+models.MemberTable+" m ON m.id = l.borrower_member_id").
		Where("l.status = ? AND l.return_date IS NULL", models.LoanStatusOverdue).
		Order("l.due_date ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Internal("list overdue loans", err)
	}
	for i := range rows {
		rows[i].DaysOverdue = models.DaysOverdue(rows[i].DueDate, now)
	}
	return rows, nil
}

// ListCurrentBorrows returns open loans, optionally filtered by borrow-date
// range, due soonest first.
func (r *Repo) ListCurrentBorrows(ctx context.Context, start, end *time.Time) ([]OverdueRow, error) {
	now := time.Now().UTC()
	if _, err := r.ApplyOverdueSweep(ctx, now); err != nil {
		return nil, err
	}

	q := r.DB.WithContext(ctx).
		Table(models.LoanTable+" l").
		Select(overdueRowSelect).
		Joins("LEFT JOIN "+models.ItemTable+" i ON i.id = l.item_id").
		Joins("LEFT JOIN "+models.MemberTable+" m ON m.id = l.borrower_member_id").
		Where("l.status IN ? AND l.return_date IS NULL", openStatuses).
		Order("l.due_date ASC")
	if start != nil {
		q = q.Where("l.borrow_date >= ?", *start)
	}
	if end != nil {
		q = q.Where("l.borrow_date <= ?", *end)
	}

	var rows []OverdueRow
	if err := q.Scan(&rows).Error; err != nil {
		return nil, apperr.Internal("list current borrows", err)
	}
	for i := range rows {
		rows[i].DaysOverdue = models.DaysOverdue(rows[i].DueDate, now)
	}
	return rows, nil
}

type ItemStat struct {
	ItemID        string `json:"itemId"`
	Title         string `json:"title"`
	BorrowCount   int64  `json:"borrowCount"`
	ActiveBorrows int64  `json:"activeBorrows"`
}

type MemberStat struct {
	MemberID      string `json:"memberId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	BorrowCount   int64  `json:"borrowCount"`
	ActiveBorrows int64  `json:"activeBorrows"`
	ReturnedCount int64  `json:"returnedCount"`
}

type OverallStats struct {
	TotalMembers   int64 `json:"totalMembers"`
	TotalItems     int64 `json:"totalItems"`
	AvailableItems int64 `json:"availableItems"`
	BorrowedItems  int64 `json:"borrowedItems"`
	TotalLoans     int64 `json:"totalLoans"`
	ActiveLoans    int64 `json:"activeLoans"`
	ReturnedLoans  int64 `json:"returnedLoans"`
	OverdueLoans   int64 `json:"overdueLoans"`
}

type DashboardStats struct {
	Overall           OverallStats `json:"overall"`
	MostBorrowedItems []ItemStat   `json:"mostBorrowedItems"`
	TopBorrowers      []MemberStat `json:"borrowCountsByMember"`
}

func (r *Repo) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	db := r.DB.WithContext(ctx)
	var s DashboardStats

	counts := []struct {
		dst   *int64
		model any
		cond  []any
	}{
		{&s.Overall.TotalMembers, &models.Member{}, nil},
		{&s.Overall.TotalItems, &models.Item{}, nil},
		{&s.Overall.AvailableItems, &models.Item{}, []any{"available = ?", true}},
		{&s.Overall.TotalLoans, &models.Loan{}, nil},
		{&s.Overall.ActiveLoans, &models.Loan{}, []any{"status IN ?", openStatuses}},
		{&s.Overall.ReturnedLoans, &models.Loan{}, []any{"status = ?", models.LoanStatusReturned}},
		{&s.Overall.OverdueLoans, &models.Loan{}, []any{"status = ?", models.LoanStatusOverdue}},
	}
	for _, c := range counts {
		q := db.Model(c.model)
		if c.cond != nil {
			q = q.Where(c.cond[0], c.cond[1:]...)
		}
		if err := q.Count(c.dst).Error; err != nil {
			return nil, apperr.Internal("dashboard counts", err)
		}
	}
	s.Overall.BorrowedItems = s.Overall.TotalItems - s.Overall.AvailableItems

	err := db.Table(models.LoanTable+" l").
		Select(`l.item_id,
			COALESCE(i.title, 'Unknown') AS title,
			COUNT(*) AS borrow_count,
			SUM(CASE WHEN l.status IN ('active','overdue') THEN 1 ELSE 0 END) AS active_borrows`).
		Joins("LEFT JOIN "+models.ItemTable+" i ON i.id = l.item_id").
		Group("l.item_id, i.title").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&s.MostBorrowedItems).Error
	if err != nil {
		return nil, apperr.Internal("top borrowed items", err)
	}

	err = db.Table(models.LoanTable+" l").
		Select(`l.borrower_member_id AS member_id,
			COALESCE(m.name, 'Unknown')  AS name,
			COALESCE(m.email, '')        AS email,
			COUNT(*) AS borrow_count,
			SUM(CASE WHEN l.status IN ('active','overdue') THEN 1 ELSE 0 END) AS active_borrows,
			SUM(CASE WHEN l.status = 'returned' THEN 1 ELSE 0 END) AS returned_count`).
		Joins("LEFT JOIN "+models.MemberTable+" m ON m.id = l.borrower_member_id").
		Group("l.borrower_member_id, m.name, m.email").
		Order("borrow_count DESC").
		Limit(5).
		Scan(&s.TopBorrowers).Error
	if err != nil {
		return nil, apperr.Internal("top borrowers", err)
	}

	return &s, nil
}

type Notification struct {
	Type        string    `json:"type"`
	Message     string    `json:"message"`
	LoanID      string    `json:"loanId"`
	ItemID      string    `json:"itemId"`
	BorrowerID  string    `json:"borrowerId"`
	DueDate     time.Time `json:"dueDate"`
	DaysOverdue int       `json:"daysOverdue"`
}

// ListNotifications maps the ten most overdue open loans to human-readable
// messages. Best effort only: consumers poll, nothing is delivered.
func (r *Repo) ListNotifications(ctx context.Context) ([]Notification, error) {
	rows, err := r.ListOverdueLoans(ctx)
	if err != nil {
		return nil, err
	}
	if len(rows) > 10 {
		rows = rows[:10]
	}

	ns := make([]Notification, 0, len(rows))
	for _, row := range rows {
		ns = append(ns, Notification{
			Type:        "overdue",
			Message:     fmt.Sprintf("Item %q is overdue. Borrower: %s", row.ItemTitle, row.BorrowerName),
			LoanID:      row.LoanID,
			ItemID:      row.ItemID,
			BorrowerID:  row.BorrowerID,
			DueDate:     row.DueDate,
			DaysOverdue: row.DaysOverdue,
		})
	}
	return ns, nil
}
