package models

import "time"

const LoanTable = "lender_loans"

// Loan statuses. Returned is terminal.
const (
	LoanStatusActive   = "active"
	LoanStatusOverdue  = "overdue"
	LoanStatusReturned = "returned"
)

func IsValidLoanStatus(s string) bool {
	return s == LoanStatusActive || s == LoanStatusOverdue || s == LoanStatusReturned
}

// Loan is a single borrow-to-return transaction. Loans are append-only:
// ItemID and BorrowerID never change after creation and loans are never
// deleted. ReturnDate is non-nil iff Status is returned.
type Loan struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	ItemID     string     `gorm:"type:uuid;index:idx_lender_loans_item_status;not null" json:"itemId"`
	BorrowerID string     `gorm:"column:borrower_member_id;type:uuid;index:idx_lender_loans_borrower_status;not null" json:"borrowerMemberId"`
	BorrowDate time.Time  `gorm:"index;not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"index:idx_lender_loans_due_status;not null" json:"dueDate"`
	ReturnDate *time.Time `gorm:"index" json:"returnDate"`
	Status     string     `gorm:"size:20;not null;default:'active';index:idx_lender_loans_item_status;index:idx_lender_loans_borrower_status;index:idx_lender_loans_due_status" json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (Loan) TableName() string { return LoanTable }

// Open reports whether the loan still blocks its item (active or overdue).
func (l *Loan) Open() bool {
	return l.Status == LoanStatusActive || l.Status == LoanStatusOverdue
}

// IsOverdue reports whether an active loan has passed its due date without a
// return. It is the single predicate behind both the lazy read-side refresh
// and the bulk sweep, so the two can never disagree.
func (l *Loan) IsOverdue(now time.Time) bool {
	return l.Status == LoanStatusActive && l.ReturnDate == nil && l.DueDate.Before(now)
}

// DaysOverdue is floor((now - dueDate) / 24h); zero when not past due.
func (l *Loan) DaysOverdue(now time.Time) int {
	return DaysOverdue(l.DueDate, now)
}

// DaysOverdue is the plain-date form, for rows that carry a due date
// without a full Loan.
func DaysOverdue(due, now time.Time) int {
	if !now.After(due) {
		return 0
	}
	return int(now.Sub(due).Hours() / 24)
}
