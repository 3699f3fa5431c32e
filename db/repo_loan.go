package db

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lender/apperr"
	"lender/models"
	"lender/validate"
)

var openStatuses = []string{models.LoanStatusActive, models.LoanStatusOverdue}

// BorrowItem creates the loan and flips the item unavailable as one
// transaction. The loan row is written first (it carries the full intent);
// the availability flip is conditional on the previous value, so the loser
// of two concurrent borrows sees zero rows updated and rolls back with a
// conflict instead of corrupting the availability invariant.
func (r *Repo) BorrowItem(ctx context.Context, in validate.BorrowInput) (*models.Loan, error) {
	now := time.Now().UTC()
	if err := validate.Borrow(&in, now); err != nil {
		return nil, err
	}

	var loan *models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, "id = ?", in.ItemID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return apperr.Internal("find item", err)
		}

		var borrower models.Member
		if err := tx.First(&borrower, "id = ?", in.BorrowerID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("borrower member")
			}
			return apperr.Internal("find borrower", err)
		}

		if it.OwnerID == borrower.ID {
			return apperr.Conflict("cannot borrow your own item")
		}
		if !it.Available {
			return apperr.Conflict("item is not available for borrowing")
		}

		// belt and braces next to the conditional flip below
		var open int64
		if err := tx.Model(&models.Loan{}).
			Where("item_id = ? AND status IN ?", it.ID, openStatuses).
			Count(&open).Error; err != nil {
			return apperr.Internal("count open loans", err)
		}
		if open > 0 {
			return apperr.Conflict("item is not available for borrowing")
		}

		l := &models.Loan{
			ID:         uuid.NewString(),
			ItemID:     it.ID,
			BorrowerID: borrower.ID,
			BorrowDate: now,
			DueDate:    in.DueDate.UTC(),
			Status:     models.LoanStatusActive,
		}
		if err := tx.Create(l).Error; err != nil {
			return apperr.Internal("create loan", err)
		}

		res := tx.Model(&models.Item{}).
			Where("id = ? AND available = ?", it.ID, true).
			Update("available", false)
		if res.Error != nil {
			return apperr.Internal("flip item availability", res.Error)
		}
		if res.RowsAffected == 0 {
			// lost the race; rollback removes the loan row
			return apperr.Conflict("item is not available for borrowing")
		}

		loan = l
		return nil
	})
	if err != nil {
		return nil, err
	}
	return loan, nil
}

// ReturnLoan marks the loan returned and releases the item. Returned is
// terminal: a second return gets a conflict, with the status check folded
// into the UPDATE so concurrent returns serialize on the row itself.
func (r *Repo) ReturnLoan(ctx context.Context, loanID string) (*models.Loan, error) {
	var loan models.Loan
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&loan, "id = ?", loanID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("loan")
			}
			return apperr.Internal("find loan", err)
		}
		if loan.Status == models.LoanStatusReturned {
			return apperr.Conflict("loan has already been returned")
		}

		now := time.Now().UTC()
		res := tx.Model(&models.Loan{}).
			Where("id = ? AND status <> ?", loanID, models.LoanStatusReturned).
			Updates(map[string]any{
				"return_date": now,
				"status":      models.LoanStatusReturned,
			})
		if res.Error != nil {
			return apperr.Internal("mark loan returned", res.Error)
		}
		if res.RowsAffected == 0 {
			return apperr.Conflict("loan has already been returned")
		}

		if err := tx.Model(&models.Item{}).
			Where("id = ?", loan.ItemID).
			Update("available", true).Error; err != nil {
			return apperr.Internal("release item availability", err)
		}

		loan.Status = models.LoanStatusReturned
		loan.ReturnDate = &now
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &loan, nil
}

// FindLoanByID refreshes the overdue status lazily before returning, the
// way list reads do in bulk.
func (r *Repo) FindLoanByID(ctx context.Context, id string) (*models.Loan, error) {
	var l models.Loan
	if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("loan")
		}
		return nil, apperr.Internal("find loan", err)
	}

	now := time.Now().UTC()
	if l.IsOverdue(now) {
		n, err := r.markOverdue(ctx, l.ID, now)
		if err != nil {
			return nil, err
		}
		if n == 1 {
			l.Status = models.LoanStatusOverdue
		} else {
			// the loan changed under us (likely returned); the store wins
			if err := r.DB.WithContext(ctx).First(&l, "id = ?", id).Error; err != nil {
				return nil, apperr.Internal("reload loan", err)
			}
		}
	}
	return &l, nil
}

// markOverdue persists a single active→overdue transition and reports how
// many rows moved. The status guard in the WHERE keeps it idempotent and
// keeps it from ever touching a returned loan.
func (r *Repo) markOverdue(ctx context.Context, loanID string, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("id = ? AND status = ? AND return_date IS NULL AND due_date < ?",
			loanID, models.LoanStatusActive, now).
		Update("status", models.LoanStatusOverdue)
	if res.Error != nil {
		return 0, apperr.Internal("mark loan overdue", res.Error)
	}
	return res.RowsAffected, nil
}

// ApplyOverdueSweep transitions every lapsed active loan to overdue and
// returns how many moved. Re-running it is a no-op for loans already swept.
func (r *Repo) ApplyOverdueSweep(ctx context.Context, now time.Time) (int64, error) {
	res := r.DB.WithContext(ctx).Model(&models.Loan{}).
		Where("status = ? AND return_date IS NULL AND due_date < ?",
			models.LoanStatusActive, now).
		Update("status", models.LoanStatusOverdue)
	if res.Error != nil {
		return 0, apperr.Internal("overdue sweep", res.Error)
	}
	return res.RowsAffected, nil
}

type LoanFilter struct {
	Status     string
	BorrowerID string
	ItemID     string
}

func (r *Repo) ListLoans(ctx context.Context, f LoanFilter) ([]models.Loan, error) {
	if _, err := r.ApplyOverdueSweep(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}

	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrow_date DESC")
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.BorrowerID != "" {
		q = q.Where("borrower_member_id = ?", f.BorrowerID)
	}
	if f.ItemID != "" {
		q = q.Where("item_id = ?", f.ItemID)
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, apperr.Internal("list loans", err)
	}
	return ls, nil
}

type HistoryFilter struct {
	Start  *time.Time // inclusive, on borrow date
	End    *time.Time // inclusive
	Status string
}

func (r *Repo) ListLoanHistory(ctx context.Context, f HistoryFilter) ([]models.Loan, error) {
	q := r.DB.WithContext(ctx).Model(&models.Loan{}).Order("borrow_date DESC")
	if f.Start != nil {
		q = q.Where("borrow_date >= ?", *f.Start)
	}
	if f.End != nil {
		q = q.Where("borrow_date <= ?", *f.End)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var ls []models.Loan
	if err := q.Find(&ls).Error; err != nil {
		return nil, apperr.Internal("list loan history", err)
	}
	return ls, nil
}
