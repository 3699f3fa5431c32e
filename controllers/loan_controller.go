package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"lender/app"
	"lender/apperr"
	"lender/db"
	"lender/metrics"
	"lender/validate"
)

type LoanController struct{ *Srv }

func NewLoanController(s *Srv) *LoanController { return &LoanController{Srv: s} }

// Borrow creates a loan and takes the item off the shelf.
func (lc *LoanController) Borrow(c *gin.Context) {
	var in validate.BorrowInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body", "kind": apperr.KindValidation})
		return
	}

	loan, err := lc.Repo.BorrowItem(c.Request.Context(), in)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			metrics.ConflictsTotal.WithLabelValues("borrow").Inc()
		}
		fail(c, err)
		return
	}
	metrics.BorrowsTotal.Inc()
	lc.Cache.Delete(c.Request.Context(), cacheStatsKey)
	c.JSON(http.StatusCreated, loan)
}

// Return closes the loan; returning twice is a conflict, not a no-op.
func (lc *LoanController) Return(c *gin.Context) {
	loanID := c.Param("id")
	if loanID == "" {
		c.JSON(http.StatusBadRequest, app.H{"error": "missing loan id", "kind": apperr.KindValidation})
		return
	}

	loan, err := lc.Repo.ReturnLoan(c.Request.Context(), loanID)
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			metrics.ConflictsTotal.WithLabelValues("return").Inc()
		}
		fail(c, err)
		return
	}
	metrics.ReturnsTotal.Inc()
	lc.Cache.Delete(c.Request.Context(), cacheStatsKey)
	c.JSON(http.StatusOK, loan)
}

// ListLoans supports ?status=&borrowerMemberId=&itemId=
func (lc *LoanController) ListLoans(c *gin.Context) {
	f := db.LoanFilter{
		Status:     c.Query("status"),
		BorrowerID: c.Query("borrowerMemberId"),
		ItemID:     c.Query("itemId"),
	}
	ls, err := lc.Repo.ListLoans(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls, "count": len(ls)})
}

func (lc *LoanController) GetLoan(c *gin.Context) {
	l, err := lc.Repo.FindLoanByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, l)
}

// History supports ?startDate=&endDate=&status= (RFC 3339 dates, inclusive,
// on the borrow date).
func (lc *LoanController) History(c *gin.Context) {
	var f db.HistoryFilter
	var fields []apperr.FieldError

	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "startDate", Message: "must be a valid RFC 3339 date"})
		} else {
			f.Start = &t
		}
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			fields = append(fields, apperr.FieldError{Field: "endDate", Message: "must be a valid RFC 3339 date"})
		} else {
			f.End = &t
		}
	}
	if len(fields) > 0 {
		fail(c, apperr.Validation(fields))
		return
	}
	f.Status = c.Query("status")

	ls, err := lc.Repo.ListLoanHistory(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls, "count": len(ls)})
}
