package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"lender/app"
	"lender/apperr"
	"lender/metrics"
	"lender/validate"
)

type MemberController struct{ *Srv }

func NewMemberController(s *Srv) *MemberController { return &MemberController{Srv: s} }

func (mc *MemberController) CreateMember(c *gin.Context) {
	var in validate.MemberInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body", "kind": apperr.KindValidation})
		return
	}
	m, err := mc.Repo.CreateMember(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (mc *MemberController) ListMembers(c *gin.Context) {
	ms, err := mc.Repo.ListMembers(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ms, "count": len(ms)})
}

func (mc *MemberController) GetMember(c *gin.Context) {
	m, err := mc.Repo.FindMemberByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (mc *MemberController) UpdateMember(c *gin.Context) {
	var in validate.MemberUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body", "kind": apperr.KindValidation})
		return
	}
	m, err := mc.Repo.UpdateMember(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (mc *MemberController) DeleteMember(c *gin.Context) {
	if err := mc.Repo.DeleteMember(c.Request.Context(), c.Param("id")); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			metrics.ConflictsTotal.WithLabelValues("delete").Inc()
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}

// ListBorrowed is the member's current open loans.
func (mc *MemberController) ListBorrowed(c *gin.Context) {
	ls, err := mc.Repo.ListMemberOpenLoans(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": ls, "count": len(ls)})
}
