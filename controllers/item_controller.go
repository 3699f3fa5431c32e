package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"lender/app"
	"lender/apperr"
	"lender/db"
	"lender/metrics"
	"lender/validate"
)

type ItemController struct{ *Srv }

func NewItemController(s *Srv) *ItemController { return &ItemController{Srv: s} }

func (ic *ItemController) CreateItem(c *gin.Context) {
	var in validate.ItemInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body", "kind": apperr.KindValidation})
		return
	}
	it, err := ic.Repo.CreateItem(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, it)
}

// ListItems supports ?available=true|false&type=&owner=
func (ic *ItemController) ListItems(c *gin.Context) {
	var f db.ItemFilter
	switch v := c.Query("available"); v {
	case "":
	case "true", "false":
		avail := v == "true"
		f.Available = &avail
	default:
		fail(c, apperr.Validation([]apperr.FieldError{
			{Field: "available", Message: "must be true or false"},
		}))
		return
	}
	f.Type = strings.ToLower(c.Query("type"))
	f.OwnerID = c.Query("owner")

	items, err := ic.Repo.ListItems(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"items": items, "count": len(items)})
}

// Availability is the pre-borrow check: cheap enough to poll from a
// catalog page without fetching the whole item.
func (ic *ItemController) Availability(c *gin.Context) {
	ok, err := ic.Repo.IsItemAvailable(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"itemId": c.Param("id"), "available": ok})
}

func (ic *ItemController) GetItem(c *gin.Context) {
	it, err := ic.Repo.FindItemByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) UpdateItem(c *gin.Context) {
	var in validate.ItemUpdateInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, app.H{"error": "invalid request body", "kind": apperr.KindValidation})
		return
	}
	it, err := ic.Repo.UpdateItem(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, it)
}

func (ic *ItemController) DeleteItem(c *gin.Context) {
	if err := ic.Repo.DeleteItem(c.Request.Context(), c.Param("id")); err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			metrics.ConflictsTotal.WithLabelValues("delete").Inc()
		}
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, app.H{"ok": true})
}
