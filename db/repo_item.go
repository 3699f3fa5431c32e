package db

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lender/apperr"
	"lender/models"
	"lender/validate"
)

// Items

func (r *Repo) CreateItem(ctx context.Context, in validate.ItemInput) (*models.Item, error) {
	if err := validate.Item(&in); err != nil {
		return nil, err
	}

	// owner is a plain reference, checked here rather than by the schema
	if _, err := r.FindMemberByID(ctx, in.OwnerID); err != nil {
		if apperr.KindOf(err) == apperr.KindNotFound {
			return nil, apperr.NotFound("owner member")
		}
		return nil, err
	}

	it := &models.Item{
		ID:          uuid.NewString(),
		Title:       in.Title,
		Type:        in.Type,
		OwnerID:     in.OwnerID,
		Author:      in.Author,
		ISBN:        in.ISBN,
		Description: in.Description,
		Available:   true,
	}
	if err := r.DB.WithContext(ctx).Create(it).Error; err != nil {
		return nil, apperr.Internal("create item", err)
	}
	return it, nil
}

func (r *Repo) FindItemByID(ctx context.Context, id string) (*models.Item, error) {
	var it models.Item
	if err := r.DB.WithContext(ctx).First(&it, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("item")
		}
		return nil, apperr.Internal("find item", err)
	}
	return &it, nil
}

type ItemFilter struct {
	Available *bool
	Type      string
	OwnerID   string
}

func (r *Repo) ListItems(ctx context.Context, f ItemFilter) ([]models.Item, error) {
	q := r.DB.WithContext(ctx).Model(&models.Item{}).Order("created_at DESC")
	if f.Available != nil {
		q = q.Where("available = ?", *f.Available)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	if f.OwnerID != "" {
		q = q.Where("owner_id = ?", f.OwnerID)
	}
	var items []models.Item
	if err := q.Find(&items).Error; err != nil {
		return nil, apperr.Internal("list items", err)
	}
	return items, nil
}

// UpdateItem applies catalog edits. An owner change requires the new owner
// to exist; it does not touch outstanding loans, since the borrower's
// identity is independent of who currently owns the item. Availability is
// derived from loans and never set here.
func (r *Repo) UpdateItem(ctx context.Context, id string, in validate.ItemUpdateInput) (*models.Item, error) {
	if err := validate.ItemUpdate(&in); err != nil {
		return nil, err
	}

	it, err := r.FindItemByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.OwnerID != nil && *in.OwnerID != it.OwnerID {
		if _, err := r.FindMemberByID(ctx, *in.OwnerID); err != nil {
			if apperr.KindOf(err) == apperr.KindNotFound {
				return nil, apperr.NotFound("owner member")
			}
			return nil, err
		}
		it.OwnerID = *in.OwnerID
	}
	if in.Title != nil {
		it.Title = *in.Title
	}
	if in.Type != nil {
		it.Type = *in.Type
	}
	if in.Author != nil {
		it.Author = *in.Author
	}
	if in.ISBN != nil {
		it.ISBN = *in.ISBN
	}
	if in.Description != nil {
		it.Description = *in.Description
	}

	if err := r.DB.WithContext(ctx).Save(it).Error; err != nil {
		return nil, apperr.Internal("update item", err)
	}
	return it, nil
}

// DeleteItem refuses while an open loan references the item.
func (r *Repo) DeleteItem(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it models.Item
		if err := tx.First(&it, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("item")
			}
			return apperr.Internal("find item", err)
		}

		var open int64
		if err := tx.Model(&models.Loan{}).
			Where("item_id = ? AND status IN ?", id, openStatuses).
			Count(&open).Error; err != nil {
			return apperr.Internal("count item loans", err)
		}
		if open > 0 {
			return apperr.Conflict("cannot delete item that is currently borrowed")
		}

		if err := tx.Delete(&models.Item{}, "id = ?", id).Error; err != nil {
			return apperr.Internal("delete item", err)
		}
		return nil
	})
}

func (r *Repo) IsItemAvailable(ctx context.Context, itemID string) (bool, error) {
	it, err := r.FindItemByID(ctx, itemID)
	if err != nil {
		return false, err
	}
	return it.Available, nil
}
