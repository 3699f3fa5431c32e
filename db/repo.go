package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"lender/apperr"
	"lender/models"
	"lender/validate"
)

type Repo struct{ DB *gorm.DB }

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db} }

// Members

func (r *Repo) CreateMember(ctx context.Context, in validate.MemberInput) (*models.Member, error) {
	if err := validate.Member(&in); err != nil {
		return nil, err
	}

	if _, err := r.FindMemberByEmail(ctx, in.Email); err == nil {
		return nil, apperr.Conflict("member with this email already exists")
	} else if apperr.KindOf(err) != apperr.KindNotFound {
		return nil, err
	}

	m := &models.Member{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		StudentID: in.StudentID,
	}
	if err := r.DB.WithContext(ctx).Create(m).Error; err != nil {
		return nil, apperr.Internal("create member", err)
	}
	return m, nil
}

func (r *Repo) FindMemberByID(ctx context.Context, id string) (*models.Member, error) {
	var m models.Member
	if err := r.DB.WithContext(ctx).First(&m, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member")
		}
		return nil, apperr.Internal("find member", err)
	}
	return &m, nil
}

func (r *Repo) FindMemberByEmail(ctx context.Context, email string) (*models.Member, error) {
	var m models.Member
	err := r.DB.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&m).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("member")
		}
		return nil, apperr.Internal("find member by email", err)
	}
	return &m, nil
}

func (r *Repo) ListMembers(ctx context.Context) ([]models.Member, error) {
	var ms []models.Member
	if err := r.DB.WithContext(ctx).Order("created_at DESC").Find(&ms).Error; err != nil {
		return nil, apperr.Internal("list members", err)
	}
	return ms, nil
}

func (r *Repo) UpdateMember(ctx context.Context, id string, in validate.MemberUpdateInput) (*models.Member, error) {
	if err := validate.MemberUpdate(&in); err != nil {
		return nil, err
	}

	m, err := r.FindMemberByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Email != nil && *in.Email != m.Email {
		if _, err := r.FindMemberByEmail(ctx, *in.Email); err == nil {
			return nil, apperr.Conflict("member with this email already exists")
		} else if apperr.KindOf(err) != apperr.KindNotFound {
			return nil, err
		}
		m.Email = *in.Email
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Phone != nil {
		m.Phone = *in.Phone
	}
	if in.StudentID != nil {
		m.StudentID = *in.StudentID
	}

	if err := r.DB.WithContext(ctx).Save(m).Error; err != nil {
		return nil, apperr.Internal("update member", err)
	}
	return m, nil
}

// DeleteMember refuses while the member holds open loans as borrower or
// owns items that are out on loan; the guard and the delete run in one
// transaction so a concurrent borrow cannot slip between them.
func (r *Repo) DeleteMember(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m models.Member
		if err := tx.First(&m, "id = ?", id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperr.NotFound("member")
			}
			return apperr.Internal("find member", err)
		}

		var borrowing int64
		if err := tx.Model(&models.Loan{}).
			Where("borrower_member_id = ? AND status IN ?", id, openStatuses).
			Count(&borrowing).Error; err != nil {
			return apperr.Internal("count member loans", err)
		}
		if borrowing > 0 {
			return apperr.Conflictf("cannot delete member: %d active loan(s) outstanding", borrowing)
		}

		var lent int64
		if err := tx.Model(&models.Loan{}).
			Where("status IN ? AND item_id IN (?)", openStatuses,
				tx.Model(&models.Item{}).Select("id").Where("owner_id = ?", id)).
			Count(&lent).Error; err != nil {
			return apperr.Internal("count owned-item loans", err)
		}
		if lent > 0 {
			return apperr.Conflictf("cannot delete member: %d of their item(s) are out on loan", lent)
		}

		if err := tx.Delete(&models.Member{}, "id = ?", id).Error; err != nil {
			return apperr.Internal("delete member", err)
		}
		return nil
	})
}

// ListMemberOpenLoans returns what the member currently has borrowed,
// refreshing any loans that went overdue since the last read.
func (r *Repo) ListMemberOpenLoans(ctx context.Context, memberID string) ([]models.Loan, error) {
	if _, err := r.FindMemberByID(ctx, memberID); err != nil {
		return nil, err
	}
	if _, err := r.ApplyOverdueSweep(ctx, time.Now().UTC()); err != nil {
		return nil, err
	}
	var ls []models.Loan
	if err := r.DB.WithContext(ctx).
		Where("borrower_member_id = ? AND status IN ?", memberID, openStatuses).
		Order("borrow_date DESC").
		Find(&ls).Error; err != nil {
		return nil, apperr.Internal("list member loans", err)
	}
	return ls, nil
}
