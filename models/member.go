package models

import "time"

const MemberTable = "lender_members"

// Member is a person who may own items and borrow them from others.
// Email is stored normalized lowercase and is unique across members.
type Member struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name      string    `gorm:"size:100;not null" json:"name"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Phone     string    `gorm:"size:30" json:"phone,omitempty"`
	StudentID string    `gorm:"size:50" json:"studentId,omitempty"` // external id, optional
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Member) TableName() string { return MemberTable }
