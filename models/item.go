package models

import "time"

const ItemTable = "lender_items"

// Item types. "book" items may additionally carry Author/ISBN.
const (
	ItemTypeBook       = "book"
	ItemTypeTool       = "tool"
	ItemTypeEquipment  = "equipment"
	ItemTypeElectronic = "electronic"
	ItemTypeOther      = "other"
)

var itemTypes = map[string]bool{
	ItemTypeBook:       true,
	ItemTypeTool:       true,
	ItemTypeEquipment:  true,
	ItemTypeElectronic: true,
	ItemTypeOther:      true,
}

func IsValidItemType(t string) bool { return itemTypes[t] }

// Item is a catalogued lendable asset owned by a member.
// Available is false iff an open loan (active/overdue) references the item;
// it is never set directly by clients.
type Item struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Type        string    `gorm:"size:20;not null;default:'other'" json:"type"`
	OwnerID     string    `gorm:"type:uuid;index;not null" json:"ownerId"`
	Author      string    `gorm:"size:100" json:"author,omitempty"` // book only
	ISBN        string    `gorm:"size:20" json:"isbn,omitempty"`    // book only
	Description string    `gorm:"size:500" json:"description,omitempty"`
	Available   bool      `gorm:"not null;default:true" json:"available"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func (Item) TableName() string { return ItemTable }
