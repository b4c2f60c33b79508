package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// List is a school supplies list owned by its creator
type List struct {
	ID        string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	Name      string     `json:"name" gorm:"type:varchar(150);not null"`
	OwnerID   string     `json:"owner_id" gorm:"type:varchar(36);index;not null"`
	Owner     *User      `json:"-" gorm:"foreignKey:OwnerID"`
	LevelID   string     `json:"level_id" gorm:"type:varchar(36);index;not null"`
	Level     *Level     `json:"level,omitempty"`
	Items     []ListItem `json:"items"`
	Total     float64    `json:"total" gorm:"not null;default:0"`
	Status    ListStatus `json:"status" gorm:"type:varchar(20);not null;default:'pending'"`
	Kind      ListKind   `json:"kind" gorm:"type:varchar(20);not null;default:'personal';index"`
	Public    bool       `json:"public" gorm:"default:false;index"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

func (l *List) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	if l.Status == "" {
		l.Status = ListStatusPending
	}
	if l.Kind == "" {
		l.Kind = ListKindPersonal
	}
	return nil
}

// OfficialPublic reports whether parents may see the list
func (l *List) OfficialPublic() bool {
	return l.Kind == ListKindOfficial && l.Public
}

// FindItem returns the line item for a material, or nil
func (l *List) FindItem(materialID string) *ListItem {
	for i := range l.Items {
		if l.Items[i].MaterialID == materialID {
			return &l.Items[i]
		}
	}
	return nil
}

// AddItem merges a material into the list: an existing line grows by quantity, otherwise a new line is appended
func (l *List) AddItem(materialID string, quantity int) *ListItem {
	quantity = NormalizeQuantity(quantity)
	if item := l.FindItem(materialID); item != nil {
		item.Quantity += quantity
		return item
	}
	l.Items = append(l.Items, ListItem{
		MaterialID: materialID,
		Quantity:   quantity,
		Position:   len(l.Items),
	})
	return &l.Items[len(l.Items)-1]
}

// RemoveItem drops every line for the material and reports whether anything changed
func (l *List) RemoveItem(materialID string) bool {
	kept := l.Items[:0]
	for _, item := range l.Items {
		if item.MaterialID != materialID {
			kept = append(kept, item)
		}
	}
	removed := len(kept) != len(l.Items)
	l.Items = kept
	for i := range l.Items {
		l.Items[i].Position = i
	}
	return removed
}

// ListItem is one material line embedded in a list
type ListItem struct {
	ID          string     `json:"id" gorm:"type:varchar(36);primaryKey"`
	ListID      string     `json:"-" gorm:"type:varchar(36);index;not null"`
	MaterialID  string     `json:"material_id" gorm:"type:varchar(36);index;not null"`
	Material    *Material  `json:"material,omitempty"`
	Quantity    int        `json:"quantity" gorm:"not null;default:1"`
	Purchased   bool       `json:"purchased" gorm:"default:false"`
	PurchasedAt *time.Time `json:"purchased_at,omitempty"`
	Position    int        `json:"-" gorm:"not null;default:0"`
}

func (i *ListItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	i.Quantity = NormalizeQuantity(i.Quantity)
	return nil
}

// MarkPurchased sets the purchased state; the date only exists while purchased
func (i *ListItem) MarkPurchased(purchased bool, at time.Time) {
	i.Purchased = purchased
	if !purchased {
		i.PurchasedAt = nil
		return
	}
	if at.IsZero() {
		at = time.Now()
	}
	at = at.UTC()
	i.PurchasedAt = &at
}

// NormalizeQuantity applies the default of 1 to missing or invalid quantities
func NormalizeQuantity(q int) int {
	if q < 1 {
		return 1
	}
	return q
}
