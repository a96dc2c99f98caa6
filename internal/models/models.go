package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an identity imported from the external login provider.
type User struct {
	ID          string    `gorm:"primaryKey"             json:"id"`
	DisplayName string    `json:"display_name"`
	AvatarURL   string    `json:"avatar_url"`
	CreatedAt   time.Time `json:"created_at"`
}

type Menu struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"         json:"id"`
	OwnerID     *string   `gorm:"index"                        json:"owner_id"`
	Owner       *User     `gorm:"foreignKey:OwnerID"           json:"-"`
	Title       string    `gorm:"not null"                     json:"title"`
	CompanyName *string   `json:"company_name"`
	ShareToken  string    `gorm:"uniqueIndex;not null"         json:"share_token"`
	IsOpen      bool      `gorm:"not null;default:true"        json:"is_open"`
	CreatedAt   time.Time `gorm:"index"                        json:"created_at"`

	Items  []MenuItem `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"-"`
	Orders []Order    `gorm:"foreignKey:MenuID;constraint:OnDelete:CASCADE" json:"-"`
}

type MenuItem struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey"       json:"id"`
	MenuID      uuid.UUID `gorm:"type:uuid;index;not null"   json:"menu_id"`
	Position    int       `gorm:"not null"                   json:"-"`
	Name        string    `gorm:"not null"                   json:"name"`
	Price       int64     `gorm:"not null"                   json:"price"`
	Description *string   `json:"description"`
}

// Order is an immutable snapshot of a buyer's selection; Content is never
// checked against MenuItem rows.
type Order struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey"        json:"id"`
	MenuID     uuid.UUID `gorm:"type:uuid;index;not null"    json:"menu_id"`
	BuyerName  string    `gorm:"not null"                    json:"buyer_name"`
	TotalPrice int64     `gorm:"not null"                    json:"total_price"`
	Content    JSON      `json:"content"`
	CreatedAt  time.Time `json:"created_at"`
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"                                json:"id"`
	UserID    string    `gorm:"index;not null"                            json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	Token     string    `gorm:"uniqueIndex;not null"                      json:"-"`
	JTI       string    `gorm:"uniqueIndex;not null"                      json:"jti"`
	ExpiresAt int64     `gorm:"not null"                                  json:"expires_at"`
	Revoked   bool      `gorm:"not null;default:false"                    json:"revoked"`
	CreatedAt time.Time `json:"created_at"`
}

// MenuSummary is a menu row annotated with the number of orders placed against it.
type MenuSummary struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     *string   `json:"owner_id"`
	Title       string    `json:"title"`
	CompanyName *string   `json:"company_name"`
	ShareToken  string    `json:"share_token"`
	IsOpen      bool      `json:"is_open"`
	CreatedAt   time.Time `json:"created_at"`
	OrderCount  int64     `json:"order_count"`
}

// All lists the models in foreign-key dependency order.
func All() []any {
	return []any{&User{}, &Menu{}, &MenuItem{}, &Order{}, &RefreshToken{}}
}

func (m *Menu) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (i *MenuItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
