package transport

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/util"
)

type LoginRequest struct {
	UserID      string `json:"userId"      validate:"required"`
	DisplayName string `json:"displayName"`
	PictureURL  string `json:"pictureUrl"`
	IDToken     string `json:"idToken"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type TokenResponse struct {
	Success          bool   `json:"success"`
	AccessToken      string `json:"access_token"`
	RefreshToken     string `json:"refresh_token"`
	AccessExpiresAt  int64  `json:"access_expires_at"`
	RefreshExpiresAt int64  `json:"refresh_expires_at"`
}

type MenuItemRequest struct {
	Name        string  `json:"name"        validate:"required"`
	Price       int64   `json:"price"       validate:"gte=0"`
	Description *string `json:"description"`
}

type CreateMenuRequest struct {
	OwnerID     string            `json:"ownerId"`
	Title       string            `json:"title"       validate:"required"`
	CompanyName *string           `json:"companyName"`
	Items       []MenuItemRequest `json:"items"       validate:"dive"`
}

type CreateMenuResponse struct {
	ID         uuid.UUID `json:"id"`
	ShareToken string    `json:"share_token"`
}

type UpdateMenuRequest struct {
	Title       *string `json:"title"       validate:"omitempty,min=1"`
	CompanyName *string `json:"companyName"`
	IsOpen      *bool   `json:"isOpen"`
}

type MenuResponse struct {
	Menu  models.Menu       `json:"menu"`
	Items []models.MenuItem `json:"items"`
}

type SearchResponse struct {
	Data []models.MenuSummary `json:"data"`
	Meta util.Meta            `json:"meta"`
}

type SubmitOrderRequest struct {
	MenuID     string          `json:"menuId"     validate:"required"`
	BuyerName  string          `json:"buyerName"  validate:"required"`
	TotalPrice int64           `json:"totalPrice" validate:"gte=0"`
	Content    json.RawMessage `json:"content"`
}

type SubmitOrderResponse struct {
	Success bool      `json:"success"`
	ID      uuid.UUID `json:"id"`
}

type SuccessResponse struct {
	Success bool `json:"success"`
}
