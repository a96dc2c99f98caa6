package repo

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/menushare/internal/models"
)

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

const orderCountSelect = "menus.*, (SELECT COUNT(*) FROM orders o WHERE o.menu_id = menus.id) AS order_count"

// CreateMenu stores the menu and its items atomically; items keep their slice order.
func (r *GormRepo) CreateMenu(ctx context.Context, menu *models.Menu, items []models.MenuItem) error {
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(menu).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].MenuID = menu.ID
			items[i].Position = i
			if err := tx.Create(&items[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
	return classify(err)
}

func (r *GormRepo) GetMenu(ctx context.Context, id uuid.UUID) (*models.Menu, error) {
	var menu models.Menu
	if err := r.DB.WithContext(ctx).Where("id = ?", id).First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *GormRepo) GetMenuByToken(ctx context.Context, token string) (*models.Menu, error) {
	var menu models.Menu
	if err := r.DB.WithContext(ctx).Where("share_token = ?", token).First(&menu).Error; err != nil {
		return nil, err
	}
	return &menu, nil
}

func (r *GormRepo) ListItems(ctx context.Context, menuID uuid.UUID) ([]models.MenuItem, error) {
	items := make([]models.MenuItem, 0)
	if err := r.DB.WithContext(ctx).Where("menu_id = ?", menuID).Order("position ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (r *GormRepo) ListMenusByOwner(ctx context.Context, ownerID string) ([]models.MenuSummary, error) {
	menus := make([]models.MenuSummary, 0)
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Select(orderCountSelect).
		Where("menus.owner_id = ?", ownerID).
		Order("menus.created_at DESC").
		Scan(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// SearchMenus matches q against title and company name of the owner's menus.
func (r *GormRepo) SearchMenus(ctx context.Context, ownerID, q string, offset, limit int) (int64, []models.MenuSummary, error) {
	pattern := "%" + likeEscaper.Replace(strings.ToLower(q)) + "%"
	where := `menus.owner_id = ? AND (LOWER(menus.title) LIKE ? ESCAPE '\' OR LOWER(COALESCE(menus.company_name, '')) LIKE ? ESCAPE '\')`

	var total int64
	if err := r.DB.WithContext(ctx).Model(&models.Menu{}).Where(where, ownerID, pattern, pattern).Count(&total).Error; err != nil {
		return 0, nil, err
	}

	menus := make([]models.MenuSummary, 0, limit)
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Select(orderCountSelect).
		Where(where, ownerID, pattern, pattern).
		Order("menus.created_at DESC").
		Offset(offset).
		Limit(limit).
		Scan(&menus).Error
	if err != nil {
		return 0, nil, err
	}
	return total, menus, nil
}

// SummariesByID returns the summaries of the given menus, newest first.
func (r *GormRepo) SummariesByID(ctx context.Context, ids []uuid.UUID) ([]models.MenuSummary, error) {
	menus := make([]models.MenuSummary, 0, len(ids))
	if len(ids) == 0 {
		return menus, nil
	}
	err := r.DB.WithContext(ctx).
		Model(&models.Menu{}).
		Select(orderCountSelect).
		Where("menus.id IN ?", ids).
		Order("menus.created_at DESC").
		Scan(&menus).Error
	if err != nil {
		return nil, err
	}
	return menus, nil
}

func (r *GormRepo) UpdateMenu(ctx context.Context, id uuid.UUID, updates map[string]any) (*models.Menu, error) {
	var menu models.Menu
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).First(&menu).Error; err != nil {
			return err
		}
		if len(updates) == 0 {
			return nil
		}
		if err := tx.Model(&menu).Updates(updates).Error; err != nil {
			return err
		}
		return tx.Where("id = ?", id).First(&menu).Error
	})
	if err != nil {
		return nil, classify(err)
	}
	return &menu, nil
}

func (r *GormRepo) DeleteMenu(ctx context.Context, id uuid.UUID) error {
	res := r.DB.WithContext(ctx).Where("id = ?", id).Delete(&models.Menu{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
