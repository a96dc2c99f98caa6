package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/menushare/internal/logging"
	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/transport"
	"github.com/Skotchmaster/menushare/internal/util"
)

type TokenGenerator interface {
	Generate() (string, error)
}

// MenuIndexer is the optional full-text index over owner menus.
type MenuIndexer interface {
	IndexMenu(ctx context.Context, menu models.Menu) error
	DeleteMenu(ctx context.Context, id uuid.UUID) error
	SearchMenus(ctx context.Context, ownerID, query string, from, size int) (int64, []uuid.UUID, error)
}

type MenuService struct {
	Repo   *repo.GormRepo
	Tokens TokenGenerator
	Index  MenuIndexer
	Events mykafka.Publisher
}

func checkOwner(subject, userID string) error {
	if userID == "" {
		return fmt.Errorf("%w: userId required", ErrValidation)
	}
	if userID != subject {
		return fmt.Errorf("%w: menus of another user", ErrForbidden)
	}
	return nil
}

func (s *MenuService) ListMenus(ctx context.Context, subject, userID string) ([]models.MenuSummary, error) {
	if err := checkOwner(subject, userID); err != nil {
		return nil, err
	}
	return s.Repo.ListMenusByOwner(ctx, userID)
}

func (s *MenuService) CreateMenu(ctx context.Context, subject string, req transport.CreateMenuRequest) (*models.Menu, error) {
	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = subject
	}
	if ownerID != subject {
		return nil, fmt.Errorf("%w: cannot create menus for another user", ErrForbidden)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, fmt.Errorf("%w: title required", ErrValidation)
	}

	items := make([]models.MenuItem, 0, len(req.Items))
	for i, it := range req.Items {
		name := strings.TrimSpace(it.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: items[%d].name required", ErrValidation, i)
		}
		if it.Price < 0 {
			return nil, fmt.Errorf("%w: items[%d].price must be >= 0", ErrValidation, i)
		}
		items = append(items, models.MenuItem{Name: name, Price: it.Price, Description: it.Description})
	}

	token, err := s.Tokens.Generate()
	if err != nil {
		return nil, err
	}

	menu := &models.Menu{
		OwnerID:     &ownerID,
		Title:       title,
		CompanyName: optionalText(req.CompanyName),
		ShareToken:  token,
		IsOpen:      true,
	}
	if err := s.Repo.CreateMenu(ctx, menu, items); err != nil {
		return nil, storeErr(ctx, err, "create menu")
	}

	s.index(ctx, *menu)
	publish(ctx, s.Events, mykafka.TopicMenus, menu.ID.String(), map[string]any{
		"type":      "menu_created",
		"menuID":    menu.ID,
		"ownerID":   ownerID,
		"itemCount": len(items),
	})
	return menu, nil
}

func optionalText(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func (s *MenuService) GetMenuByToken(ctx context.Context, token string) (*models.Menu, []models.MenuItem, error) {
	if token == "" {
		return nil, nil, fmt.Errorf("%w: menu", ErrNotFound)
	}
	menu, err := s.Repo.GetMenuByToken(ctx, token)
	if err != nil {
		return nil, nil, storeErr(ctx, err, "menu")
	}
	items, err := s.Repo.ListItems(ctx, menu.ID)
	if err != nil {
		return nil, nil, err
	}
	return menu, items, nil
}

// ownedMenu loads the menu and checks subject owns it.
func (s *MenuService) ownedMenu(ctx context.Context, subject string, id uuid.UUID) (*models.Menu, error) {
	menu, err := s.Repo.GetMenu(ctx, id)
	if err != nil {
		return nil, storeErr(ctx, err, "menu")
	}
	if menu.OwnerID == nil || *menu.OwnerID != subject {
		return nil, fmt.Errorf("%w: menu belongs to another user", ErrForbidden)
	}
	return menu, nil
}

func (s *MenuService) UpdateMenu(ctx context.Context, subject string, id uuid.UUID, req transport.UpdateMenuRequest) (*models.Menu, error) {
	if _, err := s.ownedMenu(ctx, subject, id); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrValidation)
		}
		updates["title"] = title
	}
	if req.CompanyName != nil {
		// blank clears the column
		updates["company_name"] = optionalText(req.CompanyName)
	}
	if req.IsOpen != nil {
		updates["is_open"] = *req.IsOpen
	}

	menu, err := s.Repo.UpdateMenu(ctx, id, updates)
	if err != nil {
		return nil, storeErr(ctx, err, "menu")
	}

	s.index(ctx, *menu)
	publish(ctx, s.Events, mykafka.TopicMenus, menu.ID.String(), map[string]any{
		"type":   "menu_updated",
		"menuID": menu.ID,
		"isOpen": menu.IsOpen,
	})
	return menu, nil
}

func (s *MenuService) DeleteMenu(ctx context.Context, subject string, id uuid.UUID) error {
	if _, err := s.ownedMenu(ctx, subject, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteMenu(ctx, id); err != nil {
		return storeErr(ctx, err, "menu")
	}

	if s.Index != nil {
		if err := s.Index.DeleteMenu(ctx, id); err != nil {
			logging.FromContext(ctx).Warn("unindex_error", "menu_id", id, "error", err)
		}
	}
	publish(ctx, s.Events, mykafka.TopicMenus, id.String(), map[string]any{
		"type":    "menu_deleted",
		"menuID":  id,
		"ownerID": subject,
	})
	return nil
}

// SearchMenus looks up the owner's menus by title or company name. The index is
// used when configured; the database answers otherwise or when the index fails.
func (s *MenuService) SearchMenus(ctx context.Context, subject, userID, query string, page, size int) ([]models.MenuSummary, util.Meta, error) {
	if err := checkOwner(subject, userID); err != nil {
		return nil, util.Meta{}, err
	}
	page, size = util.Normalize(page, size)
	offset, limit := util.Calculate(page, size)
	query = strings.TrimSpace(query)

	if s.Index != nil && query != "" {
		total, ids, err := s.Index.SearchMenus(ctx, userID, query, offset, limit)
		if err == nil {
			menus, err := s.summariesInOrder(ctx, ids)
			if err != nil {
				return nil, util.Meta{}, err
			}
			return menus, util.NewMeta(page, size, total), nil
		}
		logging.FromContext(ctx).Warn("search_index_error", "error", err)
	}

	total, menus, err := s.Repo.SearchMenus(ctx, userID, query, offset, limit)
	if err != nil {
		return nil, util.Meta{}, err
	}
	return menus, util.NewMeta(page, size, total), nil
}

func (s *MenuService) summariesInOrder(ctx context.Context, ids []uuid.UUID) ([]models.MenuSummary, error) {
	rows, err := s.Repo.SummariesByID(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]models.MenuSummary, len(rows))
	for _, r := range rows {
		byID[r.ID] = r
	}
	out := make([]models.MenuSummary, 0, len(ids))
	for _, id := range ids {
		if r, ok := byID[id]; ok {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *MenuService) index(ctx context.Context, menu models.Menu) {
	if s.Index == nil {
		return
	}
	if err := s.Index.IndexMenu(ctx, menu); err != nil {
		logging.FromContext(ctx).Warn("index_error", "menu_id", menu.ID, "error", err)
	}
}
