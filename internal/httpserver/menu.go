package httpserver

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/menushare/internal/logging"
	authmw "github.com/Skotchmaster/menushare/internal/middleware/auth"
	"github.com/Skotchmaster/menushare/internal/service"
	"github.com/Skotchmaster/menushare/internal/transport"
	"github.com/Skotchmaster/menushare/internal/util"
)

type MenuHTTP struct {
	Svc *service.MenuService
}

func (h *MenuHTTP) ListMenus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.list_menus")

	menus, err := h.Svc.ListMenus(ctx, authmw.UserID(c), c.QueryParam("userId"))
	if err != nil {
		return fail(l, "list_menus_error", err, "cannot list menus")
	}

	l.Info("list_menus_success", "count", len(menus))
	return c.JSON(http.StatusOK, menus)
}

func (h *MenuHTTP) SearchMenus(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.search_menus")

	page := util.ParseIntDefault(c.QueryParam("page"), 1)
	size := util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize)

	menus, meta, err := h.Svc.SearchMenus(ctx, authmw.UserID(c), c.QueryParam("userId"), c.QueryParam("q"), page, size)
	if err != nil {
		return fail(l, "search_menus_error", err, "cannot search menus")
	}

	l.Info("search_menus_success", "total", meta.Total)
	return c.JSON(http.StatusOK, transport.SearchResponse{Data: menus, Meta: meta})
}

func (h *MenuHTTP) CreateMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.create_menu")

	var req transport.CreateMenuRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("create_menu_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	menu, err := h.Svc.CreateMenu(ctx, authmw.UserID(c), req)
	if err != nil {
		return fail(l, "create_menu_error", err, "cannot create menu")
	}

	l.Info("create_menu_success", "menu_id", menu.ID)
	return c.JSON(http.StatusCreated, transport.CreateMenuResponse{ID: menu.ID, ShareToken: menu.ShareToken})
}

// GetMenuByToken is public: the share token is the credential.
func (h *MenuHTTP) GetMenuByToken(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.get_by_token")

	menu, items, err := h.Svc.GetMenuByToken(ctx, c.Param("id"))
	if err != nil {
		return fail(l, "get_menu_error", err, "cannot get menu")
	}

	return c.JSON(http.StatusOK, transport.MenuResponse{Menu: *menu, Items: items})
}

func (h *MenuHTTP) UpdateMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.update_menu")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("update_menu_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	var req transport.UpdateMenuRequest
	if err := bindAndValidate(c, &req); err != nil {
		l.Warn("update_menu_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	menu, err := h.Svc.UpdateMenu(ctx, authmw.UserID(c), id, req)
	if err != nil {
		return fail(l, "update_menu_error", err, "cannot update menu")
	}

	l.Info("update_menu_success", "menu_id", id)
	return c.JSON(http.StatusOK, menu)
}

func (h *MenuHTTP) DeleteMenu(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "menu.delete_menu")

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		l.Warn("delete_menu_error", "status", 400, "reason", "id not a uuid", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id not a uuid")
	}

	if err := h.Svc.DeleteMenu(ctx, authmw.UserID(c), id); err != nil {
		return fail(l, "delete_menu_error", err, "cannot delete menu")
	}

	l.Info("delete_menu_success", "menu_id", id)
	return c.NoContent(http.StatusNoContent)
}
