package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/menushare/internal/db"
	"github.com/Skotchmaster/menushare/internal/logging"
	authmw "github.com/Skotchmaster/menushare/internal/middleware/auth"
)

type Deps struct {
	DB           *gorm.DB
	AuthHandler  *AuthHTTP
	MenuHandler  *MenuHTTP
	OrderHandler *OrderHTTP
	JWTSecret    []byte
}

func Register(e *echo.Echo, d *Deps) {
	if e.Validator == nil {
		e.Validator = NewValidator()
	}

	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error {
		if err := db.Ping(c.Request().Context(), d.DB); err != nil {
			logging.FromContext(c.Request().Context()).Error("ready_check_failed", "error", err)
			return c.NoContent(http.StatusServiceUnavailable)
		}
		return c.NoContent(http.StatusOK)
	})

	session := authmw.NewSessionAuth(d.JWTSecret).RequireSession

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/login", d.AuthHandler.Login)
	auth.POST("/refresh", d.AuthHandler.Refresh)
	auth.POST("/logout", d.AuthHandler.Logout)

	api.POST("/orders", d.OrderHandler.SubmitOrder)

	// share tokens and menu ids share the :id segment. Session checks are
	// per route so unknown routes under /menus stay 404/405.
	menus := api.Group("/menus")
	menus.GET("/:id", d.MenuHandler.GetMenuByToken)
	menus.GET("", d.MenuHandler.ListMenus, session)
	menus.GET("/search", d.MenuHandler.SearchMenus, session)
	menus.POST("", d.MenuHandler.CreateMenu, session)
	menus.PATCH("/:id", d.MenuHandler.UpdateMenu, session)
	menus.DELETE("/:id", d.MenuHandler.DeleteMenu, session)
	menus.GET("/:id/orders", d.OrderHandler.ListOrders, session)
}
