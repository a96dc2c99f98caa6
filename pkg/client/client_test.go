package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/menushare/internal/httpserver"
	"github.com/Skotchmaster/menushare/internal/mykafka"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/service"
	"github.com/Skotchmaster/menushare/internal/sharetoken"
	"github.com/Skotchmaster/menushare/internal/testutil"
	"github.com/Skotchmaster/menushare/internal/tokens"
)

func newServer(t *testing.T) *Client {
	t.Helper()

	gdb := testutil.NewDB(t)
	r := &repo.GormRepo{DB: gdb}
	issuer := &tokens.Issuer{
		AccessSecret:  []byte("access"),
		RefreshSecret: []byte("refresh"),
		AccessTTL:     15 * time.Minute,
		RefreshTTL:    time.Hour,
	}

	e := echo.New()
	httpserver.Register(e, &httpserver.Deps{
		DB:           gdb,
		AuthHandler:  &httpserver.AuthHTTP{Svc: &service.AuthService{Repo: r, Issuer: issuer, Events: mykafka.Nop{}}},
		MenuHandler:  &httpserver.MenuHTTP{Svc: &service.MenuService{Repo: r, Tokens: sharetoken.New(), Events: mykafka.Nop{}}},
		OrderHandler: &httpserver.OrderHTTP{Svc: &service.OrderService{Repo: r, Events: mykafka.Nop{}}},
		JWTSecret:    issuer.AccessSecret,
	})

	srv := httptest.NewServer(e)
	t.Cleanup(srv.Close)
	return NewClient(srv.URL, WithHTTPClient(srv.Client()))
}

func TestLunchScenario(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	s, err := c.Login(ctx, LoginRequest{UserID: "U-owner", DisplayName: "Owner"})
	require.NoError(t, err)
	require.NotEmpty(t, s.AccessToken)

	created, err := c.CreateMenu(ctx, s, CreateMenuRequest{
		Title: "Lunch",
		Items: []MenuItemRequest{{Name: "Rice Bowl", Price: 150}},
	})
	require.NoError(t, err)
	require.NotEmpty(t, created.ShareToken)

	shared, err := c.GetMenuByToken(ctx, created.ShareToken)
	require.NoError(t, err)
	assert.Equal(t, "Lunch", shared.Menu.Title)
	require.Len(t, shared.Items, 1)
	assert.Equal(t, "Rice Bowl", shared.Items[0].Name)
	assert.Equal(t, int64(150), shared.Items[0].Price)

	content, err := json.Marshal(map[string]any{"items": []string{"Rice Bowl"}})
	require.NoError(t, err)
	orderID, err := c.SubmitOrder(ctx, SubmitOrderRequest{
		MenuID:     shared.Menu.ID.String(),
		BuyerName:  "Alex",
		TotalPrice: 150,
		Content:    content,
	})
	require.NoError(t, err)

	orders, err := c.ListOrders(ctx, s, created.ID)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, orderID, orders[0].ID)
	assert.Equal(t, "Alex", orders[0].BuyerName)
	assert.Equal(t, int64(150), orders[0].TotalPrice)
	assert.JSONEq(t, `{"items":["Rice Bowl"]}`, string(orders[0].Content))

	menus, err := c.ListMenus(ctx, s, "U-owner")
	require.NoError(t, err)
	require.Len(t, menus, 1)
	assert.Equal(t, int64(1), menus[0].OrderCount)
}

func TestErrorsCarryStatus(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	_, err := c.GetMenuByToken(ctx, "missing")
	require.Equal(t, http.StatusNotFound, StatusCode(err))

	_, err = c.ListMenus(ctx, nil, "U1")
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))

	s, err := c.Login(ctx, LoginRequest{UserID: "U1"})
	require.NoError(t, err)
	_, err = c.ListMenus(ctx, s, "U2")
	require.Equal(t, http.StatusForbidden, StatusCode(err))

	closed := false
	created, err := c.CreateMenu(ctx, s, CreateMenuRequest{Title: "Lunch"})
	require.NoError(t, err)
	_, err = c.UpdateMenu(ctx, s, created.ID, UpdateMenuRequest{IsOpen: &closed})
	require.NoError(t, err)
	_, err = c.SubmitOrder(ctx, SubmitOrderRequest{MenuID: created.ID.String(), BuyerName: "Alex"})
	require.Equal(t, http.StatusConflict, StatusCode(err))

	require.NoError(t, c.DeleteMenu(ctx, s, created.ID))
	require.Equal(t, http.StatusNotFound, StatusCode(c.DeleteMenu(ctx, s, created.ID)))
}

func TestSessionRefreshesOnUnauthorized(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	s, err := c.Login(ctx, LoginRequest{UserID: "U1"})
	require.NoError(t, err)
	oldRefresh := s.RefreshToken

	s.AccessToken = "stale"
	menus, err := c.ListMenus(ctx, s, "U1")
	require.NoError(t, err)
	require.Empty(t, menus)
	require.NotEqual(t, "stale", s.AccessToken)
	require.NotEqual(t, oldRefresh, s.RefreshToken)

	require.NoError(t, c.Logout(ctx, s))
	s.AccessToken = "stale"
	_, err = c.ListMenus(ctx, s, "U1")
	require.Equal(t, http.StatusUnauthorized, StatusCode(err))
}

func TestSearchMenus(t *testing.T) {
	c := newServer(t)
	ctx := context.Background()

	s, err := c.Login(ctx, LoginRequest{UserID: "U1"})
	require.NoError(t, err)
	for _, title := range []string{"Friday Lunch", "Monday Lunch", "Dinner"} {
		_, err := c.CreateMenu(ctx, s, CreateMenuRequest{Title: title})
		require.NoError(t, err)
	}

	resp, err := c.SearchMenus(ctx, s, "U1", "lunch", 1, 1)
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, int64(2), resp.Meta.Total)
	assert.Equal(t, int64(2), resp.Meta.Pages)
}
