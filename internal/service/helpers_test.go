package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/Skotchmaster/menushare/internal/lineauth"
	"github.com/Skotchmaster/menushare/internal/models"
	"github.com/Skotchmaster/menushare/internal/repo"
	"github.com/Skotchmaster/menushare/internal/sharetoken"
	"github.com/Skotchmaster/menushare/internal/testutil"
	"github.com/Skotchmaster/menushare/internal/tokens"
	"github.com/Skotchmaster/menushare/internal/transport"
)

type event struct {
	Topic string
	Key   string
	Body  map[string]any
}

type fakePublisher struct {
	mu     sync.Mutex
	events []event
	err    error
}

func (f *fakePublisher) PublishEvent(_ context.Context, topic, key string, e any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event{Topic: topic, Key: key, Body: e.(map[string]any)})
	return nil
}

func (f *fakePublisher) Close() error { return nil }

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Body["type"].(string))
	}
	return out
}

type fakeVerifier struct {
	subject string
	err     error
}

func (f *fakeVerifier) Verify(_ context.Context, idToken string) (*lineauth.Profile, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &lineauth.Profile{Subject: f.subject, Audience: "channel"}, nil
}

type fakeIndex struct {
	indexed map[uuid.UUID]models.Menu
	hits    []uuid.UUID
	total   int64
	err     error
}

func newFakeIndex() *fakeIndex {
	return &fakeIndex{indexed: map[uuid.UUID]models.Menu{}}
}

func (f *fakeIndex) IndexMenu(_ context.Context, m models.Menu) error {
	if f.err != nil {
		return f.err
	}
	f.indexed[m.ID] = m
	return nil
}

func (f *fakeIndex) DeleteMenu(_ context.Context, id uuid.UUID) error {
	delete(f.indexed, id)
	return nil
}

func (f *fakeIndex) SearchMenus(context.Context, string, string, int, int) (int64, []uuid.UUID, error) {
	if f.err != nil {
		return 0, nil, f.err
	}
	return f.total, f.hits, nil
}

type fixedTokens struct{ token string }

func (f fixedTokens) Generate() (string, error) { return f.token, nil }

type failingTokens struct{}

func (failingTokens) Generate() (string, error) { return "", errors.New("entropy exhausted") }

type env struct {
	Repo   *repo.GormRepo
	Events *fakePublisher
	Auth   *AuthService
	Menus  *MenuService
	Orders *OrderService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	r := &repo.GormRepo{DB: testutil.NewDB(t)}
	pub := &fakePublisher{}
	return &env{
		Repo:   r,
		Events: pub,
		Auth: &AuthService{
			Repo: r,
			Issuer: &tokens.Issuer{
				AccessSecret:  []byte("access"),
				RefreshSecret: []byte("refresh"),
				AccessTTL:     15 * time.Minute,
				RefreshTTL:    time.Hour,
			},
			Events: pub,
		},
		Menus:  &MenuService{Repo: r, Tokens: sharetoken.New(), Events: pub},
		Orders: &OrderService{Repo: r, Events: pub},
	}
}

func (e *env) login(t *testing.T, id string) {
	t.Helper()
	_, err := e.Auth.Login(context.Background(), transport.LoginRequest{UserID: id, DisplayName: id})
	require.NoError(t, err)
}

func (e *env) createMenu(t *testing.T, owner, title string, items ...transport.MenuItemRequest) *models.Menu {
	t.Helper()
	m, err := e.Menus.CreateMenu(context.Background(), owner, transport.CreateMenuRequest{Title: title, Items: items})
	require.NoError(t, err)
	return m
}
