package motos

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/isdev18/vitrine-do-vendedor/internal/api/middlewarectx"
	"github.com/isdev18/vitrine-do-vendedor/internal/models"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/kv"
	"github.com/isdev18/vitrine-do-vendedor/internal/storage/store"
)

func newFixture(t *testing.T, planoID string) (*store.Store, *models.User) {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, err := store.New(kv.NewMemory(), log)
	require.NoError(t, err)

	user, err := repo.CreateUser(store.CreateUserParams{
		Email:     "maria@example.com",
		SenhaHash: "hash",
		Nome:      "Maria",
	})
	require.NoError(t, err)

	if planoID != "" {
		_, err = repo.UpdateUser(user.ID, models.UserUpdate{PlanoID: &planoID})
		require.NoError(t, err)
		user.PlanoID = planoID
	}
	return repo, user
}

func doAs(t *testing.T, handler http.HandlerFunc, user *models.User, method, target, body string, params map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req = req.WithContext(middlewarectx.WithUser(req.Context(), user))

	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	rr := httptest.NewRecorder()
	handler(rr, req)
	return rr
}

func TestCreateHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, user := newFixture(t, "basico")
	handler := NewCreate(log, repo)

	rr := doAs(t, handler, user, http.MethodPost, "/motos",
		`{"nome":"Honda CB 500F","preco":32900,"ano":"2023","categoria":"naked"}`, nil)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Contains(t, rr.Body.String(), "Honda CB 500F")
}

func TestCreateHandlerValidation(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, user := newFixture(t, "basico")
	handler := NewCreate(log, repo)

	rr := doAs(t, handler, user, http.MethodPost, "/motos", `{"nome":"X"}`, nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
}

func TestCreateHandlerPlanLimit(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, user := newFixture(t, "basico")
	handler := NewCreate(log, repo)

	for i := 0; i < 10; i++ {
		rr := doAs(t, handler, user, http.MethodPost, "/motos",
			fmt.Sprintf(`{"nome":"Moto %02d","preco":10000}`, i), nil)
		require.Equal(t, http.StatusCreated, rr.Code)
	}

	rr := doAs(t, handler, user, http.MethodPost, "/motos",
		`{"nome":"Moto 11","preco":10000}`, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.Contains(t, rr.Body.String(), "limite de motos")
}

func TestListHandler(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, user := newFixture(t, "profissional")

	_, err := repo.CreateProduto(user.ID, store.CreateProdutoParams{Nome: "XRE 300", Preco: 25000})
	require.NoError(t, err)

	rr := doAs(t, NewList(log, repo), user, http.MethodGet, "/motos", "", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "XRE 300")
}

func TestDeleteHandlerRejectsForeignProduto(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	repo, owner := newFixture(t, "profissional")

	produto, err := repo.CreateProduto(owner.ID, store.CreateProdutoParams{Nome: "Fazer 250", Preco: 22000})
	require.NoError(t, err)

	intruder, err := repo.CreateUser(store.CreateUserParams{
		Email:     "outro@example.com",
		SenhaHash: "hash",
		Nome:      "Outro",
	})
	require.NoError(t, err)

	rr := doAs(t, NewDelete(log, repo), intruder, http.MethodDelete,
		"/motos/"+produto.ID, "", map[string]string{"id": produto.ID})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	_, err = repo.ProdutoByID(produto.ID)
	assert.NoError(t, err)
}
