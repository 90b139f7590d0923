package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"moneybase/internal/cache"
	"moneybase/internal/config"
	"moneybase/internal/db"
	"moneybase/internal/domain"
	"moneybase/internal/ledger"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testServer struct {
	engine *gin.Engine
	db     *gorm.DB
	redis  *miniredis.Miniredis
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb, err := db.Open(config.Database{
		Driver:       "sqlite",
		Path:         "file:" + uuid.NewString() + "?mode=memory&cache=shared&_foreign_keys=1",
		MaxOpenConns: 1,
	})
	require.NoError(t, err)
	require.NoError(t, db.Migrate(gdb))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	qc := cache.NewRedis(rdb, "test")

	r := NewRouter(Deps{
		DB:        gdb,
		Ledger:    ledger.NewService(gdb),
		Cache:     qc,
		CachePing: qc,
		CacheTTL:  2 * time.Minute,
		JWTSecret: "test-secret",
		JWTTTL:    time.Hour,
	})
	return &testServer{engine: r, db: gdb, redis: mr}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

// signup registers a user and returns a bearer token for it
func (s *testServer) signup(t *testing.T, name string) string {
	t.Helper()
	creds := gin.H{"email": name + "@example.com", "username": name, "password": "correct-horse"}
	w := s.do(t, http.MethodPost, "/auth/register", "", creds)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, "/auth/jwt/login", "", gin.H{"email": creds["email"], "password": creds["password"]})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp AuthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "bearer", resp.TokenType)
	return resp.AccessToken
}

func (s *testServer) createWallet(t *testing.T, token, name, budget string) domain.Wallet {
	t.Helper()
	w := s.do(t, http.MethodPost, "/wallet/create_wallet", token, gin.H{"name": name, "budget": budget})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var wallet domain.Wallet
	require.NoError(t, s.db.Where("name = ?", name).Order("id desc").First(&wallet).Error)
	return wallet
}

func (s *testServer) addOperation(t *testing.T, token string, walletID uint, category, typ, amount string) *httptest.ResponseRecorder {
	t.Helper()
	return s.do(t, http.MethodPost, "/operation/add_operation", token, gin.H{
		"wallet_id": walletID, "category": category, "type_operation": typ, "amount": amount,
	})
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestAuth_RegisterLogin(t *testing.T) {
	s := newTestServer(t)
	s.signup(t, "alice")

	w := s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "ALICE@example.com", "username": "a2", "password": "another-pass"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "REGISTER_USER_ALREADY_EXISTS")

	w = s.do(t, http.MethodPost, "/auth/jwt/login", "", gin.H{"email": "alice@example.com", "password": "wrong-password"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "LOGIN_BAD_CREDENTIALS")

	w = s.do(t, http.MethodPost, "/auth/register", "", gin.H{"email": "not-an-email", "username": "b", "password": "correct-horse"})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProtectedRoutes_RequireActiveUser(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/wallet/get_wallets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	w = s.do(t, http.MethodGet, "/wallet/get_wallets", "garbage", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token := s.signup(t, "bob")
	require.NoError(t, s.db.Model(&domain.User{}).Where("username = ?", "bob").Update("is_active", false).Error)
	w = s.do(t, http.MethodGet, "/wallet/get_wallets", token, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWallets_CacheMissHitAndInvalidate(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "carol")
	wallet := s.createWallet(t, token, "cash", "100")

	w := s.do(t, http.MethodGet, "/wallet/get_wallets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))

	w = s.do(t, http.MethodGet, "/wallet/get_wallets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "HIT", w.Header().Get("X-Cache"))
	wallets := decode[[]domain.Wallet](t, w)
	require.Len(t, wallets, 1)
	assert.True(t, wallets[0].Budget.Equal(decimal.NewFromInt(100)))

	w = s.addOperation(t, token, wallet.ID, "salary", "profit", "50")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	added := decode[struct {
		Status string           `json:"status"`
		Detail domain.Operation `json:"detail"`
		Budget decimal.Decimal  `json:"budget"`
	}](t, w)
	assert.Equal(t, "success", added.Status)
	assert.True(t, added.Budget.Equal(decimal.NewFromInt(150)))

	// The mutation dropped the cached listing
	w = s.do(t, http.MethodGet, "/wallet/get_wallets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	wallets = decode[[]domain.Wallet](t, w)
	require.Len(t, wallets, 1)
	assert.True(t, wallets[0].Budget.Equal(decimal.NewFromInt(150)))
	require.Len(t, wallets[0].Operations, 1)
	assert.Equal(t, added.Detail.ID, wallets[0].Operations[0].ID)
}

func TestCacheDown_ReadsFallThrough(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "dave")
	s.createWallet(t, token, "cash", "10")
	s.redis.Close()

	w := s.do(t, http.MethodGet, "/wallet/get_wallets", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "MISS", w.Header().Get("X-Cache"))
	assert.Len(t, decode[[]domain.Wallet](t, w), 1)
}

func TestForeignWallet_Forbidden(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup(t, "erin")
	intruder := s.signup(t, "frank")
	wallet := s.createWallet(t, owner, "cash", "100")

	w := s.addOperation(t, intruder, wallet.ID, "food", "loss", "10")
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"fall","detail":"Not your wallet."}`, w.Body.String())

	path := fmt.Sprintf("/wallet/change_wallet?wallet_id=%d", wallet.ID)
	w = s.do(t, http.MethodPost, path, intruder, gin.H{"name": "mine now", "budget": "0"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"not your wallet"}`, w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf("/wallet/delete_wallet?wallet_id=%d", wallet.ID), intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/operation/get_profit_and_loss?wallet_id=%d", wallet.ID), intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	var unchanged domain.Wallet
	require.NoError(t, s.db.First(&unchanged, wallet.ID).Error)
	assert.Equal(t, "cash", unchanged.Name)
	assert.True(t, unchanged.Budget.Equal(decimal.NewFromInt(100)))

	w = s.do(t, http.MethodPost, "/wallet/change_wallet?wallet_id=99999", owner, gin.H{"name": "x", "budget": "0"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestAccountRoutes_LegacyAlias(t *testing.T) {
	s := newTestServer(t)
	owner := s.signup(t, "gina")
	intruder := s.signup(t, "hank")

	w := s.do(t, http.MethodPost, "/account/create_account", owner, gin.H{"name": "savings", "budget": "5.50"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodGet, "/account/get_accounts", owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	accounts := decode[[]domain.Wallet](t, w)
	require.Len(t, accounts, 1)

	id := accounts[0].ID
	w = s.do(t, http.MethodPost, fmt.Sprintf("/account/change_account?account_id=%d", id), intruder, gin.H{"name": "x", "budget": "1"})
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.JSONEq(t, `{"status":"not your account"}`, w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf("/account/change_account?account_id=%d", id), owner, gin.H{"name": "rainy day", "budget": "7"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(t, http.MethodPost, fmt.Sprintf("/account/delete_account?account_id=%d", id), owner, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var count int64
	require.NoError(t, s.db.Model(&domain.Wallet{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestOperations_ListingsAndProfitAndLoss(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "ivy")
	wallet := s.createWallet(t, token, "main", "0")

	for _, op := range []struct{ category, typ, amount string }{
		{"salary", "profit", "1000"},
		{"food", "loss", "20"},
		{"food", "loss", "30.25"},
		{"investment", "profit", "15"},
		{"housing", "loss", "400"},
		{"gifts", "profit", "50"},
	} {
		w := s.addOperation(t, token, wallet.ID, op.category, op.typ, op.amount)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(t, http.MethodGet, "/operation/get_all_operations", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Operation](t, w), ledger.DefaultLimit)

	w = s.do(t, http.MethodGet, "/operation/get_category_operations?category=food&limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	food := decode[[]domain.Operation](t, w)
	require.Len(t, food, 2)
	assert.True(t, food[0].Amount.Equal(decimal.RequireFromString("30.25")))

	w = s.do(t, http.MethodGet, "/operation/get_all_profit_operations?limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	for _, op := range decode[[]domain.Operation](t, w) {
		assert.Equal(t, domain.Profit, op.TypeOperation)
	}

	w = s.do(t, http.MethodGet, "/operation/get_all_loss_operations?limit=10", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, decode[[]domain.Operation](t, w), 3)

	w = s.do(t, http.MethodGet, fmt.Sprintf("/operation/get_profit_and_loss?wallet_id=%d", wallet.ID), token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	pl := decode[ledger.ProfitAndLoss](t, w)
	assert.True(t, pl.Profit.Equal(decimal.NewFromInt(1065)), "profit %s", pl.Profit)
	assert.True(t, pl.Loss.Equal(decimal.RequireFromString("450.25")), "loss %s", pl.Loss)
}

func TestValidation_Unprocessable(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "jack")
	wallet := s.createWallet(t, token, "main", "0")

	for name, w := range map[string]*httptest.ResponseRecorder{
		"unknown category":  s.addOperation(t, token, wallet.ID, "lottery", "profit", "1"),
		"unknown type":      s.addOperation(t, token, wallet.ID, "food", "refund", "1"),
		"negative amount":   s.addOperation(t, token, wallet.ID, "food", "loss", "-1"),
		"sub-cent amount":   s.addOperation(t, token, wallet.ID, "food", "loss", "0.005"),
		"missing budget":    s.do(t, http.MethodPost, "/wallet/create_wallet", token, gin.H{"name": "x"}),
		"sub-cent budget":   s.do(t, http.MethodPost, "/wallet/create_wallet", token, gin.H{"name": "x", "budget": "1.234"}),
		"missing wallet id": s.do(t, http.MethodPost, "/wallet/delete_wallet", token, nil),
		"missing category":  s.do(t, http.MethodGet, "/operation/get_category_operations", token, nil),
		"limit too large":   s.do(t, http.MethodGet, "/operation/get_all_operations?limit=1000", token, nil),
	} {
		assert.Equal(t, http.StatusUnprocessableEntity, w.Code, name)
	}

	var count int64
	require.NoError(t, s.db.Model(&domain.Operation{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestDeleteOperation(t *testing.T) {
	s := newTestServer(t)
	token := s.signup(t, "kate")
	intruder := s.signup(t, "liam")
	wallet := s.createWallet(t, token, "main", "100")

	w := s.addOperation(t, token, wallet.ID, "salary", "profit", "50")
	require.Equal(t, http.StatusOK, w.Code)
	first := decode[struct {
		Detail domain.Operation `json:"detail"`
	}](t, w).Detail
	w = s.addOperation(t, token, wallet.ID, "food", "loss", "5")
	require.Equal(t, http.StatusOK, w.Code)

	path := fmt.Sprintf("/operation/delete_operation?operation_id=%d", first.ID)
	w = s.do(t, http.MethodPost, path, intruder, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = s.do(t, http.MethodPost, path, token, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[struct {
		Status string             `json:"status"`
		Detail []domain.Operation `json:"detail"`
	}](t, w)
	assert.Equal(t, "succes", resp.Status)
	require.Len(t, resp.Detail, 1)
	assert.NotEqual(t, first.ID, resp.Detail[0].ID)

	var after domain.Wallet
	require.NoError(t, s.db.First(&after, wallet.ID).Error)
	assert.True(t, after.Budget.Equal(decimal.NewFromInt(95)), "budget %s", after.Budget)

	w = s.do(t, http.MethodPost, path, token, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":"fall","detail":"Operation not found."}`, w.Body.String())
}

func TestAdminRoutes_SuperuserOnly(t *testing.T) {
	s := newTestServer(t)
	admin := s.signup(t, "root")
	user := s.signup(t, "mia")
	wallet := s.createWallet(t, user, "main", "0")
	require.Equal(t, http.StatusOK, s.addOperation(t, user, wallet.ID, "food", "loss", "3").Code)

	w := s.do(t, http.MethodGet, "/admin/users", user, nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	require.NoError(t, s.db.Model(&domain.User{}).Where("username = ?", "root").Update("is_superuser", true).Error)

	w = s.do(t, http.MethodGet, "/admin/users?page=1&page_size=1", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	users := decode[struct {
		Users      []UserAdminResponse `json:"users"`
		Total      int64               `json:"total"`
		TotalPages int                 `json:"total_pages"`
	}](t, w)
	assert.Len(t, users.Users, 1)
	assert.EqualValues(t, 2, users.Total)
	assert.Equal(t, 2, users.TotalPages)

	w = s.do(t, http.MethodGet, "/admin/operations?type=loss", admin, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	ops := decode[struct {
		Operations []domain.Operation `json:"operations"`
		Total      int64              `json:"total"`
	}](t, w)
	assert.EqualValues(t, 1, ops.Total)
	require.Len(t, ops.Operations, 1)
	assert.Equal(t, wallet.ID, ops.Operations[0].WalletID)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t)

	w := s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"db":"ok","cache":"ok"}`, w.Body.String())

	w = s.do(t, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "moneybase_http_requests_total")

	s.redis.Close()
	w = s.do(t, http.MethodGet, "/healthz", "", nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
