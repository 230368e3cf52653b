package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/Skotchmaster/min_commerce/internal/hash"
	"github.com/Skotchmaster/min_commerce/internal/models"
	"github.com/Skotchmaster/min_commerce/internal/mykafka"
	"github.com/Skotchmaster/min_commerce/internal/service/order"
)

type testEnv struct {
	T                        *testing.T
	E                        *echo.Echo
	DB                       *gorm.DB
	Auth                     *AuthHandler
	Products                 *ProductHandler
	Orders                   *OrderHandler
	Admin                    *AdminHandler
	JWTSecret, RefreshSecret []byte
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{}, &models.RefreshToken{},
		&models.Product{}, &models.Order{}, &models.OrderItem{},
	))

	// no brokers configured, publishes fail and handlers just log them
	prod := &mykafka.Producer{}

	jwt := []byte("test-jwt-secret")
	refresh := []byte("test-refresh-secret")

	return &testEnv{
		T:             t,
		E:             echo.New(),
		DB:            db,
		JWTSecret:     jwt,
		RefreshSecret: refresh,
		Auth:          &AuthHandler{DB: db, JWTSecret: jwt, RefreshSecret: refresh, Producer: prod},
		Products:      &ProductHandler{DB: db, Producer: prod},
		Orders:        &OrderHandler{Service: &order.Service{DB: db}, Producer: prod},
		Admin:         &AdminHandler{DB: db},
	}
}

func (env *testEnv) doJSONRequest(method, path string, body interface{}, cookies ...*http.Cookie) (*httptest.ResponseRecorder, echo.Context) {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(env.T, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	rec := httptest.NewRecorder()
	c := env.E.NewContext(req, rec)
	return rec, c
}

func (env *testEnv) createUser(name, email, password, role string) models.User {
	env.T.Helper()
	pwHash, err := hash.HashPassword(password)
	require.NoError(env.T, err)
	user := models.User{Name: name, Email: email, PasswordHash: pwHash, Role: role}
	require.NoError(env.T, env.DB.Create(&user).Error)
	return user
}

func (env *testEnv) createProduct(slug, name string, price float64, stock uint) models.Product {
	env.T.Helper()
	p := models.Product{Slug: slug, Name: name, Description: name, Price: price, Stock: stock}
	require.NoError(env.T, env.DB.Create(&p).Error)
	return p
}

func requireHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	require.Equal(t, code, he.Code)
}
