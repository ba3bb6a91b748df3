package controllers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/models"
	"github.com/hrcastell/Dulce-Maria-Reposteria/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupAuthRouter(t *testing.T) (*gin.Engine, services.UserService, *gorm.DB) {
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))

	userService := services.NewUserService(db)
	authController := NewAuthController(userService, testJWTSecret)

	router := gin.New()
	router.POST("/auth/login", authController.Login)
	return router, userService, db
}

func postLogin(t *testing.T, router *gin.Engine, email, password string) *httptest.ResponseRecorder {
	body, err := json.Marshal(gin.H{"email": email, "password": password})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestLoginSuccess(t *testing.T) {
	router, users, _ := setupAuthRouter(t)
	_, err := users.CreateUser(services.UserInput{
		Email:    "admin@example.com",
		Password: "secret-password",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)

	w := postLogin(t, router, "admin@example.com", "secret-password")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
		ExpiresIn   int64  `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.AccessToken)
	assert.Contains(t, resp.AccessToken, ".")
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, int64(7*24*3600), resp.ExpiresIn)
}

func TestLoginRejections(t *testing.T) {
	router, users, db := setupAuthRouter(t)
	created, err := users.CreateUser(services.UserInput{
		Email:    "admin@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	t.Run("wrong password", func(t *testing.T) {
		w := postLogin(t, router, "admin@example.com", "wrong-password")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("unknown email", func(t *testing.T) {
		w := postLogin(t, router, "nobody@example.com", "secret-password")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		w := postLogin(t, router, "not-an-email", "secret-password")
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("deactivated account", func(t *testing.T) {
		require.NoError(t, db.Model(&models.User{}).Where("id = ?", created.ID).Update("is_active", false).Error)

		w := postLogin(t, router, "admin@example.com", "secret-password")
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
