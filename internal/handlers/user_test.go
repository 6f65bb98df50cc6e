package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/itjee/jwp-pms-v1/internal/dto"
	"github.com/itjee/jwp-pms-v1/internal/middleware"
	"github.com/itjee/jwp-pms-v1/internal/models"
	"github.com/itjee/jwp-pms-v1/internal/repository"
	"github.com/itjee/jwp-pms-v1/internal/services"
)

func setupUserTestEnv(t *testing.T) authTestEnv {
	t.Helper()

	env := setupAuthTestEnv(t)

	userRepo := repository.NewUserRepository(env.db)
	userService := services.NewUserService(userRepo)
	handler := NewUserHandler(userService)

	authn := middleware.NewAuthenticator(env.authService)

	admin := env.router.Group("/api/admin", authn.RequireAuth(), authn.RequireRole(models.UserRoleAdmin))
	admin.GET("/users", handler.ListUsers)
	admin.GET("/users/:id", handler.GetUser)
	admin.PUT("/users/:id/role", handler.ChangeRole)
	admin.DELETE("/users/:id", handler.DeactivateUser)

	return env
}

func promoteToAdmin(t *testing.T, env authTestEnv, userID uint64) {
	t.Helper()
	require.NoError(t, env.db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("role", models.UserRoleAdmin).Error)
}

func TestUserHandler_AdminOnly(t *testing.T) {
	env := setupUserTestEnv(t)

	_, devToken := registerAndLogin(t, env, "developer")

	w := doJSON(t, env.router, http.MethodGet, "/api/admin/users", devToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodGet, "/api/admin/users", "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_ListUsers(t *testing.T) {
	env := setupUserTestEnv(t)

	admin, adminToken := registerAndLogin(t, env, "boss")
	promoteToAdmin(t, env, admin.ID)
	registerAndLogin(t, env, "worker")

	// Identity is resolved from the database per request, so the promoted
	// role takes effect without reissuing the token.
	w := doJSON(t, env.router, http.MethodGet, "/api/admin/users", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	var response dto.UserListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	require.GreaterOrEqual(t, len(response.Users), 2)
}

func TestUserHandler_ChangeRole(t *testing.T) {
	env := setupUserTestEnv(t)

	admin, adminToken := registerAndLogin(t, env, "boss")
	promoteToAdmin(t, env, admin.ID)
	subject, _ := registerAndLogin(t, env, "subject")

	w := doJSON(t, env.router, http.MethodPut,
		fmt.Sprintf("/api/admin/users/%d/role", subject.ID), adminToken, map[string]string{
			"role": "manager",
		})
	require.Equal(t, http.StatusOK, w.Code)

	var updated dto.UserDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &updated))
	require.Equal(t, models.UserRoleManager, updated.Role)
}

func TestUserHandler_ChangeRoleRejectsUnknownRole(t *testing.T) {
	env := setupUserTestEnv(t)

	admin, adminToken := registerAndLogin(t, env, "boss")
	promoteToAdmin(t, env, admin.ID)
	subject, _ := registerAndLogin(t, env, "subject")

	w := doJSON(t, env.router, http.MethodPut,
		fmt.Sprintf("/api/admin/users/%d/role", subject.ID), adminToken, map[string]string{
			"role": "superuser",
		})
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUserHandler_DeactivateUser(t *testing.T) {
	env := setupUserTestEnv(t)

	admin, adminToken := registerAndLogin(t, env, "boss")
	promoteToAdmin(t, env, admin.ID)
	subject, subjectToken := registerAndLogin(t, env, "subject")

	w := doJSON(t, env.router, http.MethodDelete,
		fmt.Sprintf("/api/admin/users/%d", subject.ID), adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// The deactivated account no longer resolves to an identity.
	w = doJSON(t, env.router, http.MethodGet, "/api/auth/me", subjectToken, nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUserHandler_GetUserNotFound(t *testing.T) {
	env := setupUserTestEnv(t)

	admin, adminToken := registerAndLogin(t, env, "boss")
	promoteToAdmin(t, env, admin.ID)

	w := doJSON(t, env.router, http.MethodGet, "/api/admin/users/9999", adminToken, nil)
	require.Equal(t, http.StatusNotFound, w.Code)
}
