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
	"github.com/itjee/jwp-pms-v1/internal/permissions"
	"github.com/itjee/jwp-pms-v1/internal/repository"
	"github.com/itjee/jwp-pms-v1/internal/services"
)

type projectTestEnv struct {
	authTestEnv
	projectService *services.ProjectService
}

func setupProjectTestEnv(t *testing.T) projectTestEnv {
	t.Helper()

	env := setupAuthTestEnv(t)

	projectRepo := repository.NewProjectRepository(env.db)
	userRepo := repository.NewUserRepository(env.db)
	evaluator := permissions.NewProjectEvaluator(env.db)
	projectService := services.NewProjectService(projectRepo, userRepo, evaluator)
	handler := NewProjectHandler(projectService)

	authn := middleware.NewAuthenticator(env.authService)
	gate := middleware.NewProjectGate(env.db, evaluator)

	projects := env.router.Group("/api/projects")
	projects.POST("", authn.RequireAuth(), handler.CreateProject)
	projects.GET("", authn.OptionalAuth(), handler.ListProjects)
	projects.GET("/:id", authn.OptionalAuth(), gate.RequireRead(), handler.GetProject)
	projects.GET("/:id/members", authn.OptionalAuth(), gate.RequireRead(), handler.ListMembers)
	projects.PUT("/:id", authn.RequireAuth(), gate.RequireManage(), handler.UpdateProject)
	projects.DELETE("/:id", authn.RequireAuth(), gate.RequireManage(), handler.DeleteProject)
	projects.POST("/:id/members", authn.RequireAuth(), gate.RequireManage(), handler.AddMember)
	projects.DELETE("/:id/members/:user_id", authn.RequireAuth(), gate.RequireManage(), handler.RemoveMember)

	return projectTestEnv{
		authTestEnv:    env,
		projectService: projectService,
	}
}

func TestProjectHandler_Create(t *testing.T) {
	env := setupProjectTestEnv(t)

	_, token := registerAndLogin(t, env.authTestEnv, "creator")

	w := doJSON(t, env.router, http.MethodPost, "/api/projects", token, map[string]any{
		"name": "launch",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, "launch", created.Name)
	require.Equal(t, models.ProjectStatusPlanning, created.Status)
}

func TestProjectHandler_PrivateProjectAccess(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, ownerToken := registerAndLogin(t, env.authTestEnv, "owner")
	_, strangerToken := registerAndLogin(t, env.authTestEnv, "stranger")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "private",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/projects/%d", project.ID)

	w := doJSON(t, env.router, http.MethodGet, path, ownerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// Authenticated but unrelated callers are denied, not hidden.
	w = doJSON(t, env.router, http.MethodGet, path, strangerToken, nil)
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProjectHandler_PublicProjectAnonymousRead(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, _ := registerAndLogin(t, env.authTestEnv, "owner")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "open",
		CreatorID: owner.ID,
		IsPublic:  true,
	})
	require.NoError(t, err)

	w := doJSON(t, env.router, http.MethodGet, fmt.Sprintf("/api/projects/%d", project.ID), "", nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProjectHandler_AnonymousListSeesOnlyPublic(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, _ := registerAndLogin(t, env.authTestEnv, "owner")

	_, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "internal",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	public, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "open",
		CreatorID: owner.ID,
		IsPublic:  true,
	})
	require.NoError(t, err)

	w := doJSON(t, env.router, http.MethodGet, "/api/projects", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Projects, 1)
	require.Equal(t, public.ID, resp.Projects[0].ID)
}

func TestProjectHandler_ManageRequiresOwnerOrManager(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, ownerToken := registerAndLogin(t, env.authTestEnv, "owner")
	viewer, viewerToken := registerAndLogin(t, env.authTestEnv, "viewer")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "managed",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	_, err = env.projectService.AddMember(services.AddMemberInput{
		ProjectID: project.ID,
		UserID:    viewer.ID,
		Role:      models.ProjectRoleViewer,
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/projects/%d", project.ID)

	// Viewers can read but not manage.
	w := doJSON(t, env.router, http.MethodGet, path, viewerToken, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, env.router, http.MethodPut, path, viewerToken, map[string]any{
		"name": "renamed",
	})
	require.Equal(t, http.StatusForbidden, w.Code)

	w = doJSON(t, env.router, http.MethodPut, path, ownerToken, map[string]any{
		"name": "renamed",
	})
	require.Equal(t, http.StatusOK, w.Code)
}

func TestProjectHandler_AddMemberConflict(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, ownerToken := registerAndLogin(t, env.authTestEnv, "owner")
	joiner, _ := registerAndLogin(t, env.authTestEnv, "joiner")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "team",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	path := fmt.Sprintf("/api/projects/%d/members", project.ID)

	w := doJSON(t, env.router, http.MethodPost, path, ownerToken, map[string]any{
		"user_id": joiner.ID,
		"role":    "developer",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	w = doJSON(t, env.router, http.MethodPost, path, ownerToken, map[string]any{
		"user_id": joiner.ID,
		"role":    "developer",
	})
	require.Equal(t, http.StatusConflict, w.Code)
}

func TestProjectHandler_RemoveLastOwnerConflict(t *testing.T) {
	env := setupProjectTestEnv(t)

	owner, ownerToken := registerAndLogin(t, env.authTestEnv, "owner")

	project, err := env.projectService.CreateProject(services.CreateProjectInput{
		Name:      "solo",
		CreatorID: owner.ID,
	})
	require.NoError(t, err)

	w := doJSON(t, env.router, http.MethodDelete,
		fmt.Sprintf("/api/projects/%d/members/%d", project.ID, owner.ID), ownerToken, nil)
	require.Equal(t, http.StatusConflict, w.Code)
}
