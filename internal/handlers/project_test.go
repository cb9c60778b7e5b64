package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-api/internal/dto"
	"github.com/atelierhq/atelier-api/internal/models"
)

func getJSON(t *testing.T, env *apiTestEnv, path, tok string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("Authorization", tok)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	return w
}

func TestProjectEndpoints_QuotationHandshake(t *testing.T) {
	env := setupAPITestEnv(t)
	_, managerTok := env.seedUser(t, models.RoleProjectManager, "pm@example.com")
	client, clientTok := env.seedUser(t, models.RoleClient, "client@example.com")

	// Client submits a commercial project; the manager is auto-assigned.
	w := postJSON(t, env.router, "/api/projects", map[string]any{
		"name":         "Retail store",
		"description":  "Full interior",
		"project_type": "commercial",
	}, bearer(clientTok))
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	require.Equal(t, client.ID, created.ClientID)
	require.Equal(t, models.ProjectStatusInactive, created.Status)

	base := fmt.Sprintf("/api/projects/%d", created.ID)

	// Client cannot decide before the quotation exists.
	w = postJSON(t, env.router, base+"/accept-quotation", map[string]any{}, bearer(clientTok))
	require.Equal(t, http.StatusBadRequest, w.Code)

	// The manager submits the quotation; the client is notified by mail.
	w = postJSON(t, env.router, base+"/submit-quotation", map[string]any{
		"message":   "Estimate: 40k over 12 weeks",
		"file_name": "estimate.pdf",
	}, bearer(managerTok))
	require.Equal(t, http.StatusOK, w.Code)

	var submitted dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &submitted))
	require.Equal(t, models.ProjectStatusQuotationSubmitted, submitted.Status)
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, client.Email, env.mailer.sent[0].To)

	// The manager cannot decide on their own quotation.
	w = postJSON(t, env.router, base+"/accept-quotation", map[string]any{}, bearer(managerTok))
	require.Equal(t, http.StatusForbidden, w.Code)

	// The client rejects with feedback, then accepts on resubmission terms.
	w = postJSON(t, env.router, base+"/reject-quotation", map[string]any{
		"feedback": "needs a phased payment plan",
	}, bearer(clientTok))
	require.Equal(t, http.StatusOK, w.Code)

	var rejected dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &rejected))
	require.Equal(t, models.ProjectStatusQuotationSubmitted, rejected.Status)
	require.False(t, rejected.QuotationAccepted)

	w = postJSON(t, env.router, base+"/accept-quotation", map[string]any{}, bearer(clientTok))
	require.Equal(t, http.StatusOK, w.Code)

	var accepted dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &accepted))
	require.Equal(t, models.ProjectStatusPlanning, accepted.Status)
	require.True(t, accepted.QuotationAccepted)
}

func TestProjectEndpoints_VisibilityScoping(t *testing.T) {
	env := setupAPITestEnv(t)
	_, managerTok := env.seedUser(t, models.RoleProjectManager, "pm@example.com")
	clientA, clientATok := env.seedUser(t, models.RoleClient, "a@example.com")
	_, clientBTok := env.seedUser(t, models.RoleClient, "b@example.com")

	w := postJSON(t, env.router, "/api/projects", map[string]any{
		"name":        "Villa",
		"description": "Residential interior",
		"client_id":   clientA.ID,
	}, bearer(managerTok))
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	path := fmt.Sprintf("/api/projects/%d", created.ID)

	require.Equal(t, http.StatusOK, getJSON(t, env, path, clientATok).Code)
	require.Equal(t, http.StatusForbidden, getJSON(t, env, path, clientBTok).Code)

	// Listings are scoped, not errored.
	w = getJSON(t, env, "/api/projects", clientBTok)
	require.Equal(t, http.StatusOK, w.Code)

	var listing dto.ProjectListResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Empty(t, listing.Projects)
}

func TestProjectEndpoints_ApproveResidential(t *testing.T) {
	env := setupAPITestEnv(t)
	_, managerTok := env.seedUser(t, models.RoleProjectManager, "pm@example.com")
	client, _ := env.seedUser(t, models.RoleClient, "client@example.com")

	w := postJSON(t, env.router, "/api/projects", map[string]any{
		"name":        "Villa",
		"description": "Residential interior",
		"client_id":   client.ID,
	}, bearer(managerTok))
	require.Equal(t, http.StatusCreated, w.Code)

	var created dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))

	w = postJSON(t, env.router, fmt.Sprintf("/api/projects/%d/approve", created.ID), map[string]any{}, bearer(managerTok))
	require.Equal(t, http.StatusOK, w.Code)

	var approved dto.ProjectDTO
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &approved))
	require.Equal(t, models.ProjectStatusPlanning, approved.Status)
}

func TestUserEndpoints_OnboardClientFlow(t *testing.T) {
	env := setupAPITestEnv(t)
	_, marketingTok := env.seedUser(t, models.RoleDigitalMarketing, "dm@example.com")

	w := postJSON(t, env.router, "/api/users/onboard-client", map[string]string{
		"name":    "Ravi Sharma",
		"email":   "ravi@example.com",
		"company": "Sharma Interiors",
	}, bearer(marketingTok))
	require.Equal(t, http.StatusCreated, w.Code)

	var onboarded struct {
		User     dto.UserDTO `json:"user"`
		Password string      `json:"password"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &onboarded))
	require.Equal(t, models.RoleClient, onboarded.User.Role)
	require.Len(t, onboarded.Password, 8)

	// Same email again conflicts.
	w = postJSON(t, env.router, "/api/users/onboard-client", map[string]string{
		"name":    "Ravi Sharma",
		"email":   "ravi@example.com",
		"company": "Sharma Interiors",
	}, bearer(marketingTok))
	require.Equal(t, http.StatusConflict, w.Code)

	// Credentials email carries the generated password.
	w = postJSON(t, env.router, "/api/users/send-client-credentials", map[string]any{
		"client_id": onboarded.User.ID,
		"email":     "ravi@example.com",
		"name":      "Ravi Sharma",
		"company":   "Sharma Interiors",
		"password":  onboarded.Password,
	}, bearer(marketingTok))
	require.Equal(t, http.StatusOK, w.Code)

	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, "ravi@example.com", env.mailer.sent[0].To)
	require.Contains(t, env.mailer.sent[0].Body, onboarded.Password)

	// The onboarded client logs in with the generated password.
	w = postJSON(t, env.router, "/api/auth/login", map[string]string{
		"email":    "ravi@example.com",
		"password": onboarded.Password,
	}, nil)
	require.Equal(t, http.StatusOK, w.Code)
}

func TestUserEndpoints_ManagerCannotOnboard(t *testing.T) {
	env := setupAPITestEnv(t)
	_, managerTok := env.seedUser(t, models.RoleProjectManager, "pm@example.com")

	w := postJSON(t, env.router, "/api/users/onboard-client", map[string]string{
		"name":    "Someone",
		"email":   "x@example.com",
		"company": "Acme",
	}, bearer(managerTok))
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestUserEndpoints_SelfDeleteForbidden(t *testing.T) {
	env := setupAPITestEnv(t)
	admin, adminTok := env.seedUser(t, models.RoleAdmin, "admin@example.com")

	req := httptest.NewRequest(http.MethodDelete, fmt.Sprintf("/api/users/%d", admin.ID), nil)
	req.Header.Set("Authorization", adminTok)
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusForbidden, w.Code)
}
