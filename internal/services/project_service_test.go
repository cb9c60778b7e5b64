package services

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-api/internal/apperr"
	"github.com/atelierhq/atelier-api/internal/authz"
	"github.com/atelierhq/atelier-api/internal/models"
)

func TestProjectService_CreateByClientAutoAssignsManager(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	busy := env.createUser(t, models.RoleProjectManager, "busy@example.com")
	idle := env.createUser(t, models.RoleProjectManager, "idle@example.com")

	// The busy manager already carries an open project.
	env.createProject(t, models.ProjectTypeResidential, client, busy)

	project, err := env.projectService.Create(authz.ActorFor(client), CreateProjectInput{
		Name:        "New apartment",
		Description: "Two bedroom interior",
		ProjectType: "residential",
	})
	require.NoError(t, err)
	require.Equal(t, client.ID, project.ClientID)
	require.Equal(t, idle.ID, project.ManagerID)
	require.Equal(t, models.ProjectStatusInactive, project.Status)
}

func TestProjectService_CreateByClientNoManagerAvailable(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")

	_, err := env.projectService.Create(authz.ActorFor(client), CreateProjectInput{
		Name:        "Orphan project",
		Description: "No staff yet",
	})
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestProjectService_CreateByManagerDefaultsToSelf(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")

	project, err := env.projectService.Create(authz.ActorFor(manager), CreateProjectInput{
		Name:        "Office fit-out",
		Description: "Open plan",
		ProjectType: "commercial",
		ClientID:    client.ID,
	})
	require.NoError(t, err)
	require.Equal(t, manager.ID, project.ManagerID)
}

func TestProjectService_CreateRejectsNonClientClient(t *testing.T) {
	env := setupServiceTestEnv(t)
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	designer := env.createUser(t, models.RoleDesigner, "designer@example.com")

	_, err := env.projectService.Create(authz.ActorFor(manager), CreateProjectInput{
		Name:        "Bad client",
		Description: "designer as client",
		ClientID:    designer.ID,
	})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProjectService_ApproveResidentialMovesToPlanning(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	approved, err := env.projectService.Approve(authz.ActorFor(manager), project.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusPlanning, approved.Status)

	// Re-approving a project no longer awaiting approval fails.
	_, err = env.projectService.Approve(authz.ActorFor(manager), project.ID)
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))
}

func TestProjectService_ApproveCommercialLeavesStatusUntouched(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeCommercial, client, manager)

	// Commercial projects activate through the quotation handshake; approval
	// is accepted but changes nothing.
	approved, err := env.projectService.Approve(authz.ActorFor(manager), project.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusInactive, approved.Status)

	stored, err := env.projectRepo.FindByID(project.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusInactive, stored.Status)
}

func TestProjectService_QuotationLifecycle(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeCommercial, client, manager)

	managerActor := authz.ActorFor(manager)
	clientActor := authz.ActorFor(client)

	// The client cannot decide before a quotation exists.
	_, err := env.projectService.AcceptQuotation(clientActor, project.ID)
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	submitted, err := env.projectService.SubmitQuotation(managerActor, project.ID, "Estimate attached: 40k", "estimate.pdf")
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusQuotationSubmitted, submitted.Status)
	require.NotNil(t, submitted.QuotationFile)

	// Submission notifies the client.
	require.Len(t, env.mailer.sent, 1)
	require.Equal(t, client.Email, env.mailer.sent[0].To)

	// Only the project's client decides.
	_, err = env.projectService.AcceptQuotation(managerActor, project.ID)
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	// Rejection records feedback but keeps the project decidable.
	rejected, err := env.projectService.RejectQuotation(clientActor, project.ID, "too expensive")
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusQuotationSubmitted, rejected.Status)
	require.False(t, rejected.QuotationAccepted)
	require.Equal(t, "too expensive", rejected.FeedbackMessage)

	accepted, err := env.projectService.AcceptQuotation(clientActor, project.ID)
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusPlanning, accepted.Status)
	require.True(t, accepted.QuotationAccepted)
}

func TestProjectService_SubmitQuotationPreconditions(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	actor := authz.ActorFor(manager)

	residential := env.createProject(t, models.ProjectTypeResidential, client, manager)
	_, err := env.projectService.SubmitQuotation(actor, residential.ID, "estimate", "")
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	commercial := env.createProject(t, models.ProjectTypeCommercial, client, manager)
	_, err = env.projectService.SubmitQuotation(actor, commercial.ID, "   ", "")
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProjectService_QuotationMailFailureDoesNotBlockSubmission(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeCommercial, client, manager)

	env.mailer.err = errSMTPDown

	submitted, err := env.projectService.SubmitQuotation(authz.ActorFor(manager), project.ID, "Estimate", "")
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusQuotationSubmitted, submitted.Status)
}

func TestProjectService_SetDesignersReplacesWholesale(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	a := env.createUser(t, models.RoleDesigner, "a@example.com")
	b := env.createUser(t, models.RoleSeniorDesigner, "b@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	actor := authz.ActorFor(manager)

	require.NoError(t, env.projectService.SetDesigners(actor, project.ID, []uint64{a.ID, b.ID}))

	loaded, err := env.projectService.Get(actor, project.ID)
	require.NoError(t, err)
	require.ElementsMatch(t, []uint64{a.ID, b.ID}, loaded.DesignerIDs())

	// A new set replaces the old one; absent designers are dropped.
	require.NoError(t, env.projectService.SetDesigners(actor, project.ID, []uint64{a.ID}))

	loaded, err = env.projectService.Get(actor, project.ID)
	require.NoError(t, err)
	require.Equal(t, []uint64{a.ID}, loaded.DesignerIDs())

	// An empty set clears all designers.
	require.NoError(t, env.projectService.SetDesigners(actor, project.ID, nil))

	loaded, err = env.projectService.Get(actor, project.ID)
	require.NoError(t, err)
	require.Empty(t, loaded.DesignerIDs())
}

func TestProjectService_SetDesignersRejectsNonDesigners(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	hr := env.createUser(t, models.RoleHR, "hr@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	err := env.projectService.SetDesigners(authz.ActorFor(manager), project.ID, []uint64{hr.ID})
	require.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestProjectService_ReplaceAttachmentsPartialSuccess(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	actor := authz.ActorFor(manager)

	skipped, err := env.projectService.ReplaceAttachments(actor, project.ID, []AttachmentInput{
		{Name: "plan.pdf", ContentType: "application/pdf", Data: base64.StdEncoding.EncodeToString([]byte("pdf-bytes"))},
		{Name: "broken.png", ContentType: "image/png", Data: "%%%not-base64%%%"},
	})
	require.NoError(t, err)
	require.Equal(t, []string{"broken.png"}, skipped)

	loaded, err := env.projectService.Get(actor, project.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attachments, 1)
	require.Equal(t, "plan.pdf", loaded.Attachments[0].Name)
	require.Equal(t, int64(len("pdf-bytes")), loaded.Attachments[0].Size)

	// The next replacement drops the previous set entirely.
	skipped, err = env.projectService.ReplaceAttachments(actor, project.ID, []AttachmentInput{
		{Name: "render.jpg", ContentType: "image/jpeg", Data: base64.StdEncoding.EncodeToString([]byte("jpeg"))},
	})
	require.NoError(t, err)
	require.Empty(t, skipped)

	loaded, err = env.projectService.Get(actor, project.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Attachments, 1)
	require.Equal(t, "render.jpg", loaded.Attachments[0].Name)
}

func TestProjectService_ListScoping(t *testing.T) {
	env := setupServiceTestEnv(t)
	clientA := env.createUser(t, models.RoleClient, "a@example.com")
	clientB := env.createUser(t, models.RoleClient, "b@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	designer := env.createUser(t, models.RoleDesigner, "designer@example.com")
	hr := env.createUser(t, models.RoleHR, "hr@example.com")

	projectA := env.createProject(t, models.ProjectTypeResidential, clientA, manager)
	env.createProject(t, models.ProjectTypeCommercial, clientB, manager)

	require.NoError(t, env.projectService.SetDesigners(authz.ActorFor(manager), projectA.ID, []uint64{designer.ID}))

	projects, total, err := env.projectService.List(authz.ActorFor(manager), ListProjectsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, projects, 2)

	projects, total, err = env.projectService.List(authz.ActorFor(clientA), ListProjectsInput{})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Equal(t, projectA.ID, projects[0].ID)

	projects, _, err = env.projectService.List(authz.ActorFor(designer), ListProjectsInput{})
	require.NoError(t, err)
	require.Len(t, projects, 1)
	require.Equal(t, projectA.ID, projects[0].ID)

	_, _, err = env.projectService.List(authz.ActorFor(hr), ListProjectsInput{})
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))
}

func TestProjectService_StatusPatchStaysInDeliveryBand(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeCommercial, client, manager)

	// An inactive commercial project cannot be pushed into delivery by a
	// plain update; it has to go through the quotation handshake.
	planning := string(models.ProjectStatusPlanning)
	_, err := env.projectService.Update(authz.ActorFor(manager), project.ID, UpdateProjectInput{Status: &planning})
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// Nor can lifecycle-owned statuses be reached from delivery.
	require.NoError(t, env.db.Model(project).Update("status", models.ProjectStatusPlanning).Error)
	rejected := string(models.ProjectStatusRejected)
	_, err = env.projectService.Update(authz.ActorFor(manager), project.ID, UpdateProjectInput{Status: &rejected})
	require.Equal(t, apperr.KindInvalidState, apperr.KindOf(err))

	// Within the band the manager advances freely.
	inProgress := string(models.ProjectStatusInProgress)
	result, err := env.projectService.Update(authz.ActorFor(manager), project.ID, UpdateProjectInput{Status: &inProgress})
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusInProgress, result.Project.Status)
}

func TestProjectService_RejectRecordsFeedback(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	rejected, err := env.projectService.Reject(authz.ActorFor(manager), project.ID, "out of scope")
	require.NoError(t, err)
	require.Equal(t, models.ProjectStatusRejected, rejected.Status)
	require.Equal(t, "out of scope", rejected.FeedbackMessage)
}

func TestProjectService_UpdatesLog(t *testing.T) {
	env := setupServiceTestEnv(t)
	client := env.createUser(t, models.RoleClient, "client@example.com")
	manager := env.createUser(t, models.RoleProjectManager, "pm@example.com")
	designer := env.createUser(t, models.RoleDesigner, "designer@example.com")
	project := env.createProject(t, models.ProjectTypeResidential, client, manager)

	managerActor := authz.ActorFor(manager)
	require.NoError(t, env.projectService.SetDesigners(managerActor, project.ID, []uint64{designer.ID}))

	_, err := env.projectService.CreateUpdate(managerActor, project.ID, CreateUpdateInput{
		Type:  "comment",
		Title: "Kickoff done",
	})
	require.NoError(t, err)

	// Assigned designers post updates too.
	_, err = env.projectService.CreateUpdate(authz.ActorFor(designer), project.ID, CreateUpdateInput{
		Type:  "design",
		Title: "First draft uploaded",
	})
	require.NoError(t, err)

	// The client only reads the log.
	_, err = env.projectService.CreateUpdate(authz.ActorFor(client), project.ID, CreateUpdateInput{
		Type:  "comment",
		Title: "Looks great",
	})
	require.Equal(t, apperr.KindPermissionDenied, apperr.KindOf(err))

	updates, err := env.projectService.ListUpdates(authz.ActorFor(client), project.ID)
	require.NoError(t, err)
	require.Len(t, updates, 2)
}
