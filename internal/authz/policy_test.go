package authz

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/atelierhq/atelier-api/internal/models"
)

func TestCan_SelfDeleteDeniedForEveryRole(t *testing.T) {
	for _, role := range models.AllRoles() {
		actor := Actor{ID: 7, Role: role}
		res := Resource{Kind: KindAccount, AccountID: 7, AccountRole: role}
		require.False(t, Can(actor, ActionDelete, res), "role %s deleted its own account", role)
	}
}

func TestCan_SelfDeleteDeniedForSuperuser(t *testing.T) {
	actor := Actor{ID: 1, Role: models.RoleAdmin, Superuser: true}
	res := Resource{Kind: KindAccount, AccountID: 1, AccountRole: models.RoleAdmin}
	require.False(t, Can(actor, ActionDelete, res))

	// Deleting someone else is still allowed.
	other := Resource{Kind: KindAccount, AccountID: 2, AccountRole: models.RoleClient}
	require.True(t, Can(actor, ActionDelete, other))
}

func TestCan_UnknownRoleDenied(t *testing.T) {
	actor := Actor{ID: 3, Role: models.Role("intern")}
	require.False(t, Can(actor, ActionView, Resource{Kind: KindProject, ClientID: 3}))
	require.False(t, Can(actor, ActionView, Resource{Kind: KindAccount, AccountID: 3}))
}

func TestCan_AdminFullAccess(t *testing.T) {
	actor := Actor{ID: 1, Role: models.RoleAdmin}

	require.True(t, Can(actor, ActionCreate, Resource{Kind: KindAccount, AccountRole: models.RoleProjectManager}))
	require.True(t, Can(actor, ActionSetPassword, Resource{Kind: KindAccount, AccountID: 9}))
	require.True(t, Can(actor, ActionApprove, Resource{Kind: KindProject, ClientID: 4, ManagerID: 5}))
	require.True(t, Can(actor, ActionSubmitQuotation, Resource{Kind: KindProject, ClientID: 4, ManagerID: 5}))
	require.True(t, Can(actor, ActionOnboard, Resource{Kind: KindMail}))
}

func TestCan_ManagerScopedToManagedProjects(t *testing.T) {
	actor := Actor{ID: 10, Role: models.RoleProjectManager}
	managed := Resource{Kind: KindProject, ClientID: 2, ManagerID: 10}
	foreign := Resource{Kind: KindProject, ClientID: 2, ManagerID: 11}

	// Visibility is company-wide, mutation is not.
	require.True(t, Can(actor, ActionView, foreign))
	require.True(t, Can(actor, ActionUpdate, managed))
	require.False(t, Can(actor, ActionUpdate, foreign))
	require.True(t, Can(actor, ActionApprove, managed))
	require.False(t, Can(actor, ActionApprove, foreign))
	require.True(t, Can(actor, ActionSubmitQuotation, managed))
	require.False(t, Can(actor, ActionSubmitQuotation, foreign))

	// The quotation decision belongs to the client.
	require.False(t, Can(actor, ActionDecideQuotation, managed))
}

func TestCan_AssistantManagerMatchesManager(t *testing.T) {
	manager := Actor{ID: 10, Role: models.RoleProjectManager}
	assistant := Actor{ID: 10, Role: models.RoleAssistantProjectManager}
	managed := Resource{Kind: KindProject, ClientID: 2, ManagerID: 10}

	for _, action := range []Action{ActionView, ActionUpdate, ActionApprove, ActionReject, ActionSubmitQuotation} {
		require.Equal(t, Can(manager, action, managed), Can(assistant, action, managed), "action %s", action)
	}
}

func TestCan_ClientQuotationDecision(t *testing.T) {
	actor := Actor{ID: 5, Role: models.RoleClient}
	own := Resource{Kind: KindProject, ClientID: 5, ManagerID: 10}
	other := Resource{Kind: KindProject, ClientID: 6, ManagerID: 10}

	require.True(t, Can(actor, ActionDecideQuotation, own))
	require.False(t, Can(actor, ActionDecideQuotation, other))
	require.False(t, Can(actor, ActionSubmitQuotation, own))
	require.False(t, Can(actor, ActionApprove, own))
	require.False(t, Can(actor, ActionDelete, own))
}

func TestCan_DesignerScopedToAssignments(t *testing.T) {
	actor := Actor{ID: 20, Role: models.RoleDesigner}
	assigned := Resource{Kind: KindProject, ClientID: 2, ManagerID: 10, DesignerIDs: []uint64{19, 20}}
	unassigned := Resource{Kind: KindProject, ClientID: 2, ManagerID: 10, DesignerIDs: []uint64{19}}

	require.True(t, Can(actor, ActionView, assigned))
	require.False(t, Can(actor, ActionView, unassigned))
	require.False(t, Can(actor, ActionUpdate, assigned))
	require.True(t, Can(actor, ActionPostUpdate, assigned))

	task := Resource{Kind: KindTask, ClientID: 2, ManagerID: 10, AssigneeID: 20}
	require.True(t, Can(actor, ActionUpdate, task))
}

func TestCan_DigitalMarketingClientOnly(t *testing.T) {
	actor := Actor{ID: 30, Role: models.RoleDigitalMarketing}

	client := Resource{Kind: KindAccount, AccountID: 40, AccountRole: models.RoleClient}
	staff := Resource{Kind: KindAccount, AccountID: 41, AccountRole: models.RoleDesigner}

	require.True(t, Can(actor, ActionView, client))
	require.True(t, Can(actor, ActionCreate, Resource{Kind: KindAccount, AccountRole: models.RoleClient}))
	require.True(t, Can(actor, ActionSetPassword, client))
	require.False(t, Can(actor, ActionView, staff))
	require.False(t, Can(actor, ActionCreate, Resource{Kind: KindAccount, AccountRole: models.RoleDesigner}))

	require.True(t, Can(actor, ActionOnboard, Resource{Kind: KindMail}))
	require.True(t, Can(actor, ActionSendMail, Resource{Kind: KindMail}))
	require.False(t, Can(actor, ActionView, Resource{Kind: KindProject, ClientID: 40}))
}

func TestCan_SupportRolesSelfAndDirectChatOnly(t *testing.T) {
	for _, role := range []models.Role{
		models.RoleTeamHead, models.RoleTeamLead, models.RoleHR,
		models.RoleAccountant, models.RoleMarketing, models.RoleSales,
	} {
		actor := Actor{ID: 50, Role: role}

		require.True(t, Can(actor, ActionView, Resource{Kind: KindAccount, AccountID: 50}), "role %s", role)
		require.False(t, Can(actor, ActionView, Resource{Kind: KindAccount, AccountID: 51}), "role %s", role)
		require.True(t, Can(actor, ActionCreate, Resource{Kind: KindDirectChat}), "role %s", role)
		require.False(t, Can(actor, ActionView, Resource{Kind: KindProject, ManagerID: 50}), "role %s", role)
	}
}

func TestCan_TargetRolesIgnoredForOwnAccount(t *testing.T) {
	// A manager's role filter never locks them out of their own profile.
	actor := Actor{ID: 10, Role: models.RoleProjectManager}
	own := Resource{Kind: KindAccount, AccountID: 10, AccountRole: models.RoleProjectManager}
	require.True(t, Can(actor, ActionView, own))
	require.True(t, Can(actor, ActionUpdate, own))
}

func TestAccountListRoles(t *testing.T) {
	require.Nil(t, AccountListRoles(Actor{Role: models.RoleAdmin}))
	require.Nil(t, AccountListRoles(Actor{Role: models.RoleClient, Superuser: true}))

	managerRoles := AccountListRoles(Actor{Role: models.RoleProjectManager})
	require.ElementsMatch(t, managerVisibleRoles, managerRoles)

	marketingRoles := AccountListRoles(Actor{Role: models.RoleDigitalMarketing})
	require.Equal(t, []models.Role{models.RoleClient}, marketingRoles)

	require.Empty(t, AccountListRoles(Actor{Role: models.RoleClient}))
	require.Empty(t, AccountListRoles(Actor{Role: models.RoleHR}))
	require.Empty(t, AccountListRoles(Actor{Role: models.Role("intern")}))
}

func TestProjectListScope(t *testing.T) {
	require.Equal(t, ListScopeAll, ProjectListScope(Actor{Role: models.RoleAdmin}))
	require.Equal(t, ListScopeAll, ProjectListScope(Actor{Role: models.RoleProjectManager}))
	require.Equal(t, ListScopeAll, ProjectListScope(Actor{Role: models.RoleHR, Superuser: true}))
	require.Equal(t, ListScopeAssigned, ProjectListScope(Actor{Role: models.RoleSeniorDesigner}))
	require.Equal(t, ListScopeClient, ProjectListScope(Actor{Role: models.RoleClient}))
	require.Equal(t, ListScopeNone, ProjectListScope(Actor{Role: models.RoleAccountant}))
	require.Equal(t, ListScopeNone, ProjectListScope(Actor{Role: models.Role("intern")}))
}

func TestCan_IsPure(t *testing.T) {
	actor := Actor{ID: 5, Role: models.RoleClient}
	res := Resource{Kind: KindProject, ClientID: 5, ManagerID: 10}
	first := Can(actor, ActionDecideQuotation, res)
	for i := 0; i < 100; i++ {
		require.Equal(t, first, Can(actor, ActionDecideQuotation, res))
	}
}
