// Package authz is the authorization policy engine: a declarative
// (role x resource kind x action) table evaluated by a pure Can function.
// Every permission decision in the API goes through this table.
package authz

import "github.com/atelierhq/atelier-api/internal/models"

// Action is the operation an actor attempts against a resource.
type Action string

const (
	ActionView            Action = "view"
	ActionList            Action = "list"
	ActionCreate          Action = "create"
	ActionUpdate          Action = "update"
	ActionDelete          Action = "delete"
	ActionSetPassword     Action = "set_password"
	ActionSendMail        Action = "send_mail"
	ActionOnboard         Action = "onboard"
	ActionApprove         Action = "approve"
	ActionReject          Action = "reject"
	ActionSubmitQuotation Action = "submit_quotation"
	ActionDecideQuotation Action = "decide_quotation"
	ActionPostUpdate      Action = "post_update"
)

// Kind identifies the resource family a rule applies to.
type Kind string

const (
	KindAccount     Kind = "account"
	KindProject     Kind = "project"
	KindTask        Kind = "task"
	KindProjectChat Kind = "project_chat"
	KindDirectChat  Kind = "direct_chat"
	KindMail        Kind = "mail"
)

// Actor is the authenticated identity a verdict is computed for.
type Actor struct {
	ID        uint64
	Role      models.Role
	Superuser bool
}

// ActorFor builds an Actor from an account record.
func ActorFor(u *models.User) Actor {
	return Actor{ID: u.ID, Role: u.Role, Superuser: u.IsSuperuser}
}

// Resource carries the relationship fields scope evaluation needs. Unused
// fields are left zero; a scope that reads them then simply does not match.
type Resource struct {
	Kind Kind

	// Account resources
	AccountID   uint64
	AccountRole models.Role

	// Project-rooted resources (projects, tasks, chat channels)
	ClientID    uint64
	ManagerID   uint64
	DesignerIDs []uint64

	// Task resources
	AssigneeID uint64
}

// Scope is a bitmask of relationship predicates; a rule matches when any
// flagged predicate holds between the actor and the resource.
type Scope uint8

const (
	ScopeNone Scope = 0
	// ScopeAll matches unconditionally.
	ScopeAll Scope = 1 << iota
	// ScopeSelf: the resource is the actor's own account.
	ScopeSelf
	// ScopeClient: the actor is the project's client.
	ScopeClient
	// ScopeManaged: the actor is the project's assigned manager.
	ScopeManaged
	// ScopeAssigned: the actor is in the designer set or is the task assignee.
	ScopeAssigned
)

// ScopeParticipant matches any project participant.
const ScopeParticipant = ScopeClient | ScopeManaged | ScopeAssigned

func (s Scope) matches(actor Actor, res Resource) bool {
	if s&ScopeAll != 0 {
		return true
	}
	if s&ScopeSelf != 0 && res.AccountID == actor.ID {
		return true
	}
	if s&ScopeClient != 0 && res.ClientID != 0 && res.ClientID == actor.ID {
		return true
	}
	if s&ScopeManaged != 0 && res.ManagerID != 0 && res.ManagerID == actor.ID {
		return true
	}
	if s&ScopeAssigned != 0 {
		if res.AssigneeID != 0 && res.AssigneeID == actor.ID {
			return true
		}
		for _, id := range res.DesignerIDs {
			if id == actor.ID {
				return true
			}
		}
	}
	return false
}

// Rule pairs a scope with an optional restriction on the target account's
// role. TargetRoles is only consulted for account resources.
type Rule struct {
	Scope       Scope
	TargetRoles []models.Role
}

func all() Rule { return Rule{Scope: ScopeAll} }

func scoped(s Scope) Rule { return Rule{Scope: s} }

func roles(s Scope, rs ...models.Role) Rule {
	return Rule{Scope: s, TargetRoles: rs}
}

// managerVisibleRoles is the role filter applied to account listings for
// project managers.
var managerVisibleRoles = []models.Role{
	models.RoleDesigner, models.RoleSeniorDesigner, models.RoleAutoCADDrafter,
	models.RoleAdmin, models.RoleAssistantProjectManager,
	models.RoleProjectManager, models.RoleClient,
}

// selfOnlyAccount is the baseline every staff role gets: its own account.
var selfOnlyAccount = map[Action]Rule{
	ActionView:   scoped(ScopeSelf),
	ActionUpdate: scoped(ScopeSelf),
}

// directChatOpen: direct messaging is unrestricted between authenticated accounts.
var directChatOpen = map[Action]Rule{
	ActionView:   all(),
	ActionList:   all(),
	ActionCreate: all(),
}

func managerRules() map[Kind]map[Action]Rule {
	return map[Kind]map[Action]Rule{
		KindAccount: {
			ActionView: roles(ScopeAll|ScopeSelf, managerVisibleRoles...),
			ActionList: roles(ScopeAll, managerVisibleRoles...),
			// Project managers keep their own profile editable only.
			ActionUpdate: scoped(ScopeSelf),
		},
		KindProject: {
			ActionView:            all(),
			ActionList:            all(),
			ActionCreate:          scoped(ScopeManaged),
			ActionUpdate:          scoped(ScopeManaged),
			ActionDelete:          scoped(ScopeManaged),
			ActionApprove:         scoped(ScopeManaged),
			ActionReject:          scoped(ScopeManaged),
			ActionSubmitQuotation: scoped(ScopeManaged),
			ActionPostUpdate:      scoped(ScopeManaged),
		},
		KindTask: {
			ActionView:   scoped(ScopeManaged),
			ActionList:   scoped(ScopeManaged),
			ActionCreate: scoped(ScopeManaged),
			ActionUpdate: scoped(ScopeManaged | ScopeAssigned),
		},
		KindProjectChat: {
			ActionView:   scoped(ScopeManaged),
			ActionCreate: scoped(ScopeManaged),
		},
		KindDirectChat: directChatOpen,
	}
}

func designerRules() map[Kind]map[Action]Rule {
	return map[Kind]map[Action]Rule{
		KindAccount: selfOnlyAccount,
		KindProject: {
			ActionView:       scoped(ScopeAssigned),
			ActionList:       scoped(ScopeAssigned),
			ActionPostUpdate: scoped(ScopeAssigned),
		},
		KindTask: {
			ActionView:   scoped(ScopeAssigned),
			ActionList:   scoped(ScopeAssigned),
			ActionUpdate: scoped(ScopeAssigned),
		},
		KindProjectChat: {
			ActionView:   scoped(ScopeAssigned),
			ActionCreate: scoped(ScopeAssigned),
		},
		KindDirectChat: directChatOpen,
	}
}

func supportRules() map[Kind]map[Action]Rule {
	return map[Kind]map[Action]Rule{
		KindAccount:    selfOnlyAccount,
		KindDirectChat: directChatOpen,
	}
}

// rules is the policy table. Roles absent from the table, and actions absent
// from a role's entry, are denied.
var rules = map[models.Role]map[Kind]map[Action]Rule{
	models.RoleAdmin: {
		KindAccount: {
			ActionView: all(), ActionList: all(), ActionCreate: all(),
			ActionUpdate: all(), ActionDelete: all(), ActionSetPassword: all(),
		},
		KindProject: {
			ActionView: all(), ActionList: all(), ActionCreate: all(),
			ActionUpdate: all(), ActionDelete: all(), ActionApprove: all(),
			ActionReject: all(), ActionSubmitQuotation: all(), ActionPostUpdate: all(),
		},
		KindTask: {
			ActionView: all(), ActionList: all(), ActionCreate: all(), ActionUpdate: all(),
		},
		KindProjectChat: {ActionView: all(), ActionCreate: all()},
		KindDirectChat:  directChatOpen,
		KindMail:        {ActionSendMail: all(), ActionOnboard: all()},
	},

	models.RoleProjectManager:          managerRules(),
	models.RoleAssistantProjectManager: managerRules(),

	models.RoleDesigner:       designerRules(),
	models.RoleSeniorDesigner: designerRules(),
	models.RoleAutoCADDrafter: designerRules(),

	models.RoleClient: {
		KindAccount: {
			ActionView:   scoped(ScopeSelf),
			ActionCreate: scoped(ScopeSelf),
			ActionUpdate: scoped(ScopeSelf),
		},
		KindProject: {
			ActionView:            scoped(ScopeClient),
			ActionList:            scoped(ScopeClient),
			ActionCreate:          scoped(ScopeClient),
			ActionDecideQuotation: scoped(ScopeClient),
		},
		KindTask: {
			ActionView: scoped(ScopeClient),
			ActionList: scoped(ScopeClient),
		},
		KindProjectChat: {
			ActionView:   scoped(ScopeClient),
			ActionCreate: scoped(ScopeClient),
		},
		KindDirectChat: directChatOpen,
	},

	models.RoleDigitalMarketing: {
		KindAccount: {
			ActionView:        roles(ScopeAll|ScopeSelf, models.RoleClient),
			ActionList:        roles(ScopeAll, models.RoleClient),
			ActionCreate:      roles(ScopeAll, models.RoleClient),
			ActionUpdate:      roles(ScopeAll|ScopeSelf, models.RoleClient),
			ActionSetPassword: roles(ScopeAll, models.RoleClient),
		},
		KindDirectChat: directChatOpen,
		KindMail:       {ActionSendMail: all(), ActionOnboard: all()},
	},

	models.RoleTeamHead:   supportRules(),
	models.RoleTeamLead:   supportRules(),
	models.RoleHR:         supportRules(),
	models.RoleAccountant: supportRules(),
	models.RoleMarketing:  supportRules(),
	models.RoleSales:      supportRules(),
}

// Can decides whether the actor may perform action on the resource. It is a
// pure function of its inputs. Unknown roles and unmapped actions deny.
func Can(actor Actor, action Action, res Resource) bool {
	// No actor may delete its own account, superusers included.
	if res.Kind == KindAccount && action == ActionDelete && res.AccountID == actor.ID {
		return false
	}

	if actor.Superuser {
		return true
	}

	kinds, ok := rules[actor.Role]
	if !ok {
		return false
	}
	actions, ok := kinds[res.Kind]
	if !ok {
		return false
	}
	rule, ok := actions[action]
	if !ok {
		return false
	}

	if res.Kind == KindAccount && len(rule.TargetRoles) > 0 && res.AccountID != actor.ID {
		if !containsRole(rule.TargetRoles, res.AccountRole) {
			return false
		}
	}

	return rule.Scope.matches(actor, res)
}

// AccountListRoles returns the role filter an actor's account listings must
// be restricted to. nil means unrestricted; an empty slice means the actor
// may not list accounts at all.
func AccountListRoles(actor Actor) []models.Role {
	if actor.Superuser || actor.Role == models.RoleAdmin {
		return nil
	}
	kinds, ok := rules[actor.Role]
	if !ok {
		return []models.Role{}
	}
	rule, ok := kinds[KindAccount][ActionList]
	if !ok {
		return []models.Role{}
	}
	if len(rule.TargetRoles) == 0 {
		return nil
	}
	out := make([]models.Role, len(rule.TargetRoles))
	copy(out, rule.TargetRoles)
	return out
}

// ListScope describes how a listing must be narrowed for an actor.
type ListScope int

const (
	ListScopeNone ListScope = iota
	ListScopeAll
	ListScopeManaged
	ListScopeAssigned
	ListScopeClient
)

// ProjectListScope derives the project listing scope from the policy table.
func ProjectListScope(actor Actor) ListScope {
	if actor.Superuser {
		return ListScopeAll
	}
	kinds, ok := rules[actor.Role]
	if !ok {
		return ListScopeNone
	}
	rule, ok := kinds[KindProject][ActionList]
	if !ok {
		return ListScopeNone
	}
	switch {
	case rule.Scope&ScopeAll != 0:
		return ListScopeAll
	case rule.Scope&ScopeManaged != 0:
		return ListScopeManaged
	case rule.Scope&ScopeAssigned != 0:
		return ListScopeAssigned
	case rule.Scope&ScopeClient != 0:
		return ListScopeClient
	}
	return ListScopeNone
}

func containsRole(rs []models.Role, r models.Role) bool {
	for _, candidate := range rs {
		if candidate == r {
			return true
		}
	}
	return false
}
