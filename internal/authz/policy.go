// Package authz holds the single authorization policy for the API. Handlers
// and services ask it whether an actor may perform an action on a resource
// instead of repeating inline role checks.
package authz

import "github.com/oweru/content-api/internal/models"

type Action string

const (
	ActionEditPost     Action = "post:edit"
	ActionDeletePost   Action = "post:delete"
	ActionModeratePost Action = "post:moderate"
	ActionViewContacts Action = "contact:view"
	ActionDeleteMedia  Action = "media:delete"
)

// Actor is the authenticated caller as seen by the policy.
type Actor struct {
	ID   int64
	Role string
}

// rule lists the roles that may always perform an action and whether resource
// ownership also grants it.
type rule struct {
	roles      []string
	ownerAlone bool
}

var policy = map[Action]rule{
	ActionEditPost:     {roles: []string{models.RoleAdmin}, ownerAlone: true},
	ActionDeletePost:   {roles: []string{models.RoleAdmin}, ownerAlone: true},
	ActionDeleteMedia:  {roles: []string{models.RoleAdmin}, ownerAlone: true},
	ActionModeratePost: {roles: []string{models.RoleAdmin, models.RoleModerator}},
	ActionViewContacts: {roles: []string{models.RoleAdmin, models.RoleModerator}},
}

// Can reports whether actor may perform action on a resource owned by
// ownerID. Pass ownerID 0 for actions that have no owned resource.
func Can(actor Actor, action Action, ownerID int64) bool {
	r, ok := policy[action]
	if !ok {
		return false
	}
	for _, role := range r.roles {
		if actor.Role == role {
			return true
		}
	}
	if r.ownerAlone && ownerID != 0 && actor.ID == ownerID {
		return true
	}
	return false
}

// IsModerator reports whether the role carries moderator capability.
func IsModerator(role string) bool {
	return role == models.RoleModerator || role == models.RoleAdmin
}
