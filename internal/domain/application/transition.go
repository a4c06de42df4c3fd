package application

import (
	"swipehire/internal/common"
	"swipehire/internal/domain/session"
)

type Action string

const (
	ActionAdvance  Action = "advance"
	ActionReject   Action = "reject"
	ActionWithdraw Action = "withdraw"
	ActionHire     Action = "hire"
	ActionRevert   Action = "revert"
	ActionReapply  Action = "reapply"
	ActionApply    Action = "apply"
	ActionDelete   Action = "delete"
)

// Outcome is the result of a legal transition. Remove means the record is
// deleted instead of moved to Next.
type Outcome struct {
	Next   Status
	Remove bool
}

type rule struct {
	from   Status
	action Action
	role   session.Role
}

var rules = map[rule]Outcome{
	{StatusApplied, ActionAdvance, session.RoleCompany}:     {Next: StatusUnderProcess},
	{StatusApplied, ActionReject, session.RoleCompany}:      {Next: StatusRejected},
	{StatusApplied, ActionWithdraw, session.RoleDeveloper}:  {Next: StatusRejected},
	{StatusUnderProcess, ActionHire, session.RoleCompany}:   {Next: StatusHired},
	{StatusUnderProcess, ActionReject, session.RoleCompany}: {Next: StatusRejected},
	{StatusRejected, ActionRevert, session.RoleCompany}:     {Next: StatusUnderProcess},
	{StatusRejected, ActionReapply, session.RoleDeveloper}:  {Next: StatusApplied},
	{StatusOnHold, ActionReject, session.RoleDeveloper}:     {Next: StatusRejected},
	{StatusOnHold, ActionApply, session.RoleDeveloper}:      {Next: StatusApplied},
	{StatusRejected, ActionDelete, session.RoleDeveloper}:   {Remove: true},
}

var actionRoles = map[Action][]session.Role{
	ActionAdvance:  {session.RoleCompany},
	ActionHire:     {session.RoleCompany},
	ActionRevert:   {session.RoleCompany},
	ActionWithdraw: {session.RoleDeveloper},
	ActionReapply:  {session.RoleDeveloper},
	ActionApply:    {session.RoleDeveloper},
	ActionDelete:   {session.RoleDeveloper},
	ActionReject:   {session.RoleCompany, session.RoleDeveloper},
}

func ParseAction(value string) (Action, error) {
	action := Action(value)
	if _, ok := actionRoles[action]; !ok {
		return "", common.NewValidationError("invalid action", map[string]string{"action": "unknown action " + value})
	}
	return action, nil
}

// Next decides the transition for (current, action, role). It never touches
// storage. Role is checked before the table so a developer can never reach
// a company-only status.
func Next(current Status, action Action, role session.Role) (Outcome, error) {
	roles, ok := actionRoles[action]
	if !ok {
		return Outcome{}, common.NewValidationError("invalid action", map[string]string{"action": "unknown action " + string(action)})
	}
	if !containsRole(roles, role) {
		return Outcome{}, common.NewError(common.CodeInvalidTransition, string(role)+" cannot "+string(action)+" an application", nil)
	}
	if current == StatusHired {
		return Outcome{}, common.NewError(common.CodeInvalidTransition, "application is hired", nil)
	}
	outcome, ok := rules[rule{from: current, action: action, role: role}]
	if !ok {
		return Outcome{}, common.NewError(common.CodeInvalidTransition, "cannot "+string(action)+" an application in status "+string(current), nil)
	}
	return outcome, nil
}

func containsRole(roles []session.Role, role session.Role) bool {
	for _, candidate := range roles {
		if candidate == role {
			return true
		}
	}
	return false
}
