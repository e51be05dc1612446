// Package roster implements the team and member registry, including the
// account provisioning that happens as a side effect of adding a member.
package roster

import (
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/access"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

type Registry struct {
	store           store.Store
	defaultPassword string
	now             func() time.Time
}

func NewRegistry(s store.Store, defaultPassword string) *Registry {
	return &Registry{
		store:           s,
		defaultPassword: defaultPassword,
		now:             time.Now,
	}
}

type TeamInput struct {
	Name       string `json:"name"`
	Subject    string `json:"subject"`
	GradeLevel string `json:"grade_level"`
}

type MemberInput struct {
	DisplayName string `json:"display_name"`
	RosterID    string `json:"roster_id"`
	Contact     string `json:"contact"`
}

// ListTeams returns the teams the actor may see, rosters attached. Admins
// and teachers see every team (teachers get write access only within their
// subject), students only the teams they belong to.
func (r *Registry) ListTeams(actor models.Actor) ([]models.TeamDetail, error) {
	var teams []models.Team
	var err error

	switch actor.Role {
	case models.RoleAdmin, models.RoleTeacher:
		teams, err = r.store.ListTeams()
	case models.RoleStudent:
		teams, err = r.store.ListTeamsForAccount(actor.AccountID)
	default:
		return nil, apperrors.Permission("unknown role %q", actor.Role)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}

	members, err := r.store.ListMembers()
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	byTeam := make(map[int64][]models.Member)
	for _, m := range members {
		byTeam[m.TeamID] = append(byTeam[m.TeamID], m)
	}

	details := make([]models.TeamDetail, 0, len(teams))
	for _, t := range teams {
		roster := byTeam[t.ID]
		if roster == nil {
			roster = []models.Member{}
		}
		details = append(details, models.TeamDetail{Team: t, Members: roster})
	}
	return details, nil
}

// CreateTeam creates a subject-scoped cohort. Admins choose the subject
// freely; teachers always get their own subject, whatever the input says.
func (r *Registry) CreateTeam(actor models.Actor, input TeamInput) (*models.Team, error) {
	subject := input.Subject
	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		if actor.Subject == "" {
			return nil, apperrors.Validation("teacher account has no subject configured")
		}
		subject = actor.Subject
	default:
		return nil, apperrors.Permission("students may not create teams")
	}

	team := &models.Team{
		Name:       input.Name,
		Subject:    subject,
		GradeLevel: input.GradeLevel,
		CreatedAt:  r.now().Unix(),
	}
	if err := team.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid team")
	}

	if err := r.store.CreateTeam(team); err != nil {
		return nil, err
	}
	return team, nil
}

// DeleteTeam removes the team and cascades its members, their scores and
// evaluations, and the team's schedules.
func (r *Registry) DeleteTeam(actor models.Actor, teamID int64) error {
	team, err := r.store.GetTeam(teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return apperrors.NotFound("team %d not found", teamID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, team.Subject) {
		return apperrors.Permission("not allowed to manage %s teams", team.Subject)
	}
	return r.store.DeleteTeam(teamID)
}

// AddMember puts a person on a team's roster. The roster identifier doubles
// as the login handle: an existing account with that handle is reused, a
// missing one is provisioned with the student role and the default
// password. The DB uniqueness constraints are the authoritative duplicate
// signal, so concurrent calls cannot both succeed.
func (r *Registry) AddMember(actor models.Actor, teamID int64, input MemberInput) (*models.Member, error) {
	team, err := r.store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NotFound("team %d not found", teamID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, team.Subject) {
		return nil, apperrors.Permission("not allowed to manage %s teams", team.Subject)
	}

	member := &models.Member{
		TeamID:      teamID,
		DisplayName: input.DisplayName,
		RosterID:    input.RosterID,
		Contact:     input.Contact,
		CreatedAt:   r.now().Unix(),
	}
	if err := member.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid member")
	}

	accountID, err := r.resolveOrCreateAccount(input.RosterID, input.DisplayName)
	if err != nil {
		return nil, err
	}
	member.AccountID = accountID

	existing, err := r.store.GetMemberByTeamAndAccount(teamID, accountID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Duplicate("%q is already on this team", input.RosterID)
	}

	if err := r.store.CreateMember(member); err != nil {
		return nil, err
	}
	return member, nil
}

// resolveOrCreateAccount returns the id of the account whose handle equals
// the roster identifier, creating a student account on the fly when none
// exists. A concurrent creation losing the uniqueness race falls back to
// the row the winner inserted.
func (r *Registry) resolveOrCreateAccount(rosterID, displayName string) (int64, error) {
	account, err := r.store.GetAccountByHandle(rosterID)
	if err != nil {
		return 0, err
	}
	if account != nil {
		return account.ID, nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash default password: %w", err)
	}

	account = &models.Account{
		DisplayName:  displayName,
		Handle:       rosterID,
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		CreatedAt:    r.now().Unix(),
	}
	err = r.store.CreateAccount(account)
	if apperrors.KindOf(err) == apperrors.KindDuplicate {
		winner, getErr := r.store.GetAccountByHandle(rosterID)
		if getErr != nil {
			return 0, getErr
		}
		if winner == nil {
			return 0, err
		}
		return winner.ID, nil
	}
	if err != nil {
		return 0, err
	}
	return account.ID, nil
}

// UpdateMember edits a roster entry. A roster identifier change renames the
// linked account's handle in the same logical operation; moving to a handle
// another account already owns is a duplicate.
func (r *Registry) UpdateMember(actor models.Actor, memberID int64, input MemberInput) (*models.Member, error) {
	detail, err := r.store.GetMemberDetail(memberID)
	if err != nil {
		return nil, err
	}
	if detail == nil {
		return nil, apperrors.NotFound("member %d not found", memberID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, detail.Subject) {
		return nil, apperrors.Permission("not allowed to manage %s teams", detail.Subject)
	}

	member := detail.Member
	member.DisplayName = input.DisplayName
	member.RosterID = input.RosterID
	member.Contact = input.Contact
	if err := member.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid member")
	}

	account, err := r.store.GetAccountByID(member.AccountID)
	if err != nil {
		return nil, err
	}
	if account != nil {
		if input.RosterID != account.Handle {
			other, err := r.store.GetAccountByHandle(input.RosterID)
			if err != nil {
				return nil, err
			}
			if other != nil && other.ID != account.ID {
				return nil, apperrors.Duplicate("roster identifier %q is already in use", input.RosterID)
			}
			account.Handle = input.RosterID
		}
		account.DisplayName = input.DisplayName
		if err := r.store.UpdateAccount(account); err != nil {
			return nil, err
		}
	}

	if err := r.store.UpdateMember(&member); err != nil {
		return nil, err
	}
	return &member, nil
}

// RemoveMember drops the roster linkage and its scores and evaluations.
// The account is kept: it may belong to other teams, and its login history
// stays valid.
func (r *Registry) RemoveMember(actor models.Actor, memberID int64) error {
	detail, err := r.store.GetMemberDetail(memberID)
	if err != nil {
		return err
	}
	if detail == nil {
		return apperrors.NotFound("member %d not found", memberID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, detail.Subject) {
		return apperrors.Permission("not allowed to manage %s teams", detail.Subject)
	}
	return r.store.DeleteMember(memberID)
}

// TeamMembers lists the roster of one team.
func (r *Registry) TeamMembers(teamID int64) ([]models.Member, error) {
	team, err := r.store.GetTeam(teamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NotFound("team %d not found", teamID)
	}
	return r.store.ListTeamMembers(teamID)
}
