package store

import (
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

// Store is the persistence surface of the roster and scoring core. Lookups
// return (nil, nil) when the row is absent; callers decide whether absence
// is an error. Uniqueness violations come back as apperrors.Duplicate, the
// authoritative conflict signal for concurrent writers.
type Store interface {
	Close() error
	ApplyMigrations(dir string) error

	// Accounts
	CreateAccount(a *models.Account) error
	GetAccountByID(id int64) (*models.Account, error)
	GetAccountByHandle(handle string) (*models.Account, error)
	UpdateAccount(a *models.Account) error
	DeleteAccount(id int64) error
	ListAccountsByRole(role models.Role) ([]models.Account, error)
	ListUnassignedStudentAccounts() ([]models.Account, error)

	// Teams
	CreateTeam(t *models.Team) error
	GetTeam(id int64) (*models.Team, error)
	ListTeams() ([]models.Team, error)
	ListTeamsForAccount(accountID int64) ([]models.Team, error)
	DeleteTeam(id int64) error

	// Members
	CreateMember(m *models.Member) error
	GetMember(id int64) (*models.Member, error)
	GetMemberDetail(id int64) (*models.MemberDetail, error)
	GetMemberByTeamAndAccount(teamID, accountID int64) (*models.Member, error)
	ListMembers() ([]models.Member, error)
	ListTeamMembers(teamID int64) ([]models.Member, error)
	UpdateMember(m *models.Member) error
	DeleteMember(id int64) error

	// Scores
	CreateScore(s *models.Score) error
	GetScoreDetail(id int64) (*models.ScoreDetail, error)
	ListScores(f ScoreFilter) ([]models.ScoreDetail, error)
	UpdateScore(s *models.Score) error
	DeleteScore(id int64) error

	// Teacher profiles
	CreateTeacherProfile(p *models.TeacherProfile) error
	GetTeacherProfile(id int64) (*models.TeacherProfile, error)
	ListTeacherProfiles() ([]models.TeacherProfile, error)
	DeleteTeacherProfile(id int64) error

	// Evaluations
	CreateEvaluation(e *models.Evaluation) error
	GetEvaluation(id int64) (*models.Evaluation, error)
	ListMemberEvaluations(memberID int64) ([]models.Evaluation, error)
	DeleteEvaluation(id int64) error

	// Schedules
	CreateSchedule(s *models.Schedule) error
	GetSchedule(id int64) (*models.Schedule, error)
	ListSchedules() ([]models.Schedule, error)
	DeleteSchedule(id int64) error
	CountSchedulesBetween(from, to int64) (int64, error)

	// Dashboard counters
	CountTeams() (int64, error)
	CountStudentAccounts() (int64, error)
}
