package app

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/access"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/roster"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/scoring"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

type Service struct {
	Config   *Config
	Store    store.Store
	Sessions *Sessions
	Roster   *roster.Registry
	Scores   *scoring.Service
}

func NewService(configPath string) (*Service, error) {
	config, err := LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	st, err := NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to init store: %w", err)
	}

	sessions, err := NewSessions(config)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("failed to init sessions: %w", err)
	}

	return &Service{
		Config:   config,
		Store:    st,
		Sessions: sessions,
		Roster:   roster.NewRegistry(st, config.Roster.DefaultPassword),
		Scores: scoring.NewService(st, scoring.Config{
			DefaultMaxScore:     config.Scoring.DefaultMaxScore,
			AwardThreshold:      config.Scoring.AwardThreshold,
			OfficialLabelMarker: config.Scoring.OfficialLabelMarker,
			TopRankingSize:      config.Scoring.TopRankingSize,
		}),
	}, nil
}

func (s *Service) Close() error {
	var errs []error

	if err := s.Store.Close(); err != nil {
		errs = append(errs, fmt.Errorf("store: %w", err))
	}
	if err := s.Sessions.Close(); err != nil {
		errs = append(errs, fmt.Errorf("sessions: %w", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("errors while closing: %v", errs)
	}
	return nil
}

// Login verifies credentials against the account store and mints a session
// token carrying the actor triple.
func (s *Service) Login(ctx context.Context, handle, password string) (string, *models.Account, error) {
	account, err := s.Store.GetAccountByHandle(handle)
	if err != nil {
		return "", nil, err
	}
	if account == nil {
		return "", nil, apperrors.Permission("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)); err != nil {
		return "", nil, apperrors.Permission("invalid credentials")
	}

	token, err := s.Sessions.Create(ctx, *account)
	if err != nil {
		return "", nil, err
	}
	return token, account, nil
}

// Teacher profiles

// AddTeacherProfile registers a subject teacher and provisions the linked
// teacher account (handle = email, default password), admin only.
func (s *Service) AddTeacherProfile(actor models.Actor, profile models.TeacherProfile) (*models.TeacherProfile, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Permission("only admins may manage teacher profiles")
	}
	if err := profile.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid teacher profile")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.Config.Roster.DefaultPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash default password: %w", err)
	}
	account := &models.Account{
		DisplayName:  profile.FullName,
		Handle:       profile.Email,
		PasswordHash: string(hash),
		Role:         models.RoleTeacher,
		Subject:      profile.Subject,
		CreatedAt:    time.Now().Unix(),
	}
	if err := s.Store.CreateAccount(account); err != nil {
		return nil, err
	}
	profile.AccountID = account.ID

	if err := s.Store.CreateTeacherProfile(&profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

// RemoveTeacherProfile deletes the profile and its login account.
func (s *Service) RemoveTeacherProfile(actor models.Actor, profileID int64) error {
	if actor.Role != models.RoleAdmin {
		return apperrors.Permission("only admins may manage teacher profiles")
	}
	profile, err := s.Store.GetTeacherProfile(profileID)
	if err != nil {
		return err
	}
	if profile == nil {
		return apperrors.NotFound("teacher profile %d not found", profileID)
	}
	if err := s.Store.DeleteTeacherProfile(profileID); err != nil {
		return err
	}
	if profile.AccountID != 0 {
		if err := s.Store.DeleteAccount(profile.AccountID); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) ListTeacherProfiles() ([]models.TeacherProfile, error) {
	return s.Store.ListTeacherProfiles()
}

// Evaluations

func (s *Service) AddEvaluation(actor models.Actor, memberID int64, content string) (*models.Evaluation, error) {
	member, err := s.Store.GetMemberDetail(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NotFound("member %d not found", memberID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, member.Subject) {
		return nil, apperrors.Permission("not allowed to evaluate members of %s teams", member.Subject)
	}

	eval := &models.Evaluation{
		MemberID:  memberID,
		Content:   content,
		CreatedBy: actor.AccountID,
		CreatedAt: time.Now().Unix(),
	}
	if err := eval.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid evaluation")
	}
	if err := s.Store.CreateEvaluation(eval); err != nil {
		return nil, err
	}
	return eval, nil
}

func (s *Service) ListEvaluations(actor models.Actor, memberID int64) ([]models.Evaluation, error) {
	member, err := s.Store.GetMemberDetail(memberID)
	if err != nil {
		return nil, err
	}
	if member == nil {
		return nil, apperrors.NotFound("member %d not found", memberID)
	}

	switch actor.Role {
	case models.RoleAdmin:
	case models.RoleTeacher:
		if actor.Subject == "" || actor.Subject != member.Subject {
			return nil, apperrors.Permission("not allowed to read evaluations of %s teams", member.Subject)
		}
	case models.RoleStudent:
		if member.AccountID != actor.AccountID {
			return nil, apperrors.Permission("students may only read their own evaluations")
		}
	default:
		return nil, apperrors.Permission("unknown role %q", actor.Role)
	}

	return s.Store.ListMemberEvaluations(memberID)
}

func (s *Service) RemoveEvaluation(actor models.Actor, evalID int64) error {
	eval, err := s.Store.GetEvaluation(evalID)
	if err != nil {
		return err
	}
	if eval == nil {
		return apperrors.NotFound("evaluation %d not found", evalID)
	}
	member, err := s.Store.GetMemberDetail(eval.MemberID)
	if err != nil {
		return err
	}
	if member == nil {
		return apperrors.NotFound("member %d not found", eval.MemberID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, member.Subject) {
		return apperrors.Permission("not allowed to evaluate members of %s teams", member.Subject)
	}
	return s.Store.DeleteEvaluation(evalID)
}

// Schedules

func (s *Service) AddSchedule(actor models.Actor, schedule models.Schedule) (*models.Schedule, error) {
	team, err := s.Store.GetTeam(schedule.TeamID)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, apperrors.NotFound("team %d not found", schedule.TeamID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, team.Subject) {
		return nil, apperrors.Permission("not allowed to schedule %s teams", team.Subject)
	}

	schedule.CreatedBy = actor.AccountID
	if err := schedule.Validate(); err != nil {
		return nil, apperrors.Wrap(apperrors.KindValidation, err, "invalid schedule")
	}
	if err := s.Store.CreateSchedule(&schedule); err != nil {
		return nil, err
	}
	return &schedule, nil
}

func (s *Service) ListSchedules() ([]models.Schedule, error) {
	return s.Store.ListSchedules()
}

func (s *Service) RemoveSchedule(actor models.Actor, scheduleID int64) error {
	schedule, err := s.Store.GetSchedule(scheduleID)
	if err != nil {
		return err
	}
	if schedule == nil {
		return apperrors.NotFound("schedule %d not found", scheduleID)
	}
	team, err := s.Store.GetTeam(schedule.TeamID)
	if err != nil {
		return err
	}
	if team == nil {
		return apperrors.NotFound("team %d not found", schedule.TeamID)
	}
	if !access.CanMutate(actor.Role, actor.Subject, team.Subject) {
		return apperrors.Permission("not allowed to schedule %s teams", team.Subject)
	}
	return s.Store.DeleteSchedule(scheduleID)
}

// Student accounts (admin view)

func (s *Service) ListStudents(actor models.Actor) ([]models.Account, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Permission("only admins may list student accounts")
	}
	return s.Store.ListAccountsByRole(models.RoleStudent)
}

// ListAvailableStudents returns student accounts not yet on any team.
func (s *Service) ListAvailableStudents(actor models.Actor) ([]models.Account, error) {
	if actor.Role != models.RoleAdmin {
		return nil, apperrors.Permission("only admins may list student accounts")
	}
	return s.Store.ListUnassignedStudentAccounts()
}

// RemoveStudent deletes a student account; its roster rows and their
// scores and evaluations cascade with it.
func (s *Service) RemoveStudent(actor models.Actor, accountID int64) error {
	if actor.Role != models.RoleAdmin {
		return apperrors.Permission("only admins may delete student accounts")
	}
	account, err := s.Store.GetAccountByID(accountID)
	if err != nil {
		return err
	}
	if account == nil || account.Role != models.RoleStudent {
		return apperrors.NotFound("student account %d not found", accountID)
	}
	return s.Store.DeleteAccount(accountID)
}

// Dashboard

type DashboardStats struct {
	TotalTeams        int64  `json:"total_teams"`
	TotalStudents     int64  `json:"total_students"`
	SchedulesThisWeek int64  `json:"schedules_this_week"`
	DaysUntilExam     int    `json:"days_until_exam,omitempty"`
	NationalExamDate  string `json:"national_exam_date,omitempty"`
}

// Dashboard summarizes the system for the landing page: cohort counts,
// this ISO week's practice sessions, and the countdown to the configured
// national exam date.
func (s *Service) Dashboard() (*DashboardStats, error) {
	stats := &DashboardStats{}

	var err error
	if stats.TotalTeams, err = s.Store.CountTeams(); err != nil {
		return nil, err
	}
	if stats.TotalStudents, err = s.Store.CountStudentAccounts(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	weekday := int(now.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(weekday - 1))
	sunday := monday.AddDate(0, 0, 7).Add(-time.Second)
	if stats.SchedulesThisWeek, err = s.Store.CountSchedulesBetween(monday.Unix(), sunday.Unix()); err != nil {
		return nil, err
	}

	if s.Config.Dashboard.NationalExamDate != "" {
		examDate, err := time.Parse("2006-01-02", s.Config.Dashboard.NationalExamDate)
		if err != nil {
			return nil, fmt.Errorf("invalid national exam date in config: %w", err)
		}
		stats.NationalExamDate = s.Config.Dashboard.NationalExamDate
		stats.DaysUntilExam = int(examDate.Sub(now).Hours() / 24)
	}

	return stats, nil
}
