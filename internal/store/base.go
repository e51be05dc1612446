package store

import (
	"database/sql"
	"fmt"
	"os"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
)

// BaseStore provides the queries shared by the Postgres and SQLite
// implementations. Converter rewrites `?` placeholders into the dialect's
// own, IsDuplicate recognizes the driver's unique-violation error.
type BaseStore struct {
	DB          *sqlx.DB
	Converter   func(string) string
	IsDuplicate func(error) bool
}

func (s *BaseStore) Close() error {
	if s.DB != nil {
		return s.DB.Close()
	}
	return nil
}

// ApplyMigrations applies SQL migrations from a directory, translating
// dialect if needed.
func (s *BaseStore) ApplyMigrations(dir string, translateSQL func(string) string) error {
	files, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %w", err)
	}

	for _, file := range files {
		if !strings.HasSuffix(file.Name(), ".sql") {
			continue
		}

		content, err := os.ReadFile(fmt.Sprintf("%s/%s", dir, file.Name()))
		if err != nil {
			return fmt.Errorf("failed to read migration %s: %w", file.Name(), err)
		}

		sql := string(content)
		if translateSQL != nil {
			sql = translateSQL(sql)
		}

		if _, err := s.DB.Exec(sql); err != nil {
			return fmt.Errorf("failed to apply migration %s: %w", file.Name(), err)
		}
	}

	return nil
}

func (s *BaseStore) dup(err error) bool {
	return err != nil && s.IsDuplicate != nil && s.IsDuplicate(err)
}

// Accounts

func (s *BaseStore) CreateAccount(a *models.Account) error {
	query := s.Converter(`
		INSERT INTO accounts (display_name, handle, password_hash, role, subject, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&a.ID, query, a.DisplayName, a.Handle, a.PasswordHash, a.Role, a.Subject, a.CreatedAt)
	if s.dup(err) {
		return apperrors.Duplicate("account with handle %q already exists", a.Handle)
	}
	if err != nil {
		return fmt.Errorf("failed to create account: %w", err)
	}
	return nil
}

func (s *BaseStore) GetAccountByID(id int64) (*models.Account, error) {
	var a models.Account
	query := s.Converter(`
		SELECT id, display_name, handle, password_hash, role, subject, created_at
		FROM accounts
		WHERE id = ?
	`)
	err := s.DB.Get(&a, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &a, nil
}

func (s *BaseStore) GetAccountByHandle(handle string) (*models.Account, error) {
	var a models.Account
	query := s.Converter(`
		SELECT id, display_name, handle, password_hash, role, subject, created_at
		FROM accounts
		WHERE handle = ?
	`)
	err := s.DB.Get(&a, query, handle)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by handle: %w", err)
	}
	return &a, nil
}

func (s *BaseStore) UpdateAccount(a *models.Account) error {
	query := s.Converter(`
		UPDATE accounts
		SET display_name = ?, handle = ?, password_hash = ?, subject = ?
		WHERE id = ?
	`)
	res, err := s.DB.Exec(query, a.DisplayName, a.Handle, a.PasswordHash, a.Subject, a.ID)
	if s.dup(err) {
		return apperrors.Duplicate("account with handle %q already exists", a.Handle)
	}
	if err != nil {
		return fmt.Errorf("failed to update account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("account %d not found", a.ID)
	}
	return nil
}

// DeleteAccount removes a login identity; member rows linked to it, and
// their scores and evaluations, cascade with it.
func (s *BaseStore) DeleteAccount(id int64) error {
	query := s.Converter(`DELETE FROM accounts WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("account %d not found", id)
	}
	return nil
}

func (s *BaseStore) ListAccountsByRole(role models.Role) ([]models.Account, error) {
	var accounts []models.Account
	query := s.Converter(`
		SELECT id, display_name, handle, password_hash, role, subject, created_at
		FROM accounts
		WHERE role = ?
		ORDER BY created_at DESC, id DESC
	`)
	if err := s.DB.Select(&accounts, query, role); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (s *BaseStore) ListUnassignedStudentAccounts() ([]models.Account, error) {
	var accounts []models.Account
	query := s.Converter(`
		SELECT id, display_name, handle, password_hash, role, subject, created_at
		FROM accounts
		WHERE role = ?
		AND id NOT IN (SELECT account_id FROM members)
		ORDER BY display_name ASC
	`)
	if err := s.DB.Select(&accounts, query, models.RoleStudent); err != nil {
		return nil, fmt.Errorf("failed to list unassigned accounts: %w", err)
	}
	return accounts, nil
}

// Teams

func (s *BaseStore) CreateTeam(t *models.Team) error {
	query := s.Converter(`
		INSERT INTO teams (name, subject, grade_level, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := s.DB.Get(&t.ID, query, t.Name, t.Subject, t.GradeLevel, t.CreatedAt); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	return nil
}

func (s *BaseStore) GetTeam(id int64) (*models.Team, error) {
	var t models.Team
	query := s.Converter(`
		SELECT id, name, subject, grade_level, created_at
		FROM teams
		WHERE id = ?
	`)
	err := s.DB.Get(&t, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	return &t, nil
}

func (s *BaseStore) ListTeams() ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.Select(&teams, `
		SELECT id, name, subject, grade_level, created_at
		FROM teams
		ORDER BY subject, name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teams: %w", err)
	}
	return teams, nil
}

func (s *BaseStore) ListTeamsForAccount(accountID int64) ([]models.Team, error) {
	var teams []models.Team
	query := s.Converter(`
		SELECT t.id, t.name, t.subject, t.grade_level, t.created_at
		FROM teams t
		JOIN members m ON m.team_id = t.id
		WHERE m.account_id = ?
		ORDER BY t.subject, t.name
	`)
	if err := s.DB.Select(&teams, query, accountID); err != nil {
		return nil, fmt.Errorf("failed to list teams for account: %w", err)
	}
	return teams, nil
}

// DeleteTeam removes the team row; members, their scores and evaluations,
// and the team's schedules go with it through the ON DELETE CASCADE
// constraints, so the whole cascade is one atomic statement.
func (s *BaseStore) DeleteTeam(id int64) error {
	query := s.Converter(`DELETE FROM teams WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete team: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("team %d not found", id)
	}
	return nil
}

// Members

func (s *BaseStore) CreateMember(m *models.Member) error {
	query := s.Converter(`
		INSERT INTO members (team_id, account_id, display_name, roster_id, contact, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&m.ID, query, m.TeamID, m.AccountID, m.DisplayName, m.RosterID, m.Contact, m.CreatedAt)
	if s.dup(err) {
		return apperrors.Duplicate("member %q is already on this team", m.RosterID)
	}
	if err != nil {
		return fmt.Errorf("failed to create member: %w", err)
	}
	return nil
}

func (s *BaseStore) GetMember(id int64) (*models.Member, error) {
	var m models.Member
	query := s.Converter(`
		SELECT id, team_id, account_id, display_name, roster_id, contact, created_at
		FROM members
		WHERE id = ?
	`)
	err := s.DB.Get(&m, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member: %w", err)
	}
	return &m, nil
}

func (s *BaseStore) GetMemberDetail(id int64) (*models.MemberDetail, error) {
	var m models.MemberDetail
	query := s.Converter(`
		SELECT
			m.id, m.team_id, m.account_id, m.display_name, m.roster_id, m.contact, m.created_at,
			t.name AS team_name,
			t.subject
		FROM members m
		JOIN teams t ON t.id = m.team_id
		WHERE m.id = ?
	`)
	err := s.DB.Get(&m, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member detail: %w", err)
	}
	return &m, nil
}

func (s *BaseStore) GetMemberByTeamAndAccount(teamID, accountID int64) (*models.Member, error) {
	var m models.Member
	query := s.Converter(`
		SELECT id, team_id, account_id, display_name, roster_id, contact, created_at
		FROM members
		WHERE team_id = ?
		AND account_id = ?
	`)
	err := s.DB.Get(&m, query, teamID, accountID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get member by team and account: %w", err)
	}
	return &m, nil
}

func (s *BaseStore) ListMembers() ([]models.Member, error) {
	var members []models.Member
	err := s.DB.Select(&members, `
		SELECT id, team_id, account_id, display_name, roster_id, contact, created_at
		FROM members
		ORDER BY team_id, display_name
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list members: %w", err)
	}
	return members, nil
}

func (s *BaseStore) ListTeamMembers(teamID int64) ([]models.Member, error) {
	var members []models.Member
	query := s.Converter(`
		SELECT id, team_id, account_id, display_name, roster_id, contact, created_at
		FROM members
		WHERE team_id = ?
		ORDER BY display_name
	`)
	if err := s.DB.Select(&members, query, teamID); err != nil {
		return nil, fmt.Errorf("failed to list team members: %w", err)
	}
	return members, nil
}

func (s *BaseStore) UpdateMember(m *models.Member) error {
	query := s.Converter(`
		UPDATE members
		SET display_name = ?, roster_id = ?, contact = ?
		WHERE id = ?
	`)
	res, err := s.DB.Exec(query, m.DisplayName, m.RosterID, m.Contact, m.ID)
	if s.dup(err) {
		return apperrors.Duplicate("roster identifier %q is already in use", m.RosterID)
	}
	if err != nil {
		return fmt.Errorf("failed to update member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("member %d not found", m.ID)
	}
	return nil
}

// DeleteMember removes the roster row and, through the cascade constraints,
// its scores and evaluations. The underlying account stays.
func (s *BaseStore) DeleteMember(id int64) error {
	query := s.Converter(`DELETE FROM members WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete member: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("member %d not found", id)
	}
	return nil
}

// Scores

func (s *BaseStore) CreateScore(sc *models.Score) error {
	query := s.Converter(`
		INSERT INTO scores (member_id, label, raw_score, max_score, exam_date, notes, recorded_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&sc.ID, query, sc.MemberID, sc.Label, sc.RawScore, sc.MaxScore, sc.ExamDate, sc.Notes, sc.RecordedBy, sc.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create score: %w", err)
	}
	return nil
}

func (s *BaseStore) GetScoreDetail(id int64) (*models.ScoreDetail, error) {
	var sc models.ScoreDetail
	query := s.Converter(`
		SELECT
			sc.id, sc.member_id, sc.label, sc.raw_score, sc.max_score,
			sc.exam_date, sc.notes, sc.recorded_by, sc.created_at,
			m.display_name AS member_name,
			m.account_id AS member_account_id,
			t.id AS team_id,
			t.name AS team_name,
			t.subject
		FROM scores sc
		JOIN members m ON m.id = sc.member_id
		JOIN teams t ON t.id = m.team_id
		WHERE sc.id = ?
	`)
	err := s.DB.Get(&sc, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get score: %w", err)
	}
	return &sc, nil
}

func (s *BaseStore) ListScores(f ScoreFilter) ([]models.ScoreDetail, error) {
	query := `
		SELECT
			sc.id, sc.member_id, sc.label, sc.raw_score, sc.max_score,
			sc.exam_date, sc.notes, sc.recorded_by, sc.created_at,
			m.display_name AS member_name,
			m.account_id AS member_account_id,
			t.id AS team_id,
			t.name AS team_name,
			t.subject
		FROM scores sc
		JOIN members m ON m.id = sc.member_id
		JOIN teams t ON t.id = m.team_id
		WHERE 1=1
	`
	var args []interface{}
	if f.Subject != "" {
		query += " AND t.subject = ?"
		args = append(args, f.Subject)
	}
	if f.AccountID != 0 {
		query += " AND m.account_id = ?"
		args = append(args, f.AccountID)
	}
	if f.MemberID != 0 {
		query += " AND sc.member_id = ?"
		args = append(args, f.MemberID)
	}
	query += " ORDER BY sc.created_at DESC, sc.id DESC"

	var scores []models.ScoreDetail
	if err := s.DB.Select(&scores, s.Converter(query), args...); err != nil {
		return nil, fmt.Errorf("failed to list scores: %w", err)
	}
	return scores, nil
}

func (s *BaseStore) UpdateScore(sc *models.Score) error {
	query := s.Converter(`
		UPDATE scores
		SET label = ?, raw_score = ?, max_score = ?, exam_date = ?, notes = ?
		WHERE id = ?
	`)
	res, err := s.DB.Exec(query, sc.Label, sc.RawScore, sc.MaxScore, sc.ExamDate, sc.Notes, sc.ID)
	if err != nil {
		return fmt.Errorf("failed to update score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("score %d not found", sc.ID)
	}
	return nil
}

func (s *BaseStore) DeleteScore(id int64) error {
	query := s.Converter(`DELETE FROM scores WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete score: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("score %d not found", id)
	}
	return nil
}

// Teacher profiles

func (s *BaseStore) CreateTeacherProfile(p *models.TeacherProfile) error {
	query := s.Converter(`
		INSERT INTO teacher_profiles (full_name, subject, email, phone, account_id)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&p.ID, query, p.FullName, p.Subject, p.Email, p.Phone, p.AccountID)
	if s.dup(err) {
		return apperrors.Duplicate("teacher with email %q already exists", p.Email)
	}
	if err != nil {
		return fmt.Errorf("failed to create teacher profile: %w", err)
	}
	return nil
}

func (s *BaseStore) GetTeacherProfile(id int64) (*models.TeacherProfile, error) {
	var p models.TeacherProfile
	query := s.Converter(`
		SELECT id, full_name, subject, email, phone, account_id
		FROM teacher_profiles
		WHERE id = ?
	`)
	err := s.DB.Get(&p, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get teacher profile: %w", err)
	}
	return &p, nil
}

func (s *BaseStore) ListTeacherProfiles() ([]models.TeacherProfile, error) {
	var profiles []models.TeacherProfile
	err := s.DB.Select(&profiles, `
		SELECT id, full_name, subject, email, phone, account_id
		FROM teacher_profiles
		ORDER BY full_name ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list teacher profiles: %w", err)
	}
	return profiles, nil
}

func (s *BaseStore) DeleteTeacherProfile(id int64) error {
	query := s.Converter(`DELETE FROM teacher_profiles WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete teacher profile: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("teacher profile %d not found", id)
	}
	return nil
}

// Evaluations

func (s *BaseStore) CreateEvaluation(e *models.Evaluation) error {
	query := s.Converter(`
		INSERT INTO evaluations (member_id, content, created_by, created_at)
		VALUES (?, ?, ?, ?)
		RETURNING id
	`)
	if err := s.DB.Get(&e.ID, query, e.MemberID, e.Content, e.CreatedBy, e.CreatedAt); err != nil {
		return fmt.Errorf("failed to create evaluation: %w", err)
	}
	return nil
}

func (s *BaseStore) GetEvaluation(id int64) (*models.Evaluation, error) {
	var e models.Evaluation
	query := s.Converter(`
		SELECT id, member_id, content, created_by, created_at
		FROM evaluations
		WHERE id = ?
	`)
	err := s.DB.Get(&e, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation: %w", err)
	}
	return &e, nil
}

func (s *BaseStore) ListMemberEvaluations(memberID int64) ([]models.Evaluation, error) {
	var evals []models.Evaluation
	query := s.Converter(`
		SELECT id, member_id, content, created_by, created_at
		FROM evaluations
		WHERE member_id = ?
		ORDER BY created_at DESC, id DESC
	`)
	if err := s.DB.Select(&evals, query, memberID); err != nil {
		return nil, fmt.Errorf("failed to list evaluations: %w", err)
	}
	return evals, nil
}

func (s *BaseStore) DeleteEvaluation(id int64) error {
	query := s.Converter(`DELETE FROM evaluations WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete evaluation: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("evaluation %d not found", id)
	}
	return nil
}

// Schedules

func (s *BaseStore) CreateSchedule(sch *models.Schedule) error {
	query := s.Converter(`
		INSERT INTO schedules (team_id, date, starts, ends, location, notes, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.DB.Get(&sch.ID, query, sch.TeamID, sch.Date, sch.Starts, sch.Ends, sch.Location, sch.Notes, sch.CreatedBy)
	if err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

func (s *BaseStore) GetSchedule(id int64) (*models.Schedule, error) {
	var sch models.Schedule
	query := s.Converter(`
		SELECT id, team_id, date, starts, ends, location, notes, created_by
		FROM schedules
		WHERE id = ?
	`)
	err := s.DB.Get(&sch, query, id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &sch, nil
}

func (s *BaseStore) ListSchedules() ([]models.Schedule, error) {
	var schedules []models.Schedule
	err := s.DB.Select(&schedules, `
		SELECT id, team_id, date, starts, ends, location, notes, created_by
		FROM schedules
		ORDER BY date ASC, starts ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return schedules, nil
}

func (s *BaseStore) DeleteSchedule(id int64) error {
	query := s.Converter(`DELETE FROM schedules WHERE id = ?`)
	res, err := s.DB.Exec(query, id)
	if err != nil {
		return fmt.Errorf("failed to delete schedule: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return apperrors.NotFound("schedule %d not found", id)
	}
	return nil
}

func (s *BaseStore) CountSchedulesBetween(from, to int64) (int64, error) {
	var count int64
	query := s.Converter(`
		SELECT COUNT(*) FROM schedules
		WHERE date >= ? AND date <= ?
	`)
	if err := s.DB.Get(&count, query, from, to); err != nil {
		return 0, fmt.Errorf("failed to count schedules: %w", err)
	}
	return count, nil
}

// Dashboard counters

func (s *BaseStore) CountTeams() (int64, error) {
	var count int64
	if err := s.DB.Get(&count, `SELECT COUNT(*) FROM teams`); err != nil {
		return 0, fmt.Errorf("failed to count teams: %w", err)
	}
	return count, nil
}

func (s *BaseStore) CountStudentAccounts() (int64, error) {
	var count int64
	query := s.Converter(`SELECT COUNT(*) FROM accounts WHERE role = ?`)
	if err := s.DB.Get(&count, query, models.RoleStudent); err != nil {
		return 0, fmt.Errorf("failed to count student accounts: %w", err)
	}
	return count, nil
}
