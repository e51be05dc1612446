package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/roster"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/scoring"
)

func setupTestService(t *testing.T) (*Service, func()) {
	config := &Config{}
	config.Server.Port = ":0"
	config.Server.EnableAuth = false
	config.Roster.DefaultPassword = "123456"
	config.Scoring.DefaultMaxScore = 10
	config.Scoring.AwardThreshold = 8.0
	config.Scoring.OfficialLabelMarker = "HSG"
	config.Scoring.TopRankingSize = 10

	st, err := NewStore(":memory:", "../../migrations")
	require.NoError(t, err, "Failed to create store")

	sessions, err := NewSessions(config)
	require.NoError(t, err)

	service := &Service{
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
	}
	cleanup := func() { service.Close() }
	return service, cleanup
}

func TestLogin(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.DefaultCost)
	require.NoError(t, err)
	account := &models.Account{
		DisplayName:  "Nguyen Van An",
		Handle:       "HS001",
		PasswordHash: string(hash),
		Role:         models.RoleStudent,
		CreatedAt:    time.Now().Unix(),
	}
	require.NoError(t, service.Store.CreateAccount(account))

	ctx := context.Background()

	t.Run("valid credentials", func(t *testing.T) {
		_, got, err := service.Login(ctx, "HS001", "secret")
		require.NoError(t, err)
		assert.Equal(t, account.ID, got.ID)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, _, err := service.Login(ctx, "HS001", "wrong")
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("unknown handle gets the same error", func(t *testing.T) {
		_, _, err := service.Login(ctx, "nobody", "secret")
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})
}

func TestTeacherProfileProvisioning(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	admin := models.Actor{AccountID: 1, Role: models.RoleAdmin}

	profile, err := service.AddTeacherProfile(admin, models.TeacherProfile{
		FullName: "Le Thi Mai",
		Subject:  "math",
		Email:    "mai@school.edu.vn",
	})
	require.NoError(t, err)
	require.NotZero(t, profile.AccountID)

	t.Run("account provisioned with email handle", func(t *testing.T) {
		account, err := service.Store.GetAccountByHandle("mai@school.edu.vn")
		require.NoError(t, err)
		require.NotNil(t, account)
		assert.Equal(t, profile.AccountID, account.ID)
		assert.Equal(t, models.RoleTeacher, account.Role)
		assert.Equal(t, "math", account.Subject)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte("123456")))
	})

	t.Run("teachers may not manage profiles", func(t *testing.T) {
		teacher := models.Actor{AccountID: profile.AccountID, Role: models.RoleTeacher, Subject: "math"}
		_, err := service.AddTeacherProfile(teacher, models.TeacherProfile{
			FullName: "Another Teacher",
			Subject:  "physics",
			Email:    "other@school.edu.vn",
		})
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("removal drops the login account too", func(t *testing.T) {
		require.NoError(t, service.RemoveTeacherProfile(admin, profile.ID))

		account, err := service.Store.GetAccountByID(profile.AccountID)
		require.NoError(t, err)
		assert.Nil(t, account)
	})
}

func TestEvaluationPermissions(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	admin := models.Actor{AccountID: 1, Role: models.RoleAdmin}
	teacher := models.Actor{AccountID: 2, Role: models.RoleTeacher, Subject: "math"}

	team, err := service.Roster.CreateTeam(teacher, roster.TeamInput{Name: "Math Olympiad"})
	require.NoError(t, err)
	member, err := service.Roster.AddMember(teacher, team.ID, roster.MemberInput{
		DisplayName: "Nguyen Van An",
		RosterID:    "HS001",
	})
	require.NoError(t, err)

	eval, err := service.AddEvaluation(teacher, member.ID, "strong algebra, weak geometry")
	require.NoError(t, err)

	t.Run("owning student reads own evaluations", func(t *testing.T) {
		student := models.Actor{AccountID: member.AccountID, Role: models.RoleStudent}
		evals, err := service.ListEvaluations(student, member.ID)
		require.NoError(t, err)
		assert.Len(t, evals, 1)
	})

	t.Run("other student denied", func(t *testing.T) {
		stranger := models.Actor{AccountID: member.AccountID + 100, Role: models.RoleStudent}
		_, err := service.ListEvaluations(stranger, member.ID)
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("other subject teacher denied", func(t *testing.T) {
		physics := models.Actor{AccountID: 3, Role: models.RoleTeacher, Subject: "physics"}
		_, err := service.ListEvaluations(physics, member.ID)
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))

		_, err = service.AddEvaluation(physics, member.ID, "should not land")
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("students cannot write evaluations", func(t *testing.T) {
		student := models.Actor{AccountID: member.AccountID, Role: models.RoleStudent}
		_, err := service.AddEvaluation(student, member.ID, "self praise")
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("admin removes any evaluation", func(t *testing.T) {
		require.NoError(t, service.RemoveEvaluation(admin, eval.ID))
	})
}

func TestStudentAdministration(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	admin := models.Actor{AccountID: 1, Role: models.RoleAdmin}
	teacher := models.Actor{AccountID: 2, Role: models.RoleTeacher, Subject: "math"}

	team, err := service.Roster.CreateTeam(teacher, roster.TeamInput{Name: "Math Olympiad"})
	require.NoError(t, err)
	member, err := service.Roster.AddMember(teacher, team.ID, roster.MemberInput{
		DisplayName: "Nguyen Van An",
		RosterID:    "HS001",
	})
	require.NoError(t, err)

	t.Run("listing is admin only", func(t *testing.T) {
		_, err := service.ListStudents(teacher)
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))

		students, err := service.ListStudents(admin)
		require.NoError(t, err)
		assert.Len(t, students, 1)
	})

	t.Run("available students excludes rostered ones", func(t *testing.T) {
		students, err := service.ListAvailableStudents(admin)
		require.NoError(t, err)
		assert.Empty(t, students)
	})

	t.Run("removing a student cascades the roster rows", func(t *testing.T) {
		require.NoError(t, service.RemoveStudent(admin, member.AccountID))

		gone, err := service.Store.GetMember(member.ID)
		require.NoError(t, err)
		assert.Nil(t, gone)
	})

	t.Run("teacher accounts are not deletable this way", func(t *testing.T) {
		err := service.RemoveStudent(admin, 9999)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestScheduleLifecycle(t *testing.T) {
	service, cleanup := setupTestService(t)
	defer cleanup()

	teacher := models.Actor{AccountID: 2, Role: models.RoleTeacher, Subject: "math"}
	team, err := service.Roster.CreateTeam(teacher, roster.TeamInput{Name: "Math Olympiad"})
	require.NoError(t, err)

	sched, err := service.AddSchedule(teacher, models.Schedule{
		TeamID:   team.ID,
		Date:     time.Now().Unix(),
		Starts:   "14:00",
		Ends:     "16:30",
		Location: "Room 204",
	})
	require.NoError(t, err)
	assert.Equal(t, teacher.AccountID, sched.CreatedBy)

	t.Run("other subject teacher cannot schedule", func(t *testing.T) {
		physics := models.Actor{AccountID: 3, Role: models.RoleTeacher, Subject: "physics"}
		_, err := service.AddSchedule(physics, models.Schedule{
			TeamID: team.ID,
			Date:   time.Now().Unix(),
			Starts: "09:00",
			Ends:   "11:00",
		})
		assert.Equal(t, apperrors.KindPermission, apperrors.KindOf(err))
	})

	t.Run("dashboard counts this week's sessions", func(t *testing.T) {
		stats, err := service.Dashboard()
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalTeams)
		assert.Equal(t, int64(1), stats.SchedulesThisWeek)
	})

	t.Run("remove", func(t *testing.T) {
		require.NoError(t, service.RemoveSchedule(teacher, sched.ID))
		err := service.RemoveSchedule(teacher, sched.ID)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}
