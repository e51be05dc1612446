// internal/store/sqlite/store_test.go
package sqlite

import (
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

// setupTestDB creates an in-memory SQLite database with the full schema
func setupTestDB(t *testing.T) (*SQLiteStore, func()) {
	s, err := NewSQLiteStore(":memory:", "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		err := s.Close()
		require.NoError(t, err, "Failed to close database")
	}

	return s, cleanup
}

type testData struct {
	store   *SQLiteStore
	now     time.Time
	team    *models.Team
	account *models.Account
	member  *models.Member
}

// setupTestData seeds one math team with one member and its student account
func setupTestData(t *testing.T) (*testData, func()) {
	s, cleanup := setupTestDB(t)
	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	team := &models.Team{
		Name:       "Math Olympiad",
		Subject:    "math",
		GradeLevel: "12",
		CreatedAt:  now.Unix(),
	}
	require.NoError(t, s.CreateTeam(team), "Failed to create team")

	account := &models.Account{
		DisplayName:  "Nguyen Van An",
		Handle:       "HS001",
		PasswordHash: "$2a$10$fakehashfortests",
		Role:         models.RoleStudent,
		CreatedAt:    now.Unix(),
	}
	require.NoError(t, s.CreateAccount(account), "Failed to create account")

	member := &models.Member{
		TeamID:      team.ID,
		AccountID:   account.ID,
		DisplayName: "Nguyen Van An",
		RosterID:    "HS001",
		Contact:     "an@example.com",
		CreatedAt:   now.Unix(),
	}
	require.NoError(t, s.CreateMember(member), "Failed to create member")

	return &testData{
		store:   s,
		now:     now,
		team:    team,
		account: account,
		member:  member,
	}, cleanup
}

func TestMain(m *testing.M) {
	log.Println("Starting SQLite store tests...")
	code := m.Run()
	log.Println("Finished SQLite store tests")
	os.Exit(code)
}

func TestAccountOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("get by id", func(t *testing.T) {
		got, err := td.store.GetAccountByID(td.account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.account.Handle, got.Handle)
		assert.Equal(t, models.RoleStudent, got.Role)
	})

	t.Run("get by handle", func(t *testing.T) {
		got, err := td.store.GetAccountByHandle("HS001")
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.account.ID, got.ID)
	})

	t.Run("get missing returns nil", func(t *testing.T) {
		got, err := td.store.GetAccountByHandle("not.exists")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("duplicate handle is a duplicate error", func(t *testing.T) {
		dup := &models.Account{
			DisplayName:  "Someone Else",
			Handle:       "HS001",
			PasswordHash: "$2a$10$fakehashfortests",
			Role:         models.RoleStudent,
			CreatedAt:    td.now.Unix(),
		}
		err := td.store.CreateAccount(dup)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
	})

	t.Run("update", func(t *testing.T) {
		td.account.DisplayName = "Nguyen Van An (12A)"
		require.NoError(t, td.store.UpdateAccount(td.account))

		got, err := td.store.GetAccountByID(td.account.ID)
		require.NoError(t, err)
		assert.Equal(t, "Nguyen Van An (12A)", got.DisplayName)
	})

	t.Run("update missing is not found", func(t *testing.T) {
		ghost := *td.account
		ghost.ID = 9999
		ghost.Handle = "ghost"
		err := td.store.UpdateAccount(&ghost)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestMemberUniqueness(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	t.Run("same account on same team is a duplicate", func(t *testing.T) {
		dup := &models.Member{
			TeamID:      td.team.ID,
			AccountID:   td.account.ID,
			DisplayName: "Nguyen Van An",
			RosterID:    "HS001-bis",
			CreatedAt:   td.now.Unix(),
		}
		err := td.store.CreateMember(dup)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
	})

	t.Run("same roster id on same team is a duplicate", func(t *testing.T) {
		other := &models.Account{
			DisplayName:  "Tran Thi Binh",
			Handle:       "HS002",
			PasswordHash: "$2a$10$fakehashfortests",
			Role:         models.RoleStudent,
			CreatedAt:    td.now.Unix(),
		}
		require.NoError(t, td.store.CreateAccount(other))

		dup := &models.Member{
			TeamID:      td.team.ID,
			AccountID:   other.ID,
			DisplayName: "Tran Thi Binh",
			RosterID:    "HS001",
			CreatedAt:   td.now.Unix(),
		}
		err := td.store.CreateMember(dup)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
	})

	t.Run("same account and roster id on another team is fine", func(t *testing.T) {
		other := &models.Team{
			Name:      "Math Seniors",
			Subject:   "math",
			CreatedAt: td.now.Unix(),
		}
		require.NoError(t, td.store.CreateTeam(other))

		again := &models.Member{
			TeamID:      other.ID,
			AccountID:   td.account.ID,
			DisplayName: "Nguyen Van An",
			RosterID:    "HS001",
			CreatedAt:   td.now.Unix(),
		}
		require.NoError(t, td.store.CreateMember(again))
		assert.NotZero(t, again.ID)
	})

	t.Run("lookup by team and account", func(t *testing.T) {
		got, err := td.store.GetMemberByTeamAndAccount(td.team.ID, td.account.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, td.member.ID, got.ID)

		got, err = td.store.GetMemberByTeamAndAccount(td.team.ID, 9999)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestScoreOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	score := &models.Score{
		MemberID:   td.member.ID,
		Label:      "HSG Province Round",
		RawScore:   17,
		MaxScore:   20,
		ExamDate:   time.Date(2026, 1, 10, 8, 0, 0, 0, time.UTC).Unix(),
		Notes:      "strong geometry",
		RecordedBy: 1,
		CreatedAt:  td.now.Unix(),
	}

	t.Run("create score", func(t *testing.T) {
		require.NoError(t, td.store.CreateScore(score))
		assert.NotZero(t, score.ID)
	})

	t.Run("get score detail joins member and team", func(t *testing.T) {
		got, err := td.store.GetScoreDetail(score.ID)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, score.RawScore, got.RawScore)
		assert.Equal(t, "Nguyen Van An", got.MemberName)
		assert.Equal(t, td.account.ID, got.MemberAccountID)
		assert.Equal(t, "Math Olympiad", got.TeamName)
		assert.Equal(t, "math", got.Subject)
	})

	t.Run("list with subject filter", func(t *testing.T) {
		scores, err := td.store.ListScores(store.ScoreFilter{Subject: "math"})
		require.NoError(t, err)
		assert.Len(t, scores, 1)

		scores, err = td.store.ListScores(store.ScoreFilter{Subject: "physics"})
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("list with account filter", func(t *testing.T) {
		scores, err := td.store.ListScores(store.ScoreFilter{AccountID: td.account.ID})
		require.NoError(t, err)
		assert.Len(t, scores, 1)
	})

	t.Run("update score", func(t *testing.T) {
		score.RawScore = 18.5
		require.NoError(t, td.store.UpdateScore(score))

		got, err := td.store.GetScoreDetail(score.ID)
		require.NoError(t, err)
		assert.Equal(t, 18.5, got.RawScore)
	})

	t.Run("delete score", func(t *testing.T) {
		require.NoError(t, td.store.DeleteScore(score.ID))
		got, err := td.store.GetScoreDetail(score.ID)
		require.NoError(t, err)
		assert.Nil(t, got)

		err = td.store.DeleteScore(score.ID)
		assert.Equal(t, apperrors.KindNotFound, apperrors.KindOf(err))
	})
}

func TestDeleteTeamCascades(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	score := &models.Score{
		MemberID:   td.member.ID,
		Label:      "warmup",
		RawScore:   6,
		MaxScore:   10,
		RecordedBy: 1,
		CreatedAt:  td.now.Unix(),
	}
	require.NoError(t, td.store.CreateScore(score))

	eval := &models.Evaluation{
		MemberID:  td.member.ID,
		Content:   "needs more practice on combinatorics",
		CreatedBy: 1,
		CreatedAt: td.now.Unix(),
	}
	require.NoError(t, td.store.CreateEvaluation(eval))

	sched := &models.Schedule{
		TeamID:    td.team.ID,
		Date:      td.now.Unix(),
		Starts:    "14:00",
		Ends:      "16:30",
		Location:  "Room 204",
		CreatedBy: 1,
	}
	require.NoError(t, td.store.CreateSchedule(sched))

	require.NoError(t, td.store.DeleteTeam(td.team.ID))

	member, err := td.store.GetMember(td.member.ID)
	require.NoError(t, err)
	assert.Nil(t, member, "member should cascade with the team")

	got, err := td.store.GetScoreDetail(score.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "score should cascade with the member")

	evals, err := td.store.ListMemberEvaluations(td.member.ID)
	require.NoError(t, err)
	assert.Empty(t, evals, "evaluations should cascade with the member")

	scheds, err := td.store.ListSchedules()
	require.NoError(t, err)
	assert.Empty(t, scheds, "schedules should cascade with the team")

	account, err := td.store.GetAccountByID(td.account.ID)
	require.NoError(t, err)
	assert.NotNil(t, account, "account must survive the cascade")
}

func TestTeacherProfileOperations(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	profile := &models.TeacherProfile{
		FullName: "Le Thi Mai",
		Subject:  "math",
		Email:    "mai@school.edu.vn",
		Phone:    "0901234567",
	}

	t.Run("create and list", func(t *testing.T) {
		require.NoError(t, td.store.CreateTeacherProfile(profile))

		profiles, err := td.store.ListTeacherProfiles()
		require.NoError(t, err)
		assert.Len(t, profiles, 1)
		assert.Equal(t, "Le Thi Mai", profiles[0].FullName)
	})

	t.Run("duplicate email is a duplicate error", func(t *testing.T) {
		dup := &models.TeacherProfile{
			FullName: "Another Mai",
			Subject:  "physics",
			Email:    "mai@school.edu.vn",
		}
		err := td.store.CreateTeacherProfile(dup)
		require.Error(t, err)
		assert.Equal(t, apperrors.KindDuplicate, apperrors.KindOf(err))
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, td.store.DeleteTeacherProfile(profile.ID))
		got, err := td.store.GetTeacherProfile(profile.ID)
		require.NoError(t, err)
		assert.Nil(t, got)
	})
}

func TestScheduleCounting(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	monday := time.Date(2026, 1, 12, 0, 0, 0, 0, time.UTC)
	for day := 0; day < 3; day++ {
		sched := &models.Schedule{
			TeamID:    td.team.ID,
			Date:      monday.AddDate(0, 0, day*7).Unix(),
			Starts:    "14:00",
			Ends:      "16:00",
			CreatedBy: 1,
		}
		require.NoError(t, td.store.CreateSchedule(sched))
	}

	count, err := td.store.CountSchedulesBetween(monday.Unix(), monday.AddDate(0, 0, 6).Unix())
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = td.store.CountSchedulesBetween(monday.Unix(), monday.AddDate(0, 0, 20).Unix())
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)
}

func TestUnassignedStudentAccounts(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	free := &models.Account{
		DisplayName:  "Pham Van Cuong",
		Handle:       "HS010",
		PasswordHash: "$2a$10$fakehashfortests",
		Role:         models.RoleStudent,
		CreatedAt:    td.now.Unix(),
	}
	require.NoError(t, td.store.CreateAccount(free))

	accounts, err := td.store.ListUnassignedStudentAccounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "HS010", accounts[0].Handle)
}
