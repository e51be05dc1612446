package postgres

import (
	"context"
	"flag"
	"log"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/apperrors"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

// setupTestDB starts a throwaway Postgres container and applies the schema
func setupTestDB(t *testing.T) (*PostgresStore, func()) {
	ctx := context.Background()

	pg, err := postgres.Run(
		ctx,
		"postgres:16-alpine",
		testcontainers.WithEnv(map[string]string{
			"POSTGRES_DB":       "testdb",
			"POSTGRES_USER":     "test",
			"POSTGRES_PASSWORD": "test",
		}),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(5*time.Second)),
	)
	require.NoError(t, err)

	dsn, err := pg.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	s, err := NewPostgresStore(dsn, "../../../migrations")
	require.NoError(t, err, "Failed to create store")

	cleanup := func() {
		s.Close()
		pg.Terminate(ctx)
	}

	return s, cleanup
}

type testData struct {
	store   *PostgresStore
	now     time.Time
	team    *models.Team
	account *models.Account
	member  *models.Member
}

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
	flag.Parse()
	if testing.Short() {
		log.Println("Skipping Postgres integration tests. Use -short=false to run them.")
		os.Exit(0)
	}
	log.Println("Starting Postgres store tests...")
	code := m.Run()
	log.Println("Finished Postgres store tests")
	os.Exit(code)
}

func TestAccountUniqueness(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

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
}

func TestScoreListingFilters(t *testing.T) {
	td, cleanup := setupTestData(t)
	defer cleanup()

	score := &models.Score{
		MemberID:   td.member.ID,
		Label:      "HSG Province Round",
		RawScore:   17,
		MaxScore:   20,
		RecordedBy: 1,
		CreatedAt:  td.now.Unix(),
	}
	require.NoError(t, td.store.CreateScore(score))

	t.Run("subject filter", func(t *testing.T) {
		scores, err := td.store.ListScores(store.ScoreFilter{Subject: "math"})
		require.NoError(t, err)
		require.Len(t, scores, 1)
		assert.Equal(t, "Math Olympiad", scores[0].TeamName)

		scores, err = td.store.ListScores(store.ScoreFilter{Subject: "physics"})
		require.NoError(t, err)
		assert.Empty(t, scores)
	})

	t.Run("member filter", func(t *testing.T) {
		scores, err := td.store.ListScores(store.ScoreFilter{MemberID: td.member.ID})
		require.NoError(t, err)
		assert.Len(t, scores, 1)
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

	require.NoError(t, td.store.DeleteTeam(td.team.ID))

	member, err := td.store.GetMember(td.member.ID)
	require.NoError(t, err)
	assert.Nil(t, member, "member should cascade with the team")

	got, err := td.store.GetScoreDetail(score.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "score should cascade with the member")

	account, err := td.store.GetAccountByID(td.account.ID)
	require.NoError(t, err)
	assert.NotNil(t, account, "account must survive the cascade")
}
