package app

import (
	"strings"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store/postgres"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store/sqlite"
)

func NewStore(dsn, migrationsDir string) (store.Store, error) {
	if strings.HasPrefix(dsn, "postgres") {
		return postgres.NewPostgresStore(dsn, migrationsDir)
	}
	return sqlite.NewSQLiteStore(dsn, migrationsDir)
}
