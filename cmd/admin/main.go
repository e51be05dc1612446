package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/models"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/store"
)

const usage = `Usage: admin -config config.toml <command> [args]

Commands:
  addadmin <handle> <password> <display name>   create an admin account
  addteacher <handle> <password> <name> <subject>  create a teacher account
  resetpass <handle> <new password>             reset an account password
`

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to load config: %v", err)
	}

	st, err := app.NewStore(config.Database.DSN, config.Database.MigrationsDir)
	if err != nil {
		logger.Error.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	if err := st.ApplyMigrations(config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	switch args[0] {
	case "addadmin":
		if len(args) != 4 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		createAccount(st, args[1], args[2], args[3], models.RoleAdmin, "")
	case "addteacher":
		if len(args) != 5 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		createAccount(st, args[1], args[2], args[3], models.RoleTeacher, args[4])
	case "resetpass":
		if len(args) != 3 {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		resetPassword(st, args[1], args[2])
	default:
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}
}

func createAccount(st store.Store, handle, password, name string, role models.Role, subject string) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Fatalf("Failed to hash password: %v", err)
	}

	account := &models.Account{
		DisplayName:  name,
		Handle:       handle,
		PasswordHash: string(hash),
		Role:         role,
		Subject:      subject,
		CreatedAt:    time.Now().Unix(),
	}
	if err := account.Validate(); err != nil {
		logger.Error.Fatalf("Invalid account: %v", err)
	}
	if err := st.CreateAccount(account); err != nil {
		logger.Error.Fatalf("Failed to create account: %v", err)
	}

	logger.Info.Printf("Created %s account %q with id %d", role, handle, account.ID)
}

func resetPassword(st store.Store, handle, password string) {
	account, err := st.GetAccountByHandle(handle)
	if err != nil {
		logger.Error.Fatalf("Failed to look up account: %v", err)
	}
	if account == nil {
		logger.Error.Fatalf("No account with handle %q", handle)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error.Fatalf("Failed to hash password: %v", err)
	}

	account.PasswordHash = string(hash)
	if err := st.UpdateAccount(account); err != nil {
		logger.Error.Fatalf("Failed to update account: %v", err)
	}

	logger.Info.Printf("Password reset for %q", handle)
}
