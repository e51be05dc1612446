package main

import (
	"flag"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shrimpsizemoose/trekker/logger"

	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/app"
	"github.com/KAT1140/CHUYEN-NGANH-DU-AN-QUAN-LI-HSG/internal/handlers"
)

func main() {
	configPath := flag.String("config", "config.toml", "path to config file")
	flag.Parse()

	service, err := app.NewService(*configPath)
	if err != nil {
		logger.Error.Fatalf("Failed to start service: %v", err)
	}
	defer service.Close()

	if err := service.Store.ApplyMigrations(service.Config.Database.MigrationsDir); err != nil {
		logger.Error.Fatalf("Failed to apply migrations: %v", err)
	}

	authHandler := handlers.NewAuthHandler(service)
	teamHandler := handlers.NewTeamHandler(service)
	scoreHandler := handlers.NewScoreHandler(service)
	statsHandler := handlers.NewStatsHandler(service)
	teacherHandler := handlers.NewTeacherHandler(service)
	evaluationHandler := handlers.NewEvaluationHandler(service)
	scheduleHandler := handlers.NewScheduleHandler(service)
	studentHandler := handlers.NewStudentHandler(service)

	sessions := service.Sessions
	guard := func(h http.HandlerFunc) http.HandlerFunc {
		return handlers.WithActor(sessions, h)
	}

	http.HandleFunc("POST /api/v1/login", authHandler.HandleLogin)
	http.HandleFunc("POST /api/v1/logout", guard(authHandler.HandleLogout))
	http.HandleFunc("GET /api/v1/me", guard(authHandler.HandleMe))

	http.HandleFunc("GET /api/v1/teams", guard(teamHandler.HandleListTeams))
	http.HandleFunc("POST /api/v1/teams", guard(teamHandler.HandleCreateTeam))
	http.HandleFunc("DELETE /api/v1/teams/{teamID}", guard(teamHandler.HandleDeleteTeam))
	http.HandleFunc("GET /api/v1/teams/{teamID}/members", guard(teamHandler.HandleListMembers))
	http.HandleFunc("POST /api/v1/teams/{teamID}/members", guard(teamHandler.HandleAddMember))
	http.HandleFunc("PUT /api/v1/members/{memberID}", guard(teamHandler.HandleUpdateMember))
	http.HandleFunc("DELETE /api/v1/members/{memberID}", guard(teamHandler.HandleRemoveMember))

	http.HandleFunc("GET /api/v1/scores", guard(scoreHandler.HandleListScores))
	http.HandleFunc("POST /api/v1/scores", guard(scoreHandler.HandleCreateScore))
	http.HandleFunc("PUT /api/v1/scores/{scoreID}", guard(scoreHandler.HandleUpdateScore))
	http.HandleFunc("DELETE /api/v1/scores/{scoreID}", guard(scoreHandler.HandleDeleteScore))
	http.HandleFunc("GET /api/v1/members/{memberID}/scores", guard(scoreHandler.HandleMemberScores))

	http.HandleFunc("GET /api/v1/stats/years", guard(statsHandler.HandleYears))
	http.HandleFunc("GET /api/v1/stats/{year}", guard(statsHandler.HandleYearReport))
	http.HandleFunc("GET /api/v1/dashboard", guard(statsHandler.HandleDashboard))

	http.HandleFunc("GET /api/v1/teachers", guard(teacherHandler.HandleListTeachers))
	http.HandleFunc("POST /api/v1/teachers", guard(teacherHandler.HandleCreateTeacher))
	http.HandleFunc("DELETE /api/v1/teachers/{teacherID}", guard(teacherHandler.HandleDeleteTeacher))

	http.HandleFunc("GET /api/v1/members/{memberID}/evaluations", guard(evaluationHandler.HandleListEvaluations))
	http.HandleFunc("POST /api/v1/members/{memberID}/evaluations", guard(evaluationHandler.HandleCreateEvaluation))
	http.HandleFunc("DELETE /api/v1/evaluations/{evaluationID}", guard(evaluationHandler.HandleDeleteEvaluation))

	http.HandleFunc("GET /api/v1/schedules", guard(scheduleHandler.HandleListSchedules))
	http.HandleFunc("POST /api/v1/schedules", guard(scheduleHandler.HandleCreateSchedule))
	http.HandleFunc("DELETE /api/v1/schedules/{scheduleID}", guard(scheduleHandler.HandleDeleteSchedule))

	http.HandleFunc("GET /api/v1/students", guard(studentHandler.HandleListStudents))
	http.HandleFunc("GET /api/v1/students/available", guard(studentHandler.HandleListAvailableStudents))
	http.HandleFunc("DELETE /api/v1/students/{studentID}", guard(studentHandler.HandleDeleteStudent))

	http.Handle("/metrics", promhttp.Handler())

	logger.Info.Printf("Starting HSG server on %s", service.Config.Server.Port)
	if !service.Config.Server.EnableAuth {
		logger.Info.Printf("Auth is disabled, all requests run as admin")
	}
	if err := http.ListenAndServe(service.Config.Server.Port, nil); err != nil {
		logger.Error.Fatalf("HSG server failed: %v", err)
	}
}
