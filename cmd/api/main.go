package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"content-planner/internal/activity"
	"content-planner/internal/auth"
	"content-planner/internal/config"
	"content-planner/internal/db"
	"content-planner/internal/server"
	"content-planner/internal/tasks"
)

func main() {
	issueToken := flag.String("issue-token", "", "print a bearer token for `name` and exit")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config: ", err)
	}

	if *issueToken != "" {
		if !cfg.AuthEnabled() {
			log.Fatal("AUTH_SECRET is not set")
		}
		tok, err := auth.GenerateToken([]byte(cfg.AuthSecret), *issueToken, time.Now())
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	database, err := db.Connect(ctx, cfg.DBDriver, cfg.ConnString())
	if err != nil {
		log.Fatal("Failed to connect DB: ", err)
	}
	defer database.Close()

	log.Printf("Connected to %s", cfg.DBDriver)

	if err := db.Migrate(ctx, database); err != nil {
		log.Fatal("Failed to migrate DB: ", err)
	}

	if !cfg.AuthEnabled() {
		log.Println("[WARN] AUTH_SECRET is empty, /api/tasks is open")
	}

	srv := server.New(tasks.NewRepository(database), activity.NewSQLLogger(database), server.Options{
		CORSOrigins:     cfg.CORSOrigins,
		AuthSecret:      cfg.AuthSecret,
		ShutdownTimeout: cfg.ShutdownTimeout,
	})
	if err := srv.ListenAndServe(ctx, cfg.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
