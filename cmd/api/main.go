package main

import (
	"log"

	"todo-sample/internal/config"
	"todo-sample/internal/database"
	"todo-sample/internal/routes"
	"todo-sample/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Fatal: %v", err)
	}

	db := database.InitDB(cfg.Database)
	defer db.Close()

	r := routes.SetupRouter(db, cfg, services.NewSMTPMailer(cfg.SMTP))

	// サーバー起動
	log.Printf("Server listening on port %s...", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
