package main

import (
	"log"

	"asp-server/confs"
	"asp-server/db"
	"asp-server/server"
)

func main() {
	// load config
	if err := confs.LoadConfig(); err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	cfg, err := confs.GetConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// connect to database Postgres
	database, err := db.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to DB: %v", err)
	}

	// run server
	srv := server.NewServer(database, cfg)
	srv.Start()
}
