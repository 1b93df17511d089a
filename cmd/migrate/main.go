// Command migrate applies the embedded goose migrations.
//
//  migrate [up|down|status|reset]
package main

import (
    "log"
    "os"

    "github.com/iliyamo/store-rating/internal/config"
    "github.com/iliyamo/store-rating/internal/database"
)

func main() {
    command := "up"
    if len(os.Args) > 1 {
        command = os.Args[1]
    }
    cfg := config.LoadDB()
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        log.Fatalf("database: %v", err)
    }
    defer db.Close()

    if err := database.Migrate(db, command); err != nil {
        log.Fatalf("migrate %s: %v", command, err)
    }
    log.Printf("migrate %s: done", command)
}
