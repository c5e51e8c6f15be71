package main

import (
	"context"
	"log"
	"os"

	"aerodb/db"
)

func main() {
	// Creates the schema without seed data.
	dbPath := "aero.sqlite3"
	if len(os.Args) > 1 {
		dbPath = os.Args[1]
	}

	if _, err := db.BootstrapSQLite(context.Background(), dbPath, nil, db.BootstrapOptions{}); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	log.Printf("Demo database initialized successfully at %s", dbPath)
	log.Println("Schema created. No seed data loaded.")
}
