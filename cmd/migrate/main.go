package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	_ "github.com/lib/pq"

	"github.com/IbrahimKhdeir/farm-moitoring/internal/config"
	"github.com/IbrahimKhdeir/farm-moitoring/pkg/database"
)

// Applies every .sql file in the migrations directory in name order.
// Statements use IF NOT EXISTS so re-running is safe.
func main() {
	dir := "migrations"
	if len(os.Args) > 1 {
		dir = os.Args[1]
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	files, err := filepath.Glob(filepath.Join(dir, "*.sql"))
	if err != nil {
		log.Fatalf("Failed to list migrations: %v", err)
	}
	if len(files) == 0 {
		log.Fatalf("No .sql files found in %s", dir)
	}
	sort.Strings(files)

	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			log.Fatalf("Failed to read %s: %v", file, err)
		}

		if _, err := db.Exec(string(content)); err != nil {
			log.Fatalf("Migration %s failed: %v", file, err)
		}
		fmt.Printf("Applied %s\n", filepath.Base(file))
	}

	fmt.Println("All migrations applied")
}
