package main

import (
	"flag"
	"fmt"
	"log"

	"trafficsense/internal/repository/sqlite"
	"trafficsense/internal/services/storage"
)

func main() {
	logPath := flag.String("log", "vehicle_counts_log.csv", "Count log to import")
	dbPath := flag.String("db", "data/samples.db", "Database path")
	reset := flag.Bool("reset", false, "Delete existing samples before importing")
	flag.Parse()

	fmt.Printf("Importing counts from %s to database %s\n", *logPath, *dbPath)

	db, err := sqlite.New(*dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	samples := sqlite.NewSampleRepository(db)

	rows, skipped, err := storage.ReadAll(*logPath)
	if err != nil {
		log.Fatalf("Failed to read count log: %v", err)
	}

	if len(rows) == 0 {
		fmt.Println("No counts found to import")
		return
	}

	if *reset {
		if err := samples.DeleteAll(); err != nil {
			log.Fatalf("Failed to clear samples: %v", err)
		}
		fmt.Println("🗑️  Existing samples deleted")
	}

	fmt.Printf("Inserting %d samples into database...\n", len(rows))
	if err := samples.InsertBatch(rows); err != nil {
		log.Fatalf("Failed to insert samples: %v", err)
	}

	fmt.Printf("✅ Successfully imported %d samples\n", len(rows))
	if skipped > 0 {
		fmt.Printf("⚠️  Skipped %d rows (invalid format)\n", skipped)
	}

	stats, err := samples.GetStats()
	if err == nil {
		fmt.Printf("\n📊 Database Statistics:\n")
		fmt.Printf("   Total samples: %d\n", stats.Total)
		fmt.Printf("   Min / max: %d / %d\n", stats.Min, stats.Max)
		fmt.Printf("   Average: %.2f\n", stats.Average)
		if !stats.LastAt.IsZero() {
			fmt.Printf("   Last sample: %s\n", stats.LastAt.Format("2006-01-02 15:04:05"))
		}
	}
}
