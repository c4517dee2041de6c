package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"log"

	"github.com/go-redis/redis/v8"
	"github.com/lib/pq"

	"github.com/krishna2206/pharmanio-backend/internal/config"
	"github.com/krishna2206/pharmanio-backend/internal/database"
)

func main() {
	var city = flag.String("city", "", "List registry pharmacies for a city instead of the roster")
	var showSnapshot = flag.Bool("snapshot", false, "Also print the cached roster snapshot from Redis")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.NewPostgresDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Cannot connect to database: %v", err)
	}
	defer db.Close()

	fmt.Printf("Connected to database: %s\n\n", cfg.Database.Database)

	if *city != "" {
		listCityPharmacies(db, *city)
		return
	}

	printRoster(db)

	if *showSnapshot {
		printSnapshot(cfg)
	}
}

func printRoster(db *sql.DB) {
	var (
		id                 int64
		startDate, endDate sql.NullTime
		updatedAt          sql.NullTime
		idsJSON            []byte
	)

	err := db.QueryRow(`
		SELECT id, start_date, end_date, pharmacy_ids, updated_at
		FROM on_duty_pharmacies
		ORDER BY id
		LIMIT 1
	`).Scan(&id, &startDate, &endDate, &idsJSON, &updatedAt)
	if err == sql.ErrNoRows {
		fmt.Println("(No roster row)")
		return
	}
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}

	var pharmacyIDs []int64
	if err := json.Unmarshal(idsJSON, &pharmacyIDs); err != nil {
		log.Fatalf("Invalid pharmacy_ids JSON: %v", err)
	}

	fmt.Println("On-Duty Roster:")
	fmt.Printf("ID: %d\n", id)
	fmt.Printf("Period: %s au %s\n", formatDate(startDate), formatDate(endDate))
	fmt.Printf("Updated: %s\n", formatTimestamp(updatedAt))
	fmt.Printf("Pharmacies: %d\n\n", len(pharmacyIDs))

	if len(pharmacyIDs) == 0 {
		fmt.Println("(Empty roster)")
		return
	}

	rows, err := db.Query(`
		SELECT p.id, p.name, c.name, p.address, p.phone
		FROM pharmacies p
		INNER JOIN cities c ON p.city_id = c.id
		WHERE p.id = ANY($1)
		ORDER BY p.id
	`, pq.Array(pharmacyIDs))
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}
	defer rows.Close()

	printPharmacyTable(rows, true)
}

func listCityPharmacies(db *sql.DB, city string) {
	rows, err := db.Query(`
		SELECT p.id, p.name, c.name, p.address, p.phone
		FROM pharmacies p
		INNER JOIN cities c ON p.city_id = c.id
		WHERE LOWER(c.name) = LOWER($1)
		ORDER BY p.id
	`, city)
	if err != nil {
		log.Fatalf("Query error: %v", err)
	}
	defer rows.Close()

	fmt.Printf("Registry pharmacies for %q:\n", city)
	printPharmacyTable(rows, false)
}

func printPharmacyTable(rows *sql.Rows, withCity bool) {
	if withCity {
		fmt.Println("ID | Name | City | Address | Phone")
		fmt.Println("---|------|------|---------|------")
	} else {
		fmt.Println("ID | Name | Address | Phone")
		fmt.Println("---|------|---------|------")
	}

	found := false
	for rows.Next() {
		found = true
		var id int64
		var name, cityName string
		var address, phone sql.NullString
		if err := rows.Scan(&id, &name, &cityName, &address, &phone); err != nil {
			log.Printf("Scan error: %v", err)
			continue
		}
		if withCity {
			fmt.Printf("%d | %s | %s | %s | %s\n", id, name, cityName, getString(address), getString(phone))
		} else {
			fmt.Printf("%d | %s | %s | %s\n", id, name, getString(address), getString(phone))
		}
	}

	if !found {
		fmt.Println("(No records found)")
	}
}

func printSnapshot(cfg *config.Config) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer client.Close()

	data, err := client.Get(context.Background(), cfg.Ingest.Cache.RosterKey).Result()
	if err == redis.Nil {
		fmt.Println("\n(No snapshot cached)")
		return
	}
	if err != nil {
		log.Fatalf("Redis error: %v", err)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, []byte(data), "", "  "); err != nil {
		fmt.Printf("\nCached snapshot (raw): %s\n", data)
		return
	}
	fmt.Printf("\nCached snapshot (%s):\n%s\n", cfg.Ingest.Cache.RosterKey, pretty.String())
}

func formatDate(t sql.NullTime) string {
	if t.Valid {
		return t.Time.Format("2006-01-02")
	}
	return "NULL"
}

func formatTimestamp(t sql.NullTime) string {
	if t.Valid {
		return t.Time.Format("2006-01-02 15:04:05")
	}
	return "NULL"
}

func getString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return "NULL"
}
