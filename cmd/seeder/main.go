//cmd/seeder/main.go
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/unclebandit/lifecycle-messaging/internal/catalog"
	"github.com/unclebandit/lifecycle-messaging/internal/config"
	"github.com/unclebandit/lifecycle-messaging/internal/db"
	"github.com/unclebandit/lifecycle-messaging/internal/repository"
)

// The seeder applies the schema and installs the default retention copy. A segment that
// already has templates is left alone, so reruns never duplicate or overwrite edited copy.
func main() {
	_ = config.LoadDotEnv()

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx := context.Background()
	conn, err := db.Open(ctx, dsn)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	if err := db.Migrate(ctx, conn); err != nil {
		log.Fatal(err)
	}
	fmt.Println("Schema applied")

	repo := &repository.RetentionTemplateRepository{DB: conn}
	seeded := map[string]bool{}
	for _, t := range catalog.DefaultRetentionTemplates() {
		segment := string(t.Segment)
		if _, checked := seeded[segment]; !checked {
			_, total, err := repo.ListTemplates(ctx, 0, 1, repository.TemplateFilter{Segment: segment})
			if err != nil {
				log.Fatalf("failed to check templates for %s: %v", segment, err)
			}
			seeded[segment] = total == 0
			if total > 0 {
				fmt.Printf("Skipped: %s already has %d template(s)\n", segment, total)
			}
		}
		if !seeded[segment] {
			continue
		}

		tmpl := t
		if err := repo.Create(ctx, &tmpl); err != nil {
			log.Fatalf("failed to seed %s: %v", tmpl.Name, err)
		}
		fmt.Printf("Seeded: %s (%s)\n", tmpl.Name, segment)
	}

	fmt.Println("Database seeding completed successfully!")
}
