package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.mongodb.org/mongo-driver/bson"

	"leadflow/internal/config"
	"leadflow/internal/database"
	"leadflow/internal/models"
	"leadflow/internal/services"
)

type seedLead struct {
	company     string
	contact     string
	email       string
	score       int
	stage       models.Stage
	value       string
	industry    string
	lastContact time.Duration // how long ago
}

var seedLeads = []seedLead{
	{"Acme Corporation", "John Smith", "john@acme.com", 92, models.StageQualified, "$45,000", "Technology", 48 * time.Hour},
	{"TechStart Inc", "Sarah Johnson", "sarah@techstart.com", 85, models.StageContacted, "$32,000", "Software", 24 * time.Hour},
	{"Innovate Labs", "Michael Chen", "michael@innovatelabs.com", 78, models.StageNew, "$58,000", "Research", 3 * time.Hour},
	{"DataCo Solutions", "Emily Davis", "emily@dataco.com", 95, models.StageProposal, "$72,000", "Data Analytics", 5 * 24 * time.Hour},
	{"CloudTech Systems", "Robert Wilson", "robert@cloudtech.com", 88, models.StageQualified, "$65,000", "Cloud Infrastructure", 36 * time.Hour},
}

func main() {
	log.Println("🌱 Starting seed process...")

	if err := godotenv.Load(); err != nil {
		log.Printf("⚠️  No .env file found or error loading it: %v", err)
	}

	cfg := config.Load()

	db, err := database.NewMongoDB(cfg.MongoURI)
	if err != nil {
		log.Fatalf("❌ Failed to connect to MongoDB: %v", err)
	}
	ctx := context.Background()
	defer db.Close(ctx)

	if err := db.Initialize(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize MongoDB indexes: %v", err)
	}

	// Clear existing data. Activities go first; they cascade with their leads
	// in the API, but here both collections are wiped outright.
	if _, err := db.Collection(database.CollectionActivities).DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("❌ Failed to clear activities: %v", err)
	}
	if _, err := db.Collection(database.CollectionLeads).DeleteMany(ctx, bson.M{}); err != nil {
		log.Fatalf("❌ Failed to clear leads: %v", err)
	}
	log.Println("🗑️ Cleared existing leads and activities")

	leadService := services.NewLeadService(db)
	activityService := services.NewActivityService(db)

	now := time.Now()
	for _, s := range seedLeads {
		lead, err := leadService.Create(ctx, &models.CreateLeadRequest{
			Company:  s.company,
			Contact:  s.contact,
			Email:    s.email,
			Value:    s.value,
			Industry: s.industry,
		})
		if err != nil {
			log.Fatalf("❌ Failed to insert lead %s: %v", s.company, err)
		}

		// Backfill the scored state the demo data ships with
		lastContact := now.Add(-s.lastContact)
		update := bson.M{
			"$set": bson.M{
				"score":       s.score,
				"stage":       s.stage,
				"lastContact": lastContact,
			},
		}
		if _, err := leadService.Collection().UpdateOne(ctx, bson.M{"_id": lead.ID}, update); err != nil {
			log.Fatalf("❌ Failed to backfill lead %s: %v", s.company, err)
		}

		if _, err := activityService.Append(ctx, lead.ID, models.ActivityTypeEmail,
			"Initial outreach email sent to "+s.contact, false, nil); err != nil {
			log.Fatalf("❌ Failed to insert activity for %s: %v", s.company, err)
		}

		log.Printf("✅ Seeded lead: %s (score %d, stage %s)", s.company, s.score, s.stage)
	}

	// Count back what actually landed in the store
	leadCount, err := leadService.Count(ctx, bson.M{})
	if err != nil {
		log.Fatalf("❌ Failed to count leads: %v", err)
	}
	activityCount, err := activityService.Count(ctx, bson.M{})
	if err != nil {
		log.Fatalf("❌ Failed to count activities: %v", err)
	}

	log.Printf("🌱 Seed complete: %d leads, %d activities", leadCount, activityCount)
}
