package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/krishnakath/dairyshop-backend/config"
	"github.com/krishnakath/dairyshop-backend/internal/app/repository"
	"github.com/krishnakath/dairyshop-backend/internal/db"
	"github.com/krishnakath/dairyshop-backend/pkg/similarity"
)

// Trains the TF-IDF similarity model from the ml_products corpus and
// writes the gob artifacts the server loads at boot.
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := db.Initialize(&cfg.Database); err != nil {
		log.Fatal("Failed to connect to database:", err)
	}
	defer db.Close()

	mlRepo := repository.NewMLProductRepository(db.GetDB())
	corpus, err := mlRepo.FindAll()
	if err != nil {
		log.Fatal("Failed to load training corpus:", err)
	}
	if len(corpus) == 0 {
		log.Fatal("Training corpus is empty, run the seed importer first")
	}

	fmt.Printf("Training on %d products\n", len(corpus))

	entries := make([]similarity.Entry, len(corpus))
	docs := make([]string, len(corpus))
	for i, row := range corpus {
		entries[i] = similarity.Entry{
			ProductID:   row.ProductID,
			ProductName: row.ProductName,
		}
		docs[i] = row.ProductName + " " + row.Description
	}

	vectorizer, model, err := similarity.Train(entries, docs)
	if err != nil {
		log.Fatal("Training failed:", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Recommender.ModelPath), 0o755); err != nil {
		log.Fatal("Failed to create artifact directory:", err)
	}
	if err := similarity.SaveVectorizer(vectorizer, cfg.Recommender.VectorizerPath); err != nil {
		log.Fatal("Failed to save vectorizer:", err)
	}
	if err := similarity.SaveModel(model, cfg.Recommender.ModelPath); err != nil {
		log.Fatal("Failed to save model:", err)
	}

	fmt.Printf("Artifacts written:\n")
	fmt.Printf("  %s\n", cfg.Recommender.VectorizerPath)
	fmt.Printf("  %s\n", cfg.Recommender.ModelPath)
}
