package main

import (
	"context"
	"log"

	"github.com/foodgram/backend/internal/database"
	"github.com/foodgram/backend/internal/fixtures"
	"github.com/foodgram/backend/internal/infrastructure/config"
	"github.com/foodgram/backend/internal/ingredients"
	"github.com/foodgram/backend/internal/tags"
	"github.com/foodgram/backend/pkg/logger"
	"github.com/foodgram/backend/pkg/models"
	"github.com/joho/godotenv"
	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

func main() {
	ingredientsPath := pflag.String("ingredients", "data/ingredients.json", "ingredient fixture file (.json or .yaml), empty to skip")
	tagsPath := pflag.String("tags", "data/tags.yaml", "tag fixture file (.json or .yaml), empty to skip")
	pflag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	zapLogger, err := logger.NewLogger(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer zapLogger.Sync()

	db, err := database.Open(cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		zapLogger.Fatal("Failed to migrate database", zap.Error(err))
	}

	ctx := context.Background()
	fs := afero.NewOsFs()

	if *ingredientsPath != "" {
		items, err := fixtures.ReadFile[models.IngredientFixture](fs, *ingredientsPath)
		if err != nil {
			zapLogger.Fatal("Failed to read ingredients", zap.String("path", *ingredientsPath), zap.Error(err))
		}
		created, existing, err := ingredients.NewService(zapLogger, db).LoadFixtures(ctx, items)
		if err != nil {
			zapLogger.Fatal("Failed to load ingredients", zap.Error(err))
		}
		zapLogger.Info("Ingredients loaded",
			zap.Int("total", len(items)),
			zap.Int("created", created),
			zap.Int("existing", existing))
	}

	if *tagsPath != "" {
		items, err := fixtures.ReadFile[models.TagFixture](fs, *tagsPath)
		if err != nil {
			zapLogger.Fatal("Failed to read tags", zap.String("path", *tagsPath), zap.Error(err))
		}
		created, existing, err := tags.NewService(zapLogger, db).LoadFixtures(ctx, items)
		if err != nil {
			zapLogger.Fatal("Failed to load tags", zap.Error(err))
		}
		zapLogger.Info("Tags loaded",
			zap.Int("total", len(items)),
			zap.Int("created", created),
			zap.Int("existing", existing))
	}
}
