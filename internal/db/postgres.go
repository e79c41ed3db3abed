package db

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/yungbote/onboarding-backend/internal/config"
	"github.com/yungbote/onboarding-backend/internal/platform/logger"
	"github.com/yungbote/onboarding-backend/internal/types"
)

type PostgresService struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPostgresService(cfg config.PostgresConfig, log *logger.Logger) (*PostgresService, error) {
	serviceLog := log.With("service", "PostgresService")

	serviceLog.Info("Connecting to Postgres...", "host", cfg.Host, "db", cfg.Name)
	db, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`).Error; err != nil {
		return nil, fmt.Errorf("failed to enable uuid-ossp extension: %w", err)
	}

	return &PostgresService{db: db, log: serviceLog}, nil
}

func (s *PostgresService) AutoMigrateAll() error {
	s.log.Info("Auto migrating postgres tables...")
	err := s.db.AutoMigrate(
		&types.User{},
		&types.Document{},
		&types.Assessment{},
		&types.ThirdPartyData{},
		&types.SiftScore{},
	)
	if err != nil {
		return fmt.Errorf("auto migration failed: %w", err)
	}

	// Deleting a user removes their documents, assessments, and sift
	// scores; deleting an assessment removes its third-party data.
	cascades := []struct{ name, sql string }{
		{"fk_documents_user_id", `ALTER TABLE "documents" ADD CONSTRAINT "fk_documents_user_id" FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`},
		{"fk_assessments_user_id", `ALTER TABLE "assessments" ADD CONSTRAINT "fk_assessments_user_id" FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`},
		{"fk_third_party_data_assessment_id", `ALTER TABLE "third_party_data" ADD CONSTRAINT "fk_third_party_data_assessment_id" FOREIGN KEY ("assessment_id") REFERENCES "assessments"("id") ON DELETE CASCADE`},
		{"fk_sift_scores_user_id", `ALTER TABLE "sift_scores" ADD CONSTRAINT "fk_sift_scores_user_id" FOREIGN KEY ("user_id") REFERENCES "users"("id") ON DELETE CASCADE`},
	}
	for _, c := range cascades {
		var exists bool
		if err := s.db.Raw(
			`SELECT EXISTS (SELECT 1 FROM information_schema.table_constraints WHERE constraint_name = ?)`,
			c.name,
		).Scan(&exists).Error; err != nil {
			return fmt.Errorf("check constraint %s: %w", c.name, err)
		}
		if exists {
			continue
		}
		if err := s.db.Exec(c.sql).Error; err != nil {
			return fmt.Errorf("failed to add %s: %w", c.name, err)
		}
	}
	return nil
}

func (s *PostgresService) DB() *gorm.DB {
	return s.db
}
