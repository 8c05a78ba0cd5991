package database

import (
	"context"
	"fmt"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/secinto/hrms_backend/internal/models"
)

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	LogLevel        logger.LogLevel
}

// DefaultPostgresConfig returns default PostgreSQL configuration
func DefaultPostgresConfig() PostgresConfig {
	return PostgresConfig{
		DSN:             "host=localhost port=5432 user=hrms password=hrms dbname=hrms sslmode=disable",
		MaxOpenConns:    25,
		MaxIdleConns:    5,
		ConnMaxLifetime: time.Hour,
		ConnMaxIdleTime: 10 * time.Minute,
		LogLevel:        logger.Warn,
	}
}

// Postgres wraps a gorm connection with transaction-aware helpers
// #SCHEMA_IMPLEMENTATION: Relational backend with real foreign keys and unique constraints
type Postgres struct {
	db *gorm.DB
}

type txKey struct{}

// NewPostgres opens a PostgreSQL connection pool
func NewPostgres(cfg PostgresConfig) (*Postgres, error) {
	gormConfig := &gorm.Config{
		Logger: logger.Default.LogMode(cfg.LogLevel),
	}

	db, err := gorm.Open(postgres.Open(cfg.DSN), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database instance: %w", err)
	}

	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	sqlDB.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	return &Postgres{db: db}, nil
}

// NewPostgresFromDB wraps an already opened gorm connection
func NewPostgresFromDB(db *gorm.DB) *Postgres {
	return &Postgres{db: db}
}

// DB returns the connection bound to ctx, the open transaction if there is one
func (p *Postgres) DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return p.db.WithContext(ctx)
}

// WithTransaction executes fn within a database transaction
// #IMPLEMENTATION_DECISION: Nested calls join the outer transaction
func (p *Postgres) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return fn(ctx)
	}
	return p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// Ping verifies the PostgreSQL connection
func (p *Postgres) Ping(ctx context.Context) error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// HealthCheck performs a health check on the database connection
func (p *Postgres) HealthCheck(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := p.Ping(ctx); err != nil {
		return fmt.Errorf("database health check failed: %w", err)
	}
	return nil
}

// Close closes the connection pool
func (p *Postgres) Close() error {
	sqlDB, err := p.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// foreignKeys mirrors the ownership rules of the evaluation module
// #CASCADE_STRATEGY: questions and assignments follow their questionnaire, copies lose the back-reference
var foreignKeys = []string{
	`ALTER TABLE questions DROP CONSTRAINT IF EXISTS fk_questions_questionnaire`,
	`ALTER TABLE questions ADD CONSTRAINT fk_questions_questionnaire
		FOREIGN KEY (questionnaire_id) REFERENCES questionnaires(id) ON DELETE CASCADE`,
	`ALTER TABLE evaluation_assignments DROP CONSTRAINT IF EXISTS fk_assignments_questionnaire`,
	`ALTER TABLE evaluation_assignments ADD CONSTRAINT fk_assignments_questionnaire
		FOREIGN KEY (questionnaire_id) REFERENCES questionnaires(id) ON DELETE CASCADE`,
	`ALTER TABLE questionnaires DROP CONSTRAINT IF EXISTS fk_questionnaires_template_source`,
	`ALTER TABLE questionnaires ADD CONSTRAINT fk_questionnaires_template_source
		FOREIGN KEY (template_source_id) REFERENCES questionnaires(id) ON DELETE SET NULL`,
}

// Migrate creates or updates the evaluation tables
// #MIGRATION_DECISION: AutoMigrate for columns and indexes, explicit statements for foreign keys
func (p *Postgres) Migrate(ctx context.Context) error {
	db := p.db.WithContext(ctx)
	if err := db.AutoMigrate(&models.Questionnaire{}, &models.Question{}, &models.Assignment{}); err != nil {
		return fmt.Errorf("failed to migrate tables: %w", err)
	}
	return db.Transaction(func(tx *gorm.DB) error {
		for _, stmt := range foreignKeys {
			if err := tx.Exec(stmt).Error; err != nil {
				return fmt.Errorf("failed to apply constraint: %w", err)
			}
		}
		return nil
	})
}
