package database

import (
	"context"
	"fmt"

	"whatsapp-bulk-sender/internal/config"
	"whatsapp-bulk-sender/internal/models"
	pkgmodels "whatsapp-bulk-sender/pkg/models"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Open connects to the configured database and migrates the clients table.
func Open(cfg *config.Config) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.DBDriver {
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			cfg.DBHost, cfg.DBUser, cfg.DBPassword, cfg.DBName, cfg.DBPort, cfg.DBSSLMode)
		dialector = postgres.Open(dsn)
	case "sqlite", "":
		dialector = sqlite.Open(cfg.DBPath)
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", cfg.DBDriver, err)
	}

	if err := db.AutoMigrate(&models.Client{}); err != nil {
		return nil, fmt.Errorf("auto-migrate: %w", err)
	}
	return db, nil
}

func gormLogLevel(level string) logger.LogLevel {
	switch level {
	case "debug", "trace":
		return logger.Info
	case "error":
		return logger.Error
	default:
		return logger.Warn
	}
}

// ClientStore reads and seeds the clients table.
type ClientStore struct {
	DB *gorm.DB
}

func NewClientStore(db *gorm.DB) *ClientStore {
	return &ClientStore{DB: db}
}

// EligibleRows returns raw rows so both column naming conventions survive.
func (s *ClientStore) EligibleRows(ctx context.Context, status string) ([]map[string]any, error) {
	var rows []map[string]any
	err := s.DB.WithContext(ctx).
		Model(&models.Client{}).
		Where("status = ?", status).
		Order("created_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// Upsert inserts clients, overwriting rows that share an id.
func (s *ClientStore) Upsert(ctx context.Context, clients []models.Client) error {
	if len(clients) == 0 {
		return nil
	}
	return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "nome", "phone", "telefone", "status", "updated_at"}),
		}).CreateInBatches(clients, 200).Error
	})
}

// ClientID is the store-owned key of a seeded client. It is derived from the
// sanitized phone, so the same number always maps to the same row.
func ClientID(phone string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("tel:"+phone)).String()
}

// Seed upserts ingested contacts keyed by ClientID. Ids assigned by the
// ingestor are discarded; a phone repeated in contacts keeps its last row.
// It returns the number of distinct clients written.
func (s *ClientStore) Seed(ctx context.Context, contacts []pkgmodels.Contact) (int, error) {
	index := make(map[string]int, len(contacts))
	clients := make([]models.Client, 0, len(contacts))
	for _, c := range contacts {
		row := models.Client{ID: ClientID(c.Phone), Name: c.Name, Phone: c.Phone, Status: c.Status}
		if i, ok := index[row.ID]; ok {
			clients[i] = row
			continue
		}
		index[row.ID] = len(clients)
		clients = append(clients, row)
	}
	if err := s.Upsert(ctx, clients); err != nil {
		return 0, err
	}
	return len(clients), nil
}
