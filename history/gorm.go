package history

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// recordEntity is the database shape of a Record.
type recordEntity struct {
	ID        string    `gorm:"primaryKey;type:char(36);not null"`
	Text      string    `gorm:"column:text;type:text;not null"`
	Source    string    `gorm:"column:source;type:varchar(64);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime(3);index"`
}

func (recordEntity) TableName() string {
	return "transcriptions"
}

func (e *recordEntity) toRecord() *Record {
	return &Record{ID: e.ID, Text: e.Text, Source: e.Source, CreatedAt: e.CreatedAt}
}

// GormStore persists records in MySQL via GORM.
type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

// OpenMySQL connects to MySQL with the given DSN, migrates the
// transcriptions table, and returns a ready store.
func OpenMySQL(dsn string) (*GormStore, error) {
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("history: open mysql: %w", err)
	}
	if err := db.AutoMigrate(&recordEntity{}); err != nil {
		return nil, fmt.Errorf("history: migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// NewGormStore wraps an existing gorm.DB. The transcriptions table must
// already exist.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Get returns the record with the given ID.
func (s *GormStore) Get(ctx context.Context, id string) (*Record, error) {
	var entity recordEntity
	if err := s.db.WithContext(ctx).Where("id = ?", id).First(&entity).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("history: get: %w", err)
	}
	return entity.toRecord(), nil
}

// List returns up to limit records, newest first.
func (s *GormStore) List(ctx context.Context, limit int) ([]Record, error) {
	query := s.db.WithContext(ctx).Model(&recordEntity{}).Order("created_at DESC")
	if limit > 0 {
		query = query.Limit(limit)
	}
	var entities []recordEntity
	if err := query.Find(&entities).Error; err != nil {
		return nil, fmt.Errorf("history: list: %w", err)
	}
	records := make([]Record, len(entities))
	for i := range entities {
		records[i] = *entities[i].toRecord()
	}
	return records, nil
}

// Create persists a record, assigning ID and CreatedAt when unset.
func (s *GormStore) Create(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	entity := recordEntity{ID: rec.ID, Text: rec.Text, Source: rec.Source, CreatedAt: rec.CreatedAt}
	if err := s.db.WithContext(ctx).Create(&entity).Error; err != nil {
		return fmt.Errorf("history: create: %w", err)
	}
	return nil
}

// Delete removes the record with the given ID.
func (s *GormStore) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Where("id = ?", id).Delete(&recordEntity{})
	if res.Error != nil {
		return fmt.Errorf("history: delete: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
