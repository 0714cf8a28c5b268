package integrity

import (
	"context"
	"errors"

	"inventory-ledger/core/ledger"
	"inventory-ledger/core/shop"
	"inventory-ledger/feature/integrity/checks"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNoArchive is returned by CheckDeadLetters when no dead-letter storage is connected.
var ErrNoArchive = errors.New("dead-letter storage is not configured")

// Service handles integrity checks.
type Service struct {
	db      *gorm.DB
	letters checks.Lister
	logger  *zap.Logger
}

// NewService creates a new integrity service. letters may be nil.
func NewService(db *gorm.DB, letters checks.Lister, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		letters: letters,
		logger:  logger,
	}
}

// CheckSchema compares the ledger and shops tables with their models.
func (s *Service) CheckSchema() (*checks.SchemaReport, error) {
	return checks.CheckSchema(s.db, &ledger.Entry{}, &shop.Shop{})
}

// FixSchema migrates the ledger table. The shops table belongs to the back office
// and is never altered.
func (s *Service) FixSchema() error {
	return ledger.Migrate(s.db)
}

// CheckDeadLetters reports the backlog of failed webhook deliveries.
func (s *Service) CheckDeadLetters(ctx context.Context) (*checks.BacklogReport, error) {
	if s.letters == nil {
		return nil, ErrNoArchive
	}
	return checks.CheckDeadLetters(ctx, s.letters)
}
