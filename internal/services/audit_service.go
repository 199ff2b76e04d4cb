// internal/services/audit_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/javajoker/story-mcp/internal/models"
	"github.com/javajoker/story-mcp/internal/utils"
)

// ErrAuditDisabled is returned by queries when no database is configured.
var ErrAuditDisabled = errors.New("audit log is disabled")

// AuditService persists tool invocations and IPFS pins. With a nil db every
// write is a no-op, so the server runs without Postgres.
type AuditService struct {
	db *gorm.DB
}

// InvocationRecorder persists audited tool calls. *AuditService implements it.
type InvocationRecorder interface {
	Record(ctx context.Context, inv *models.ToolInvocation)
}

type InvocationFilter struct {
	utils.PaginationParams
	Operator      string     `json:"operator,omitempty"`
	TxHash        string     `json:"tx_hash,omitempty"`
	CreatedAfter  *time.Time `json:"created_after,omitempty"`
	CreatedBefore *time.Time `json:"created_before,omitempty"`
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{db: db}
}

func (s *AuditService) Enabled() bool {
	return s != nil && s.db != nil
}

// Record stores an invocation. Failures are logged, never returned, so a
// database outage cannot fail a tool call.
func (s *AuditService) Record(ctx context.Context, inv *models.ToolInvocation) {
	if !s.Enabled() {
		return
	}
	if err := s.db.WithContext(ctx).Create(inv).Error; err != nil {
		logrus.WithError(err).WithFields(logrus.Fields{
			"tool":       inv.Tool,
			"request_id": inv.RequestID,
		}).Warn("Failed to record tool invocation")
	}
}

// RecordPin stores a pin once per (cid, kind).
func (s *AuditService) RecordPin(ctx context.Context, pin *models.MetadataPin) {
	if !s.Enabled() {
		return
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(pin).Error
	if err != nil {
		logrus.WithError(err).WithField("cid", pin.CID).Warn("Failed to record metadata pin")
	}
}

func (s *AuditService) ListInvocations(ctx context.Context, filter InvocationFilter) ([]models.ToolInvocation, int64, error) {
	if !s.Enabled() {
		return nil, 0, ErrAuditDisabled
	}

	query := s.db.WithContext(ctx).Model(&models.ToolInvocation{})

	if filter.Tool != "" {
		query = query.Where("tool = ?", filter.Tool)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Operator != "" {
		query = query.Where("operator = ?", filter.Operator)
	}
	if filter.TxHash != "" {
		query = query.Where("? = ANY(tx_hashes)", filter.TxHash)
	}
	if filter.CreatedAfter != nil {
		query = query.Where("created_at >= ?", *filter.CreatedAfter)
	}
	if filter.CreatedBefore != nil {
		query = query.Where("created_at <= ?", *filter.CreatedBefore)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count invocations: %w", err)
	}

	query = utils.ApplySort(query, filter.PaginationParams, []string{"created_at", "tool", "duration_ms", "status"})
	query = utils.ApplyPagination(query, filter.PaginationParams)

	var invocations []models.ToolInvocation
	if err := query.Find(&invocations).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to fetch invocations: %w", err)
	}

	return invocations, total, nil
}

func (s *AuditService) FindPin(ctx context.Context, cid string) (*models.MetadataPin, error) {
	if !s.Enabled() {
		return nil, ErrAuditDisabled
	}
	var pin models.MetadataPin
	if err := s.db.WithContext(ctx).Where("cid = ?", cid).First(&pin).Error; err != nil {
		return nil, err
	}
	return &pin, nil
}
