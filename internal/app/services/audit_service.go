package services

import (
	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"gorm.io/gorm"
)

// AuditService reads the ledger trail and records order status history.
// Ledger audit entries themselves are written by the ledger service inside
// the mutating transaction.
type AuditService struct {
	db *gorm.DB
}

func NewAuditService(db *gorm.DB) *AuditService {
	return &AuditService{
		db: db,
	}
}

// LogOrderStatusChange appends a status history row. db may be a transaction
// handle when the transition and its history must commit together.
func (s *AuditService) LogOrderStatusChange(db *gorm.DB, orderID uuid.UUID, fromStatus *models.OrderStatus, toStatus models.OrderStatus, reason string, createdBy *uuid.UUID) error {
	history := &models.OrderStatusHistory{
		OrderID:    orderID,
		FromStatus: fromStatus,
		ToStatus:   toStatus,
		Reason:     &reason,
		CreatedBy:  createdBy,
	}

	if err := db.Create(history).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to create order status history")
	}

	return nil
}

// GetOrderStatusHistory retrieves the transition history for an order.
func (s *AuditService) GetOrderStatusHistory(orderID uuid.UUID) ([]*models.OrderStatusHistory, error) {
	var history []*models.OrderStatusHistory
	if err := s.db.Where("order_id = ?", orderID).
		Order("created_at DESC").
		Find(&history).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get order status history")
	}

	return history, nil
}

// GetLedgerAudits retrieves a school's ledger trail with pagination, newest
// first, optionally filtered to one entity.
func (s *AuditService) GetLedgerAudits(schoolID uuid.UUID, pagination *models.PaginationRequest, entityID *uuid.UUID) (*models.Pagination[[]models.LedgerAudit], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	countQuery := s.db.Model(&models.LedgerAudit{}).Where("school_id = ?", schoolID)
	if entityID != nil {
		countQuery = countQuery.Where("entity_id = ?", *entityID)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count ledger audit entries")
	}

	query := s.db.Where("school_id = ?", schoolID).Order("created_at DESC")
	if entityID != nil {
		query = query.Where("entity_id = ?", *entityID)
	}

	var entries []models.LedgerAudit
	if err := query.Limit(pagination.Limit).Offset(offset).Find(&entries).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get ledger audit entries")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.LedgerAudit]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      entries,
	}, nil
}
