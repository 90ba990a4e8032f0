package services

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"gorm.io/gorm"
)

type ItemService struct {
	db        *gorm.DB
	validator *infrastructures.Validator
	ledger    *LedgerService
}

func NewItemService(db *gorm.DB, validator *infrastructures.Validator, ledger *LedgerService) *ItemService {
	return &ItemService{
		db:        db,
		validator: validator,
		ledger:    ledger,
	}
}

func (s *ItemService) CreateItem(schoolID uuid.UUID, req *models.ItemCreateRequest, createdBy *uuid.UUID) (*models.Item, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item := &models.Item{
		SchoolID:      schoolID,
		Kind:          req.Kind,
		Name:          req.Name,
		Slug:          slug.Make(req.Name),
		Description:   req.Description,
		PricePoints:   req.PricePoints,
		Stock:         req.Stock,
		MaxPerAccount: req.MaxPerAccount,
		IsActive:      true,
		CreatedBy:     createdBy,
	}

	if err := s.db.Create(item).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to create item")
	}

	return item, nil
}

func (s *ItemService) GetItem(schoolID, itemID uuid.UUID) (*models.Item, error) {
	var item models.Item
	err := s.db.Where("school_id = ? AND id = ?", schoolID, itemID).First(&item).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Item not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get item")
	}

	return &item, nil
}

func (s *ItemService) GetItems(schoolID uuid.UUID, pagination *models.PaginationRequest, kind *models.ItemKind, activeOnly bool) (*models.Pagination[[]models.Item], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	countQuery := s.db.Model(&models.Item{}).Where("school_id = ?", schoolID)
	if kind != nil {
		countQuery = countQuery.Where("kind = ?", *kind)
	}
	if activeOnly {
		countQuery = countQuery.Where("is_active = ?", true)
	}

	var totalItems int64
	if err := countQuery.Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count items")
	}

	query := s.db.Where("school_id = ?", schoolID).Order("created_at DESC")
	if kind != nil {
		query = query.Where("kind = ?", *kind)
	}
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var items []models.Item
	if err := query.Limit(pagination.Limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get items")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Item]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      items,
	}, nil
}

// UpdateItem changes catalog metadata. Stock never moves here: supply
// changes go through Restock so the ledger records them.
func (s *ItemService) UpdateItem(schoolID, itemID uuid.UUID, req *models.ItemUpdateRequest) (*models.Item, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	item, err := s.GetItem(schoolID, itemID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		item.Name = *req.Name
		item.Slug = slug.Make(*req.Name)
	}
	if req.Description != nil {
		item.Description = req.Description
	}
	if req.PricePoints != nil {
		item.PricePoints = *req.PricePoints
	}
	if req.MaxPerAccount != nil {
		item.MaxPerAccount = req.MaxPerAccount
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update item")
	}

	return item, nil
}

func (s *ItemService) DeleteItem(schoolID, itemID uuid.UUID) error {
	item, err := s.GetItem(schoolID, itemID)
	if err != nil {
		return err
	}

	if err := s.db.Delete(item).Error; err != nil {
		return errors.NewInternalServerError(err, "Failed to delete item")
	}

	return nil
}

// Restock raises a finite item's stock through the ledger.
func (s *ItemService) Restock(schoolID, itemID uuid.UUID, quantity int64, actor *uuid.UUID) (*models.Item, error) {
	if quantity <= 0 {
		return nil, errors.NewBadRequestError("Restock quantity must be positive")
	}

	item, err := s.GetItem(schoolID, itemID)
	if err != nil {
		return nil, err
	}
	if item.Stock == nil {
		return nil, errors.NewBadRequestError("Item has unlimited stock")
	}

	err = s.ledger.Run(func(tx *gorm.DB) error {
		_, err := s.ledger.AdjustStock(tx, schoolID, itemID, quantity, actor, "restock")
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.GetItem(schoolID, itemID)
}
