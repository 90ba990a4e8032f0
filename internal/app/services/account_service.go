package services

import (
	goerrors "errors"

	"github.com/google/uuid"
	"github.com/questforge/points-core/internal/app/errors"
	"github.com/questforge/points-core/internal/app/models"
	"github.com/questforge/points-core/internal/infrastructures"
	"gorm.io/gorm"
)

type AccountService struct {
	db          *gorm.DB
	validator   *infrastructures.Validator
	authService *AuthService
}

func NewAccountService(db *gorm.DB, validator *infrastructures.Validator, authService *AuthService) *AccountService {
	return &AccountService{
		db:          db,
		validator:   validator,
		authService: authService,
	}
}

// CreateAccount registers the caller's external identity as a school-scoped
// account. The balance starts at zero and level at one. Every registration
// starts as STUDENT; roles are elevated only through UpdateAccountRole.
func (s *AccountService) CreateAccount(schoolID uuid.UUID, accessToken string) (*models.Account, error) {
	authUser, err := s.authService.GetCurrentUser(accessToken)
	if err != nil {
		return nil, err
	}
	if authUser == nil {
		return nil, errors.NewBadRequestError("Auth user not found")
	}

	var existing models.Account
	err = s.db.Where("school_id = ? AND auth_id = ?", schoolID, authUser.ID).First(&existing).Error
	if err == nil {
		return nil, errors.NewBadRequestError("Account already exists for this school")
	}

	account := &models.Account{
		SchoolID:     schoolID,
		AuthID:       authUser.ID,
		Role:         models.AccountRoleStudent,
		PointBalance: 0,
		Experience:   0,
		Level:        1,
	}

	if err := s.db.Create(account).Error; err != nil {
		if goerrors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.NewBadRequestError("Account already exists for this school")
		}
		return nil, errors.NewInternalServerError(err, "Failed to create account")
	}

	return account, nil
}

// UpdateAccountRole changes an account's role. Callers must gate this behind
// admin authorization; the service only enforces school scope.
func (s *AccountService) UpdateAccountRole(schoolID, accountID uuid.UUID, req *models.AccountRoleUpdateRequest) (*models.Account, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}

	account, err := s.GetAccount(schoolID, accountID)
	if err != nil {
		return nil, err
	}

	account.Role = req.Role
	if err := s.db.Save(account).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to update account role")
	}

	return account, nil
}

func (s *AccountService) GetAccount(schoolID, accountID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("school_id = ? AND id = ?", schoolID, accountID).First(&account).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Account not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get account")
	}

	return &account, nil
}

func (s *AccountService) GetAccountByAuthID(schoolID, authID uuid.UUID) (*models.Account, error) {
	var account models.Account
	err := s.db.Where("school_id = ? AND auth_id = ?", schoolID, authID).First(&account).Error
	if err != nil {
		if goerrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.NewNotFoundError("Account not found")
		}
		return nil, errors.NewInternalServerError(err, "Failed to get account")
	}

	return &account, nil
}

// GetAccounts lists a school's accounts ordered by balance, which doubles as
// the leaderboard read.
func (s *AccountService) GetAccounts(schoolID uuid.UUID, pagination *models.PaginationRequest) (*models.Pagination[[]models.Account], error) {
	if pagination.Limit <= 0 {
		pagination.Limit = 10
	}
	if pagination.Page <= 0 {
		pagination.Page = 1
	}

	offset := (pagination.Page - 1) * pagination.Limit

	var totalItems int64
	if err := s.db.Model(&models.Account{}).Where("school_id = ?", schoolID).Count(&totalItems).Error; err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to count accounts")
	}

	var accounts []models.Account
	err := s.db.Where("school_id = ?", schoolID).
		Order("point_balance DESC").
		Limit(pagination.Limit).
		Offset(offset).
		Find(&accounts).Error
	if err != nil {
		return nil, errors.NewInternalServerError(err, "Failed to get accounts")
	}

	totalPages := int((totalItems + int64(pagination.Limit) - 1) / int64(pagination.Limit))

	return &models.Pagination[[]models.Account]{
		Page:       pagination.Page,
		Limit:      pagination.Limit,
		TotalPages: totalPages,
		TotalItems: int(totalItems),
		HasNext:    pagination.Page < totalPages,
		HasPrev:    pagination.Page > 1,
		Items:      accounts,
	}, nil
}
