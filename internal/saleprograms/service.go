package saleprograms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/pkg/db"
	"github.com/paintmart/paintmart-backend/pkg/db/models"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/pagination"
)

// Service exposes sale program management. Membership changes always run
// inside one transaction so the program and the discounts that point at it
// stay consistent.
type Service interface {
	Create(ctx context.Context, input ProgramInput) (*models.SaleProgram, error)
	Update(ctx context.Context, programID uuid.UUID, input ProgramInput) (*models.SaleProgram, error)
	SoftDelete(ctx context.Context, programID uuid.UUID) error
	HardDelete(ctx context.Context, programID uuid.UUID) error
	Get(ctx context.Context, programID uuid.UUID) (*models.SaleProgram, error)
	List(ctx context.Context, params pagination.Params) (*pagination.Page[models.SaleProgram], error)
}

// ProgramInput is the create/update payload. DiscountIDs is the full desired
// membership; update diffs it against the current set.
type ProgramInput struct {
	Name        string
	Description *string
	StartDate   time.Time
	EndDate     *time.Time
	IsActive    bool
	DiscountIDs []uuid.UUID
}

type service struct {
	repo         *Repository
	discountRepo *discounts.Repository
	dbClient     *db.Client
}

// NewService constructs a sale program service.
func NewService(repo *Repository, discountRepo *discounts.Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("sale program repository required")
	}
	if discountRepo == nil {
		return nil, fmt.Errorf("discount repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, discountRepo: discountRepo, dbClient: dbClient}, nil
}

// Create inserts the program and attaches the requested discounts.
func (s *service) Create(ctx context.Context, input ProgramInput) (*models.SaleProgram, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}
	if err := s.ensureDiscountsExist(ctx, input.DiscountIDs); err != nil {
		return nil, err
	}

	program := &models.SaleProgram{
		ID:          uuid.New(),
		Name:        strings.TrimSpace(input.Name),
		Description: input.Description,
		StartDate:   input.StartDate,
		EndDate:     input.EndDate,
		IsActive:    input.IsActive,
	}

	err := s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)

		if _, err := repo.Create(ctx, program); err != nil {
			if db.IsUniqueViolation(err, "idx_sale_programs_name") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sale program name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "creating sale program")
		}
		if err := discountRepo.SetProgram(ctx, input.DiscountIDs, program.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attaching discounts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, program.ID)
}

// Update saves the program fields and diffs discount membership: discounts
// that left the set are detached, newcomers are attached.
func (s *service) Update(ctx context.Context, programID uuid.UUID, input ProgramInput) (*models.SaleProgram, error) {
	if err := validateInput(input); err != nil {
		return nil, err
	}

	program, err := s.repo.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale program not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale program")
	}
	if err := s.ensureDiscountsExist(ctx, input.DiscountIDs); err != nil {
		return nil, err
	}

	current := make(map[uuid.UUID]struct{}, len(program.Discounts))
	for _, d := range program.Discounts {
		current[d.ID] = struct{}{}
	}
	desired := make(map[uuid.UUID]struct{}, len(input.DiscountIDs))
	for _, id := range input.DiscountIDs {
		desired[id] = struct{}{}
	}

	var toAttach, toDetach []uuid.UUID
	for id := range desired {
		if _, ok := current[id]; !ok {
			toAttach = append(toAttach, id)
		}
	}
	for id := range current {
		if _, ok := desired[id]; !ok {
			toDetach = append(toDetach, id)
		}
	}

	err = s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)

		program.Name = strings.TrimSpace(input.Name)
		program.Description = input.Description
		program.StartDate = input.StartDate
		program.EndDate = input.EndDate
		program.IsActive = input.IsActive
		program.Discounts = nil

		if _, err := repo.Update(ctx, program); err != nil {
			if db.IsUniqueViolation(err, "idx_sale_programs_name") {
				return pkgerrors.New(pkgerrors.CodeConflict, "sale program name already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "updating sale program")
		}
		if err := discountRepo.ClearProgram(ctx, toDetach); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detaching discounts")
		}
		if err := discountRepo.SetProgram(ctx, toAttach, programID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attaching discounts")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, programID)
}

// SoftDelete deactivates the program and every discount attached to it. The
// rows and their membership stay in place so the program can be reactivated.
func (s *service) SoftDelete(ctx context.Context, programID uuid.UUID) error {
	program, err := s.repo.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale program not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale program")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)

		program.IsActive = false
		program.Discounts = nil
		if _, err := repo.Update(ctx, program); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating sale program")
		}
		if err := discountRepo.DeactivateByProgram(ctx, programID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deactivating program discounts")
		}
		return nil
	})
}

// HardDelete detaches every member discount, then removes the program. The
// discounts themselves survive with no program membership.
func (s *service) HardDelete(ctx context.Context, programID uuid.UUID) error {
	if _, err := s.repo.FindByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "sale program not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale program")
	}

	return s.dbClient.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		discountRepo := s.discountRepo.WithTx(tx)

		if err := discountRepo.DetachAllFromProgram(ctx, programID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "detaching program discounts")
		}
		if err := repo.Delete(ctx, programID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "deleting sale program")
		}
		return nil
	})
}

// Get loads a program with its member discounts.
func (s *service) Get(ctx context.Context, programID uuid.UUID) (*models.SaleProgram, error) {
	program, err := s.repo.FindByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "sale program not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "loading sale program")
	}
	return program, nil
}

// List returns a page of programs.
func (s *service) List(ctx context.Context, params pagination.Params) (*pagination.Page[models.SaleProgram], error) {
	programs, total, err := s.repo.List(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "listing sale programs")
	}
	page := pagination.NewPage(programs, params, total)
	return &page, nil
}

func (s *service) ensureDiscountsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.discountRepo.CountExisting(ctx, ids)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "checking discounts")
	}
	if count != int64(len(ids)) {
		return pkgerrors.New(pkgerrors.CodeValidation, "one or more discounts do not exist")
	}
	return nil
}

func validateInput(input ProgramInput) error {
	if strings.TrimSpace(input.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "sale program name is required")
	}
	if input.StartDate.IsZero() {
		return pkgerrors.New(pkgerrors.CodeValidation, "start_date is required")
	}
	if input.EndDate != nil && !input.EndDate.After(input.StartDate) {
		return pkgerrors.New(pkgerrors.CodeValidation, "end_date must be after start_date")
	}

	seen := map[uuid.UUID]struct{}{}
	for _, id := range input.DiscountIDs {
		if _, dup := seen[id]; dup {
			return pkgerrors.New(pkgerrors.CodeValidation, "duplicate discount id")
		}
		seen[id] = struct{}{}
	}
	return nil
}
