package cron

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/multierr"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/logger"
)

// expiredProgramReader lists active programs whose end date has passed.
type expiredProgramReader interface {
	ListExpiredActive(ctx context.Context, now time.Time) ([]models.SaleProgram, error)
}

// programDeactivator turns a program and its member discounts off.
type programDeactivator interface {
	SoftDelete(ctx context.Context, programID uuid.UUID) error
}

// ProgramExpiryJobParams configure the sale program expiry sweep.
type ProgramExpiryJobParams struct {
	Logger   *logger.Logger
	Programs expiredProgramReader
	Service  programDeactivator
}

// ProgramExpiryJob deactivates sale programs past their end date so their
// discounts stop applying without admin intervention.
type ProgramExpiryJob struct {
	logg     *logger.Logger
	programs expiredProgramReader
	service  programDeactivator
	now      func() time.Time
}

// NewProgramExpiryJob builds the job.
func NewProgramExpiryJob(params ProgramExpiryJobParams) (*ProgramExpiryJob, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Programs == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "program repository required")
	}
	if params.Service == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "program service required")
	}
	return &ProgramExpiryJob{
		logg:     params.Logger,
		programs: params.Programs,
		service:  params.Service,
		now:      time.Now,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *ProgramExpiryJob) Name() string { return "program_expiry" }

// Run deactivates every expired program. One failed program does not stop
// the sweep; failures are aggregated.
func (j *ProgramExpiryJob) Run(ctx context.Context) error {
	expired, err := j.programs.ListExpiredActive(ctx, j.now())
	if err != nil {
		return err
	}

	var errs []error
	deactivated := 0
	for _, program := range expired {
		if err := j.service.SoftDelete(ctx, program.ID); err != nil {
			errs = append(errs, err)
			continue
		}
		deactivated++
	}
	if deactivated > 0 {
		ctx = j.logg.WithField(ctx, "deactivated", deactivated)
		j.logg.Info(ctx, "deactivated expired sale programs")
	}
	return multierr.Combine(errs...)
}
