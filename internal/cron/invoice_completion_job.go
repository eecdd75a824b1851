package cron

import (
	"context"
	"time"

	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/logger"
)

const defaultCompleteAfter = 7 * 24 * time.Hour

// shippedCompleter closes out invoices that have been in shipping longer
// than the grace window.
type shippedCompleter interface {
	AutoCompleteShipped(ctx context.Context, completeAfter time.Duration) (int, error)
}

// InvoiceCompletionJobParams configure the shipped-invoice closer.
type InvoiceCompletionJobParams struct {
	Logger        *logger.Logger
	Invoices      shippedCompleter
	CompleteAfter time.Duration
}

// InvoiceCompletionJob marks invoices stuck in shipping as completed once
// the delivery grace window has passed.
type InvoiceCompletionJob struct {
	logg          *logger.Logger
	invoices      shippedCompleter
	completeAfter time.Duration
}

// NewInvoiceCompletionJob builds the job.
func NewInvoiceCompletionJob(params InvoiceCompletionJobParams) (*InvoiceCompletionJob, error) {
	if params.Logger == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "logger required")
	}
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice service required")
	}
	completeAfter := params.CompleteAfter
	if completeAfter <= 0 {
		completeAfter = defaultCompleteAfter
	}
	return &InvoiceCompletionJob{
		logg:          params.Logger,
		invoices:      params.Invoices,
		completeAfter: completeAfter,
	}, nil
}

// Name identifies the job in logs and metrics.
func (j *InvoiceCompletionJob) Name() string { return "invoice_completion" }

// Run closes out stale shipping invoices.
func (j *InvoiceCompletionJob) Run(ctx context.Context) error {
	completed, err := j.invoices.AutoCompleteShipped(ctx, j.completeAfter)
	if err != nil {
		return err
	}
	if completed > 0 {
		ctx = j.logg.WithField(ctx, "completed", completed)
		j.logg.Info(ctx, "auto-completed shipped invoices")
	}
	return nil
}
