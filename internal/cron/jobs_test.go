package cron

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/paintmart/paintmart-backend/pkg/db/models"
	"github.com/paintmart/paintmart-backend/pkg/logger"
)

type stubCompleter struct {
	completed int
	gotWindow time.Duration
	err       error
}

func (s *stubCompleter) AutoCompleteShipped(_ context.Context, completeAfter time.Duration) (int, error) {
	s.gotWindow = completeAfter
	return s.completed, s.err
}

func TestInvoiceCompletionJobDefaultsWindow(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	completer := &stubCompleter{completed: 3}
	job, err := NewInvoiceCompletionJob(InvoiceCompletionJobParams{
		Logger:   logg,
		Invoices: completer,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err != nil {
		t.Fatalf("run: %v", err)
	}
	if completer.gotWindow != defaultCompleteAfter {
		t.Fatalf("expected default window, got %s", completer.gotWindow)
	}
}

func TestInvoiceCompletionJobPropagatesError(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	completer := &stubCompleter{err: errors.New("db down")}
	job, err := NewInvoiceCompletionJob(InvoiceCompletionJobParams{
		Logger:        logg,
		Invoices:      completer,
		CompleteAfter: time.Hour,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}
	if err := job.Run(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

type stubProgramReader struct {
	programs []models.SaleProgram
}

func (s *stubProgramReader) ListExpiredActive(context.Context, time.Time) ([]models.SaleProgram, error) {
	return s.programs, nil
}

type stubDeactivator struct {
	deactivated []uuid.UUID
	failFor     uuid.UUID
}

func (s *stubDeactivator) SoftDelete(_ context.Context, programID uuid.UUID) error {
	if programID == s.failFor {
		return errors.New("boom")
	}
	s.deactivated = append(s.deactivated, programID)
	return nil
}

func TestProgramExpiryJobSweepsPastFailures(t *testing.T) {
	logg := logger.New(logger.Options{ServiceName: "cron-test"})
	bad := uuid.New()
	good := uuid.New()
	reader := &stubProgramReader{programs: []models.SaleProgram{{ID: bad}, {ID: good}}}
	deactivator := &stubDeactivator{failFor: bad}

	job, err := NewProgramExpiryJob(ProgramExpiryJobParams{
		Logger:   logg,
		Programs: reader,
		Service:  deactivator,
	})
	if err != nil {
		t.Fatalf("construct job: %v", err)
	}

	err = job.Run(context.Background())
	if err == nil {
		t.Fatal("expected aggregated error")
	}
	if len(deactivator.deactivated) != 1 || deactivator.deactivated[0] != good {
		t.Fatalf("expected the second program to still be deactivated, got %v", deactivator.deactivated)
	}
}
