package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"loan-ledger/internal/domain/loan"
	"loan-ledger/internal/infrastructure/monitoring"
)

// OverdueSnapshotJob walks every loan on a schedule and publishes the
// current overdue and due-soon installment counts as gauges. It only reads
// committed snapshots and sends nothing to borrowers.
type OverdueSnapshotJob struct {
	repo   loan.Repository
	logger *slog.Logger
	now    func() time.Time
}

func NewOverdueSnapshotJob(repo loan.Repository, logger *slog.Logger) *OverdueSnapshotJob {
	if repo == nil || logger == nil {
		panic("OverdueSnapshotJob dependencies cannot be nil")
	}
	return &OverdueSnapshotJob{
		repo:   repo,
		logger: logger.With("job", "OverdueSnapshot"),
		now:    time.Now,
	}
}

func (j *OverdueSnapshotJob) Run(ctx context.Context) error {
	startTime := j.now()
	j.logger.InfoContext(ctx, "Starting overdue snapshot job.")

	loans, err := j.repo.ListLoans(ctx)
	if err != nil {
		j.logger.ErrorContext(ctx, "Failed to list loans, aborting job.", slog.Any("error", err))
		return fmt.Errorf("cannot run job, failed to list loans: %w", err)
	}
	j.logger.InfoContext(ctx, "Fetched loans.", slog.Int("count", len(loans)))

	asOf := j.now()
	var overdue, dueSoon, settled, total int
	for _, l := range loans {
		if err := ctx.Err(); err != nil {
			j.logger.WarnContext(ctx, "Job canceled before completion.", slog.Any("error", err))
			return err
		}

		for _, inst := range l.Schedule {
			total++
			switch loan.ClassifyStatus(inst, asOf) {
			case loan.StatusOverdue:
				overdue++
			case loan.StatusDueSoon:
				dueSoon++
			case loan.StatusSettled:
				settled++
			}
		}
	}

	monitoring.SetOverdueInstallments(overdue)
	monitoring.SetDueSoonInstallments(dueSoon)

	j.logger.InfoContext(ctx, "Overdue snapshot job finished.",
		slog.Int("loans", len(loans)),
		slog.Int("installments", total),
		slog.Int("overdue", overdue),
		slog.Int("dueSoon", dueSoon),
		slog.Int("settled", settled),
		slog.Duration("duration", time.Since(startTime)),
	)
	return nil
}
