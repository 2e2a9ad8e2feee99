package usecase

import (
	"context"
	"fmt"

	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/internal/domain/models"
	"github.com/moinuddin-ahamed/MoneyDoothas-Google-Agentic/pkg/queue"
)

// RefreshMessageType is the queue message type consumed by RefreshJob.
const RefreshMessageType = "dataset_refresh"

// RefreshJob re-fetches all datasets for one identity in the background.
type RefreshJob struct {
	service *FinancialDataService
}

func NewRefreshJob(service *FinancialDataService) *RefreshJob {
	return &RefreshJob{service: service}
}

func (j *RefreshJob) Name() string { return "dataset-refresh" }

func (j *RefreshJob) Type() string { return RefreshMessageType }

func (j *RefreshJob) Handle(ctx context.Context, payload interface{}) error {
	req, err := queue.ParsePayload[models.RefreshRequest](payload)
	if err != nil {
		return fmt.Errorf("parse refresh payload: %w", err)
	}
	return j.service.RefreshAll(ctx, req.Identity)
}

var _ queue.Job = (*RefreshJob)(nil)
