// Package commits ingests GitHub commit events, the execution-side signal
// that future semantic linking correlates against extracted plans.
package commits

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/taskintel/taskintel/internal/common"
	"github.com/taskintel/taskintel/internal/entity"
	"github.com/taskintel/taskintel/internal/repository"
)

type Service struct {
	repo   *repository.CommitRepository
	logger *zap.Logger
}

func NewService(repo *repository.CommitRepository, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{repo: repo, logger: logger}
}

// Ingest validates and stores one commit event. Branch defaults to main when
// absent. Returns the stored record.
func (s *Service) Ingest(ctx context.Context, c entity.GitHubCommit) (entity.GitHubCommit, error) {
	v := common.NewValidator().
		Field("commit_hash", c.CommitHash, common.Required).
		Field("author", c.Author, common.Required).
		Field("message", c.Message, common.Required, func(f string, val interface{}) *common.ValidationError {
			return common.MaxLength(f, val, 4096)
		}).
		Field("timestamp", c.Timestamp, common.Required, common.Timestamp)
	if err := common.ValidateAndReturnError(v); err != nil {
		return entity.GitHubCommit{}, err
	}

	if strings.TrimSpace(c.Branch) == "" {
		c.Branch = entity.DefaultBranch
	}

	if err := s.repo.Save(ctx, c); err != nil {
		return entity.GitHubCommit{}, fmt.Errorf("ingest commit: %w", err)
	}

	s.logger.Info("commit ingested",
		zap.String("commit_hash", c.CommitHash),
		zap.String("author", c.Author),
		zap.String("branch", c.Branch),
	)
	return c, nil
}

// List returns recent commit events.
func (s *Service) List(ctx context.Context, limit int) ([]entity.GitHubCommit, error) {
	return s.repo.List(ctx, limit)
}
