package seed

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/repository"
	"ultramacro/backend/internal/service"
)

// EnsureRegulations 保证配置中的规章存在，已存在的按名称跳过
// 单条失败不中断，所有错误合并返回
func EnsureRegulations(ctx context.Context, repo *repository.Repository, seeds []config.RegulationSeed, logger *zap.Logger) (int, error) {
	if len(seeds) == 0 {
		return 0, nil
	}

	logger.Info("检查预置规章", zap.Int("count", len(seeds)))
	resolver := service.NewEntityResolver(repo, logger)

	var finalErr error
	ensured := 0
	for _, s := range seeds {
		if s.Name == "" {
			finalErr = errors.Join(finalErr, fmt.Errorf("预置规章名称为空"))
			continue
		}
		maxGPA := s.MaxGPA
		if maxGPA <= 0 {
			maxGPA = 4
		}
		if _, err := resolver.ResolveOrCreateRegulation(ctx, s.Name, maxGPA); err != nil {
			finalErr = errors.Join(finalErr, fmt.Errorf("规章 %q: %w", s.Name, err))
			continue
		}
		ensured++
	}

	return ensured, finalErr
}
