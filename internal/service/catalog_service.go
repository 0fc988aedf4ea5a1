package service

import (
	"context"

	"go.uber.org/zap"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/repository"
)

// CatalogService 规章 / 院系 / 方向的只读查询
// 上传方向表时需要先查到 regulation ID
type CatalogService interface {
	ListRegulations(ctx context.Context) ([]dto.RegulationResponse, error)
	ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error)
	ListDivisions(ctx context.Context, regulationID int) ([]dto.DivisionResponse, error)
}

type catalogService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCatalogService 创建 CatalogService 实例
func NewCatalogService(repo *repository.Repository, logger *zap.Logger) CatalogService {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) ListRegulations(ctx context.Context) ([]dto.RegulationResponse, error) {
	regs, err := s.repo.Regulation.List(ctx)
	if err != nil {
		s.logger.Error("列出规章失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.RegulationResponse, 0, len(regs))
	for _, r := range regs {
		result = append(result, dto.RegulationResponse{ID: r.ID, Name: r.Name, MaxGPA: r.MaxGPA})
	}
	return result, nil
}

func (s *catalogService) ListDepartments(ctx context.Context) ([]dto.DepartmentResponse, error) {
	depts, err := s.repo.Department.List(ctx)
	if err != nil {
		s.logger.Error("列出院系失败", zap.Error(err))
		return nil, err
	}
	result := make([]dto.DepartmentResponse, 0, len(depts))
	for _, d := range depts {
		result = append(result, dto.DepartmentResponse{ID: d.ID, Name: d.Name})
	}
	return result, nil
}

func (s *catalogService) ListDivisions(ctx context.Context, regulationID int) ([]dto.DivisionResponse, error) {
	divs, err := s.repo.Division.ListByRegulation(ctx, regulationID)
	if err != nil {
		s.logger.Error("列出方向失败", zap.Int("regulation_id", regulationID), zap.Error(err))
		return nil, err
	}
	result := make([]dto.DivisionResponse, 0, len(divs))
	for i := range divs {
		result = append(result, toDivisionResponse(&divs[i]))
	}
	return result, nil
}
