package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// privateRegulationPrefix 独立项目自带规章的名称前缀
const privateRegulationPrefix = "لائحة برنامج "

// privateRegulationMaxGPA 独立项目规章的满分 GPA
const privateRegulationMaxGPA = 4

// UploadService 表格上传接口
type UploadService interface {
	// UploadDivisions 上传方向表；非独立项目挂到 regulationID 对应的规章
	UploadDivisions(ctx context.Context, r io.Reader, filename string, regulationID int, uploader string) (*dto.DivisionUploadResponse, error)
	// UploadCourses 上传学分表
	UploadCourses(ctx context.Context, r io.Reader, filename string, uploader string) (*dto.CourseUploadResponse, error)
	// UploadEnrollments 上传成绩单，返回逐行结果
	UploadEnrollments(ctx context.Context, r io.Reader, filename string, uploader string) ([]dto.UploadReportRow, error)
	// ListLogs 查询上传记录
	ListLogs(ctx context.Context, req *dto.UploadLogListRequest) ([]dto.UploadLogResponse, int64, error)
}

type uploadService struct {
	repo     *repository.Repository
	upload   config.UploadConfig
	progress config.ProgressConfig
	logger   *zap.Logger
}

// NewUploadService 创建 UploadService 实例
func NewUploadService(repo *repository.Repository, upload config.UploadConfig, progress config.ProgressConfig, logger *zap.Logger) UploadService {
	return &uploadService{repo: repo, upload: upload, progress: progress, logger: logger}
}

// ────────────────────── UploadDivisions ──────────────────────

func (s *uploadService) UploadDivisions(ctx context.Context, r io.Reader, filename string, regulationID int, uploader string) (*dto.DivisionUploadResponse, error) {
	rows, err := ExtractDivisions(r)
	if err != nil {
		s.logger.Warn("方向表解析失败", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	s.logger.Info("方向表解析完成", zap.String("file", filename), zap.Int("rows", len(rows)))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer recoverTx(tx)

	txRepo := s.repo.WithTx(tx)
	resolver := NewEntityResolver(txRepo, s.logger)

	resp := &dto.DivisionUploadResponse{Divisions: make([]dto.DivisionResponse, 0, len(rows))}
	regulationChecked := false
	for _, row := range rows {
		div := &model.Division{
			Name:         row.Name,
			Hours:        row.Hours,
			Private:      row.Private,
			RegulationID: regulationID,
		}

		if row.Private {
			reg, err := resolver.ResolveOrCreateRegulation(ctx, privateRegulationPrefix+row.Name, privateRegulationMaxGPA)
			if err != nil {
				rollbackTx(tx)
				return nil, err
			}
			div.RegulationID = reg.ID
		} else if !regulationChecked {
			if _, err := txRepo.Regulation.GetByID(ctx, regulationID); err != nil {
				rollbackTx(tx)
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, ErrRegulationNotFound
				}
				s.logger.Error("查询规章失败", zap.Int("regulation_id", regulationID), zap.Error(err))
				return nil, err
			}
			regulationChecked = true
		}

		if div.Department1ID, err = resolver.ResolveDepartmentID(ctx, row.Department1); err != nil {
			rollbackTx(tx)
			return nil, err
		}
		if row.Department2 != nil {
			if div.Department2ID, err = resolver.ResolveDepartmentID(ctx, *row.Department2); err != nil {
				rollbackTx(tx)
				return nil, err
			}
		}

		if err := txRepo.Division.Create(ctx, div); err != nil {
			rollbackTx(tx)
			s.logger.Error("创建方向失败", zap.String("division", row.Name), zap.Error(err))
			return nil, err
		}
		resp.Created++
		resp.Divisions = append(resp.Divisions, toDivisionResponse(div))
	}

	if err := s.saveLog(ctx, txRepo, model.UploadKindDivisions, filename, uploader, len(rows), resp.Created, resp.Divisions); err != nil {
		rollbackTx(tx)
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("方向表上传完成", zap.String("file", filename), zap.Int("created", resp.Created))
	return resp, nil
}

// ────────────────────── UploadCourses ──────────────────────

func (s *uploadService) UploadCourses(ctx context.Context, r io.Reader, filename string, uploader string) (*dto.CourseUploadResponse, error) {
	rows, err := ExtractCourses(r, s.upload.CoursesSheet)
	if err != nil {
		s.logger.Warn("学分表解析失败", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	s.logger.Info("学分表解析完成", zap.String("file", filename), zap.Int("rows", len(rows)))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer recoverTx(tx)

	txRepo := s.repo.WithTx(tx)
	resolver := NewEntityResolver(txRepo, s.logger)

	resp := &dto.CourseUploadResponse{}
	divisions := make(map[string]*model.Division)
	for _, row := range rows {
		div, ok := divisions[row.Division]
		if !ok {
			div, err = resolver.ResolveDivisionByName(ctx, row.Division)
			if err != nil {
				rollbackTx(tx)
				if errors.Is(err, ErrDivisionNotFound) {
					return nil, fmt.Errorf("%w: %s", ErrDivisionNotFound, row.Division)
				}
				return nil, err
			}
			divisions[row.Division] = div
		}

		course := &model.Course{
			Code:           row.Code,
			Name:           row.Name,
			LectureHours:   row.LectureHours,
			PracticalHours: row.PracticalHours,
			CreditHours:    row.CreditHours,
			Level:          row.Level,
			Semester:       row.Semester,
			Required:       row.Required,
		}
		if err := txRepo.Course.Create(ctx, course); err != nil {
			rollbackTx(tx)
			s.logger.Error("创建课程失败", zap.String("code", row.Code), zap.Error(err))
			return nil, err
		}
		if err := txRepo.Course.AttachDivision(ctx, course.ID, div.ID); err != nil {
			rollbackTx(tx)
			s.logger.Error("关联课程方向失败", zap.String("code", row.Code), zap.Error(err))
			return nil, err
		}
		resp.Created++
	}

	if err := s.saveLog(ctx, txRepo, model.UploadKindCourses, filename, uploader, len(rows), resp.Created, rows); err != nil {
		rollbackTx(tx)
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("学分表上传完成", zap.String("file", filename), zap.Int("created", resp.Created))
	return resp, nil
}

// ═══════════════════════════════════════════════════════════
// UploadEnrollments：成绩单上传
// ═══════════════════════════════════════════════════════════
//
// 流程：
//  1. 解析整份文件，结构错误直接返回，不开启事务
//  2. 表头方向必须存在，否则整批失败
//  3. 按行顺序处理，姓名变化即视为切换学生：先对上一名学生执行 PostAddEnrollment
//  4. 学生无法解析 / 课程不存在 / 成绩已存在均记入结果后继续
//  5. 结束时对最后一名学生执行 PostAddEnrollment，整批在同一事务中提交

func (s *uploadService) UploadEnrollments(ctx context.Context, r io.Reader, filename string, uploader string) ([]dto.UploadReportRow, error) {
	transcript, err := ExtractTranscript(r)
	if err != nil {
		s.logger.Warn("成绩单解析失败", zap.String("file", filename), zap.Error(err))
		return nil, err
	}
	s.logger.Info("成绩单解析完成",
		zap.String("file", filename),
		zap.String("division", transcript.Headers.Division),
		zap.Int("rows", len(transcript.Content)))

	tx, err := s.repo.BeginTx(ctx)
	if err != nil {
		s.logger.Error("开启事务失败", zap.Error(err))
		return nil, err
	}
	defer recoverTx(tx)

	txRepo := s.repo.WithTx(tx)
	resolver := NewEntityResolver(txRepo, s.logger)
	reconciler := NewEnrollmentReconciler(txRepo, s.progress, s.logger)
	aggregator := NewProgressAggregator(txRepo, s.progress, s.logger)

	division, err := resolver.ResolveDivisionByName(ctx, transcript.Headers.Division)
	if err != nil {
		rollbackTx(tx)
		if errors.Is(err, ErrDivisionNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrDivisionNotFound, transcript.Headers.Division)
		}
		return nil, err
	}

	report := make([]dto.UploadReportRow, 0, len(transcript.Content))
	courses := make(map[string]*model.Course)
	var (
		student     *model.Student
		studentName string
		opened      bool
	)

	for i := range transcript.Content {
		row := &transcript.Content[i]

		// 切换学生
		if !opened || row.Student != studentName {
			if student != nil {
				if err := aggregator.PostAddEnrollment(ctx, student); err != nil {
					rollbackTx(tx)
					return nil, err
				}
			}
			studentName, opened = row.Student, true
			if student, err = resolver.ResolveOrCreateStudent(ctx, row.Student, division); err != nil {
				rollbackTx(tx)
				return nil, err
			}
		}
		if student == nil {
			report = append(report, dto.UploadReportRow{Student: row.Student, Course: row.Course, Status: dto.StatusStudentNotFound})
			continue
		}

		course, ok := courses[row.Code]
		if !ok {
			course, err = resolver.ResolveCourse(ctx, row.Code, division.ID)
			if errors.Is(err, ErrCourseNotFound) {
				report = append(report, dto.UploadReportRow{Student: student.Name, Course: row.Course, Status: dto.StatusCourseNotFound})
				continue
			}
			if err != nil {
				rollbackTx(tx)
				return nil, err
			}
			courses[row.Code] = course
		}

		enrollment, err := reconciler.GetOrCreate(ctx, &transcript.Headers, row, student, course)
		if err != nil {
			rollbackTx(tx)
			return nil, err
		}
		if enrollment == nil {
			report = append(report, dto.UploadReportRow{Student: student.Name, Course: course.Name, Status: dto.StatusAlreadyExists})
			continue
		}

		if err := aggregator.PostCreate(ctx, enrollment, student, course); err != nil {
			rollbackTx(tx)
			return nil, err
		}
		report = append(report, dto.UploadReportRow{Student: student.Name, Course: course.Name, Status: dto.StatusAdded})
	}

	if student != nil {
		if err := aggregator.PostAddEnrollment(ctx, student); err != nil {
			rollbackTx(tx)
			return nil, err
		}
	}

	summary := SummarizeReport(report)
	if err := s.saveLog(ctx, txRepo, model.UploadKindEnrollments, filename, uploader, len(report), summary[dto.StatusAdded], report); err != nil {
		rollbackTx(tx)
		return nil, err
	}
	if err := commitTx(tx); err != nil {
		s.logger.Error("提交事务失败", zap.Error(err))
		return nil, err
	}

	s.logger.Info("成绩单上传完成",
		zap.String("file", filename),
		zap.Int("added", summary[dto.StatusAdded]),
		zap.Int("exists", summary[dto.StatusAlreadyExists]),
		zap.Int("course_missing", summary[dto.StatusCourseNotFound]),
		zap.Int("student_missing", summary[dto.StatusStudentNotFound]))
	return report, nil
}

// ────────────────────── ListLogs ──────────────────────

func (s *uploadService) ListLogs(ctx context.Context, req *dto.UploadLogListRequest) ([]dto.UploadLogResponse, int64, error) {
	logs, total, err := s.repo.UploadLog.List(ctx, req.Kind, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("查询上传记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.UploadLogResponse, 0, len(logs))
	for _, l := range logs {
		item := dto.UploadLogResponse{
			ID:        l.ID,
			Kind:      l.Kind,
			Filename:  l.Filename,
			Total:     l.Total,
			Succeeded: l.Succeeded,
			Report:    json.RawMessage(l.Report),
			CreatedAt: l.CreatedAt.Format("2006-01-02T15:04:05Z"),
		}
		if l.UploadedBy != nil {
			item.UploadedBy = *l.UploadedBy
		}
		result = append(result, item)
	}
	return result, total, nil
}

// SummarizeReport 按状态统计成绩上传结果
func SummarizeReport(report []dto.UploadReportRow) map[string]int {
	summary := map[string]int{
		dto.StatusAdded:           0,
		dto.StatusAlreadyExists:   0,
		dto.StatusCourseNotFound:  0,
		dto.StatusStudentNotFound: 0,
	}
	for _, r := range report {
		summary[r.Status]++
	}
	return summary
}

// ── 内部辅助方法 ──

func (s *uploadService) saveLog(ctx context.Context, repo *repository.Repository, kind, filename, uploader string, total, succeeded int, report interface{}) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("序列化上传结果失败: %w", err)
	}
	entry := &model.UploadLog{
		Kind:      kind,
		Filename:  filename,
		Total:     total,
		Succeeded: succeeded,
		Report:    raw,
	}
	if uploader != "" {
		entry.UploadedBy = &uploader
	}
	if err := repo.UploadLog.Create(ctx, entry); err != nil {
		s.logger.Error("写入上传记录失败", zap.String("file", filename), zap.Error(err))
		return err
	}
	return nil
}

func toDivisionResponse(d *model.Division) dto.DivisionResponse {
	return dto.DivisionResponse{
		ID:            d.ID,
		Name:          d.Name,
		Hours:         d.Hours,
		Private:       d.Private,
		Group:         d.Group,
		RegulationID:  d.RegulationID,
		Department1ID: d.Department1ID,
		Department2ID: d.Department2ID,
	}
}

// 单元测试中事务为 nil，以下辅助函数统一判空

func rollbackTx(tx *gorm.DB) {
	if tx != nil {
		tx.Rollback()
	}
}

func commitTx(tx *gorm.DB) error {
	if tx == nil {
		return nil
	}
	return tx.Commit().Error
}

func recoverTx(tx *gorm.DB) {
	if r := recover(); r != nil {
		rollbackTx(tx)
		panic(r)
	}
}
