package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/internal/dto"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrUploadLogNotFound  = errors.New("上传记录不存在")
	ErrExportUnsupported  = errors.New("该类型的上传记录不支持导出")
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// reportStatusOrder 汇总 Sheet 中状态的输出顺序
var reportStatusOrder = []string{
	dto.StatusAdded,
	dto.StatusAlreadyExists,
	dto.StatusCourseNotFound,
	dto.StatusStudentNotFound,
}

// ExportService 导出业务接口
//
//   - 目前只导出成绩单上传的逐行结果，便于教务人员对照原表修正后重新上传
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportUploadReport 将一次成绩上传的结果导出为 Excel
	ExportUploadReport(ctx context.Context, logID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportUploadReport：导出上传结果
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - Sheet "Report"：Student / Course / Status，按上传时的行顺序
//   - Sheet "Summary"：每种状态的行数
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportUploadReport(ctx context.Context, logID string) (*bytes.Buffer, string, error) {
	entry, err := s.repo.UploadLog.GetByID(ctx, logID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrUploadLogNotFound
		}
		s.logger.Error("查询上传记录失败", zap.String("id", logID), zap.Error(err))
		return nil, "", err
	}
	if entry.Kind != model.UploadKindEnrollments {
		return nil, "", ErrExportUnsupported
	}

	var report []dto.UploadReportRow
	if err := json.Unmarshal(entry.Report, &report); err != nil {
		s.logger.Error("解析上传结果失败", zap.String("id", logID), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	f := excelize.NewFile()
	defer f.Close()

	const reportSheet, summarySheet = "Report", "Summary"
	if err := f.SetSheetName("Sheet1", reportSheet); err != nil {
		return nil, "", ErrExportGenerateFail
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		return nil, "", ErrExportGenerateFail
	}

	f.SetColWidth(reportSheet, "A", "B", 32)
	f.SetColWidth(reportSheet, "C", "C", 34)
	f.SetColWidth(summarySheet, "A", "A", 34)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 明细
	f.SetSheetRow(reportSheet, "A1", &[]interface{}{"Student", "Course", "Status"})
	f.SetCellStyle(reportSheet, "A1", "C1", headerStyle)
	for i, r := range report {
		f.SetSheetRow(reportSheet, cell("A", i+2), &[]interface{}{r.Student, r.Course, r.Status})
	}

	// 汇总
	summary := SummarizeReport(report)
	f.SetSheetRow(summarySheet, "A1", &[]interface{}{"Status", "Rows"})
	f.SetCellStyle(summarySheet, "A1", "B1", headerStyle)
	for i, status := range reportStatusOrder {
		f.SetSheetRow(summarySheet, cell("A", i+2), &[]interface{}{status, summary[status]})
	}
	f.SetSheetRow(summarySheet, cell("A", len(reportStatusOrder)+2), &[]interface{}{"Total", len(report)})

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("report_%s_%s.xlsx", strings.TrimSuffix(entry.Filename, filepath.Ext(entry.Filename)), entry.CreatedAt.Format("20060102_150405"))
	return buf, filename, nil
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
