package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"ultramacro/backend/config"
	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// ProgressAggregator 学业进度计算：在成绩入库后更新学生的学时计数、GPA、年级与毕业状态
type ProgressAggregator struct {
	repo   *repository.Repository
	rules  config.ProgressConfig
	logger *zap.Logger
}

// NewProgressAggregator 创建 ProgressAggregator
func NewProgressAggregator(repo *repository.Repository, rules config.ProgressConfig, logger *zap.Logger) *ProgressAggregator {
	return &ProgressAggregator{repo: repo, rules: rules, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// PostCreate：单条新成绩入库后更新学生计数
// ═══════════════════════════════════════════════════════════
//
//   - 学分为 0 的课程不影响任何计数
//   - 研究课通过（بح 且分数为 0）：研究 / 通过 / 注册学时各加学分
//   - A–D：count = 1 + 该课程此前的考试次数
//     excluded += (count-2)·学分（count>2 时），registered += count·学分，
//     passed += 学分，total_points += points·学分，
//     total_mark 取首次与本次分数的平均（无历史时取本次分数）
//   - 其他等级不变更计数，由之后的通过记录补记
//
// 只修改内存中的学生，由 PostAddEnrollment 统一落库。

func (p *ProgressAggregator) PostCreate(ctx context.Context, e *model.Enrollment, student *model.Student, course *model.Course) error {
	credit := course.CreditHours
	if credit == 0 {
		return nil
	}

	switch {
	case p.isResearchPass(e.Grade, e.Mark):
		student.ResearchHours += credit
		student.PassedHours += credit
		student.RegisteredHours += credit

	case p.isPassing(e.Grade):
		prior, err := p.repo.Enrollment.ListPrior(ctx, student.ID, course.ID, e.ID)
		if err != nil {
			p.logger.Error("查询历史成绩失败",
				zap.String("student", student.Name), zap.String("code", course.Code), zap.Error(err))
			return err
		}
		count := len(prior) + 1
		if count > 2 {
			student.ExcludedHours += (count - 2) * credit
		}
		student.RegisteredHours += count * credit
		student.PassedHours += credit
		student.TotalPoints += e.Points * float64(credit)
		if len(prior) > 0 {
			student.TotalMark = (prior[0].Mark + e.Mark) / 2
		} else {
			student.TotalMark = e.Mark
		}
	}

	return nil
}

// ═══════════════════════════════════════════════════════════
// PostAddEnrollment：一名学生的成绩块处理完毕后调用
// ═══════════════════════════════════════════════════════════
//
//   - 按通过学时重算年级（只升不降）
//   - 重算 GPA
//   - 四年级且达到学时要求（独立项目看分组学时，其他看专业方向学时）时评估毕业
//   - 持久化学生

func (p *ProgressAggregator) PostAddEnrollment(ctx context.Context, student *model.Student) error {
	if level := p.levelFor(student.PassedHours); level > student.Level {
		student.Level = level
	}
	student.GPA = CalculateGPA(student)

	if student.Level == 4 {
		met, err := p.graduationHoursMet(ctx, student)
		if err != nil {
			return err
		}
		if met {
			graduate, err := p.CheckGraduation(ctx, student)
			if err != nil {
				return err
			}
			student.Graduate = graduate
		}
	}

	if err := p.repo.Student.Update(ctx, student); err != nil {
		p.logger.Error("保存学生进度失败", zap.String("student", student.Name), zap.Error(err))
		return err
	}
	return nil
}

// CheckGraduation 判断学生是否满足毕业条件
//   - 分组为一年级 cohort 且尚未分配专业方向 → 否
//   - 分组或专业方向下存在未通过的必修课 → 否
//   - GPA 低于下限 → 否
func (p *ProgressAggregator) CheckGraduation(ctx context.Context, student *model.Student) (bool, error) {
	group, err := p.repo.Division.GetByID(ctx, student.GroupID)
	if err != nil {
		p.logger.Error("查询学生分组失败", zap.String("student", student.Name), zap.Error(err))
		return false, err
	}
	division, err := p.studentDivision(ctx, student)
	if err != nil {
		return false, err
	}
	if group.Group && division == nil {
		return false, nil
	}

	passedIDs, err := p.repo.Enrollment.ListPassedCourseIDs(ctx, student.ID, p.rules.PassingGrades, p.rules.ResearchGrade)
	if err != nil {
		p.logger.Error("查询已通过课程失败", zap.String("student", student.Name), zap.Error(err))
		return false, err
	}
	passed := make(map[int]struct{}, len(passedIDs))
	for _, id := range passedIDs {
		passed[id] = struct{}{}
	}

	missing, err := p.requiredNotPassed(ctx, group.ID, passed)
	if err != nil || missing {
		return false, err
	}
	if division != nil {
		missing, err := p.requiredNotPassed(ctx, division.ID, passed)
		if err != nil || missing {
			return false, err
		}
	}

	return student.GPA >= p.rules.MinGraduateGPA, nil
}

// CalculateGPA GPA = total_points / (registered - excluded - research)，分母为 0 时取 0
func CalculateGPA(student *model.Student) float64 {
	denominator := student.RegisteredHours - student.ExcludedHours - student.ResearchHours
	if denominator == 0 {
		return 0
	}
	return student.TotalPoints / float64(denominator)
}

// ── 内部辅助方法 ──

func (p *ProgressAggregator) levelFor(passedHours int) int {
	switch {
	case passedHours > p.rules.Level4Hours:
		return 4
	case passedHours > p.rules.Level3Hours:
		return 3
	case passedHours > p.rules.Level2Hours:
		return 2
	default:
		return 0
	}
}

func (p *ProgressAggregator) isPassing(grade string) bool {
	for _, g := range p.rules.PassingGrades {
		if g == grade {
			return true
		}
	}
	return false
}

func (p *ProgressAggregator) isResearchPass(grade string, mark float64) bool {
	return grade == p.rules.ResearchGrade && mark == 0
}

// graduationHoursMet 独立项目分组按分组学时判断，其他按专业方向学时判断
func (p *ProgressAggregator) graduationHoursMet(ctx context.Context, student *model.Student) (bool, error) {
	group, err := p.repo.Division.GetByID(ctx, student.GroupID)
	if err != nil {
		p.logger.Error("查询学生分组失败", zap.String("student", student.Name), zap.Error(err))
		return false, err
	}
	if group.Private {
		return student.PassedHours >= group.Hours, nil
	}

	division, err := p.studentDivision(ctx, student)
	if err != nil || division == nil {
		return false, err
	}
	return student.PassedHours >= division.Hours, nil
}

func (p *ProgressAggregator) studentDivision(ctx context.Context, student *model.Student) (*model.Division, error) {
	if student.DivisionID == nil {
		return nil, nil
	}
	division, err := p.repo.Division.GetByID(ctx, *student.DivisionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		p.logger.Error("查询学生方向失败", zap.String("student", student.Name), zap.Error(err))
		return nil, err
	}
	return division, nil
}

func (p *ProgressAggregator) requiredNotPassed(ctx context.Context, divisionID int, passed map[int]struct{}) (bool, error) {
	required, err := p.repo.Course.ListRequiredByDivision(ctx, divisionID)
	if err != nil {
		p.logger.Error("查询必修课失败", zap.Int("division_id", divisionID), zap.Error(err))
		return false, err
	}
	for _, c := range required {
		if _, ok := passed[c.ID]; !ok {
			return true, nil
		}
	}
	return false, nil
}
