package service

import (
	"context"
	"fmt"
	"sort"

	"gorm.io/gorm"

	"ultramacro/backend/internal/model"
	"ultramacro/backend/internal/repository"
)

// ── Mock 聚合 ──

type mockRepos struct {
	Regulation *mockRegulationRepo
	Department *mockDepartmentRepo
	Division   *mockDivisionRepo
	Course     *mockCourseRepo
	Student    *mockStudentRepo
	Enrollment *mockEnrollmentRepo
	UploadLog  *mockUploadLogRepo
}

func newMockRepos() *mockRepos {
	m := &mockRepos{
		Regulation: newMockRegulationRepo(),
		Department: newMockDepartmentRepo(),
		Division:   newMockDivisionRepo(),
		Student:    newMockStudentRepo(),
		UploadLog:  &mockUploadLogRepo{},
	}
	m.Course = newMockCourseRepo(m.Division)
	m.Student.divisions = m.Division
	m.Enrollment = newMockEnrollmentRepo(m.Course)
	return m
}

func (m *mockRepos) repository() *repository.Repository {
	return &repository.Repository{
		Regulation: m.Regulation,
		Department: m.Department,
		Division:   m.Division,
		Course:     m.Course,
		Student:    m.Student,
		Enrollment: m.Enrollment,
		UploadLog:  m.UploadLog,
	}
}

// ── 测试数据辅助 ──

func (m *mockRepos) addRegulation(name string) *model.Regulation {
	reg := &model.Regulation{Name: name, MaxGPA: 4}
	_ = m.Regulation.Create(context.Background(), reg)
	return reg
}

func (m *mockRepos) addDepartment(name string) *model.Department {
	dept := &model.Department{Name: name}
	_ = m.Department.Create(context.Background(), dept)
	return dept
}

func (m *mockRepos) addDivision(div *model.Division) *model.Division {
	_ = m.Division.Create(context.Background(), div)
	return div
}

func (m *mockRepos) addCourse(course *model.Course, divisionIDs ...int) *model.Course {
	_ = m.Course.Create(context.Background(), course)
	for _, id := range divisionIDs {
		_ = m.Course.AttachDivision(context.Background(), course.ID, id)
	}
	return course
}

func (m *mockRepos) addStudent(st *model.Student) *model.Student {
	_ = m.Student.Create(context.Background(), st)
	return st
}

// ── Mock RegulationRepository ──

type mockRegulationRepo struct {
	regs   map[int]*model.Regulation
	nextID int
}

func newMockRegulationRepo() *mockRegulationRepo {
	return &mockRegulationRepo{regs: make(map[int]*model.Regulation)}
}

func (m *mockRegulationRepo) Create(_ context.Context, reg *model.Regulation) error {
	m.nextID++
	reg.ID = m.nextID
	cp := *reg
	m.regs[reg.ID] = &cp
	return nil
}

func (m *mockRegulationRepo) GetByID(_ context.Context, id int) (*model.Regulation, error) {
	if r, ok := m.regs[id]; ok {
		cp := *r
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegulationRepo) GetByName(_ context.Context, name string) (*model.Regulation, error) {
	for id := 1; id <= m.nextID; id++ {
		if r, ok := m.regs[id]; ok && r.Name == name {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRegulationRepo) List(_ context.Context) ([]model.Regulation, error) {
	var result []model.Regulation
	for id := 1; id <= m.nextID; id++ {
		if r, ok := m.regs[id]; ok {
			result = append(result, *r)
		}
	}
	return result, nil
}

// ── Mock DepartmentRepository ──

type mockDepartmentRepo struct {
	depts  map[int]*model.Department
	nextID int
}

func newMockDepartmentRepo() *mockDepartmentRepo {
	return &mockDepartmentRepo{depts: make(map[int]*model.Department)}
}

func (m *mockDepartmentRepo) Create(_ context.Context, dept *model.Department) error {
	m.nextID++
	dept.ID = m.nextID
	cp := *dept
	m.depts[dept.ID] = &cp
	return nil
}

func (m *mockDepartmentRepo) GetByID(_ context.Context, id int) (*model.Department, error) {
	if d, ok := m.depts[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) GetByName(_ context.Context, name string) (*model.Department, error) {
	for _, d := range m.depts {
		if d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDepartmentRepo) List(_ context.Context) ([]model.Department, error) {
	var result []model.Department
	for _, d := range m.depts {
		result = append(result, *d)
	}
	return result, nil
}

// ── Mock DivisionRepository ──

type mockDivisionRepo struct {
	divs   map[int]*model.Division
	nextID int
}

func newMockDivisionRepo() *mockDivisionRepo {
	return &mockDivisionRepo{divs: make(map[int]*model.Division)}
}

func (m *mockDivisionRepo) Create(_ context.Context, div *model.Division) error {
	m.nextID++
	div.ID = m.nextID
	cp := *div
	m.divs[div.ID] = &cp
	return nil
}

func (m *mockDivisionRepo) GetByID(_ context.Context, id int) (*model.Division, error) {
	if d, ok := m.divs[id]; ok {
		cp := *d
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDivisionRepo) GetByName(_ context.Context, name string) (*model.Division, error) {
	for id := 1; id <= m.nextID; id++ {
		if d, ok := m.divs[id]; ok && d.Name == name {
			cp := *d
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockDivisionRepo) ListByRegulation(_ context.Context, regulationID int) ([]model.Division, error) {
	var result []model.Division
	for id := 1; id <= m.nextID; id++ {
		if d, ok := m.divs[id]; ok && d.RegulationID == regulationID {
			result = append(result, *d)
		}
	}
	return result, nil
}

func (m *mockDivisionRepo) count() int { return len(m.divs) }

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses   map[int]*model.Course
	links     map[int]map[int]bool // course_id → division_id
	divisions *mockDivisionRepo
	nextID    int
}

func newMockCourseRepo(divisions *mockDivisionRepo) *mockCourseRepo {
	return &mockCourseRepo{
		courses:   make(map[int]*model.Course),
		links:     make(map[int]map[int]bool),
		divisions: divisions,
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	m.nextID++
	course.ID = m.nextID
	cp := *course
	cp.Divisions = nil
	m.courses[course.ID] = &cp
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id int) (*model.Course, error) {
	c, ok := m.courses[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	for divID := range m.links[id] {
		if d, ok := m.divisions.divs[divID]; ok {
			cp.Divisions = append(cp.Divisions, *d)
		}
	}
	return &cp, nil
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for id := 1; id <= m.nextID; id++ {
		if c, ok := m.courses[id]; ok && c.Code == code {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCodeAndDivision(_ context.Context, code string, divisionID int) (*model.Course, error) {
	for id := 1; id <= m.nextID; id++ {
		if c, ok := m.courses[id]; ok && c.Code == code && m.links[id][divisionID] {
			cp := *c
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) AttachDivision(_ context.Context, courseID, divisionID int) error {
	if _, ok := m.courses[courseID]; !ok {
		return fmt.Errorf("course %d not found", courseID)
	}
	if m.links[courseID] == nil {
		m.links[courseID] = make(map[int]bool)
	}
	m.links[courseID][divisionID] = true
	return nil
}

func (m *mockCourseRepo) ListRequiredByDivision(_ context.Context, divisionID int) ([]model.Course, error) {
	var result []model.Course
	for id := 1; id <= m.nextID; id++ {
		if c, ok := m.courses[id]; ok && c.Required && m.links[id][divisionID] {
			result = append(result, *c)
		}
	}
	return result, nil
}

func (m *mockCourseRepo) List(_ context.Context, regulationID *int, offset, limit int) ([]model.Course, int64, error) {
	var all []model.Course
	for id := 1; id <= m.nextID; id++ {
		c, ok := m.courses[id]
		if !ok {
			continue
		}
		if regulationID != nil && !m.inRegulation(id, *regulationID) {
			continue
		}
		all = append(all, *c)
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockCourseRepo) inRegulation(courseID, regulationID int) bool {
	for divID := range m.links[courseID] {
		if d, ok := m.divisions.divs[divID]; ok && d.RegulationID == regulationID {
			return true
		}
	}
	return false
}

func (m *mockCourseRepo) count() int { return len(m.courses) }

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students  map[string]*model.Student
	order     []string
	divisions *mockDivisionRepo
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{students: make(map[string]*model.Student)}
}

func (m *mockStudentRepo) Create(_ context.Context, st *model.Student) error {
	if st.ID == "" {
		st.ID = fmt.Sprintf("stu-%d", len(m.order)+1)
	}
	cp := *st
	cp.Group, cp.Division = nil, nil
	m.students[st.ID] = &cp
	m.order = append(m.order, st.ID)
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	st, ok := m.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *st
	if m.divisions != nil {
		if d, ok := m.divisions.divs[cp.GroupID]; ok {
			g := *d
			cp.Group = &g
		}
		if cp.DivisionID != nil {
			if d, ok := m.divisions.divs[*cp.DivisionID]; ok {
				dv := *d
				cp.Division = &dv
			}
		}
	}
	return &cp, nil
}

func (m *mockStudentRepo) GetByName(_ context.Context, name string) (*model.Student, error) {
	for _, id := range m.order {
		if st := m.students[id]; st.Name == name {
			cp := *st
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByNameForUpdate(ctx context.Context, name string) (*model.Student, error) {
	return m.GetByName(ctx, name)
}

func (m *mockStudentRepo) Update(_ context.Context, st *model.Student) error {
	if _, ok := m.students[st.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	cp := *st
	cp.Group, cp.Division = nil, nil
	m.students[st.ID] = &cp
	return nil
}

func (m *mockStudentRepo) List(_ context.Context, filters *repository.StudentListFilters, offset, limit int) ([]model.Student, int64, error) {
	var all []model.Student
	for _, id := range m.order {
		st := m.students[id]
		if filters != nil && filters.Graduate != nil && st.Graduate != *filters.Graduate {
			continue
		}
		if filters != nil && filters.RegulationID != nil && !m.inRegulation(st, *filters.RegulationID) {
			continue
		}
		all = append(all, *st)
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return paginate(all, offset, limit), int64(len(all)), nil
}

func (m *mockStudentRepo) inRegulation(st *model.Student, regulationID int) bool {
	if d, ok := m.divisions.divs[st.GroupID]; ok && d.RegulationID == regulationID {
		return true
	}
	if st.DivisionID != nil {
		if d, ok := m.divisions.divs[*st.DivisionID]; ok && d.RegulationID == regulationID {
			return true
		}
	}
	return false
}

// get 直接读取存储中的学生（测试断言用）
func (m *mockStudentRepo) get(name string) *model.Student {
	for _, id := range m.order {
		if st := m.students[id]; st.Name == name {
			return st
		}
	}
	return nil
}

// ── Mock EnrollmentRepository ──

type mockEnrollmentRepo struct {
	list    []*model.Enrollment
	courses *mockCourseRepo
	seq     int64
}

func newMockEnrollmentRepo(courses *mockCourseRepo) *mockEnrollmentRepo {
	return &mockEnrollmentRepo{courses: courses}
}

func (m *mockEnrollmentRepo) Create(_ context.Context, e *model.Enrollment) error {
	m.seq++
	if e.ID == "" {
		e.ID = fmt.Sprintf("enr-%d", m.seq)
	}
	e.Seq = m.seq
	cp := *e
	cp.Course = nil
	m.list = append(m.list, &cp)
	return nil
}

func (m *mockEnrollmentRepo) GetByID(_ context.Context, id string) (*model.Enrollment, error) {
	for _, e := range m.list {
		if e.ID == id {
			cp := *e
			if c, ok := m.courses.courses[e.CourseID]; ok {
				cc := *c
				cp.Course = &cc
			}
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) Update(_ context.Context, e *model.Enrollment) error {
	for i, existing := range m.list {
		if existing.ID == e.ID {
			cp := *e
			cp.Course = nil
			m.list[i] = &cp
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) FindDuplicate(_ context.Context, key *model.Enrollment) (*model.Enrollment, error) {
	for _, e := range m.list {
		if e.SeatID == key.SeatID && e.Level == key.Level && e.Semester == key.Semester &&
			e.Year == key.Year && e.Month == key.Month && e.Mark == key.Mark &&
			e.StudentID == key.StudentID && e.CourseID == key.CourseID {
			cp := *e
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockEnrollmentRepo) ListPrior(_ context.Context, studentID string, courseID int, excludeID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.list {
		if e.StudentID == studentID && e.CourseID == courseID && e.ID != excludeID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListByStudent(_ context.Context, studentID string) ([]model.Enrollment, error) {
	var result []model.Enrollment
	for _, e := range m.list {
		if e.StudentID != studentID {
			continue
		}
		cp := *e
		if c, ok := m.courses.courses[e.CourseID]; ok {
			cc := *c
			cp.Course = &cc
		}
		result = append(result, cp)
	}
	return result, nil
}

func (m *mockEnrollmentRepo) ListPassedCourseIDs(_ context.Context, studentID string, passingGrades []string, researchGrade string) ([]int, error) {
	seen := make(map[int]bool)
	var ids []int
	for _, e := range m.list {
		if e.StudentID != studentID || seen[e.CourseID] {
			continue
		}
		passed := e.Grade == researchGrade && e.Mark == 0
		for _, g := range passingGrades {
			if e.Grade == g {
				passed = true
			}
		}
		if passed {
			seen[e.CourseID] = true
			ids = append(ids, e.CourseID)
		}
	}
	return ids, nil
}

// ── Mock UploadLogRepository ──

type mockUploadLogRepo struct {
	logs []model.UploadLog
}

func (m *mockUploadLogRepo) Create(_ context.Context, log *model.UploadLog) error {
	log.ID = fmt.Sprintf("log-%d", len(m.logs)+1)
	m.logs = append(m.logs, *log)
	return nil
}

func (m *mockUploadLogRepo) GetByID(_ context.Context, id string) (*model.UploadLog, error) {
	for i := range m.logs {
		if m.logs[i].ID == id {
			cp := m.logs[i]
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUploadLogRepo) List(_ context.Context, kind string, offset, limit int) ([]model.UploadLog, int64, error) {
	var all []model.UploadLog
	for i := len(m.logs) - 1; i >= 0; i-- {
		if kind == "" || m.logs[i].Kind == kind {
			all = append(all, m.logs[i])
		}
	}
	return paginate(all, offset, limit), int64(len(all)), nil
}

// ── 工具函数 ──

func paginate[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	end := offset + limit
	if limit <= 0 || end > len(items) {
		end = len(items)
	}
	return items[offset:end]
}
