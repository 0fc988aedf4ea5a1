package service

import (
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"ultramacro/backend/internal/dto"
)

// ── Excel 解析器 ──────────────────────────────────────────────
//
// 职责：将上传的工作簿解析为方向行、课程行或成绩单（表头 + 成绩行）。
//
// 约定：
//   - 每个 Sheet 的第 1 行是列标题行，不属于数据
//   - 数据区先去掉全空行、全空列，再按固定位置读取
//   - 成绩单格式为教务系统导出的阿拉伯语版式，按位置而非列名解析
//   - 结构不符合约定时整份文件失败，不做部分解析
// ─────────────────────────────────────────────────────────────

var (
	ErrWorkbookUnreadable = errors.New("无法读取 Excel 文件")
	ErrWorkbookMalformed  = errors.New("Excel 文件结构不符合约定")
)

// ── 固定映射表 ──

// levelWords 年级词 → 年级
var levelWords = map[string]int{
	"الاول":  1,
	"الأول":  1,
	"الثاني": 2,
	"الثانى": 2,
	"الثالث": 3,
	"الرابع": 4,
}

// semesterWords 学期词 → 学期（3 为夏季学期）
var semesterWords = map[string]int{
	"الاول":  1,
	"الأول":  1,
	"الثاني": 2,
	"الثانى": 2,
	"الصيفي": 3,
	"الصيفى": 3,
}

// departmentAliases 表格中出现的院系写法 → 院系标准名称
var departmentAliases = map[string]string{
	"فيزياء":      "Physics",
	"فيزياء عامة": "Physics",
	"فيزياء عامه": "Physics",
	"الفيزياء":    "Physics",
	"الكيمياء":    "Chemistry",
	"Chemistry":   "Chemistry",
	"الرياضيات":   "Mathematics",
	"Mathematics": "Mathematics",
	"النبات":      "Botany",
	"Botany":      "Botany",
	"علم الحيوان": "Zoology",
	"Zoology":     "Zoology",
	"الجيولوجيا":  "Geology",
	"Geology":     "Geology",
}

// divisionFixes 方向名称修正，按顺序各替换第一处
var divisionFixes = [][2]string{
	{"-", "/"},
	{"ه", "ة"},
	{"الكيمياءعلم", "الكيمياء/علم"},
	{"الكيمياءالكيمياء", "الكيمياء/الكيمياء"},
	{"الكيمياءالنبات", "الكيمياء/النبات"},
	{"الكيمياءميكروبيولوجى", "الكيمياء/ميكروبيولوجى"},
	{"الكيمياءالجيولوجيا", "الكيمياء/الجيولوجيا"},
	{"الاحصاء", "الإحصاء"},
}

// failMarks 不及格 / 缺考 / 取消 / 退课，分数记为 -1
var failMarks = map[string]struct{}{
	"راسب": {},
	"غـ":   {},
	"حر":   {},
	"رل":   {},
}

// zeroMarks 通过（不计分）/ 免考，分数记为 0
var zeroMarks = map[string]struct{}{
	"ناجح": {},
	"عذر":  {},
}

const (
	transcriptHeaderRows = 7 // 成绩单正文前的表头块行数
	transcriptBlockRows  = 4 // 每名学生占用的行数：课程名 / 代码 / 学时 / 成绩
	transcriptBlockCols  = 3 // 每门课程占用的列数：等级 / 绩点 / 分数
)

// NormalizeDepartment 将表格中的院系写法映射为标准名称，未知写法返回 false
func NormalizeDepartment(name string) (string, bool) {
	v, ok := departmentAliases[name]
	return v, ok
}

// ═══════════════════════════════════════════════════════════
// ExtractDivisions：解析方向表
// ═══════════════════════════════════════════════════════════
//
// 第一个 Sheet，列：院系（"A+B" 或 "A"）/ 名称 / 学时 / 是否独立项目

func ExtractDivisions(r io.Reader) ([]dto.DivisionRow, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表 %q 失败: %v", ErrWorkbookMalformed, sheet, err)
	}

	var result []dto.DivisionRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		deps := strings.Split(cellAt(row, 0), "+")
		for j := range deps {
			deps[j] = strings.TrimSpace(deps[j])
		}
		item := dto.DivisionRow{
			Department1: deps[0],
			Name:        strings.TrimSpace(cellAt(row, 1)),
		}
		if len(deps) > 1 {
			item.Department2 = &deps[1]
		}
		if item.Name == "" {
			return nil, malformed(sheet, i, 1, "方向名称为空")
		}

		hours, err := parseInt(cellAt(row, 2))
		if err != nil {
			return nil, malformed(sheet, i, 2, "学时不是整数: %q", cellAt(row, 2))
		}
		item.Hours = hours
		item.Private = parseFlag(cellAt(row, 3))

		result = append(result, item)
	}

	return result, nil
}

// ═══════════════════════════════════════════════════════════
// ExtractCourses：解析学分表
// ═══════════════════════════════════════════════════════════
//
// 列：年级 / 学期 / 方向 / 代码 / (未使用) / 必修(=1) / 名称 / 讲授学时 / 实践学时 / 学分

func ExtractCourses(r io.Reader, sheet string) ([]dto.CourseRow, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: 缺少工作表 %q", ErrWorkbookMalformed, sheet)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表 %q 失败: %v", ErrWorkbookMalformed, sheet, err)
	}

	var result []dto.CourseRow
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		if isBlankRow(row) {
			continue
		}

		ints := make([]int, 0, 5)
		for _, col := range []int{0, 1, 7, 8, 9} {
			v, err := parseInt(cellAt(row, col))
			if err != nil {
				return nil, malformed(sheet, i, col, "不是整数: %q", cellAt(row, col))
			}
			ints = append(ints, v)
		}

		item := dto.CourseRow{
			Level:          ints[0],
			Semester:       ints[1],
			Division:       strings.TrimSpace(cellAt(row, 2)),
			Code:           strings.TrimSpace(cellAt(row, 3)),
			Required:       isOne(cellAt(row, 5)),
			Name:           strings.TrimSpace(cellAt(row, 6)),
			LectureHours:   ints[2],
			PracticalHours: ints[3],
			CreditHours:    ints[4],
		}
		if item.Division == "" || item.Code == "" || item.Name == "" {
			return nil, malformed(sheet, i, 2, "方向 / 代码 / 名称不能为空")
		}

		result = append(result, item)
	}

	return result, nil
}

// ═══════════════════════════════════════════════════════════
// ExtractTranscript：解析成绩单
// ═══════════════════════════════════════════════════════════
//
// 表头取自第一个 Sheet 的前三行：
//   - 第 0 行  "...-<年份>"
//   - 第 1 行  "<规章> - <…年级词> - <…学期词> - <月份>"
//   - 第 2 行  "... : <方向路径>"，路径含 "/" 时前段为院系
//
// 正文来自所有 Sheet：跳过 7 行表头块（末行恰有 2 个非空单元格时再去掉 2 行页脚），
// 之后以 4 行 × 3 列为一个成绩块扫描，最后两列为学生姓名与座位号。

func ExtractTranscript(r io.Reader) (*dto.Transcript, error) {
	f, err := openWorkbook(r)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: 工作簿没有工作表", ErrWorkbookMalformed)
	}

	first, err := readGrid(f, sheets[0])
	if err != nil {
		return nil, err
	}
	headers, err := extractHeaders(first.dropEmpty(), sheets[0])
	if err != nil {
		return nil, err
	}

	transcript := &dto.Transcript{Headers: *headers, Content: []dto.TranscriptRow{}}
	for _, sheet := range sheets {
		g, err := readGrid(f, sheet)
		if err != nil {
			return nil, err
		}
		rows, err := extractBody(g.dropEmpty(), sheet)
		if err != nil {
			return nil, err
		}
		transcript.Content = append(transcript.Content, rows...)
	}

	return transcript, nil
}

func extractHeaders(g grid, sheet string) (*dto.TranscriptHeaders, error) {
	if len(g) < 3 {
		return nil, fmt.Errorf("%w: sheet %q 表头不足 3 行", ErrWorkbookMalformed, sheet)
	}
	h := &dto.TranscriptHeaders{}

	// 年份
	yearCell, _ := g.firstValue(0)
	parts := strings.Split(yearCell, "-")
	if len(parts) < 2 {
		return nil, malformed(sheet, 0, 0, "无法识别年份: %q", yearCell)
	}
	h.Year = strings.TrimSpace(parts[1])

	// 规章 / 年级 / 学期 / 月份
	sessionCell, _ := g.firstValue(1)
	parts = strings.Split(sessionCell, "-")
	if len(parts) < 4 {
		return nil, malformed(sheet, 1, 0, "无法识别考试信息: %q", sessionCell)
	}
	h.Regulation = strings.TrimSpace(parts[0])

	levelFields := strings.Fields(parts[1])
	if len(levelFields) < 2 {
		return nil, malformed(sheet, 1, 0, "无法识别年级: %q", parts[1])
	}
	if v, ok := levelWords[levelFields[1]]; ok {
		h.Level = &v
	}
	if semFields := strings.Fields(parts[2]); len(semFields) > 2 {
		if v, ok := semesterWords[semFields[2]]; ok {
			h.Semester = &v
		}
	}
	h.Month = dropFirstRune(parts[3])

	// 方向路径
	divisionCell, _ := g.firstValue(2)
	parts = strings.Split(divisionCell, " : ")
	if len(parts) < 2 {
		return nil, malformed(sheet, 2, 0, "无法识别方向: %q", divisionCell)
	}
	division := parts[1]
	if strings.Contains(division, "/") {
		segs := strings.Split(division, "/")
		for i := range segs {
			segs[i] = strings.TrimSpace(segs[i])
		}
		n := len(segs)
		var department string
		if n < 4 {
			department = segs[n-2]
			division = segs[n-1]
		} else {
			department = segs[n-3]
			division = strings.Join(segs[n-2:], "/")
		}
		if v, ok := departmentAliases[department]; ok {
			h.Department = &v
		}
	}
	h.Division = fixDivisionName(division)

	return h, nil
}

func extractBody(g grid, sheet string) ([]dto.TranscriptRow, error) {
	end := len(g)
	if end > 0 && g.countValues(end-1) == 2 {
		end -= 2
	}
	if end <= transcriptHeaderRows {
		return nil, nil
	}
	body := g[transcriptHeaderRows:end].dropEmpty()

	width := body.width()
	if width < 6 {
		return nil, nil
	}
	// 去掉前 4 列与最后 1 列，单个空格视为空单元格
	cells := make(grid, len(body))
	for i, row := range body {
		cells[i] = make([]string, 0, width-5)
		for _, v := range row[4 : width-1] {
			if v == " " {
				v = ""
			}
			cells[i] = append(cells[i], v)
		}
	}

	ncols := width - 5
	var result []dto.TranscriptRow
	for r := 0; r < len(cells); r += transcriptBlockRows {
		for c := 0; c < ncols-2; c += transcriptBlockCols {
			if cells[r][c] == "" {
				continue
			}
			if r+3 >= len(cells) {
				return nil, malformed(sheet, transcriptHeaderRows+r, c, "成绩块不完整")
			}
			row, err := parseTranscriptBlock(cells, r, c)
			if err != nil {
				return nil, fmt.Errorf("%w: sheet %q 成绩块(%d,%d): %v", ErrWorkbookMalformed, sheet, r, c, err)
			}
			result = append(result, *row)
		}
	}

	return result, nil
}

// parseTranscriptBlock 解析以 (r, c) 为左上角的一个成绩块
func parseTranscriptBlock(cells grid, r, c int) (*dto.TranscriptRow, error) {
	last := len(cells[r]) - 1

	seat, err := strconv.ParseFloat(strings.TrimSpace(cells[r][last]), 64)
	if err != nil {
		return nil, fmt.Errorf("座位号无效: %q", cells[r][last])
	}

	code := trimEnds(cells[r+1][c])
	code = strings.ReplaceAll(strings.ToUpper(code), " ", "")

	hourFields := strings.Fields(cells[r+2][c])
	if len(hourFields) < 3 {
		return nil, fmt.Errorf("学时格式无效: %q", cells[r+2][c])
	}
	fullMark, err := strconv.Atoi(hourFields[0])
	if err != nil {
		return nil, fmt.Errorf("满分不是整数: %q", hourFields[0])
	}
	hours, err := strconv.Atoi(hourFields[2])
	if err != nil {
		return nil, fmt.Errorf("学时不是整数: %q", hourFields[2])
	}

	grade := cells[r+3][c]
	if grade == "" {
		return nil, errors.New("等级为空")
	}
	var points float64
	if v := strings.TrimSpace(cells[r+3][c+1]); v != "" {
		if points, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("绩点无效: %q", v)
		}
	}
	mark, err := parseMark(cells[r+3][c+2])
	if err != nil {
		return nil, err
	}

	course := strings.Replace(cells[r][c], ")", "", 1)
	course = strings.Replace(course, "(", "", 1)

	return &dto.TranscriptRow{
		SeatID:   int(seat),
		Student:  cells[r][last-1],
		Course:   course,
		Code:     code,
		Hours:    hours,
		Grade:    grade,
		Points:   points,
		Mark:     mark,
		FullMark: fullMark,
	}, nil
}

// parseMark 解析分数列，特殊成绩词按固定规则折算
func parseMark(v string) (float64, error) {
	if _, ok := failMarks[v]; ok {
		return -1, nil
	}
	if _, ok := zeroMarks[v]; ok {
		return 0, nil
	}
	mark, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	if err != nil {
		return 0, fmt.Errorf("分数无效: %q", v)
	}
	return mark, nil
}

func fixDivisionName(name string) string {
	for _, fix := range divisionFixes {
		name = strings.Replace(name, fix[0], fix[1], 1)
	}
	return name
}

// ── grid ──

// grid 去掉列标题行后的单元格矩阵，每行等宽，"" 表示空单元格
type grid [][]string

func readGrid(f *excelize.File, sheet string) (grid, error) {
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: 读取工作表 %q 失败: %v", ErrWorkbookMalformed, sheet, err)
	}
	if len(rows) <= 1 {
		return grid{}, nil
	}
	rows = rows[1:]

	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	g := make(grid, len(rows))
	for i, row := range rows {
		g[i] = make([]string, width)
		copy(g[i], row)
	}
	return g, nil
}

func (g grid) width() int {
	if len(g) == 0 {
		return 0
	}
	return len(g[0])
}

// dropEmpty 去掉全空行与全空列
func (g grid) dropEmpty() grid {
	keepCols := make([]int, 0, g.width())
	for c := 0; c < g.width(); c++ {
		for r := range g {
			if g[r][c] != "" {
				keepCols = append(keepCols, c)
				break
			}
		}
	}

	out := make(grid, 0, len(g))
	for _, row := range g {
		if isBlankRow(row) {
			continue
		}
		kept := make([]string, len(keepCols))
		for i, c := range keepCols {
			kept[i] = row[c]
		}
		out = append(out, kept)
	}
	return out
}

func (g grid) firstValue(r int) (string, bool) {
	for _, v := range g[r] {
		if v != "" {
			return v, true
		}
	}
	return "", false
}

func (g grid) countValues(r int) int {
	n := 0
	for _, v := range g[r] {
		if v != "" {
			n++
		}
	}
	return n
}

// ── 内部辅助函数 ──

func openWorkbook(r io.Reader) (*excelize.File, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkbookUnreadable, err)
	}
	return f, nil
}

func malformed(sheet string, row, col int, format string, args ...interface{}) error {
	return fmt.Errorf("%w: sheet %q 第 %d 行第 %d 列: %s",
		ErrWorkbookMalformed, sheet, row+1, col+1, fmt.Sprintf(format, args...))
}

func cellAt(row []string, i int) string {
	if i < len(row) {
		return row[i]
	}
	return ""
}

func isBlankRow(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}

// parseInt 接受 "3" 或 "3.0" 这类整数值
func parseInt(v string) (int, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.Atoi(v); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || f != math.Trunc(f) {
		return 0, fmt.Errorf("不是整数: %q", v)
	}
	return int(f), nil
}

// parseFlag 非空且非 0 / false 即为真
func parseFlag(v string) bool {
	v = strings.TrimSpace(strings.ToLower(v))
	if v == "" || v == "false" {
		return false
	}
	if f, err := strconv.ParseFloat(v, 64); err == nil {
		return f != 0
	}
	return true
}

func isOne(v string) bool {
	f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return err == nil && f == 1
}

// trimEnds 去掉首尾各一个字符（按 rune）
func trimEnds(s string) string {
	runes := []rune(s)
	if len(runes) < 2 {
		return ""
	}
	return string(runes[1 : len(runes)-1])
}

func dropFirstRune(s string) string {
	runes := []rune(s)
	if len(runes) == 0 {
		return ""
	}
	return string(runes[1:])
}
