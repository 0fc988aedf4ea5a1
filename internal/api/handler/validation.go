package handler

import (
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// gradeMaxLen 与 enrollments.grade 列宽一致
const gradeMaxLen = 10

var registerOnce sync.Once

// RegisterValidators 向 Gin 的 validator 注册自定义规则，可重复调用
//
//   - grade: 非空、无首尾空白、不超过 gradeMaxLen 个字符（字母等级或阿拉伯文成绩代码）
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("grade", validateGrade)
	})
}

func validateGrade(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || strings.TrimSpace(s) != s {
		return false
	}
	return utf8.RuneCountInString(s) <= gradeMaxLen
}
