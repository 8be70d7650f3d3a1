package validation

import (
	"strings"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/pmezard/go-difflib/difflib"
)

var (
	pwdMaxSim      = .7
	pwdAttrSimTag  = "pwdtoosim"
	pwdAttrSimText = "password cannot be similar to your name or email"
)

// PasswordOwner 带密码的请求实现该接口后，密码会与姓名、邮箱做相似度检查
type PasswordOwner interface {
	PasswordAttrs() (password string, attrs []string)
}

func registerPasswordRules() {
	_ = validate.RegisterTranslation(
		pwdAttrSimTag, translator,
		func(t ut.Translator) error { return t.Add(pwdAttrSimTag, pwdAttrSimText, false) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(pwdAttrSimTag)
			return s
		},
	)
}

// PasswordStructRule 结构体级别的密码相似度校验，请求类型在 init 中注册
func PasswordStructRule(sl validator.StructLevel) {
	owner, ok := sl.Current().Interface().(PasswordOwner)
	if !ok {
		return
	}
	pwd, attrs := owner.PasswordAttrs()
	if pwd == "" {
		return
	}
	if TooSimilar(pwd, attrs...) {
		sl.ReportError(pwd, "password", "Password", pwdAttrSimTag, "")
	}
}

// TooSimilar 密码与任一用户属性的相似度达到阈值
func TooSimilar(password string, attrs ...string) bool {
	lpwd := strings.ToLower(password)
	for _, attr := range attrs {
		if attr == "" {
			continue
		}
		candidates := []string{strings.ToLower(attr)}
		// 邮箱同时比较 @ 前的部分
		if local, _, found := strings.Cut(candidates[0], "@"); found {
			candidates = append(candidates, local)
		}
		for _, c := range candidates {
			ratio := difflib.NewMatcher(strings.Split(lpwd, ""), strings.Split(c, "")).QuickRatio()
			if ratio >= pwdMaxSim {
				return true
			}
		}
	}
	return false
}
