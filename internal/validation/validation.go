// Package validation 基于 struct tag 的声明式参数校验
package validation

import (
	"reflect"
	"regexp"
	"strings"
	"sync"

	"akademi/internal/model/course"
	"akademi/pkg/response"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// FailedMessage 校验失败时的统一提示
const FailedMessage = "validation failed"

var (
	lettersSpacesTag   = "letters_spaces"
	lettersSpacesText  = "{0} may only contain letters and spaces"
	lettersSpacesRegex = regexp.MustCompile(`^[\p{L} ]+$`)

	levelTag  = "level"
	levelText = "{0} must be one of: " + strings.Join(course.Levels, ", ")

	dniTag   = "dni"
	dniText  = "{0} must contain between 7 and 10 digits"
	dniRegex = regexp.MustCompile(`^[0-9]{7,10}$`)

	requiredText = "{0} is required"
)

var (
	once       sync.Once
	validate   *validator.Validate
	translator ut.Translator
)

func instance() (*validator.Validate, ut.Translator) {
	once.Do(func() {
		english := en.New()
		uni := ut.New(english, english)
		translator, _ = uni.GetTranslator("en")

		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = en_translations.RegisterDefaultTranslations(validate, translator)

		// 错误中使用 JSON 字段名
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		_ = validate.RegisterValidation(lettersSpacesTag, lettersSpacesValidation)
		registerTranslation(lettersSpacesTag, lettersSpacesText)

		_ = validate.RegisterValidation(levelTag, levelValidation)
		registerTranslation(levelTag, levelText)

		_ = validate.RegisterValidation(dniTag, dniValidation)
		registerTranslation(dniTag, dniText)

		registerTranslation("required", requiredText, true)
		registerPasswordRules()
	})
	return validate, translator
}

// RegisterStructRule 注册结构体级别校验
func RegisterStructRule(fn validator.StructLevelFunc, types ...any) {
	v, _ := instance()
	v.RegisterStructValidation(fn, types...)
}

func registerTranslation(tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct 校验结构体，失败时返回带字段错误的 InvalidParameter
func Struct(s any) *response.BusinessError {
	v, trans := instance()

	err := v.Struct(s)
	if err == nil {
		return nil
	}

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return response.NewBusinessError(
			response.WithErrorCode(response.InvalidParameter),
			response.WithErrorMessage(FailedMessage),
			response.WithError(err),
		)
	}

	fields := make(map[string]string, len(validationErrs))
	for _, fe := range validationErrs {
		name := fieldPath(fe)
		if _, exists := fields[name]; !exists {
			fields[name] = fe.Translate(trans)
		}
	}

	return response.NewBusinessError(
		response.WithErrorCode(response.InvalidParameter),
		response.WithErrorMessage(FailedMessage),
		response.WithFields(fields),
	)
}

// Field 构造单字段校验错误，供服务层在校验之外发现的字段问题使用
func Field(name, msg string) *response.BusinessError {
	return response.NewBusinessError(
		response.WithErrorCode(response.InvalidParameter),
		response.WithErrorMessage(FailedMessage),
		response.WithFields(map[string]string{name: msg}),
	)
}

// fieldPath 去掉最外层结构体名：UpdateCourseRequest.title -> title
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return fe.Field()
}

func lettersSpacesValidation(fl validator.FieldLevel) bool {
	return lettersSpacesRegex.MatchString(fl.Field().String())
}

func levelValidation(fl validator.FieldLevel) bool {
	switch course.Level(fl.Field().String()) {
	case course.LevelBasic, course.LevelIntermediate, course.LevelAdvanced:
		return true
	}
	return false
}

func dniValidation(fl validator.FieldLevel) bool {
	return dniRegex.MatchString(fl.Field().String())
}
