// Package validation は作成リクエストの入力検証を提供する。
// go-playground/validatorのタグで項目ごとの制約を宣言し、
// 違反はmodel.APIError（INVALID_REQUEST）に変換して返す。
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hitoshi/memelandia/internal/model"
)

// Validator は構造体タグに基づいて入力を検証する。並行利用可能。
type Validator struct {
	v *validator.Validate
}

// New はValidatorを生成する。エラーメッセージの項目名にはjsonタグ名を使う。
func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
	return &Validator{v: v}
}

// Struct はsを検証し、違反があれば違反項目を列挙した*model.APIErrorを返す。
func (val *Validator) Struct(s any) error {
	err := val.v.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("failed to validate request: %w", err)
	}

	reasons := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		reasons = append(reasons, describe(fe))
	}
	return model.NewInvalidRequestError(strings.Join(reasons, ", "))
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s は必須です", fe.Field())
	case "email":
		return fmt.Sprintf("%s はメールアドレスの形式ではありません", fe.Field())
	case "url", "http_url":
		return fmt.Sprintf("%s はURLの形式ではありません", fe.Field())
	case "max":
		return fmt.Sprintf("%s は%s文字以内で指定してください", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s が不正です (%s)", fe.Field(), fe.Tag())
	}
}
