// Package form はTodo作成フォームの入力値と検証を扱います。
package form

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	FieldName        = "name"
	FieldDescription = "description"
)

// State は作成中のTodoの入力値です。送信に成功したら Reset で空に戻します。
type State struct {
	Name        string `form:"name" validate:"required"`
	Description string `form:"description" validate:"required"`
}

// Reset は入力値をクリアします。
func (s *State) Reset() {
	s.Name = ""
	s.Description = ""
}

// FieldError は1つのフィールドの検証エラーです。
type FieldError struct {
	Field   string
	Message string
}

// ValidationError は未入力のフィールドをすべて保持します。
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		msgs = append(msgs, fe.Message)
	}
	return strings.Join(msgs, ", ")
}

// Message はフィールドのエラーメッセージを返します。エラーが無ければ空文字です。
func (e *ValidationError) Message(field string) string {
	for _, fe := range e.Errors {
		if fe.Field == field {
			return fe.Message
		}
	}
	return ""
}

// Has はフィールドにエラーがあるかを返します。
func (e *ValidationError) Has(field string) bool {
	return e.Message(field) != ""
}

var messages = map[string]string{
	FieldName:        "Name is required",
	FieldDescription: "Description is required",
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// エラーのフィールド名を form タグの名前にする
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// Validate は name と description が空でないことを確認します。
// 失敗した場合は *ValidationError を返します。
func Validate(s State) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	out := &ValidationError{}
	for _, fe := range verrs {
		msg, ok := messages[fe.Field()]
		if !ok {
			msg = fe.Field() + " is invalid"
		}
		out.Errors = append(out.Errors, FieldError{Field: fe.Field(), Message: msg})
	}
	return out
}
