// Package validation проверяет входные формы и возвращает сообщения на французском,
// которые клиент показывает пользователю как есть.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"corail-backend/internal/format"
)

// Error - ошибка валидации одного поля
type Error struct {
	Field   string `json:"field"`
	Message string `json:"error"`
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, message string) *Error {
	return &Error{Field: field, Message: message}
}

type rule struct {
	tag string
	fn  validator.Func
}

var customRules = []rule{
	{"siren", isSiren},
	{"eurodecimal", isEuroDecimal},
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := register(v, customRules); err != nil {
		panic(err)
	}
	return v
}

// RegisterWithGin добавляет пользовательские правила в движок binding gin
func RegisterWithGin() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("validation: движок gin не является validator/v10")
	}
	return register(v, customRules)
}

func register(v *validator.Validate, rules []rule) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	for _, r := range rules {
		if err := v.RegisterValidation(r.tag, r.fn); err != nil {
			return fmt.Errorf("validation: правило %q: %w", r.tag, err)
		}
	}
	return nil
}

// siren - ровно 9 цифр
func isSiren(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if len(s) != 9 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// eurodecimal - положительная сумма в евро ("25", "25.00", "12,30")
func isEuroDecimal(fl validator.FieldLevel) bool {
	cents, err := format.ParsePriceCents(fl.Field().String())
	return err == nil && cents > 0
}

// check запускает validator и переводит первую ошибку поля в сообщение из messages.
// Ключ сообщения - имя поля в json.
func check(form interface{}, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	fe := fieldErrs[0]
	msg, ok := messages[fe.Field()]
	if !ok {
		msg = "Champ invalide : " + fe.Field()
	}
	return newError(fe.Field(), msg)
}

func trim(fields ...*string) {
	for _, f := range fields {
		*f = strings.TrimSpace(*f)
	}
}
