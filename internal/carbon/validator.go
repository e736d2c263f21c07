package carbon

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator"
)

type RequestValidator struct {
	validator *validator.Validate
}

func NewRequestValidator() *RequestValidator {
	v := validator.New()
	err := v.RegisterValidation("insertIndexes", insertIndexesValidator)
	if err != nil {
		return nil
	}

	err = v.RegisterValidation("jsonDocument", jsonDocumentValidator)
	if err != nil {
		return nil
	}
	return &RequestValidator{v}
}

func (rv *RequestValidator) Validate(i interface{}) error {
	if err := rv.validator.Struct(i); err != nil {
		_, ok := err.(validator.ValidationErrors)
		if !ok {
			return nil
		}
		return err
	}
	return nil
}

// Ключи вставок - номера параграфов начиная с 1, значения не пустые.
func insertIndexesValidator(fl validator.FieldLevel) bool {
	field := fl.Field()
	if field.Kind() != reflect.Map {
		return false
	}
	for _, key := range field.MapKeys() {
		idx, err := strconv.Atoi(key.String())
		if err != nil || idx < 1 {
			return false
		}
		if strings.TrimSpace(field.MapIndex(key).String()) == "" {
			return false
		}
	}
	return true
}

// Документ передается объектом или строкой с JSON.
func jsonDocumentValidator(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(string(fl.Field().Bytes()))
	return strings.HasPrefix(raw, "{") || strings.HasPrefix(raw, `"`)
}
