package api

import (
	"reflect"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var validatorOnce sync.Once

// RegisterValidators installs the custom rules on gin's validator and makes
// field errors report JSON names.
func RegisterValidators() {
	validatorOnce.Do(func() {
		engine, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		engine.RegisterTagNameFunc(jsonFieldName)
		_ = engine.RegisterValidation("notpast", func(fl validator.FieldLevel) bool {
			return notPast(fl.Field().String(), time.Now())
		})
	})
}

func jsonFieldName(field reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name := strings.SplitN(field.Tag.Get(tag), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return field.Name
}

// notPast accepts YYYY-MM-DD dates that are today or later. Unparseable
// values are left to the datetime rule.
func notPast(value string, now time.Time) bool {
	date, err := time.ParseInLocation("2006-01-02", value, now.Location())
	if err != nil {
		return true
	}
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return !date.Before(today)
}
