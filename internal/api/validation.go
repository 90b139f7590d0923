package api

import (
	"moneybase/internal/domain" // Category and operation type sets
	"sync"                      // Register once per process

	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Custom validation tags
)

var registerOnce sync.Once

// registerValidators adds the closed-set tags used in request structs
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
			return domain.Category(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("operation_type", func(fl validator.FieldLevel) bool {
			return domain.OperationType(fl.Field().String()).Valid()
		})
	})
}
