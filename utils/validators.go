package utils

import (
	"sync"

	"restaurant/entity"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidators adds the ordertype and orderstatus tags to gin's validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("ordertype", func(fl validator.FieldLevel) bool {
			return entity.OrderType(fl.Field().String()).Valid()
		})
		_ = v.RegisterValidation("orderstatus", func(fl validator.FieldLevel) bool {
			return entity.OrderStatus(fl.Field().String()).Valid()
		})
	})
}
