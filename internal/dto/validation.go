package dto

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"github.com/kassenwart/kassenwart_backend/internal/utils"
)

// amountValidator accepts monetary amount strings that parse to a
// non-negative decimal, tolerating a comma as the decimal separator.
func amountValidator(fl validator.FieldLevel) bool {
	amount, ok := utils.ParseAmount(fl.Field().String())
	return ok && !amount.IsNegative()
}

func init() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		_ = v.RegisterValidation("amount", amountValidator)
	}
}
