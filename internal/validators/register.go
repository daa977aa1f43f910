package validators

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

// Register hooks the custom rules into gin's binding validator. Call
// once at startup.
func Register() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	if err := v.RegisterValidation("service_category", ServiceCategoryRule); err != nil {
		return err
	}
	if err := v.RegisterValidation("delivery_option", DeliveryOptionRule); err != nil {
		return err
	}
	if err := v.RegisterValidation("payment_method", PaymentMethodRule); err != nil {
		return err
	}
	return v.RegisterValidation("coordinate", CoordinateRule)
}
