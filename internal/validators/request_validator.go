package validators

import (
	"github.com/go-playground/validator/v10"

	"pasugo/internal/models"
)

// ServiceCategoryRule validates the service_category binding tag.
func ServiceCategoryRule(fl validator.FieldLevel) bool {
	return models.ValidServiceCategory(models.ServiceCategory(fl.Field().String()))
}

// DeliveryOptionRule validates the delivery_option binding tag.
func DeliveryOptionRule(fl validator.FieldLevel) bool {
	opt := models.DeliveryOption(fl.Field().String())
	return opt == models.DeliveryCurrentLocation || opt == models.DeliveryCustomAddress
}

// PaymentMethodRule validates the payment_method binding tag.
func PaymentMethodRule(fl validator.FieldLevel) bool {
	method := models.PaymentMethod(fl.Field().String())
	return method == models.PaymentMethodCash || method == models.PaymentMethodElectronic
}
