package api

import (
	"github.com/go-playground/validator/v10"

	"github.com/preetambaheti/Farmunity-marketplace/internal/domain/entity"
)

type CustomValidator struct {
	validator *validator.Validate
}

// NewValidator returns the echo validator with the marketplace tags
// registered: userid and listingref.
func NewValidator() *CustomValidator {
	v := validator.New()
	_ = v.RegisterValidation("userid", func(fl validator.FieldLevel) bool {
		return entity.ValidUserID(fl.Field().String())
	})
	_ = v.RegisterValidation("listingref", func(fl validator.FieldLevel) bool {
		return entity.ValidListingRef(fl.Field().String())
	})
	return &CustomValidator{validator: v}
}

func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
