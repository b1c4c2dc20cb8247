// Package validation checks configuration and command line input.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Both report failures as
// errors.AppError values with the INVALID_INPUT code.
//
// # Struct Tag Validation
//
//	type RequestConfig struct {
//	    Backend string `mapstructure:"backend" validate:"oneof=net fast"`
//	}
//	err := validation.Validate(cfg)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.AbsoluteURL("url", rawURL).Token("method", method)
//	err := v.Err()
package validation
