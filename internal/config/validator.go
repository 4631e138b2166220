// internal/config/validator.go
//
// Thin wrapper around go-playground/validator.
//
// Context
// -------
// `internal/config/loader.go` calls `validateStruct` immediately after it
// unmarshals the merged Koanf tree into a `Config` instance and applies
// defaults.  Any validation error aborts startup.
//
// Built-in tags cover most fields.  One struct-level rule is registered
// here: the storage driver decides whether a local directory or an S3
// bucket is required.

package config

import "github.com/go-playground/validator/v10"

//
// validator instance (package-level singleton)
//

var v = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterStructValidation(storageRules, Storage{})
	return val
}

//
// custom rules
//

func storageRules(sl validator.StructLevel) {
	s := sl.Current().Interface().(Storage)
	switch s.Driver {
	case "local":
		if s.LocalDir == "" {
			sl.ReportError(s.LocalDir, "LocalDir", "local_dir", "required_for_local", "")
		}
	case "s3":
		if s.S3.Bucket == "" {
			sl.ReportError(s.S3.Bucket, "S3.Bucket", "bucket", "required_for_s3", "")
		}
	}
}

//
// public API
//

// validateStruct returns the first validation error, or nil on success.
func validateStruct(c *Config) error {
	return v.Struct(c)
}
