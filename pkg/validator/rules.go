package validator

import (
	"os"
	"path/filepath"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

func (v *Validator) registerCustomRules() {
	v.register("dirpath_or_missing", validateDirPathOrMissing, "{0} must be a directory path")
	v.register("collection", validateCollectionName, "{0} must be a valid collection name")
}

func (v *Validator) register(tag string, fn validator.Func, message string) {
	_ = v.validate.RegisterValidation(tag, fn)
	_ = v.validate.RegisterTranslation(tag, v.trans,
		func(t ut.Translator) error {
			return t.Add(tag, message, true)
		},
		func(t ut.Translator, fe validator.FieldError) string {
			msg, _ := t.T(tag, fe.Field())
			return msg
		},
	)
}

// validateDirPathOrMissing accepts a path that does not exist yet or is a
// directory. Files are rejected.
func validateDirPathOrMissing(fl validator.FieldLevel) bool {
	p := fl.Field().String()
	if p == "" {
		return false
	}
	info, err := os.Stat(filepath.Clean(p))
	if err != nil {
		return os.IsNotExist(err)
	}
	return info.IsDir()
}

// validateCollectionName accepts names usable in MongoDB, Milvus and Qdrant:
// letters, digits, underscore and hyphen, starting with a letter or underscore.
func validateCollectionName(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if s == "" || len(s) > 255 {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z'):
		case i > 0 && (r == '-' || (r >= '0' && r <= '9')):
		default:
			return false
		}
	}
	return true
}
