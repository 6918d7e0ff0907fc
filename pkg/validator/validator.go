// Package validator wraps go-playground/validator for configuration structs.
// Field names in messages are the mapstructure keys users write in config
// files, and messages are translated to English.
package validator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	en_translations "github.com/go-playground/validator/v10/translations/en"
)

// Validator wraps go-playground/validator with translated messages.
type Validator struct {
	validate *validator.Validate
	trans    ut.Translator
}

var (
	globalValidator *Validator
	once            sync.Once
)

// Global returns the shared validator, initializing it on first use.
func Global() *Validator {
	once.Do(func() {
		globalValidator = New()
	})
	return globalValidator
}

// New creates a Validator with custom rules registered.
func New() *Validator {
	v := &Validator{validate: validator.New(validator.WithRequiredStructEnabled())}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	v.trans, _ = uni.GetTranslator("en")
	_ = en_translations.RegisterDefaultTranslations(v.validate, v.trans)

	v.registerCustomRules()
	return v
}

// Struct validates s and returns one error per failed field, prefixed
// with section, e.g. "vector.backend must be one of [local milvus qdrant]".
func (v *Validator) Struct(section string, s any) []error {
	err := v.validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []error{err}
	}

	prefix := ""
	if section != "" {
		prefix = section + "."
	}
	out := make([]error, 0, len(verrs))
	for _, fe := range verrs {
		msg := fe.Translate(v.trans)
		out = append(out, fmt.Errorf("%s%s", prefix, strings.Replace(msg, fe.Field(), fieldPath(fe), 1)))
	}
	return out
}

// fieldPath strips the root struct name from the namespace.
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

// Var validates a single value against tag.
func (v *Validator) Var(field any, tag string) error {
	return v.validate.Var(field, tag)
}
