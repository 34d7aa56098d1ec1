// Package validation registers custom binding rules on gin's validator engine.
package validation

import (
	"fmt"
	"sync"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var mu sync.Mutex

// RegisterStringRule adds a struct tag rule that accepts empty strings and
// strings for which ok returns true. Registering a tag twice replaces it.
func RegisterStringRule(tag string, ok func(string) bool) error {
	mu.Lock()
	defer mu.Unlock()

	v, found := binding.Validator.Engine().(*validator.Validate)
	if !found {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	return v.RegisterValidation(tag, func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || ok(s)
	})
}

// MustRegisterStringRule is RegisterStringRule for startup wiring.
func MustRegisterStringRule(tag string, ok func(string) bool) {
	if err := RegisterStringRule(tag, ok); err != nil {
		panic(err)
	}
}
