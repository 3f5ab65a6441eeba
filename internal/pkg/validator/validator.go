// SPDX-License-Identifier: AGPL-3.0-or-later
// Copyright (c) 2025-2026 campuskit contributors
// https://github.com/campuskit/campuskit

// Package validator wraps go-playground/validator with the custom tags
// and error formatting used across the API layer.
package validator

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"github.com/campuskit/campuskit/internal/pkg/crypto"
)

// Validator wraps the underlying validate instance.
type Validator struct {
	v *validator.Validate
}

var (
	instance *Validator
	once     sync.Once
)

// registrationNumberRe accepts formats like 2019-CS-373 or FA21-BSE-012.
var registrationNumberRe = regexp.MustCompile(`^[A-Za-z0-9]{2,6}-[A-Za-z0-9]{2,6}-[A-Za-z0-9]{1,6}$`)

// New returns the shared Validator instance.
func New() *Validator {
	once.Do(func() {
		v := validator.New()

		// Report field names from json tags so validation errors line
		// up with the wire payload.
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})

		mustRegister(v, "password_strength", validatePasswordStrength)
		mustRegister(v, "registration_number", validateRegistrationNumber)

		instance = &Validator{v: v}
	})
	return instance
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Validate validates a struct using its validate tags.
func (val *Validator) Validate(s interface{}) error {
	return val.v.Struct(s)
}

// ValidateVar validates a single variable against a tag expression.
func (val *Validator) ValidateVar(field interface{}, tag string) error {
	return val.v.Var(field, tag)
}

// ValidationErrors converts a validator error into a field→message map
// keyed by json field name.
func ValidationErrors(err error) map[string]string {
	result := make(map[string]string)
	if err == nil {
		return result
	}

	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		result["_error"] = err.Error()
		return result
	}

	for _, fe := range verrs {
		result[fe.Field()] = messageFor(fe)
	}
	return result
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "password_strength":
		return "does not meet the password policy"
	case "registration_number":
		return "must be a valid registration number"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

func validatePasswordStrength(fl validator.FieldLevel) bool {
	return crypto.DefaultPasswordPolicy().ValidatePassword(fl.Field().String()).Valid
}

func validateRegistrationNumber(fl validator.FieldLevel) bool {
	return registrationNumberRe.MatchString(fl.Field().String())
}

// Validate validates a struct using the shared instance.
func Validate(s interface{}) error {
	return New().Validate(s)
}

// ValidateVar validates a single variable using the shared instance.
func ValidateVar(field interface{}, tag string) error {
	return New().ValidateVar(field, tag)
}

// GetValidationErrors converts a validation error into a field→message
// map using the shared formatting.
func GetValidationErrors(err error) map[string]string {
	return ValidationErrors(err)
}
