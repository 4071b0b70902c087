// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

// Package validation provides struct validation using go-playground/validator
// v10. It exposes a thread-safe singleton validator instance (the validator
// caches struct metadata, so a single instance is both correct and fast) and
// translates field errors into readable messages.
//
// Example usage:
//
//	type ServerConfig struct {
//	    Port int `validate:"min=1,max=65535"`
//	}
//
//	if err := validation.ValidateStruct(&cfg); err != nil {
//	    return fmt.Errorf("invalid configuration: %w", err)
//	}
package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// FieldError describes a single failed validation rule.
type FieldError struct {
	Field   string
	Tag     string
	Param   string
	message string
}

// Error returns a human-readable message for the failed rule.
func (e *FieldError) Error() string {
	return e.message
}

// StructError aggregates every failed rule for one struct.
type StructError struct {
	Fields []FieldError
}

// Error joins all field messages with "; ".
func (e *StructError) Error() string {
	if len(e.Fields) == 0 {
		return "validation failed"
	}
	msgs := make([]string, 0, len(e.Fields))
	for i := range e.Fields {
		msgs = append(msgs, e.Fields[i].message)
	}
	return strings.Join(msgs, "; ")
}

// ValidateStruct validates s against its `validate` tags.
// Returns nil on success, or a *StructError describing every violation.
func ValidateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		// InvalidValidationError: s was not a struct at all.
		return err
	}

	se := &StructError{Fields: make([]FieldError, 0, len(verrs))}
	for _, fe := range verrs {
		se.Fields = append(se.Fields, FieldError{
			Field:   fe.Field(),
			Tag:     fe.Tag(),
			Param:   fe.Param(),
			message: describe(fe),
		})
	}
	return se
}

// describe renders one validator error as a readable message.
func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s failed validation rule %q", fe.Field(), fe.Tag())
	}
}
