// ASG CamServer - Remote Camera Control for Smart Glasses
// Copyright 2026 ASG CamServer Authors
// SPDX-License-Identifier: Apache-2.0
// https://github.com/asgcam/camserver

package validation

import (
	"errors"
	"strings"
	"testing"
)

type sample struct {
	Port int    `validate:"min=1,max=65535"`
	Mode string `validate:"oneof=json console"`
}

func TestValidateStruct_Valid(t *testing.T) {
	if err := ValidateStruct(&sample{Port: 8089, Mode: "json"}); err != nil {
		t.Errorf("Expected valid struct, got %v", err)
	}
}

func TestValidateStruct_CollectsAllViolations(t *testing.T) {
	err := ValidateStruct(&sample{Port: 0, Mode: "bogus"})
	if err == nil {
		t.Fatal("Expected validation error")
	}

	var se *StructError
	if !errors.As(err, &se) {
		t.Fatalf("Expected *StructError, got %T", err)
	}
	if len(se.Fields) != 2 {
		t.Errorf("Expected 2 field errors, got %d", len(se.Fields))
	}

	msg := err.Error()
	if !strings.Contains(msg, "Port must be at least 1") {
		t.Errorf("Expected min message, got %q", msg)
	}
	if !strings.Contains(msg, "Mode must be one of") {
		t.Errorf("Expected oneof message, got %q", msg)
	}
}

func TestValidateStruct_MaxViolation(t *testing.T) {
	err := ValidateStruct(&sample{Port: 70000, Mode: "console"})
	if err == nil {
		t.Fatal("Expected validation error for out-of-range port")
	}
	if !strings.Contains(err.Error(), "Port must be at most 65535") {
		t.Errorf("Expected max message, got %q", err.Error())
	}
}
