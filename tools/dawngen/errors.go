// Copyright 2025 The Fuchsia Authors. All rights reserved.
// Use of this source code is governed by a BSD-style license that can be
// found in the LICENSE file.

package dawngen

import (
	"errors"
	"fmt"
)

// Fatal generation errors. Every derived decision that fails wraps exactly
// one of these; callers match them with errors.Is.
var (
	ErrUnknownTypeReference           = errors.New("unknown type reference")
	ErrUnknownConstant                = errors.New("unknown constant")
	ErrUnknownEnumValue               = errors.New("unknown enum value")
	ErrUnhandledNativeType            = errors.New("unhandled native type")
	ErrUnhandledAnnotationCombination = errors.New("unhandled annotation combination")
	ErrMissingRequiredField           = errors.New("missing required field")
)

// EntityError attributes a fatal error to the entity in which it was found.
type EntityError struct {
	Entity Name
	Err    error
}

func (e *EntityError) Error() string {
	return fmt.Sprintf("%s: %s", e.Entity, e.Err)
}

func (e *EntityError) Unwrap() error {
	return e.Err
}

func entityError(entity Name, err error) error {
	var ee *EntityError
	if errors.As(err, &ee) {
		return err
	}
	return &EntityError{Entity: entity, Err: err}
}

func unknownType(name Name) error {
	return fmt.Errorf("%w: %q", ErrUnknownTypeReference, name)
}

func unhandledAnnotation(u TypeUsage, what string) error {
	return fmt.Errorf("%w: %s %q with annotation %q and length %s", ErrUnhandledAnnotationCombination, what, u.Type, u.Annotation, u.Length)
}
