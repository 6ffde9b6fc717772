// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package reconcile

import (
	"errors"
	"fmt"

	"github.com/LSA-CEO/gozo-authentic-sub001/internal/model"
)

// Machine-readable error codes carried into run reports and API responses.
const (
	CodeMissingSource         = "missing_source"
	CodeStructuralConflict    = "structural_conflict"
	CodeTranslationCapability = "translation_capability"
	CodeDuplicateWrite        = "duplicate_write"
	CodeOpaqueShape           = "opaque_shape"
	CodeUnchanged             = "unchanged"
	CodeUnknown               = "unknown"
)

// ErrDuplicateIdentity is returned by Assemble when two input rows share an identity.
var ErrDuplicateIdentity = errors.New("duplicate content identity")

// MissingSourceError reports a group (or category field) that has no usable
// source-locale value. It is not retryable; the group is excluded from backfill.
type MissingSourceError struct {
	Entity model.EntityRef
	Field  string
	Source string
}

func (e *MissingSourceError) Error() string {
	return fmt.Sprintf("%s field %q has no %s source value", e.Entity, e.Field, e.Source)
}

// Code returns the machine-readable error code.
func (e *MissingSourceError) Code() string { return CodeMissingSource }

// StructuralConflictError reports a general-section row whose key collides
// with a nested section of the same page.
type StructuralConflictError struct {
	Entry model.ContentEntry
}

func (e *StructuralConflictError) Error() string {
	return fmt.Sprintf("page %q: general key %q collides with nested section %q (locale %s)",
		e.Entry.Page, e.Entry.Key, e.Entry.Key, e.Entry.Locale)
}

// Code returns the machine-readable error code.
func (e *StructuralConflictError) Code() string { return CodeStructuralConflict }

// ConflictSet is a sorted list of structural conflicts returned as one error.
type ConflictSet []*StructuralConflictError

func (s ConflictSet) Error() string {
	if len(s) == 1 {
		return s[0].Error()
	}
	return fmt.Sprintf("%d structural conflicts, first: %s", len(s), s[0].Error())
}

// Unwrap exposes the individual conflicts to errors.As.
func (s ConflictSet) Unwrap() []error {
	out := make([]error, len(s))
	for i, c := range s {
		out[i] = c
	}
	return out
}

// TranslationCapabilityError wraps a failure of the external translation capability.
type TranslationCapabilityError struct {
	Retryable bool
	Err       error
}

func (e *TranslationCapabilityError) Error() string {
	return "translation capability: " + e.Err.Error()
}

func (e *TranslationCapabilityError) Unwrap() error { return e.Err }

// Code returns the machine-readable error code.
func (e *TranslationCapabilityError) Code() string { return CodeTranslationCapability }

// DuplicateWriteConflict reports an insert that lost a race against the
// uniqueness constraint. Callers treat it as success.
type DuplicateWriteConflict struct {
	Fingerprint model.Fingerprint
}

func (e *DuplicateWriteConflict) Error() string {
	return fmt.Sprintf("%s already written", e.Fingerprint)
}

// Code returns the machine-readable error code.
func (e *DuplicateWriteConflict) Code() string { return CodeDuplicateWrite }

// OpaqueFieldShapeError reports an opaque value that does not look like a link.
type OpaqueFieldShapeError struct {
	Fingerprint model.Fingerprint
	Value       string
}

func (e *OpaqueFieldShapeError) Error() string {
	return fmt.Sprintf("%s: opaque value %q is not a path or URL", e.Fingerprint, e.Value)
}

// Code returns the machine-readable error code.
func (e *OpaqueFieldShapeError) Code() string { return CodeOpaqueShape }

// UnchangedTranslationError reports an overwrite whose translation came back
// byte-identical to the source value.
type UnchangedTranslationError struct {
	Fingerprint model.Fingerprint
}

func (e *UnchangedTranslationError) Error() string {
	return fmt.Sprintf("%s: translation is identical to the source value", e.Fingerprint)
}

// Code returns the machine-readable error code.
func (e *UnchangedTranslationError) Code() string { return CodeUnchanged }

// ErrorCode extracts the machine-readable code from any error in the taxonomy.
func ErrorCode(err error) string {
	var coded interface{ Code() string }
	if errors.As(err, &coded) {
		return coded.Code()
	}
	return CodeUnknown
}
