// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 WellNest Contributors

// Package errutil logs and inspects oops errors.
package errutil

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/oops"
)

// Code returns the oops code carried by err, or "" when there is none.
func Code(err error) string {
	if oopsErr, ok := oops.AsOops(err); ok && oopsErr.Code() != nil {
		return fmt.Sprint(oopsErr.Code())
	}
	return ""
}

// LogError logs err at error level. Oops errors contribute their code, the
// public message a client would have seen, and their context. ctx carries the
// request span the entry is correlated with.
func LogError(ctx context.Context, logger *slog.Logger, msg string, err error) {
	oopsErr, ok := oops.AsOops(err)
	if !ok {
		logger.ErrorContext(ctx, msg, "error", err)
		return
	}

	attrs := []any{"error", oopsErr.Error()}
	if code := Code(err); code != "" {
		attrs = append(attrs, "code", code)
	}
	if public := oops.GetPublic(err, ""); public != "" {
		attrs = append(attrs, "public", public)
	}
	if fields := oopsErr.Context(); len(fields) > 0 {
		attrs = append(attrs, "context", fields)
	}
	logger.ErrorContext(ctx, msg, attrs...)
}
