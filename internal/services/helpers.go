package services

import (
	"errors"
	"strings"

	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
)

const (
	DefaultPageSize = 50
	MaxPageSize     = 100
)

// Page normalises limit/offset query values.
func Page(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}

// internalError logs an unexpected failure with its context and returns a
// generic INTERNAL error. AppErrors pass through untouched.
func internalError(op string, err error, fields logrus.Fields) error {
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	logrus.WithFields(fields).WithField("op", op).WithError(err).Error("Unexpected storage failure")
	return apperrors.Internal("internal server error", err)
}

// normalizeEmail lower-cases and trims an address so lookups match stored emails.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// normalizeEmails drops blanks and duplicates while keeping input order.
func normalizeEmails(emails []string) []string {
	seen := make(map[string]bool, len(emails))
	out := make([]string, 0, len(emails))
	for _, e := range emails {
		n := normalizeEmail(e)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out
}
