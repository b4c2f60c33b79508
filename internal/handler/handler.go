// Package handler holds the Resource Controllers: echo handlers that check the
// access policy, call the store and shape JSON responses.
package handler

import (
	"errors"

	"github.com/labstack/echo/v4"

	"supplies-service/internal/apperr"
	"supplies-service/internal/mailer"
	"supplies-service/internal/model"
	"supplies-service/internal/policy"
	"supplies-service/internal/repository"
	"supplies-service/pkg/jwtutil"
	"supplies-service/pkg/validation"
)

// Options holds the settings handlers need from the configuration
type Options struct {
	FrontendURL string
	MailFrom    string
}

// Handler carries the dependencies of every controller
type Handler struct {
	store  *repository.Store
	policy *policy.Policy
	jwt    *jwtutil.JWTUtil
	mailer mailer.Mailer
	opts   Options
}

// New creates the controllers
func New(store *repository.Store, p *policy.Policy, jwt *jwtutil.JWTUtil, m mailer.Mailer, opts Options) *Handler {
	return &Handler{
		store:  store,
		policy: p,
		jwt:    jwt,
		mailer: m,
		opts:   opts,
	}
}

// bind decodes the body into req and validates it
func bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request data", err)
	}
	if err := c.Validate(req); err != nil {
		var ve *validation.RequestValidationError
		if errors.As(err, &ve) {
			return apperr.Wrap(apperr.KindValidation, ve.Error(), err)
		}
		return apperr.Wrap(apperr.KindValidation, "invalid request data", err)
	}
	return nil
}

// storeError maps store errors to API errors; notFound is the message for missing records
func storeError(err error, notFound string) error {
	var (
		conflict *repository.ConflictError
		ref      *repository.ReferenceError
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repository.ErrNotFound):
		return apperr.NotFound(notFound)
	case errors.Is(err, repository.ErrItemNotInList):
		return apperr.NotFound(repository.ErrItemNotInList.Message)
	case errors.As(err, &conflict):
		return apperr.Wrap(apperr.KindValidation, conflict.Message, err)
	case errors.As(err, &ref):
		return apperr.Wrap(apperr.KindValidation, ref.Message, err)
	case errors.Is(err, repository.ErrDuplicate):
		return apperr.Wrap(apperr.KindValidation, "a record with the same unique value already exists", err)
	case errors.Is(err, model.ErrInvalidTagColor), errors.Is(err, model.ErrNegativePrice):
		return apperr.Wrap(apperr.KindValidation, err.Error(), err)
	default:
		return apperr.Internal("internal server error", err)
	}
}

// denied turns a policy decision into the API error the caller sees
func denied(d policy.Decision) error {
	switch d.Effect {
	case policy.Hide:
		return apperr.NotFound(d.Reason)
	default:
		if d.Reason == policy.ReasonUnauthenticated {
			return apperr.Unauthorized(d.Reason)
		}
		return apperr.Forbidden(d.Reason)
	}
}

func requiredField(name string) error {
	return apperr.Validation(name + " is required")
}
