package gql

import (
	"github.com/graphql-go/graphql/gqlerrors"
	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/internal/utils"
	"github.com/rs/zerolog/log"
)

const msgInternal = "Internal server error."

// Error is one entry of the top level "errors" list. Field is null for
// errors that concern the request as a whole.
type Error struct {
	Field   *string `json:"field"`
	Message string  `json:"message"`
}

func fieldErrorsOf(fieldErrors []apperrors.FieldError) []Error {
	out := make([]Error, 0, len(fieldErrors))
	for _, fe := range fieldErrors {
		e := Error{Message: fe.Message}
		if fe.Field != "" {
			field := utils.ToCamelCase(fe.Field)
			e.Field = &field
		}
		out = append(out, e)
	}
	return out
}

func messageError(message string) []Error {
	return []Error{{Message: message}}
}

// formatErrors flattens execution errors. Errors raised by resolvers are
// unwrapped so validation, lock and auth failures keep their field.
func formatErrors(errs []gqlerrors.FormattedError) []Error {
	out := make([]Error, 0, len(errs))
	for _, e := range errs {
		out = append(out, formatError(e)...)
	}
	return out
}

func formatError(e gqlerrors.FormattedError) []Error {
	original := e.OriginalError()
	for {
		located, ok := original.(*gqlerrors.Error)
		if !ok || located.OriginalError == nil {
			break
		}
		original = located.OriginalError
	}
	if original == nil {
		return messageError(e.Message)
	}
	if fieldErrors, ok := apperrors.FieldErrors(original); ok {
		return fieldErrorsOf(fieldErrors)
	}
	if _, ok := original.(*gqlerrors.Error); ok {
		return messageError(e.Message)
	}
	log.Err(original).Interface("path", e.Path).Msg("graphql resolver failed")
	return messageError(msgInternal)
}
