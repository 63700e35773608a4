package accounts

import (
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	apperrors "github.com/jrsteele09/go-notes-server/internal/errors"
	"github.com/jrsteele09/go-notes-server/users"
)

const (
	MsgRequired             = "This field is required."
	MsgInvalidUsername      = "Enter a valid username."
	MsgInvalidEmail         = "Enter a valid email address."
	MsgInvalidPassword      = "Enter a valid password."
	MsgUsernameInUse        = "Username already in use."
	MsgUserExists           = "A user with that username already exists."
	MsgUserNotFound         = "User does not exist."
	MsgUserInactive         = "User inactive."
	MsgWrongPassword        = "Wrong password."
	MsgWrongTFACode         = "Wrong TFA authentication code."
	MsgTFAEnabled           = "The TFA authentication is already enabled."
	MsgTFANotEnabled        = "The TFA authentication is not enabled."
	MsgSamePassword         = "Current and new password cannot be same."
	MsgInvalidToken         = "Invalid token."
	MsgSocialNotImplemented = "This social network is not implemented."
	MsgPermissionDenied     = "Permission denied."
)

const (
	maxPasswordLength = 200
	maxNameLength     = 150
	maxPhoneLength    = 15
	tfaCodeLength     = 6
)

func required(v *apperrors.ValidationError, field, value string) bool {
	if strings.TrimSpace(value) == "" {
		v.Add(field, MsgRequired)
		return false
	}
	return true
}

func maxLength(v *apperrors.ValidationError, field, value string, limit int) bool {
	if utf8.RuneCountInString(value) > limit {
		v.Add(field, fmt.Sprintf("Ensure this field has no more than %d characters.", limit))
		return false
	}
	return true
}

func validUsername(v *apperrors.ValidationError, field, value string) bool {
	if !required(v, field, value) {
		return false
	}
	if !users.ValidateUsername(value) {
		v.Add(field, MsgInvalidUsername)
		return false
	}
	return true
}

func validPassword(v *apperrors.ValidationError, field, value string) bool {
	if !required(v, field, value) {
		return false
	}
	if utf8.RuneCountInString(value) > maxPasswordLength || strings.ContainsAny(value, "\r\n") {
		v.Add(field, MsgInvalidPassword)
		return false
	}
	return true
}

// validEmail accepts an empty value unless the field is mandatory.
func validEmail(v *apperrors.ValidationError, field, value string, mandatory bool) bool {
	if value == "" {
		if mandatory {
			v.Add(field, MsgRequired)
		}
		return !mandatory
	}
	address, err := mail.ParseAddress(value)
	if err != nil || address.Address != value {
		v.Add(field, MsgInvalidEmail)
		return false
	}
	return true
}
