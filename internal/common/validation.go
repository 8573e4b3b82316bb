package common

import (
	"errors"
	"strings"
)

func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return errors.New("email is required")
	}

	at := strings.Index(email, "@")
	dot := strings.LastIndex(email, ".")
	if at < 1 || dot < at+2 || dot == len(email)-1 {
		return errors.New("invalid email format")
	}

	return nil
}

func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}

	if len(password) > 100 {
		return errors.New("password is too long")
	}

	return nil
}
