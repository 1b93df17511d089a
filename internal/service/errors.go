package service

import "errors"

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrWrongPassword rejects a password change whose old password does not
	// match.  The caller is authenticated, so it is not a credentials failure.
	ErrWrongPassword = errors.New("old password is incorrect")
	// ErrInvalidOwner is returned when a store's owner reference is not an
	// existing OWNER account.
	ErrInvalidOwner = errors.New("owner must be an existing OWNER user")
	// ErrInvalidRating guards the upsert against values outside 1..5.
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
)
