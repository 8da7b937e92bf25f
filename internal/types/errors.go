package types

import "errors"

var ErrNotFound = errors.New("requested item not found")
var ErrValidation = errors.New("invalid input")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
