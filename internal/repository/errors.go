package repository

import "errors"

// ErrLapWeekExists reports that the copy target week already has lap definitions.
var ErrLapWeekExists = errors.New("target week already has lap definitions")
