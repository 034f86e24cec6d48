package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/academic-monitor-api/internal/models"
	appErrors "github.com/noah-isme/academic-monitor-api/pkg/errors"
)

// NewValidator returns a validator with the classroom tags registered.
func NewValidator() (*validator.Validate, error) {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		return nil, err
	}
	return v, nil
}

// RegisterValidations installs attendance_status, lap_number and day_index.
// Colors have no tag: unknown values fall back to GREEN when parsed.
func RegisterValidations(v *validator.Validate) error {
	tags := map[string]validator.Func{
		"attendance_status": func(fl validator.FieldLevel) bool {
			raw := strings.TrimSpace(fl.Field().String())
			return raw == "" || models.AttendanceStatus(strings.ToUpper(raw)).Valid()
		},
		"lap_number": func(fl validator.FieldLevel) bool {
			return models.ValidLapNumber(int(fl.Field().Int()))
		},
		"day_index": func(fl validator.FieldLevel) bool {
			return models.ValidDayIndex(int(fl.Field().Int()))
		},
	}
	for tag, fn := range tags {
		if err := v.RegisterValidation(tag, fn); err != nil {
			return fmt.Errorf("register %s validation: %w", tag, err)
		}
	}
	return nil
}

func parseRequestDate(raw, field string) (time.Time, error) {
	day, err := models.ParseDate(strings.TrimSpace(raw))
	if err != nil {
		return time.Time{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, field+" must be YYYY-MM-DD")
	}
	return models.NormalizeDate(day), nil
}
