package students

import (
	"fmt"
	"strings"

	relayerrors "github.com/jrsteele09/go-auth-relay/internal/errors"
)

type Gender string

const (
	GenderMale   Gender = "NAM"
	GenderFemale Gender = "NU"
)

const (
	MinAge = 18
	MaxAge = 50
)

type Student struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Age    int    `json:"age"`
	Gender Gender `json:"gender"`
}

// Validate checks the writable fields. The ID is assigned by the repo and ignored here.
func (s Student) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("%w: name is required", relayerrors.ErrInvalidRequest)
	}
	if s.Age < MinAge || s.Age > MaxAge {
		return fmt.Errorf("%w: age must be between %d and %d", relayerrors.ErrInvalidRequest, MinAge, MaxAge)
	}
	switch s.Gender {
	case GenderMale, GenderFemale:
	default:
		return fmt.Errorf("%w: gender must be %s or %s", relayerrors.ErrInvalidRequest, GenderMale, GenderFemale)
	}
	return nil
}
