package refdata

import (
	"errors"
	"fmt"
)

// ErrMissingConfig covers any required scheme, tax rule, or FX rate absent
// for a computation date. Wrap with MissingConfig so callers can match the
// class while logs keep the specific gap.
var ErrMissingConfig = errors.New("required payroll configuration missing")

func MissingConfig(what string) error {
	return fmt.Errorf("%w: %s", ErrMissingConfig, what)
}
