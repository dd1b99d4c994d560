// Package ttl converts duration strings of the form "<digits><unit>" into
// millisecond counts and absolute expiration instants. It is the single
// authority for refresh-token lifetimes across the auth module.
package ttl

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"time"
)

// Sentinel errors for errors.Is matching at the boundary layer.
var (
	ErrInvalidFormat   = errors.New("invalid ttl format")
	ErrUnsupportedUnit = errors.New("unsupported ttl unit")
)

// FormatError reports a duration string that does not match "<digits><unit>".
type FormatError struct {
	Spec string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("invalid ttl format: %q (expected <digits><unit>, e.g. \"30s\", \"7d\")", e.Spec)
}

func (e *FormatError) Is(target error) bool { return target == ErrInvalidFormat }

// UnitError reports a unit that is format-valid but not in the supported set.
type UnitError struct {
	Unit string
}

func (e *UnitError) Error() string {
	return fmt.Sprintf("unsupported ttl unit: %q (supported: s, m, h, d)", e.Unit)
}

func (e *UnitError) Is(target error) bool { return target == ErrUnsupportedUnit }

// Expiration is the result of resolving a TTL spec against a base instant.
type Expiration struct {
	ExpiresAt    time.Time
	Milliseconds int64
}

// specRegex accepts the full calendar-unit alphabet so that a recognized but
// unsupported unit (w, y) is reported as UnitError rather than FormatError.
// The supported set stays restricted to unitMillis.
var specRegex = regexp.MustCompile(`^(\d+)([smhdwy])$`)

var unitMillis = map[string]int64{
	"s": 1000,
	"m": 60_000,
	"h": 3_600_000,
	"d": 86_400_000,
}

// supportedUnits is ordered from smallest to largest.
var supportedUnits = []string{"s", "m", "h", "d"}

// SupportedUnits returns the unit codes accepted by this package, smallest first.
func SupportedUnits() []string {
	units := make([]string, len(supportedUnits))
	copy(units, supportedUnits)
	return units
}

// ToMilliseconds parses a TTL spec and returns its length in milliseconds.
func ToMilliseconds(spec string) (int64, error) {
	matches := specRegex.FindStringSubmatch(spec)
	if matches == nil {
		return 0, &FormatError{Spec: spec}
	}

	unit := matches[2]
	millis, ok := unitMillis[unit]
	if !ok {
		return 0, &UnitError{Unit: unit}
	}

	value, err := strconv.ParseInt(matches[1], 10, 64)
	if err != nil {
		// Digit runs past int64 range are rejected instead of wrapping.
		return 0, &FormatError{Spec: spec}
	}
	if value > math.MaxInt64/millis {
		return 0, &FormatError{Spec: spec}
	}

	return value * millis, nil
}

// maxDurationMillis is the largest millisecond count representable as a
// time.Duration (about 292 years).
const maxDurationMillis = math.MaxInt64 / int64(time.Millisecond)

// CalculateExpirationFrom resolves a TTL spec against the given base instant.
func CalculateExpirationFrom(spec string, from time.Time) (Expiration, error) {
	millis, err := ToMilliseconds(spec)
	if err != nil {
		return Expiration{}, err
	}
	if millis > maxDurationMillis {
		// Representable in milliseconds but not as a time.Duration.
		return Expiration{}, &FormatError{Spec: spec}
	}
	return Expiration{
		ExpiresAt:    from.Add(time.Duration(millis) * time.Millisecond),
		Milliseconds: millis,
	}, nil
}

// CalculateExpiration resolves a TTL spec against the current time.
func CalculateExpiration(spec string) (Expiration, error) {
	return CalculateExpirationFrom(spec, time.Now())
}
