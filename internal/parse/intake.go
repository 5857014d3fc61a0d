// Package parse validates and normalizes free-form intake fields before
// they reach the store.
package parse

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

var (
	yearRe = regexp.MustCompile(`^\d{4}$`)
	regRe  = regexp.MustCompile(`[^A-Z0-9-]`)
)

// minVehicleYear is the oldest model year the intake form accepts.
const minVehicleYear = 1950

// ParseYear validates a free-form vehicle year. Empty input is allowed and
// yields 0; anything else must be a plausible 4-digit model year (model
// years may run one year ahead of the calendar).
func ParseYear(raw string, now time.Time) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if !yearRe.MatchString(s) {
		return 0, fmt.Errorf("malformed year: %q", raw)
	}
	year, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("malformed year: %q", raw)
	}
	if year < minVehicleYear || year > now.Year()+1 {
		return 0, fmt.Errorf("year %d out of range", year)
	}
	return year, nil
}

// NormalizeRegistration upper-cases a vehicle registration and strips
// everything that is not a letter, digit or dash.
func NormalizeRegistration(raw string) string {
	s := strings.ToUpper(strings.TrimSpace(raw))
	s = regRe.ReplaceAllString(s, "")
	return s
}

// BatterySerial derives the placeholder serial number for a battery case
// created at triage from a ticket without battery details.
func BatterySerial(ticketNumber string) string {
	return "BATT-" + strings.TrimSpace(ticketNumber)
}
