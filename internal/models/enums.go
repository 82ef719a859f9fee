package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Role is a user's mutually exclusive role, fixed at creation.
type Role string

const (
	RoleAdmin      Role = "admin"
	RolePlanner    Role = "planner"
	RoleTeamLeader Role = "team_leader"
	RoleMember     Role = "member"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RolePlanner, RoleTeamLeader, RoleMember:
		return true
	}
	return false
}

// DayNight is the day/night period of a shift.
type DayNight string

const (
	Day   DayNight = "DAY"
	Night DayNight = "NIGHT"
)

// ParseDayNight accepts DAY/NIGHT in any case, plus D/N.
func ParseDayNight(s string) (DayNight, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DAY", "D":
		return Day, nil
	case "NIGHT", "N":
		return Night, nil
	}
	return "", fmt.Errorf("invalid day/night %q (DAY or NIGHT)", s)
}

// ShiftType identifies the crew rotation of a shift.
type ShiftType string

const (
	ShiftA ShiftType = "SHIFT-A"
	ShiftB ShiftType = "SHIFT-B"
	ShiftC ShiftType = "SHIFT-C"
)

// ParseShiftType accepts SHIFT-A..SHIFT-C or the bare letter.
func ParseShiftType(s string) (ShiftType, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "SHIFT-")
	switch v {
	case "A":
		return ShiftA, nil
	case "B":
		return ShiftB, nil
	case "C":
		return ShiftC, nil
	}
	return "", fmt.Errorf("invalid shift %q (SHIFT-A, SHIFT-B or SHIFT-C)", s)
}

// HoursPerShift is the number of hourly production slots in a shift.
const HoursPerShift = 12

// Hour is an hourly slot within a shift, HOUR-01 through HOUR-12.
type Hour string

// HourOf returns the canonical Hour for slot n (1-based).
func HourOf(n int) Hour {
	return Hour(fmt.Sprintf("HOUR-%02d", n))
}

// ParseHour accepts HOUR-NN or a bare slot number such as "8" or "08".
func ParseHour(s string) (Hour, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.TrimPrefix(v, "HOUR-")
	n, err := strconv.Atoi(v)
	if err != nil || n < 1 || n > HoursPerShift {
		return "", fmt.Errorf("invalid hour %q (HOUR-01 to HOUR-%02d)", s, HoursPerShift)
	}
	return HourOf(n), nil
}
