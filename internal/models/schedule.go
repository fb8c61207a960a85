package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ScheduleSlot is a recurring weekly time window inside an assignment.
type ScheduleSlot struct {
	ID           int64  `db:"id" json:"id,omitempty"`
	AssignmentID int64  `db:"asignacion_id" json:"-"`
	WeekdayID    int64  `db:"dia_semana_id" json:"dia_semana_id"`
	WeekdayName  string `db:"dia_semana" json:"dia_semana,omitempty"`
	StartTime    string `db:"hora_inicio" json:"hora_inicio"`
	EndTime      string `db:"hora_fin" json:"hora_fin"`
}

// SlotKey builds the duplicate-detection key. Unparseable times are kept
// verbatim so they never collide with a valid one.
func SlotKey(weekday, start, end string) string {
	return strings.TrimSpace(weekday) + "|" + clockOrRaw(start) + "|" + clockOrRaw(end)
}

func clockOrRaw(raw string) string {
	if c, err := ParseClock(raw); err == nil {
		return c.String()
	}
	return strings.TrimSpace(raw)
}

// Clock is a time of day in minutes after midnight.
type Clock int

// ParseClock reads "H:MM", "HH:MM" or "HH:MM:SS". Seconds must be zero.
func ParseClock(raw string) (Clock, error) {
	parts := strings.Split(strings.TrimSpace(raw), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("invalid time %q", raw)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("invalid hour in %q", raw)
	}
	if len(parts[1]) != 2 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid minute in %q", raw)
	}
	if len(parts) == 3 {
		if sec, err := strconv.Atoi(parts[2]); err != nil || sec != 0 {
			return 0, fmt.Errorf("invalid seconds in %q", raw)
		}
	}
	return Clock(hour*60 + minute), nil
}

// Hour returns the hour component.
func (c Clock) Hour() int { return int(c) / 60 }

// Minute returns the minute component.
func (c Clock) Minute() int { return int(c) % 60 }

// String renders HH:MM.
func (c Clock) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// WireString renders HH:MM:SS as the assignment store persists it.
func (c Clock) WireString() string {
	return c.String() + ":00"
}

// Format12h renders "1:30 PM". Hour 0 is 12 AM and hour 12 is 12 PM.
func (c Clock) Format12h() string {
	hour := c.Hour()
	suffix := "AM"
	if hour >= 12 {
		suffix = "PM"
	}
	display := hour % 12
	if display == 0 {
		display = 12
	}
	return fmt.Sprintf("%d:%02d %s", display, c.Minute(), suffix)
}
