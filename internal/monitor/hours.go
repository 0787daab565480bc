package monitor

import (
	"strconv"
	"strings"
	"time"

	"github.com/ariabot/aria-backend/internal/domain"
)

// withinActiveHours reports whether now falls inside the user's wake/sleep
// window. Windows crossing midnight (wake after sleep) are honored.
func withinActiveHours(user *domain.User, now time.Time, defaultWake, defaultSleep string) bool {
	wake := parseClock(user.WakeTime, defaultWake, 8*60)
	sleep := parseClock(user.SleepTime, defaultSleep, 21*60)

	minute := now.Hour()*60 + now.Minute()
	if wake == sleep {
		return true
	}
	if wake < sleep {
		return minute >= wake && minute < sleep
	}
	return minute >= wake || minute < sleep
}

// parseClock turns "HH:MM" into minutes since midnight, falling through the
// user value, the configured default, then the hard default.
func parseClock(value, configured string, hard int) int {
	for _, candidate := range []string{value, configured} {
		candidate = strings.TrimSpace(candidate)
		parts := strings.SplitN(candidate, ":", 2)
		if len(parts) != 2 {
			continue
		}
		h, errH := strconv.Atoi(parts[0])
		m, errM := strconv.Atoi(parts[1])
		if errH != nil || errM != nil || h < 0 || h > 23 || m < 0 || m > 59 {
			continue
		}
		return h*60 + m
	}
	return hard
}
