package config

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/andrefdof/syncfiler/pkg/errors"
)

// Duration is a time.Duration that is written in config files as a string.
// Both Go's syntax ("1m30s") and the clock syntax "[d.]hh:mm[:ss]" are
// accepted.
type Duration time.Duration

// MarshalJSON implements json.Marshaler.
func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *Duration) UnmarshalJSON(b []byte) error {
	var str string
	if err := json.Unmarshal(b, &str); err != nil {
		return errors.New("durations must be strings, e.g. \"30s\"")
	}

	parsed, err := ParseDuration(str)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// ParseDuration parses either a Go duration string, or a clock-style duration
// such as "00:00:30" or "1.12:00:00".
func ParseDuration(str string) (time.Duration, error) {
	str = strings.TrimSpace(str)
	if d, err := time.ParseDuration(str); err == nil {
		return d, nil
	}

	invalid := errors.New("invalid duration %q: expected e.g. \"30s\" or \"hh:mm:ss\"", str)
	parts := strings.Split(str, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, invalid
	}

	var days int
	hoursStr := parts[0]
	if dot := strings.Index(hoursStr, "."); dot >= 0 {
		var err error
		days, err = strconv.Atoi(hoursStr[:dot])
		if err != nil || days < 0 {
			return 0, invalid
		}
		hoursStr = hoursStr[dot+1:]
	}

	hours, err := strconv.Atoi(hoursStr)
	if err != nil || hours < 0 || (days > 0 && hours > 23) {
		return 0, invalid
	}

	minutes, err := strconv.Atoi(parts[1])
	if err != nil || minutes < 0 || minutes > 59 {
		return 0, invalid
	}

	var seconds float64
	if len(parts) == 3 {
		seconds, err = strconv.ParseFloat(parts[2], 64)
		if err != nil || seconds < 0 || seconds >= 60 {
			return 0, invalid
		}
	}

	return time.Duration(days)*24*time.Hour +
		time.Duration(hours)*time.Hour +
		time.Duration(minutes)*time.Minute +
		time.Duration(seconds*float64(time.Second)), nil
}
