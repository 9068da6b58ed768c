package location

import (
	"fmt"
	"sync"
	"time"

	"github.com/spf13/viper"
)

var (
	once     sync.Once
	location *time.Location
)

// Location returns the server's default location (settings.timezone), UTC when unset or invalid.
func Location() *time.Location {
	once.Do(func() {
		location = time.UTC
		if name := viper.GetString("settings.timezone"); name != "" {
			if loc, err := time.LoadLocation(name); err == nil {
				location = loc
			}
		}
	})
	return location
}

// Resolve picks the location a client's wall-clock input should be read in.
//
// A non-empty IANA name wins. Otherwise offset is taken as a JavaScript
// getTimezoneOffset() value: minutes to add to local time to get UTC, so
// UTC+3 arrives as -180. With neither, fallback is used.
func Resolve(name string, offset *int, fallback *time.Location) (*time.Location, error) {
	if name != "" {
		loc, err := time.LoadLocation(name)
		if err != nil {
			return nil, fmt.Errorf("unknown time zone %q", name)
		}
		return loc, nil
	}
	if offset != nil {
		if *offset < -14*60 || *offset > 14*60 {
			return nil, fmt.Errorf("time zone offset %d out of range", *offset)
		}
		return time.FixedZone("client", -*offset*60), nil
	}
	if fallback == nil {
		return time.UTC, nil
	}
	return fallback, nil
}
