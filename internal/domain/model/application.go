package model

import (
	"fmt"
	"strings"
)

// Application identifies one JustData product whose analyses are cached by
// this service. The application tag partitions the cache-key namespace.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type Application string

const (
	// AppLendsight is the mortgage-lending analysis application.
	AppLendsight Application = "lendsight"
	// AppBizsight is the small-business lending analysis application.
	AppBizsight Application = "bizsight"
)

// Valid returns true if the Application is one of the known products.
// Unknown applications are still accepted by the cache layer under default
// normalization rules, so callers should treat false as "unregistered",
// not as an error.
func (a Application) Valid() bool {
	return a == AppLendsight || a == AppBizsight
}

// UnmarshalText implements encoding.TextUnmarshaler for Application to allow
// env and request parsing.
func (a *Application) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	if v == "" {
		return fmt.Errorf("application cannot be empty")
	}
	*a = Application(v)
	return nil
}

func (a Application) String() string {
	return string(a)
}
