package profile

import (
	"errors"
	"fmt"
	"strings"
)

// Kind tags which directory a profile lives in.
type Kind string

const (
	KindStartup   Kind = "startup"
	KindIncubator Kind = "incubator"
)

// Kinds lists every kind in resolution order.
var Kinds = []Kind{KindStartup, KindIncubator}

var (
	ErrNotFound    = errors.New("profile: not found")
	ErrInvalidKind = errors.New("profile: invalid kind")
)

// ParseKind accepts "startup"/"incubator" in any case.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if strings.EqualFold(string(k), strings.TrimSpace(s)) {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidKind, s)
}

// Ref is a tagged reference to either kind of profile.
type Ref struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

func (r Ref) String() string { return string(r.Kind) + ":" + r.ID }

// Profile is the read-only slice of a directory entry this subsystem displays.
type Profile struct {
	Ref     Ref     `json:"ref"`
	Name    string  `json:"name"`
	LogoURL *string `json:"logo_url,omitempty"`
	Slug    string  `json:"slug,omitempty"`
}

// UnknownName is shown for partners that no longer resolve.
const UnknownName = "Unknown"

// Placeholder stands in for a profile that could not be found.
func Placeholder(id string) Profile {
	return Profile{Ref: Ref{ID: id}, Name: UnknownName}
}
