package format

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// ErrUnknownProfile is returned by ProfileByName for unregistered names.
var ErrUnknownProfile = errors.New("format: unknown profile")

// Profile is a delimiter scheme for one rendered record:
//
//	Lead + id + NameSep + name + "(" + quota + ")" + TotalSep + total + Trail
type Profile struct {
	Name     string
	Lead     string
	NameSep  string
	TotalSep string
	Trail    string

	// CollapseDashes squeezes every "--" run of the joined output into "-".
	CollapseDashes bool

	// MissingID is rendered when a record has no productId or a null one.
	MissingID string
	// EmptyQuota, when set, replaces an empty quota between the parentheses.
	EmptyQuota string
}

// Built-in profiles.
var (
	ProfileAt     = Profile{Name: "at", Lead: "@", NameSep: "#", TotalSep: "#", MissingID: "-"}
	ProfileHashID = Profile{Name: "hashid", Lead: "#id:", NameSep: "#", TotalSep: "#", MissingID: "-"}
	ProfilePipe   = Profile{Name: "pipe", Lead: "#", NameSep: "|", TotalSep: "|", MissingID: "-"}
	ProfileDash   = Profile{Name: "dash", Lead: "-", NameSep: "#", TotalSep: "#", Trail: "-", CollapseDashes: true, MissingID: "-"}
)

var profiles = map[string]Profile{
	ProfileAt.Name:     ProfileAt,
	ProfileHashID.Name: ProfileHashID,
	ProfilePipe.Name:   ProfilePipe,
	ProfileDash.Name:   ProfileDash,
}

// ProfileByName looks up a built-in profile. The empty name selects "at".
func ProfileByName(name string) (Profile, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" {
		return ProfileAt, nil
	}
	p, ok := profiles[n]
	if !ok {
		return Profile{}, fmt.Errorf("%w %q (known: %s)", ErrUnknownProfile, name, strings.Join(ProfileNames(), ", "))
	}
	return p, nil
}

// ProfileNames lists the built-in profile names, sorted.
func ProfileNames() []string {
	out := make([]string, 0, len(profiles))
	for n := range profiles {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
