package segment

import (
	"fmt"
	"strings"
)

// Policy decides what happens when a segment fails to export.
type Policy int

const (
	// PolicyAbort stops the whole batch on the first failed export.
	PolicyAbort Policy = iota
	// PolicySkipFile stops the current source file and moves on to the next.
	PolicySkipFile
	// PolicySkipEntry logs the failed entry and continues with the next one.
	PolicySkipEntry
)

var policyNames = map[Policy]string{
	PolicyAbort:     "abort",
	PolicySkipFile:  "skip-file",
	PolicySkipEntry: "skip-entry",
}

// PolicyNames lists the accepted policy names in declaration order.
func PolicyNames() []string {
	return []string{"abort", "skip-file", "skip-entry"}
}

// String returns the policy name as accepted by ParsePolicy.
func (p Policy) String() string {
	if name, ok := policyNames[p]; ok {
		return name
	}
	return fmt.Sprintf("Policy(%d)", int(p))
}

// ParsePolicy converts a name such as "skip-file" into a Policy.
// Matching is case-insensitive; the empty string is PolicyAbort.
func ParsePolicy(s string) (Policy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PolicyAbort, nil
	}
	for p, name := range policyNames {
		if name == s {
			return p, nil
		}
	}
	return PolicyAbort, fmt.Errorf("%w: %q (valid: %s)", ErrInvalidPolicy, s, strings.Join(PolicyNames(), ", "))
}
