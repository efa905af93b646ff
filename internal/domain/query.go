package domain

import "regexp"

var queryPattern = regexp.MustCompile(`^\d{10}$`)

// CommandPrefix is prepended to the number to form the command the
// responder bot reacts to.
const CommandPrefix = "/num "

// Query is a validated 10-digit number.
type Query string

// ParseQuery accepts exactly ten ASCII digits. Nothing is trimmed.
func ParseQuery(s string) (Query, error) {
	if !queryPattern.MatchString(s) {
		return "", ErrInvalidNumber
	}
	return Query(s), nil
}

func (q Query) String() string { return string(q) }

// Command returns the text sent to the chat for this query.
func (q Query) Command() string { return CommandPrefix + string(q) }
