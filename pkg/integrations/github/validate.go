package github

import (
	"errors"
	"regexp"
)

// GitHub usernames/orgs: 1-39 alphanumeric or hyphen, not starting with hyphen
var validOwner = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-]{0,38}$`)

// ValidateOwner validates a GitHub username or organization name.
func ValidateOwner(owner string) error {
	if owner == "" {
		return errors.New("organization is required")
	}
	if !validOwner.MatchString(owner) {
		return errors.New("invalid organization format: must be 1-39 alphanumeric characters or hyphens, cannot start with hyphen")
	}
	return nil
}
