package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrSlugInvalid is returned when a slug does not match the required pattern.
	ErrSlugInvalid = errors.New("slug must match [a-z0-9][a-z0-9-]*[a-z0-9]")

	// ErrSlugReserved is returned when a slug matches a reserved route prefix.
	ErrSlugReserved = errors.New("slug is reserved and cannot be used")

	// ErrSlugTaken is returned when a slug already exists in the database.
	ErrSlugTaken = errors.New("slug is already taken")

	// ErrInvalidRole is returned for a role outside the allowed set.
	ErrInvalidRole = errors.New("invalid role")

	slugRe = regexp.MustCompile(`^[a-z0-9]([a-z0-9\-]*[a-z0-9])?$`)

	reservedSlugs = map[string]bool{
		"admin":  true,
		"api":    true,
		"auth":   true,
		"new":    true,
		"static": true,
	}

	slugStripRe = regexp.MustCompile(`[^a-z0-9]+`)
)

// ValidateSlugFormat checks that slug conforms to the required format and is
// not reserved. It does NOT check uniqueness, which is left to the unique
// indexes on organizations.slug and ai_tools.slug.
func ValidateSlugFormat(slug string) error {
	if len(slug) > 64 || !slugRe.MatchString(slug) {
		return ErrSlugInvalid
	}
	if reservedSlugs[slug] {
		return fmt.Errorf("%w: %q", ErrSlugReserved, slug)
	}
	return nil
}

// Slugify derives a slug from a display name: lowercase, runs of anything
// other than [a-z0-9] collapse to a single hyphen.
func Slugify(name string) string {
	s := slugStripRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if len(s) > 64 {
		s = strings.TrimRight(s[:64], "-")
	}
	return s
}

// ValidateUserRole checks a users.role value.
func ValidateUserRole(role string) error {
	switch role {
	case RoleUser, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}

// ValidateMemberRole checks an organization_members.role value.
func ValidateMemberRole(role string) error {
	switch role {
	case MemberOwner, MemberAdmin, MemberRole:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidRole, role)
	}
}
