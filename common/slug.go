package common

import (
	"errors"
	"regexp"
	"strings"
)

// MaxSlugLength caps room slugs so long debate questions stay usable in URLs.
const MaxSlugLength = 64

var (
	ErrEmptySlug = errors.New("slug cannot be empty")
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
)

// Slugify turns a topic into a lowercase hyphenated slug, falling back to
// fallback when nothing usable remains. Slugs longer than MaxSlugLength are
// cut at the last whole word that fits.
func Slugify(input, fallback string) (string, error) {
	slug := slugify(input)
	if slug == "" {
		slug = slugify(fallback)
	}
	if slug == "" {
		return "", ErrEmptySlug
	}
	return truncateSlug(slug, MaxSlugLength), nil
}

func slugify(s string) string {
	lower := strings.ToLower(strings.TrimSpace(s))
	return strings.Trim(nonSlugChars.ReplaceAllString(lower, "-"), "-")
}

func truncateSlug(slug string, max int) string {
	if len(slug) <= max {
		return slug
	}
	cut := slug[:max]
	// A single word longer than max is hard-cut.
	if i := strings.LastIndexByte(cut, '-'); i > 0 && slug[max] != '-' {
		cut = cut[:i]
	}
	return strings.TrimRight(cut, "-")
}
