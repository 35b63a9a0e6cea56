package model

import (
	"fmt"
	"strings"
)

type AuthorKind string

const (
	AuthorKindNormal    AuthorKind = "normal"
	AuthorKindCommunity AuthorKind = "community"
	AuthorKindExpert    AuthorKind = "expert"
)

func (k AuthorKind) Valid() bool {
	switch k {
	case AuthorKindNormal, AuthorKindCommunity, AuthorKindExpert:
		return true
	}
	return false
}

// Author is an opaque reference to an externally managed identity. The
// clustering core never inspects Kind.
type Author struct {
	Kind AuthorKind `json:"kind"`
	ID   string     `json:"id"`
}

// Ref renders the author as "kind:id", the form stored in like/dislike sets.
func (a Author) Ref() string {
	return string(a.Kind) + ":" + a.ID
}

func (a Author) Validate() error {
	if !a.Kind.Valid() {
		return fmt.Errorf("%w: unknown author kind %q", ErrInvalidInput, a.Kind)
	}
	if strings.TrimSpace(a.ID) == "" {
		return fmt.Errorf("%w: author id is required", ErrInvalidInput)
	}
	return nil
}

func ParseAuthorRef(ref string) (Author, error) {
	kind, id, ok := strings.Cut(ref, ":")
	if !ok {
		return Author{}, fmt.Errorf("%w: malformed author ref %q", ErrInvalidInput, ref)
	}
	a := Author{Kind: AuthorKind(kind), ID: id}
	if err := a.Validate(); err != nil {
		return Author{}, err
	}
	return a, nil
}
