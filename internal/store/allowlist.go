package store

import (
	"strings"

	"github.com/listenupapp/binderkeep/internal/errors"
)

// AllowList is the set of actors permitted to write shared admin documents.
// Admin document backends check it on every write.
type AllowList struct {
	actors map[string]struct{}
}

// NewAllowList builds an allow-list. Actor ids are compared case-insensitively
// and blank entries are ignored.
func NewAllowList(actors []string) AllowList {
	l := AllowList{actors: make(map[string]struct{}, len(actors))}
	for _, a := range actors {
		if a = normalizeActor(a); a != "" {
			l.actors[a] = struct{}{}
		}
	}
	return l
}

// Check returns a forbidden error unless actor may write.
func (l AllowList) Check(actor string) error {
	if _, ok := l.actors[normalizeActor(actor)]; ok {
		return nil
	}
	return errors.Forbiddenf("actor %q may not modify admin documents", actor)
}

func normalizeActor(a string) string {
	return strings.ToLower(strings.TrimSpace(a))
}
