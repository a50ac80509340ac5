package services

import (
	"strings"

	"github.com/mthuyet/trello-app/board"
)

const (
	titleMinLen       = 3
	titleMaxLen       = 50
	descriptionMinLen = 3
	descriptionMaxLen = 255
)

func validateID(id, field string) error {
	if !board.ValidID(id) {
		return validationErrorf("%s must be a valid id", field)
	}
	return nil
}

// validateOrderIDs checks that an order array is a clean set of entity ids.
// Placeholder ids are a client-only convention and must never cross into
// persistence, so their presence is a validation failure, not a silent strip.
func validateOrderIDs(ids []string, field string) error {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if board.IsPlaceholderID(id) {
			return validationErrorf("%s must not contain placeholder ids", field)
		}
		if !board.ValidID(id) {
			return validationErrorf("%s contains an invalid id", field)
		}
		if seen[id] {
			return validationErrorf("%s contains duplicate ids", field)
		}
		seen[id] = true
	}
	return nil
}

func validateTitle(title string) error {
	t := strings.TrimSpace(title)
	if len(t) < titleMinLen || len(t) > titleMaxLen {
		return validationErrorf("title must be between %d and %d characters", titleMinLen, titleMaxLen)
	}
	return nil
}

func validateDescription(description string) error {
	d := strings.TrimSpace(description)
	if len(d) < descriptionMinLen || len(d) > descriptionMaxLen {
		return validationErrorf("description must be between %d and %d characters", descriptionMinLen, descriptionMaxLen)
	}
	return nil
}
