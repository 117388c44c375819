package model

import (
	"fmt"

	"telegram-support-relay/internal/domain"
)

// Category selects which support target receives a user's messages.
type Category string

const (
	CategoryPanel          Category = "panel"
	CategoryRepresentative Category = "representative"
)

// Categories lists every valid category in menu order.
func Categories() []Category {
	return []Category{CategoryPanel, CategoryRepresentative}
}

func (c Category) Valid() bool {
	switch c {
	case CategoryPanel, CategoryRepresentative:
		return true
	}
	return false
}

func (c Category) String() string { return string(c) }

func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownCategory, s)
	}
	return c, nil
}

// Targets maps each category to the chat that receives forwarded messages.
type Targets map[Category]int64

// NewTargets builds the lookup table. Both targets are required and must differ.
func NewTargets(panel, representative int64) (Targets, error) {
	if panel == 0 || representative == 0 || panel == representative {
		return nil, domain.ErrInvalidArgument
	}
	return Targets{
		CategoryPanel:          panel,
		CategoryRepresentative: representative,
	}, nil
}

// CategoryFor reports which category, if any, forwards into chatID.
func (t Targets) CategoryFor(chatID int64) (Category, bool) {
	if chatID == 0 {
		return "", false
	}
	for _, c := range Categories() {
		if t[c] == chatID {
			return c, true
		}
	}
	return "", false
}

func (t Targets) Resolve(c Category) (int64, error) {
	id, ok := t[c]
	if !ok || id == 0 {
		return 0, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, c)
	}
	return id, nil
}
