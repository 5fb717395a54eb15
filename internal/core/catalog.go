package core

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

// ageGroupPattern restricts identifiers to a single, non-hidden path element.
var ageGroupPattern = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_-]*$`)

// AgeGroup is one dataset variant served by the application.
type AgeGroup struct {
	Key   string `json:"key" yaml:"key"`     // Folder name under the data root, e.g. "15_49"
	Label string `json:"label" yaml:"label"` // Display name, e.g. "Ages 15-49"
}

// ValidateAgeGroup checks that key can safely name a folder under the data root.
func ValidateAgeGroup(key string) error {
	if !ageGroupPattern.MatchString(key) {
		return fmt.Errorf("%w: %q", ErrInvalidAgeGroup, key)
	}
	return nil
}

// AgeGroupLabel derives a display label from a folder key:
// "15_49" becomes "Ages 15-49", anything else is returned unchanged.
func AgeGroupLabel(key string) string {
	lo, hi, ok := strings.Cut(key, "_")
	if !ok || !isDigits(lo) || !isDigits(hi) {
		return key
	}
	return fmt.Sprintf("Ages %s-%s", lo, hi)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Catalog is the fixed set of age groups an instance serves.
// It is built once from configuration and never mutated.
type Catalog struct {
	groups []AgeGroup
	byKey  map[string]AgeGroup
}

// NewCatalog builds a catalog from folder keys, keeping their order.
// Keys must be valid and unique.
func NewCatalog(keys []string) (*Catalog, error) {
	c := &Catalog{
		groups: make([]AgeGroup, 0, len(keys)),
		byKey:  make(map[string]AgeGroup, len(keys)),
	}
	for _, key := range keys {
		key = strings.TrimSpace(key)
		if err := ValidateAgeGroup(key); err != nil {
			return nil, err
		}
		if _, exists := c.byKey[key]; exists {
			return nil, fmt.Errorf("age group listed twice: %s", key)
		}
		g := AgeGroup{Key: key, Label: AgeGroupLabel(key)}
		c.groups = append(c.groups, g)
		c.byKey[key] = g
	}
	return c, nil
}

// Get returns an age group by key.
// Returns false if not found.
func (c *Catalog) Get(key string) (AgeGroup, bool) {
	g, ok := c.byKey[key]
	return g, ok
}

// All returns the age groups in configured order.
func (c *Catalog) All() []AgeGroup {
	out := make([]AgeGroup, len(c.groups))
	copy(out, c.groups)
	return out
}

// Keys returns the configured keys, sorted.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.groups))
	for _, g := range c.groups {
		keys = append(keys, g.Key)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of age groups.
func (c *Catalog) Len() int {
	return len(c.groups)
}
