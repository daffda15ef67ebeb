package loader

import (
	"fmt"
	"os"
	"strings"
)

// ValidationError collects all validation errors and warnings.
type ValidationError struct {
	Errors   []string
	Warnings []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed with %d error(s):\n  %s",
		len(e.Errors), strings.Join(e.Errors, "\n  "))
}

var validTiers = map[string]bool{
	"": true, "harmless": true, "dangerous": true, "deadly": true, "legendary": true,
}

// validate checks the compiled content for referential integrity.
func validate(content *Content) error {
	ve := &ValidationError{}

	if content.World.Title == "" {
		ve.Errors = append(ve.Errors, "World.title is required")
	}

	locations := map[string]bool{}
	for _, loc := range content.Locations {
		if locations[loc.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate location ID %q", loc.ID))
		}
		locations[loc.ID] = true
	}

	if content.World.Start == "" {
		ve.Errors = append(ve.Errors, "World.start is required")
	} else if !locations[content.World.Start] {
		ve.Errors = append(ve.Errors, fmt.Sprintf(
			"start location %q not found in defined locations", content.World.Start))
	}

	for _, loc := range content.Locations {
		for dir, target := range loc.Exits {
			if !locations[target] {
				ve.Errors = append(ve.Errors, fmt.Sprintf(
					"location %q exit %q points to undefined location %q", loc.ID, dir, target))
			}
		}
	}

	entityIDs := map[string]bool{}
	for _, e := range content.Entities {
		if entityIDs[e.ID] {
			ve.Errors = append(ve.Errors, fmt.Sprintf("duplicate entity ID %q", e.ID))
		}
		entityIDs[e.ID] = true

		if e.Name == "" {
			ve.Errors = append(ve.Errors, fmt.Sprintf("entity %q has no name", e.ID))
		}
		if !validTiers[strings.ToLower(e.Tier)] {
			ve.Warnings = append(ve.Warnings, fmt.Sprintf(
				"entity %q has unrecognized tier %q", e.ID, e.Tier))
		}
		if e.Location != "" && !locations[e.Location] {
			ve.Errors = append(ve.Errors, fmt.Sprintf(
				"entity %q location %q does not match any defined location", e.ID, e.Location))
		}
	}

	for _, w := range ve.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}
