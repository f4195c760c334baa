package types

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// Label is a colored tag owned by a project and attached to cards through
// CardLabel associations.
type Label struct {
	ID        string    `json:"id"`
	ProjectID string    `json:"project_id"`
	Title     string    `json:"title"`
	Color     string    `json:"color"` // Color token, see ValidColor.
	Position  int       `json:"position"`
	Archived  bool      `json:"archived"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewLabel holds the fields accepted by LabelStore.Create.
type NewLabel struct {
	ProjectID string
	Title     string
	Color     string
	Index     *int
}

// Validate checks the required fields and the color token.
func (l NewLabel) Validate() error {
	if err := requireText("project id", l.ProjectID); err != nil {
		return err
	}
	if err := requireText("title", l.Title); err != nil {
		return err
	}
	return validateColor(l.Color)
}

// LabelUpdate patches a label. Nil fields are left unchanged.
type LabelUpdate struct {
	Title *string
	Color *string
}

// Validate checks the fields being set.
func (u LabelUpdate) Validate() error {
	if u.Title != nil {
		if err := requireText("title", *u.Title); err != nil {
			return err
		}
	}
	if u.Color != nil {
		return validateColor(*u.Color)
	}
	return nil
}

var hexColorRegex = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// namedColors are the 16 ANSI color names.
var namedColors = map[string]bool{
	"black": true, "red": true, "green": true, "yellow": true,
	"blue": true, "magenta": true, "cyan": true, "white": true,
	"brightblack": true, "brightred": true, "brightgreen": true, "brightyellow": true,
	"brightblue": true, "brightmagenta": true, "brightcyan": true, "brightwhite": true,
}

// ValidColor reports whether token is a hex color (#RRGGBB), one of the 16
// ANSI color names, or an ANSI index 0-255.
func ValidColor(token string) bool {
	if hexColorRegex.MatchString(token) {
		return true
	}
	if namedColors[strings.ToLower(token)] {
		return true
	}
	n, err := strconv.Atoi(token)
	return err == nil && n >= 0 && n <= 255 && strconv.Itoa(n) == token
}

func validateColor(token string) error {
	if err := requireText("color", token); err != nil {
		return err
	}
	if !ValidColor(token) {
		return fmt.Errorf("%w: invalid color %q", ErrValidation, token)
	}
	return nil
}
