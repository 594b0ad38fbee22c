package model

import "fmt"

// Violation is one field-level validation failure. Validation always returns
// the full list so that multiple simultaneous problems on one row are all
// reported.
type Violation struct {
	Field   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s: %s", v.Field, v.Message)
}

const msgEmpty = "must not be empty"

// Validate checks field-level rules for a Game. It never consults other rows.
func (g *Game) Validate() []Violation {
	var vs []Violation
	if g.Slug == "" {
		vs = append(vs, Violation{Field: "slug", Message: msgEmpty})
	}
	if g.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: msgEmpty})
	}
	return vs
}

// Validate checks field-level rules for a Category.
func (c *Category) Validate() []Violation {
	var vs []Violation
	if c.Slug == "" {
		vs = append(vs, Violation{Field: "slug", Message: msgEmpty})
	}
	if c.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: msgEmpty})
	}
	return vs
}

// Validate checks field-level rules for a Level.
func (l *Level) Validate() []Violation {
	var vs []Violation
	if l.Slug == "" {
		vs = append(vs, Violation{Field: "slug", Message: msgEmpty})
	}
	if l.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: msgEmpty})
	}
	return vs
}

// Validate checks field-level rules for a User.
func (u *User) Validate() []Violation {
	var vs []Violation
	if u.Slug == "" {
		vs = append(vs, Violation{Field: "slug", Message: msgEmpty})
	}
	if u.Name == "" {
		vs = append(vs, Violation{Field: "name", Message: msgEmpty})
	}
	return vs
}

// Validate checks field-level rules for a Run: at least one measured
// duration, and every guest entry named. Referential checks against other
// tables belong to the database pass, not here.
func (r *Run) Validate() []Violation {
	var vs []Violation
	if r.Times.Empty() {
		vs = append(vs, Violation{Field: "times", Message: "at least one of igt/rta/rta_nl must be present"})
	}
	for i, p := range r.Players {
		if p.UserID != 0 && p.GuestName != "" {
			vs = append(vs, Violation{
				Field:   fmt.Sprintf("players[%d]", i),
				Message: "must be either a user reference or a guest name, not both",
			})
		}
		if p.IsGuest() && p.GuestName == "" {
			vs = append(vs, Violation{
				Field:   fmt.Sprintf("players[%d]", i),
				Message: "guest name " + msgEmpty,
			})
		}
	}
	return vs
}
