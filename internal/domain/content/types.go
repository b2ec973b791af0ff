package content

import (
	"fmt"
	"net/url"
	"sort"
	"strings"
)

// Type is the discriminator stored in content.type.
type Type string

const (
	TypePhilosopher Type = "philosopher"
	TypeQuestion    Type = "question"
	TypeTerm        Type = "term"
)

// TypeSpec holds what differs per content type.
type TypeSpec struct {
	DisplayName string
	Validate    func(c *Content) error
}

var typeSpecs = map[Type]TypeSpec{
	TypePhilosopher: {DisplayName: "Philosopher", Validate: validatePictures},
	TypeQuestion:    {DisplayName: "Question", Validate: validatePictures},
	TypeTerm:        {DisplayName: "Term", Validate: validatePictures},
}

// ParseType normalizes raw and reports whether it names a known type.
func ParseType(raw string) (Type, bool) {
	t := Type(strings.ToLower(strings.TrimSpace(raw)))
	_, ok := typeSpecs[t]
	return t, ok
}

func (t Type) Valid() bool {
	_, ok := typeSpecs[t]
	return ok
}

func (t Type) DisplayName() string {
	if spec, ok := typeSpecs[t]; ok {
		return spec.DisplayName
	}
	return string(t)
}

// Types lists the known types in a stable order.
func Types() []Type {
	out := make([]Type, 0, len(typeSpecs))
	for t := range typeSpecs {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// ValidateFor runs the type specific checks for c.
func ValidateFor(c *Content) error {
	spec, ok := typeSpecs[c.Type]
	if !ok {
		return fmt.Errorf("unknown content type %q", c.Type)
	}
	if spec.Validate == nil {
		return nil
	}
	return spec.Validate(c)
}

func validatePictures(c *Content) error {
	if err := validatePictureURL("full_picture", c.FullPicture); err != nil {
		return err
	}
	return validatePictureURL("description_picture", c.DescriptionPicture)
}

func validatePictureURL(field string, raw *string) error {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	u, err := url.Parse(strings.TrimSpace(*raw))
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("%s must be an absolute http(s) url", field)
	}
	return nil
}
