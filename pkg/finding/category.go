package finding

import "fmt"

// Category names one of the fixed scan sections. The string value is the
// key used in reports.
type Category string

const (
	SQLInjection    Category = "sql injection scan"
	OpenPorts       Category = "open port scan"
	HostDetails     Category = "host details"
	RobotsTxt       Category = "robots txt"
	Technology      Category = "technology details"
	SecurityHeaders Category = "security headers"
	Cookies         Category = "cookies"
)

var categories = []Category{
	SQLInjection,
	OpenPorts,
	HostDetails,
	RobotsTxt,
	Technology,
	SecurityHeaders,
	Cookies,
}

// Categories returns every category in report order.
func Categories() []Category {
	out := make([]Category, len(categories))
	copy(out, categories)
	return out
}

// IsValid reports whether c is one of the fixed categories.
func (c Category) IsValid() bool {
	return c.index() >= 0
}

// String returns the category as a string.
func (c Category) String() string {
	return string(c)
}

func (c Category) index() int {
	for i, v := range categories {
		if v == c {
			return i
		}
	}
	return -1
}

// ParseCategory maps a report key back to its Category.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
