package annotation

import "strings"

// Category names what an annotated shape marks in the diagram.
type Category string

// Categories produced by the labeling tool. Any other token is preserved as
// is and simply never matches these constants.
const (
	CategoryActivate         Category = "activate"
	CategoryInhibit          Category = "inhibit"
	CategoryGene             Category = "gene"
	CategoryText             Category = "text"
	CategoryCompound         Category = "compound"
	CategoryActivateRelation Category = "activate_relation"
	CategoryInhibitRelation  Category = "inhibit_relation"
)

var knownCategories = []Category{
	CategoryActivate,
	CategoryInhibit,
	CategoryGene,
	CategoryText,
	CategoryCompound,
	CategoryActivateRelation,
	CategoryInhibitRelation,
}

// Known reports whether c is one of the labeling tool's categories.
func (c Category) Known() bool {
	for _, k := range knownCategories {
		if c == k {
			return true
		}
	}
	return false
}

// ParseCategories converts names such as "gene, text" into categories,
// skipping empty entries.
func ParseCategories(names []string) []Category {
	var out []Category
	for _, n := range names {
		for _, part := range strings.Split(n, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, Category(part))
			}
		}
	}
	return out
}

const labelSep = ":"

// parseLabel splits "<index>:<category>[:<link>]" or a bare "<category>".
func parseLabel(label string) (index string, category Category, link string) {
	parts := strings.SplitN(label, labelSep, 3)
	switch len(parts) {
	case 1:
		return "", Category(strings.TrimSpace(parts[0])), ""
	case 2:
		return strings.TrimSpace(parts[0]), Category(strings.TrimSpace(parts[1])), ""
	default:
		return strings.TrimSpace(parts[0]), Category(strings.TrimSpace(parts[1])), strings.TrimSpace(parts[2])
	}
}

// formatLabel is the inverse of parseLabel.
func formatLabel(index string, category Category, link string) string {
	switch {
	case index == "" && link == "":
		return string(category)
	case link == "":
		return index + labelSep + string(category)
	default:
		return index + labelSep + string(category) + labelSep + link
	}
}
