package service

import "strings"

// TitleField is the record field that search predicates are scoped to.
const TitleField = "title"

// Query holds the view parameters that drive a list request.
type Query struct {
	SortField     string
	SortDirection string
	Search        string
}

// SearchFormula builds a SEARCH predicate over the title field. Backslashes and
// double quotes in the needle are escaped so the formula stays well formed.
func SearchFormula(needle string) string {
	escaped := strings.ReplaceAll(needle, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	return `SEARCH("` + escaped + `", {` + TitleField + `})`
}
