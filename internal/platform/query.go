package platform

import "fmt"

// Query addresses a window by class name and/or title. Either field may be
// empty, but not both. Query is comparable and used as a cache key.
type Query struct {
	Class string `json:"class,omitempty"`
	Title string `json:"title,omitempty"`
}

// Validate rejects a query with neither class nor title.
func (q Query) Validate() error {
	if q.Class == "" && q.Title == "" {
		return invalidQuery()
	}
	return nil
}

func (q Query) String() string {
	return fmt.Sprintf("class=%q title=%q", q.Class, q.Title)
}

// Matches reports whether a window with the given class and title satisfies
// q. Empty query fields match anything; non-empty fields match exactly.
func (q Query) Matches(class, title string) bool {
	if q.Class != "" && q.Class != class {
		return false
	}
	if q.Title != "" && q.Title != title {
		return false
	}
	return true
}
