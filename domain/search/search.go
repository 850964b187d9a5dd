package search

import (
	"strconv"
	"strings"
)

// DefaultLimit bounds a search when the caller did not ask for a size.
const DefaultLimit = 10

// Query represents the structured parameters of a message search.
// It decouples raw console input from the actual index engine requirements.
type Query struct {
	RawInput string // the original line typed by the user
	Terms    string // the actual text to match against message bodies
	Limit    int    // maximum number of results
}

// NewSearchQuery parses a raw string to extract command-line style arguments.
// Example: payment failed --limit 25
// Leading command tokens ("/search") and unknown flags are skipped.
func NewSearchQuery(input string) *Query {
	query := &Query{
		RawInput: input,
		Limit:    DefaultLimit,
	}

	parts := strings.Fields(input)
	var textTerms []string

	for i := 0; i < len(parts); i++ {
		part := parts[i]

		// Handle flags like --limit 25
		if strings.HasPrefix(part, "--") && i+1 < len(parts) {
			key := strings.TrimPrefix(part, "--")
			val := parts[i+1]

			if key == "limit" {
				if n, err := strconv.Atoi(val); err == nil && n > 0 {
					query.Limit = n
				}
			}
			i++ // Skip the value part in next iteration
			continue
		}

		// If it's not a flag, it's a search term
		if !strings.HasPrefix(part, "/") {
			textTerms = append(textTerms, part)
		}
	}

	query.Terms = strings.Join(textTerms, " ")
	return query
}
