package web

import (
	"fmt"
	"html/template"
	"math"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booky/internal/community"
	"github.com/mrlokans/booky/internal/entities"
)

// MaxStars is the width of a star rating.
const MaxStars = 5

// Funcs returns the helpers available to every template.
func Funcs() template.FuncMap {
	return template.FuncMap{
		"stars":       Stars,
		"rating":      formatRating,
		"initials":    community.Initials,
		"statusLabel": statusLabel,
		"statuses":    func() []entities.ReadingStatus { return entities.ReadingStatuses },
		"title":       capitalize,
		"date":        formatDate,
		"grid":        grid,
	}
}

// Stars returns MaxStars flags, true for each filled star. Fractional
// ratings are rounded to the nearest whole star.
func Stars(rating any) []bool {
	var filled int
	switch v := rating.(type) {
	case int:
		filled = v
	case int64:
		filled = int(v)
	case float64:
		filled = int(math.Round(v))
	case float32:
		filled = int(math.Round(float64(v)))
	}
	filled = max(0, min(filled, MaxStars))

	out := make([]bool, MaxStars)
	for i := range filled {
		out[i] = true
	}
	return out
}

func formatRating(v float64) string {
	return fmt.Sprintf("%.1f", v)
}

func statusLabel(s entities.ReadingStatus) string {
	return s.Label()
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("Jan 2, 2006")
}

// grid rebinds the book_grid partial to a different set of cards while
// keeping the page-level values (CSRF field, current path) in scope.
func grid(root any, cards any) map[string]any {
	out := map[string]any{}
	switch m := root.(type) {
	case gin.H:
		for k, v := range m {
			out[k] = v
		}
	case map[string]any:
		for k, v := range m {
			out[k] = v
		}
	}
	out["Cards"] = cards
	delete(out, "Empty")
	return out
}
