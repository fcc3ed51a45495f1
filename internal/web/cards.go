package web

import "github.com/mrlokans/booky/internal/entities"

// BookCard is a book in a grid, with the viewer's shelf when signed in.
type BookCard struct {
	Book   entities.Book          `json:"book"`
	Status entities.ReadingStatus `json:"status,omitempty"`
}

// Shelf groups a user's books by reading status.
type Shelf struct {
	Status entities.ReadingStatus `json:"status"`
	Cards  []BookCard             `json:"books"`
}

// List is a curated list shown on the lists page.
type List struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Cards       []BookCard `json:"books"`
}

// Cards pairs books with the viewer's statuses. statuses may be nil.
func Cards(books []entities.Book, statuses map[string]entities.ReadingStatus) []BookCard {
	cards := make([]BookCard, 0, len(books))
	for _, b := range books {
		cards = append(cards, BookCard{Book: b, Status: statuses[b.ID]})
	}
	return cards
}

// Shelves groups user books into one shelf per status, in display order.
// Empty shelves are kept so the page always shows every status.
func Shelves(items []entities.UserBook) []Shelf {
	byStatus := make(map[entities.ReadingStatus][]BookCard, len(entities.ReadingStatuses))
	for _, ub := range items {
		byStatus[ub.Status] = append(byStatus[ub.Status], BookCard{Book: ub.Book, Status: ub.Status})
	}

	shelves := make([]Shelf, 0, len(entities.ReadingStatuses))
	for _, status := range entities.ReadingStatuses {
		shelves = append(shelves, Shelf{Status: status, Cards: byStatus[status]})
	}
	return shelves
}
