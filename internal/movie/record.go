package movie

import "fmt"

const (
	// NotAvailable stands in for any field the movie database did not provide.
	NotAvailable = "N/A"
	// ErrorRating marks a record whose lookup failed.
	ErrorRating = "Error"
	// NotFoundPlot is the plot of a record the movie database has no entry for.
	NotFoundPlot = "Movie information not found"
)

// Record is the normalized metadata returned for one extracted title.
// Every field is always populated, sentinel strings replace missing data.
type Record struct {
	Title  string `json:"title"`
	Rating string `json:"rating"`
	Poster string `json:"poster"`
	Year   string `json:"year"`
	Plot   string `json:"plot"`
}

// NotFound returns the record for a title the movie database does not know.
func NotFound(title string) Record {
	return Record{
		Title:  title,
		Rating: NotAvailable,
		Poster: NotAvailable,
		Year:   NotAvailable,
		Plot:   NotFoundPlot,
	}
}

// Failed returns the record for a title whose lookup could not be completed.
func Failed(title string, cause error) Record {
	return Record{
		Title:  title,
		Rating: ErrorRating,
		Poster: NotAvailable,
		Year:   NotAvailable,
		Plot:   fmt.Sprintf("Error fetching movie details: %v", cause),
	}
}

// IsFailed reports whether the record represents a failed lookup.
func (r Record) IsFailed() bool {
	return r.Rating == ErrorRating
}
