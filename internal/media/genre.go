package media

// AllGenres is the sentinel filter value that disables genre filtering.
const AllGenres = "All Genres"

// genreNames maps TMDB genre ids for both movies and TV to display names.
var genreNames = map[int]string{
	28:    "Action",
	12:    "Adventure",
	16:    "Animation",
	35:    "Comedy",
	80:    "Crime",
	99:    "Documentary",
	18:    "Drama",
	10751: "Family",
	14:    "Fantasy",
	36:    "History",
	27:    "Horror",
	10402: "Music",
	9648:  "Mystery",
	10749: "Romance",
	878:   "Science Fiction",
	10770: "TV Movie",
	53:    "Thriller",
	10752: "War",
	37:    "Western",
	10759: "Action & Adventure",
	10762: "Kids",
	10763: "News",
	10764: "Reality",
	10765: "Sci-Fi & Fantasy",
	10766: "Soap",
	10767: "Talk",
	10768: "War & Politics",
}

// GenreName returns the display name for id, or "" when unknown.
func GenreName(id int) string {
	return genreNames[id]
}

// PrimaryGenre is the name of the first genre id on the item.
func PrimaryGenre(i Item) string {
	if len(i.GenreIDs) == 0 {
		return ""
	}
	return GenreName(i.GenreIDs[0])
}

// GenreNames resolves every known genre id on the item, preserving order.
func GenreNames(i Item) []string {
	names := make([]string, 0, len(i.GenreIDs))
	for _, id := range i.GenreIDs {
		if n := GenreName(id); n != "" {
			names = append(names, n)
		}
	}
	return names
}

// GenreID returns the TMDB id for a genre display name.
func GenreID(name string) (int, bool) {
	for id, n := range genreNames {
		if n == name {
			return id, true
		}
	}
	return 0, false
}
