package domain

// Genre classifies movies.
type Genre struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Director describes who directed a movie.
type Director struct {
	Name string `json:"name"`
	Bio  string `json:"bio"`
}

// Movie is a catalog entry.
type Movie struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Genre       Genre    `json:"genre"`
	Director    Director `json:"director"`
	Actors      []string `json:"actors"`
	ImagePath   string   `json:"image_path"`
	Featured    bool     `json:"featured"`
}
