package entity

type Movie struct {
	Base
	Title       string `db:"title"`
	Description string `db:"description"`
	Genre       string `db:"genre"`
	Duration    int    `db:"duration"` // minutes
	Rating      float64 `db:"rating"`
	PosterURL   string `db:"poster_url"`
	BackdropURL string `db:"backdrop_url"`
	ReleaseDate string `db:"release_date"`
}
