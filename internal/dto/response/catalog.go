package response

import (
	"time"

	"cinetix/internal/data/entity"
)

type MovieResponse struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Genre       string    `json:"genre"`
	Duration    int       `json:"duration"`
	Rating      float64   `json:"rating"`
	PosterURL   string    `json:"poster_url,omitempty"`
	BackdropURL string    `json:"backdrop_url,omitempty"`
	ReleaseDate string    `json:"release_date"`
	CreatedAt   time.Time `json:"created_at"`
}

func MovieToResponse(movie *entity.Movie) MovieResponse {
	return MovieResponse{
		ID:          movie.ID.String(),
		Title:       movie.Title,
		Description: movie.Description,
		Genre:       movie.Genre,
		Duration:    movie.Duration,
		Rating:      movie.Rating,
		PosterURL:   movie.PosterURL,
		BackdropURL: movie.BackdropURL,
		ReleaseDate: movie.ReleaseDate,
		CreatedAt:   movie.CreatedAt,
	}
}

type ScreenResponse struct {
	ScreenNumber int      `json:"screen_number"`
	Rows         []string `json:"rows"`
	SeatsPerRow  int      `json:"seats_per_row"`
	Capacity     int      `json:"capacity"`
}

type TheaterResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Location string           `json:"location"`
	Screens  []ScreenResponse `json:"screens"`
}

func TheaterToResponse(theater *entity.Theater) TheaterResponse {
	screens := make([]ScreenResponse, len(theater.Screens))
	for i, screen := range theater.Screens {
		screens[i] = ScreenResponse{
			ScreenNumber: screen.ScreenNumber,
			Rows:         screen.SeatLayout.Rows,
			SeatsPerRow:  screen.SeatLayout.SeatsPerRow,
			Capacity:     len(screen.SeatLayout.Rows) * screen.SeatLayout.SeatsPerRow,
		}
	}
	return TheaterResponse{
		ID:       theater.ID.String(),
		Name:     theater.Name,
		Location: theater.Location,
		Screens:  screens,
	}
}

type ShowResponse struct {
	ID           string  `json:"id"`
	MovieID      string  `json:"movie_id"`
	TheaterID    string  `json:"theater_id"`
	ScreenNumber int     `json:"screen_number"`
	ShowDate     string  `json:"show_date"`
	StartTime    string  `json:"start_time"`
	EndTime      string  `json:"end_time"`
	Price        float64 `json:"price"`

	MovieTitle  string `json:"movie_title,omitempty"`
	TheaterName string `json:"theater_name,omitempty"`
}

func ShowToResponse(show *entity.Show) ShowResponse {
	return ShowResponse{
		ID:           show.ID.String(),
		MovieID:      show.MovieID.String(),
		TheaterID:    show.TheaterID.String(),
		ScreenNumber: show.ScreenNumber,
		ShowDate:     show.ShowDate,
		StartTime:    show.StartTime,
		EndTime:      show.EndTime,
		Price:        show.Price,
	}
}
