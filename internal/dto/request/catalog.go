package request

type MovieRequest struct {
	Title       string  `json:"title" validate:"required,min=1,max=200"`
	Description string  `json:"description,omitempty"`
	Genre       string  `json:"genre" validate:"required,min=1,max=100"`
	Duration    int     `json:"duration" validate:"required,min=1,max=999"`
	Rating      float64 `json:"rating" validate:"min=0,max=10"`
	PosterURL   string  `json:"poster_url,omitempty" validate:"omitempty,url"`
	BackdropURL string  `json:"backdrop_url,omitempty" validate:"omitempty,url"`
	ReleaseDate string  `json:"release_date" validate:"required,datetime=2006-01-02"`
}

type MovieUpdateRequest struct {
	Title       *string  `json:"title,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty"`
	Genre       *string  `json:"genre,omitempty" validate:"omitempty,min=1,max=100"`
	Duration    *int     `json:"duration,omitempty" validate:"omitempty,min=1,max=999"`
	Rating      *float64 `json:"rating,omitempty" validate:"omitempty,min=0,max=10"`
	PosterURL   *string  `json:"poster_url,omitempty" validate:"omitempty,url"`
	BackdropURL *string  `json:"backdrop_url,omitempty" validate:"omitempty,url"`
	ReleaseDate *string  `json:"release_date,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

type ScreenRequest struct {
	ScreenNumber int      `json:"screen_number" validate:"required,min=1"`
	Rows         []string `json:"rows" validate:"required,min=1,max=26,unique,dive,required,len=1"`
	SeatsPerRow  int      `json:"seats_per_row" validate:"required,min=1,max=50"`
}

type TheaterRequest struct {
	Name     string          `json:"name" validate:"required,min=1,max=200"`
	Location string          `json:"location" validate:"required,min=1,max=200"`
	Screens  []ScreenRequest `json:"screens" validate:"required,min=1,dive"`
}

type ShowRequest struct {
	MovieID      string  `json:"movie_id" validate:"required,uuid4"`
	TheaterID    string  `json:"theater_id" validate:"required,uuid4"`
	ScreenNumber int     `json:"screen_number" validate:"required,min=1"`
	ShowDate     string  `json:"show_date" validate:"required,datetime=2006-01-02"`
	StartTime    string  `json:"start_time" validate:"required,datetime=15:04"`
	EndTime      string  `json:"end_time" validate:"required,datetime=15:04"`
	Price        float64 `json:"price" validate:"required,gt=0"`
}
