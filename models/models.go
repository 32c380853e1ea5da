package models

import "time"

type Blog struct {
	ID          int64   `json:"-"`
	Name        string  `json:"name"`
	SlugName    string  `json:"slugName"`
	Headline    *string `json:"headline"`
	Description *string `json:"description"`
}

type Author struct {
	ID    int64  `json:"-"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type AuthorProfile struct {
	ID          int64   `json:"-"`
	AuthorID    int64   `json:"-"`
	Bio         *string `json:"bio"`
	Avatar      string  `json:"avatar"`
	PhoneNumber *string `json:"phoneNumber"`
	City        *string `json:"city"`
}

type Entry struct {
	SlugHeadline      string    `json:"slugHeadline"`
	BlogID            int64     `json:"-"`
	Headline          string    `json:"headline"`
	Summary           string    `json:"summary"`
	BodyText          string    `json:"bodyText"`
	PubDate           time.Time `json:"pubDate"`
	ModDate           time.Time `json:"modDate"`
	NumberOfComments  int64     `json:"numberOfComments"`
	NumberOfPingbacks int64     `json:"numberOfPingbacks"`
	Rating            float64   `json:"rating"`
}
