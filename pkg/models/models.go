package models

import "time"

// QueryTypeTwitterUser tags records harvested from an account timeline
const QueryTypeTwitterUser = "twitter_user"

// Record is a normalized tweet as handed to the downstream pipeline
type Record struct {
	IDFields      []string  `json:"_sc_id_fields"`
	ContentFields []string  `json:"_sc_content_fields"`
	Media         []Media   `json:"_sc_media"`
	Pubdates      Pubdates  `json:"_sc_pubdates"`
	Queries       []Query   `json:"_sc_queries"`
	TweetID       string    `json:"tweet_id"`
	TweetTime     time.Time `json:"tweet_time"`
	Geo           any       `json:"geo"`
	Place         any       `json:"place"`
	Lang          *string   `json:"lang"`
	Hashtags      []Hashtag `json:"hashtags"`
	Tweet         string    `json:"tweet"`
	Href          string    `json:"href"`
	RetweetCount  int64     `json:"retweet_count"`
	FavoriteCount int64     `json:"favorite_count"`
	User          User      `json:"user"`
}

// MediaType is the kind of a media entry
type MediaType string

const (
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
	MediaURL   MediaType = "url"
)

type Media struct {
	Type MediaType `json:"type"`
	Term string    `json:"term"`
}

type Pubdates struct {
	Source time.Time `json:"source"`
}

// Query records which input term a record was found through
type Query struct {
	Type string `json:"type"`
	Term string `json:"term"`
}

type Hashtag struct {
	Tag         string `json:"tag"`
	OriginalTag string `json:"original_tag"`
}

type User struct {
	Name       string `json:"name"`
	ScreenName string `json:"screen_name"`
	UserID     string `json:"user_id"`
}
