package ingest

import "encoding/json"

// RawRecord is one line of scraper output. The field set is defined by the
// scraper; ids may arrive as JSON numbers or numeric strings, so they are kept
// as json.Number. Place and Geo are either "" or a source-defined value.
type RawRecord struct {
	ID            json.Number `json:"id"`
	Name          string      `json:"name"`
	Username      string      `json:"username"`
	UserID        json.Number `json:"user_id"`
	CreatedAt     json.Number `json:"created_at"`
	Tweet         string      `json:"tweet"`
	Photos        []string    `json:"photos"`
	Video         int         `json:"video"`
	Hashtags      []string    `json:"hashtags"`
	Link          string      `json:"link"`
	RetweetsCount *int64      `json:"retweets_count"`
	LikesCount    *int64      `json:"likes_count"`
	Lang          string      `json:"lang"`
	Place         any         `json:"place"`
	Geo           any         `json:"geo"`
}
