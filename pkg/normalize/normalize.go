// Package normalize maps raw scraper records onto the canonical record schema.
package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"twharvest/pkg/ingest"
	"twharvest/pkg/models"
)

var (
	idFields      = []string{"tweet_id"}
	contentFields = []string{"tweet"}
)

// NewQuery builds the provenance entry for records found through term
func NewQuery(term string) models.Query {
	return models.Query{Type: models.QueryTypeTwitterUser, Term: term}
}

// Normalize converts one raw record. It is a pure function of its inputs.
func Normalize(raw ingest.RawRecord, query models.Query) models.Record {
	created := Timestamp(raw.CreatedAt)

	return models.Record{
		IDFields:      append([]string(nil), idFields...),
		ContentFields: append([]string(nil), contentFields...),
		Media:         Media(raw.Photos, raw.Video, raw.Link),
		Pubdates:      models.Pubdates{Source: created},
		Queries:       []models.Query{query},
		TweetID:       Decimal(raw.ID),
		TweetTime:     created,
		Geo:           nullIfEmpty(raw.Geo),
		Place:         nullIfEmpty(raw.Place),
		Lang:          nullString(raw.Lang),
		Hashtags:      Hashtags(raw.Hashtags),
		Tweet:         raw.Tweet,
		Href:          raw.Link,
		RetweetCount:  zeroIfNull(raw.RetweetsCount),
		FavoriteCount: zeroIfNull(raw.LikesCount),
		User: models.User{
			Name:       raw.Name,
			ScreenName: raw.Username,
			UserID:     Decimal(raw.UserID),
		},
	}
}

// All normalizes a batch with a shared provenance entry
func All(raws []ingest.RawRecord, query models.Query) []models.Record {
	out := make([]models.Record, 0, len(raws))
	for _, raw := range raws {
		out = append(out, Normalize(raw, query))
	}
	return out
}

// Media lists image entries for each photo, then a video entry when the
// video flag is 1, then the link itself. Video and url entries both point at
// the tweet link.
func Media(photos []string, video int, link string) []models.Media {
	media := make([]models.Media, 0, len(photos)+2)
	for _, p := range photos {
		media = append(media, models.Media{Type: models.MediaImage, Term: p})
	}
	if video == 1 {
		media = append(media, models.Media{Type: models.MediaVideo, Term: link})
	}
	return append(media, models.Media{Type: models.MediaURL, Term: link})
}

// Hashtags splits "#Tag" into a lowercased tag and the tag as written, both
// without the leading '#'
func Hashtags(tags []string) []models.Hashtag {
	out := make([]models.Hashtag, 0, len(tags))
	for _, t := range tags {
		original := strings.TrimPrefix(t, "#")
		out = append(out, models.Hashtag{
			Tag:         strings.ToLower(original),
			OriginalTag: original,
		})
	}
	return out
}

// Timestamp interprets a millisecond unix timestamp. Fractional and exponent
// forms are accepted; anything unparseable yields the zero time.
func Timestamp(ms json.Number) time.Time {
	if n, err := ms.Int64(); err == nil {
		return time.UnixMilli(n).UTC()
	}
	f, err := ms.Float64()
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return time.Time{}
	}
	sec, frac := math.Modf(f / 1000)
	return time.Unix(int64(sec), int64(frac*1e9)).UTC()
}

// Decimal renders a numeric id as a decimal string. Ids given in float or
// exponent form are expanded; other strings pass through unchanged.
func Decimal(n json.Number) string {
	if i, err := n.Int64(); err == nil {
		return strconv.FormatInt(i, 10)
	}
	if f, err := n.Float64(); err == nil && f == math.Trunc(f) && math.Abs(f) < 1<<63 {
		return strconv.FormatInt(int64(f), 10)
	}
	return n.String()
}

func nullIfEmpty(v any) any {
	if s, ok := v.(string); ok && s == "" {
		return nil
	}
	return v
}

func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func zeroIfNull(n *int64) int64 {
	if n == nil {
		return 0
	}
	return *n
}
