package models

import "time"

// Video видеоурок, размещённый у внешнего видеохостинга.
type Video struct {
	ID         string    `json:"id"`
	Title      string    `json:"vidTitle"`
	ClassLevel int       `json:"classOp"`
	Subject    string    `json:"subject"`
	PublicID   string    `json:"publicId"`
	CreatedAt  time.Time `json:"createdAt"`
}

// VideoFilter параметры выборки видео для слоя хранения.
type VideoFilter struct {
	Search     string
	ClassLevel *int
	Subjects   []string
	SortBy     string
	Desc       bool
	Limit      int
	Offset     int
}

// VideoPage страница списка видео.
type VideoPage struct {
	Videos      []Video `json:"videos"`
	TotalVideos int     `json:"totalVideos"`
	TotalPages  int     `json:"totalPages"`
	PageVideos  int     `json:"pageVideos"`
	IsFirst     bool    `json:"isFirst"`
	IsLast      bool    `json:"isLast"`
	HasNext     bool    `json:"hasNext"`
	HasPrevious bool    `json:"hasPrevious"`
}
