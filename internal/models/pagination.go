package models

import (
	"math"
	"strings"
)

const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
	// MaxPage keeps (Page-1)*Limit well inside a Postgres bigint OFFSET.
	MaxPage = math.MaxInt32 / MaxPageLimit
)

var sortColumns = map[string]string{
	"id":            "id",
	"original_name": "original_name",
	"size":          "size",
	"created_at":    "created_at",
	"views":         "views",
}

type ListOptions struct {
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
	Search    string
	Type      string
}

// Normalize clamps paging and replaces unknown sort keys with safe defaults.
// defaultLimit is used when Limit is missing or out of range.
func (o ListOptions) Normalize(defaultLimit int) ListOptions {
	if o.Page < 1 {
		o.Page = 1
	}
	if o.Page > MaxPage {
		o.Page = MaxPage
	}
	if o.Limit < 1 || o.Limit > MaxPageLimit {
		o.Limit = defaultLimit
	}
	col, ok := sortColumns[o.SortBy]
	if !ok {
		col = "created_at"
	}
	o.SortBy = col
	if strings.ToUpper(o.SortOrder) == "ASC" {
		o.SortOrder = "ASC"
	} else {
		o.SortOrder = "DESC"
	}
	if o.Type != "image" && o.Type != "video" {
		o.Type = ""
	}
	return o
}

func (o ListOptions) Offset() int {
	return (o.Page - 1) * o.Limit
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"total_pages"`
}

type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

func NewPage[T any](data []T, opts ListOptions, total int64) Page[T] {
	if data == nil {
		data = []T{}
	}
	var pages int64
	if opts.Limit > 0 {
		pages = (total + int64(opts.Limit) - 1) / int64(opts.Limit)
	}
	return Page[T]{
		Data: data,
		Pagination: Pagination{
			Page:       opts.Page,
			Limit:      opts.Limit,
			Total:      total,
			TotalPages: pages,
		},
	}
}
