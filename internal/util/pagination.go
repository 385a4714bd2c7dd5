package util

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100

	// MaxPage keeps (page-1)*size inside int for every accepted size.
	MaxPage = math.MaxInt / MaxPageSize
)

func ParseIntDefault(s string, def int) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}

// ParseFloat parses a finite number. NaN and infinities are rejected.
func ParseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// ParseUint parses a path id. Zero is never a valid id.
func ParseUint(s string) (uint, bool) {
	v, err := strconv.ParseUint(strings.TrimSpace(s), 10, 64)
	if err != nil || v == 0 {
		return 0, false
	}
	return uint(v), true
}

func clampPage(page int) int {
	if page < 1 {
		return 1
	}
	return min(page, MaxPage)
}

func Calculate(page, size int) (offset, limit int) {
	page = clampPage(page)
	if size < 1 || size > MaxPageSize {
		size = DefaultPageSize
	}
	return (page - 1) * size, size
}

// Page describes one slice of a result list for templates.
type Page struct {
	Number     int
	Size       int
	Total      int64
	TotalPages int64
	HasPrev    bool
	HasNext    bool
}

func NewPage(page, size int, total int64) Page {
	page = clampPage(page)
	offset, limit := Calculate(page, size)
	return Page{
		Number:     page,
		Size:       limit,
		Total:      total,
		TotalPages: (total + int64(limit) - 1) / int64(limit),
		HasPrev:    page > 1,
		HasNext:    int64(offset+limit) < total,
	}
}
