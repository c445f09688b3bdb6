package controllers

import (
	"net/url"
	"strconv"

	"civicsync-web/listing"
)

type PageLink struct {
	Number  int    `json:"number"`
	URL     string `json:"url"`
	Current bool   `json:"current"`
}

// Pager is the page navigation rendered under a list.
type Pager struct {
	Page       int        `json:"page"`
	TotalPages int        `json:"totalPages"`
	HasPrev    bool       `json:"hasPrev"`
	HasNext    bool       `json:"hasNext"`
	First      string     `json:"first"`
	Prev       string     `json:"prev"`
	Next       string     `json:"next"`
	Last       string     `json:"last"`
	Links      []PageLink `json:"links"`
}

func newPager(u *url.URL, current, totalPages int) Pager {
	last := max(totalPages, 1)
	p := Pager{
		Page:       current,
		TotalPages: totalPages,
		HasPrev:    current > 1,
		HasNext:    current < totalPages,
		First:      pageURL(u, 1),
		Prev:       pageURL(u, max(current-1, 1)),
		Next:       pageURL(u, min(current+1, last)),
		Last:       pageURL(u, last),
	}
	for _, n := range listing.PageWindow(current, totalPages) {
		p.Links = append(p.Links, PageLink{Number: n, URL: pageURL(u, n), Current: n == current})
	}
	return p
}

func pageURL(u *url.URL, n int) string {
	query := u.Query()
	query.Del("error")
	query.Del("notice")
	query.Set("page", strconv.Itoa(n))
	return u.Path + "?" + query.Encode()
}

// pageParam reads ?page=, defaulting to 1.
func pageParam(raw string) int {
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 1
	}
	return n
}
