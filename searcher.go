package main

// ImageSearcher is the seam between the search provider and the
// downloader. Implementations return at most count image URLs for a
// keyword, preserving the provider's ranking order.
type ImageSearcher interface {
	Search(query string, count int) ([]string, error)
}
