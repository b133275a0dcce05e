package models

// Book represents a single product card scraped from the catalog
type Book struct {
	Title        string `json:"title"`
	Price        string `json:"price"` // Currency-formatted as shown on the page, e.g. "£51.77"
	Availability string `json:"availability"`
	ImageURL     string `json:"image_url"`
}
