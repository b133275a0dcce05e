package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGeneratePageURLs(t *testing.T) {
	urls, err := GeneratePageURLs("https://books.toscrape.com/catalogue/page-{page}.html", 3)
	require.NoError(t, err)

	expected := []PageURL{
		{URL: "https://books.toscrape.com/catalogue/page-1.html", Number: 1, Label: "page 1/3"},
		{URL: "https://books.toscrape.com/catalogue/page-2.html", Number: 2, Label: "page 2/3"},
		{URL: "https://books.toscrape.com/catalogue/page-3.html", Number: 3, Label: "page 3/3"},
	}
	assert.Equal(t, expected, urls)
}

func TestGeneratePageURLs_QueryPlaceholder(t *testing.T) {
	urls, err := GeneratePageURLs("http://127.0.0.1:8123/list?page={page}&size=20", 2)
	require.NoError(t, err)
	require.Len(t, urls, 2)
	assert.Equal(t, "http://127.0.0.1:8123/list?page=2&size=20", urls[1].URL)
}

func TestGeneratePageURLs_Errors(t *testing.T) {
	tests := []struct {
		name     string
		template string
		count    int
	}{
		{"zero count", "https://books.toscrape.com/catalogue/page-{page}.html", 0},
		{"negative count", "https://books.toscrape.com/catalogue/page-{page}.html", -1},
		{"no placeholder", "https://books.toscrape.com/catalogue/page-1.html", 3},
		{"relative url", "/catalogue/page-{page}.html", 3},
		{"ftp scheme", "ftp://books.toscrape.com/page-{page}.html", 3},
		{"bad url", "http://[::1/page-{page}", 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := GeneratePageURLs(tt.template, tt.count)
			assert.Error(t, err)
		})
	}
}
