package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractImageURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    []string
	}{
		{name: "no images", content: "plain text", want: []string{}},
		{
			name:    "markdown",
			content: "a ![one](https://cdn.example.com/1.png) b ![](https://cdn.example.com/2.png \"title\")",
			want:    []string{"https://cdn.example.com/1.png", "https://cdn.example.com/2.png"},
		},
		{
			name:    "html",
			content: `<p><IMG alt="x" src='https://cdn.example.com/3.png'></p>`,
			want:    []string{"https://cdn.example.com/3.png"},
		},
		{
			name:    "mixed keeps document order",
			content: `<img src="https://cdn.example.com/b.png"> then ![a](https://cdn.example.com/a.png)`,
			want:    []string{"https://cdn.example.com/b.png", "https://cdn.example.com/a.png"},
		},
		{
			name:    "duplicates dropped",
			content: "![a](https://cdn.example.com/a.png) ![again](https://cdn.example.com/a.png)",
			want:    []string{"https://cdn.example.com/a.png"},
		},
		{name: "links are not images", content: "[doc](https://example.com/doc)", want: []string{}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ExtractImageURLs(tc.content))
		})
	}
}
