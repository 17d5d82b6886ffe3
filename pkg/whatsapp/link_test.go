package whatsapp

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShareText(t *testing.T) {
	got := ShareText("Unit 1", "7th", "Maths", 50)
	assert.Equal(t, "Test results for Unit 1 (7th class) in Maths are ready! Max marks: 50", got)
}

func TestShareLink(t *testing.T) {
	text := ShareText("Unit 1", "7th", "Maths", 50)
	link := ShareLink("https://wa.me/", text)

	assert.Equal(t,
		"https://wa.me/?text=Test%20results%20for%20Unit%201%20%287th%20class%29%20in%20Maths%20are%20ready%21%20Max%20marks%3A%2050",
		link)

	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, text, u.Query().Get("text"))
}

func TestShareLinkDefaultBase(t *testing.T) {
	assert.Equal(t, "https://wa.me/?text=hi", ShareLink("", "hi"))
}

func TestEncode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"a b", "a%20b"},
		{"a+b", "a%2Bb"},
		{"1/2", "1/2"},
		{"x&y=z", "x%26y%3Dz"},
		{"snake_case-v1.0~", "snake_case-v1.0~"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Encode(tt.in))
		})
	}
}
