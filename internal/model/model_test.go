package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPriceJSON(t *testing.T) {
	tests := []struct {
		price Price
		want  string
	}{
		{Undetermined(), `"Undetermined"`},
		{Free(), `"Free"`},
		{Fixed(3500), `{"Fixed":{"amount":3500}}`},
		{MultiTier(2000), `{"MultiTier":{"minimum_amount":2000}}`},
	}

	for _, tt := range tests {
		t.Run(tt.price.String(), func(t *testing.T) {
			b, err := json.Marshal(tt.price)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(b))

			var back Price
			require.NoError(t, json.Unmarshal(b, &back))
			assert.Equal(t, tt.price, back)
		})
	}
}

func TestPriceUnmarshalRejectsUnknown(t *testing.T) {
	var p Price
	assert.Error(t, json.Unmarshal([]byte(`"Cheap"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{"Fixed":{"amount":1},"MultiTier":{"minimum_amount":1}}`), &p))
	assert.Error(t, json.Unmarshal([]byte(`{}`), &p))
}

func TestPriceMarshalZeroValueFails(t *testing.T) {
	_, err := json.Marshal(Price{})
	assert.Error(t, err)
}

func TestPlatformText(t *testing.T) {
	for _, p := range Platforms() {
		b, err := p.MarshalText()
		require.NoError(t, err)

		var back Platform
		require.NoError(t, back.UnmarshalText(b))
		assert.Equal(t, p, back)
	}

	var p Platform
	assert.Error(t, p.UnmarshalText([]byte("Twitch")))
}

func TestConcertJSONShape(t *testing.T) {
	image := "https://example.com/poster.png"
	c := Concert{
		ID:          "0b1c",
		Title:       "Gaoh Omi 1st Live",
		Format:      FormatHybrid,
		Price:       MultiTier(2000),
		Platform:    PlatformZan,
		Description: "desc",
		StartTime:   time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC),
		ImageURL:    &image,
	}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"id": "0b1c",
		"title": "Gaoh Omi 1st Live",
		"format": "Hybrid",
		"jpy_price": {"MultiTier": {"minimum_amount": 2000}},
		"platform": "Zan",
		"description": "desc",
		"start_time": "2024-03-01T10:00:00Z",
		"image_url": "https://example.com/poster.png",
		"twitter_url": null,
		"youtube_link": null,
		"ticket_link": null,
		"official_site": null
	}`, string(b))

	var back Concert
	require.NoError(t, json.Unmarshal(b, &back))
	assert.Equal(t, c, back)
}
