// internal/services/social_service_test.go
package services_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/javajoker/story-mcp/internal/pil"
	"github.com/javajoker/story-mcp/internal/services"
)

func TestParseSocialURL(t *testing.T) {
	tests := []struct {
		name string
		url  string
		want services.SocialLink
	}{
		{
			name: "x post",
			url:  "https://twitter.com/storyprotocol/status/1790000000000000000?s=20",
			want: services.SocialLink{Platform: "x", Handle: "storyprotocol", ContentType: "post", ContentID: "1790000000000000000", CanonicalURL: "https://x.com/storyprotocol/status/1790000000000000000"},
		},
		{
			name: "x profile without scheme",
			url:  "x.com/@storyprotocol",
			want: services.SocialLink{Platform: "x", Handle: "storyprotocol", ContentType: "profile", CanonicalURL: "https://x.com/storyprotocol"},
		},
		{
			name: "instagram reel",
			url:  "https://www.instagram.com/reel/C1a2B3c4D5e/",
			want: services.SocialLink{Platform: "instagram", ContentType: "video", ContentID: "C1a2B3c4D5e", CanonicalURL: "https://www.instagram.com/reel/C1a2B3c4D5e/"},
		},
		{
			name: "instagram profile",
			url:  "https://instagram.com/some.artist",
			want: services.SocialLink{Platform: "instagram", Handle: "some.artist", ContentType: "profile", CanonicalURL: "https://www.instagram.com/some.artist/"},
		},
		{
			name: "youtube watch",
			url:  "https://www.youtube.com/watch?v=dQw4w9WgXcQ&t=42",
			want: services.SocialLink{Platform: "youtube", ContentType: "video", ContentID: "dQw4w9WgXcQ", CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "youtube short link",
			url:  "https://youtu.be/dQw4w9WgXcQ",
			want: services.SocialLink{Platform: "youtube", ContentType: "video", ContentID: "dQw4w9WgXcQ", CanonicalURL: "https://www.youtube.com/watch?v=dQw4w9WgXcQ"},
		},
		{
			name: "youtube handle",
			url:  "https://m.youtube.com/@creator",
			want: services.SocialLink{Platform: "youtube", Handle: "creator", ContentType: "profile", CanonicalURL: "https://www.youtube.com/@creator"},
		},
		{
			name: "tiktok video",
			url:  "https://www.tiktok.com/@dancer/video/7300000000000000000",
			want: services.SocialLink{Platform: "tiktok", Handle: "dancer", ContentType: "video", ContentID: "7300000000000000000", CanonicalURL: "https://www.tiktok.com/@dancer/video/7300000000000000000"},
		},
		{
			name: "github repository",
			url:  "https://github.com/storyprotocol/protocol-core-v1.git",
			want: services.SocialLink{Platform: "github", Handle: "storyprotocol", ContentType: "repository", ContentID: "storyprotocol/protocol-core-v1", CanonicalURL: "https://github.com/storyprotocol/protocol-core-v1"},
		},
		{
			name: "linkedin company",
			url:  "https://www.linkedin.com/company/story-protocol/",
			want: services.SocialLink{Platform: "linkedin", Handle: "story-protocol", ContentType: "company", CanonicalURL: "https://www.linkedin.com/company/story-protocol/"},
		},
	}

	svc := services.NewSocialService()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := svc.Parse(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, *got)
		})
	}
}

func TestParseSocialURLErrors(t *testing.T) {
	svc := services.NewSocialService()

	_, err := svc.Parse("https://example.com/user")
	assert.ErrorIs(t, err, services.ErrUnsupportedPlatform)

	for _, raw := range []string{"", "https://x.com/home", "https://www.tiktok.com/dancer", "https://www.linkedin.com/feed/"} {
		_, err := svc.Parse(raw)
		var verr *pil.ValidationError
		assert.True(t, errors.As(err, &verr), raw)
	}
}
