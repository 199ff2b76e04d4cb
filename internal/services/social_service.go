// internal/services/social_service.go
package services

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

var ErrUnsupportedPlatform = errors.New("unsupported social media platform")

type SocialService struct{}

type SocialLink struct {
	Platform     string `json:"platform"`
	Handle       string `json:"handle,omitempty"`
	ContentType  string `json:"content_type"`
	ContentID    string `json:"content_id,omitempty"`
	CanonicalURL string `json:"canonical_url"`
}

type ParseSocialURLRequest struct {
	URL string `json:"url" validate:"required"`
}

var (
	handlePattern = regexp.MustCompile(`^@?[A-Za-z0-9_.\-]{1,100}$`)
	idPattern     = regexp.MustCompile(`^[A-Za-z0-9_\-]{1,64}$`)
)

// reserved path segments that are never handles
var reservedSegments = map[string]bool{
	"home": true, "explore": true, "search": true, "settings": true,
	"i": true, "intent": true, "share": true, "hashtag": true,
}

func NewSocialService() *SocialService {
	return &SocialService{}
}

// Parse identifies the platform of a social media URL and extracts the
// handle and content id it points at.
func (s *SocialService) Parse(raw string) (*SocialLink, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, invalidField("url", "must not be empty")
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return nil, invalidField("url", "%q is not a valid URL", raw)
	}

	host := strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
	host = strings.TrimPrefix(host, "m.")
	segments := pathSegments(u.Path)

	var link *SocialLink
	switch host {
	case "x.com", "twitter.com", "mobile.twitter.com":
		link, err = parseX(segments)
	case "instagram.com":
		link, err = parseInstagram(segments)
	case "youtube.com", "youtu.be", "music.youtube.com":
		link, err = parseYouTube(host, segments, u.Query())
	case "tiktok.com", "vm.tiktok.com":
		link, err = parseTikTok(segments)
	case "github.com":
		link, err = parseGitHub(segments)
	case "linkedin.com":
		link, err = parseLinkedIn(segments)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, host)
	}
	if err != nil {
		return nil, err
	}
	return link, nil
}

func pathSegments(path string) []string {
	var out []string
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			out = append(out, seg)
		}
	}
	return out
}

func validHandle(h string) bool {
	return handlePattern.MatchString(h) && !reservedSegments[strings.ToLower(strings.TrimPrefix(h, "@"))]
}

func missing(platform string) error {
	return invalidField("url", "no %s profile or content found in URL", platform)
}

func parseX(seg []string) (*SocialLink, error) {
	if len(seg) == 0 || !validHandle(seg[0]) {
		return nil, missing("X")
	}
	handle := strings.TrimPrefix(seg[0], "@")
	if len(seg) >= 3 && seg[1] == "status" && idPattern.MatchString(seg[2]) {
		return &SocialLink{
			Platform:     "x",
			Handle:       handle,
			ContentType:  "post",
			ContentID:    seg[2],
			CanonicalURL: fmt.Sprintf("https://x.com/%s/status/%s", handle, seg[2]),
		}, nil
	}
	return &SocialLink{
		Platform:     "x",
		Handle:       handle,
		ContentType:  "profile",
		CanonicalURL: "https://x.com/" + handle,
	}, nil
}

func parseInstagram(seg []string) (*SocialLink, error) {
	if len(seg) == 0 {
		return nil, missing("Instagram")
	}
	switch seg[0] {
	case "p", "reel", "tv":
		if len(seg) < 2 || !idPattern.MatchString(seg[1]) {
			return nil, missing("Instagram")
		}
		contentType := "post"
		if seg[0] != "p" {
			contentType = "video"
		}
		return &SocialLink{
			Platform:     "instagram",
			ContentType:  contentType,
			ContentID:    seg[1],
			CanonicalURL: fmt.Sprintf("https://www.instagram.com/%s/%s/", seg[0], seg[1]),
		}, nil
	}
	if !validHandle(seg[0]) {
		return nil, missing("Instagram")
	}
	handle := strings.TrimPrefix(seg[0], "@")
	return &SocialLink{
		Platform:     "instagram",
		Handle:       handle,
		ContentType:  "profile",
		CanonicalURL: fmt.Sprintf("https://www.instagram.com/%s/", handle),
	}, nil
}

func parseYouTube(host string, seg []string, query url.Values) (*SocialLink, error) {
	video := func(id string) (*SocialLink, error) {
		if !idPattern.MatchString(id) {
			return nil, missing("YouTube")
		}
		return &SocialLink{
			Platform:     "youtube",
			ContentType:  "video",
			ContentID:    id,
			CanonicalURL: "https://www.youtube.com/watch?v=" + id,
		}, nil
	}

	if host == "youtu.be" {
		if len(seg) == 0 {
			return nil, missing("YouTube")
		}
		return video(seg[0])
	}
	if len(seg) == 0 {
		return nil, missing("YouTube")
	}

	switch {
	case seg[0] == "watch":
		return video(query.Get("v"))
	case (seg[0] == "shorts" || seg[0] == "embed" || seg[0] == "live") && len(seg) > 1:
		return video(seg[1])
	case seg[0] == "channel" && len(seg) > 1 && idPattern.MatchString(seg[1]):
		return &SocialLink{
			Platform:     "youtube",
			ContentType:  "channel",
			ContentID:    seg[1],
			CanonicalURL: "https://www.youtube.com/channel/" + seg[1],
		}, nil
	case strings.HasPrefix(seg[0], "@") && validHandle(seg[0]):
		handle := strings.TrimPrefix(seg[0], "@")
		return &SocialLink{
			Platform:     "youtube",
			Handle:       handle,
			ContentType:  "profile",
			CanonicalURL: "https://www.youtube.com/@" + handle,
		}, nil
	}
	return nil, missing("YouTube")
}

func parseTikTok(seg []string) (*SocialLink, error) {
	if len(seg) == 0 || !strings.HasPrefix(seg[0], "@") || !validHandle(seg[0]) {
		return nil, missing("TikTok")
	}
	handle := strings.TrimPrefix(seg[0], "@")
	if len(seg) >= 3 && seg[1] == "video" && idPattern.MatchString(seg[2]) {
		return &SocialLink{
			Platform:     "tiktok",
			Handle:       handle,
			ContentType:  "video",
			ContentID:    seg[2],
			CanonicalURL: fmt.Sprintf("https://www.tiktok.com/@%s/video/%s", handle, seg[2]),
		}, nil
	}
	return &SocialLink{
		Platform:     "tiktok",
		Handle:       handle,
		ContentType:  "profile",
		CanonicalURL: "https://www.tiktok.com/@" + handle,
	}, nil
}

func parseGitHub(seg []string) (*SocialLink, error) {
	if len(seg) == 0 || !validHandle(seg[0]) {
		return nil, missing("GitHub")
	}
	owner := seg[0]
	if len(seg) >= 2 && idPattern.MatchString(strings.TrimSuffix(seg[1], ".git")) {
		repo := strings.TrimSuffix(seg[1], ".git")
		return &SocialLink{
			Platform:     "github",
			Handle:       owner,
			ContentType:  "repository",
			ContentID:    owner + "/" + repo,
			CanonicalURL: fmt.Sprintf("https://github.com/%s/%s", owner, repo),
		}, nil
	}
	return &SocialLink{
		Platform:     "github",
		Handle:       owner,
		ContentType:  "profile",
		CanonicalURL: "https://github.com/" + owner,
	}, nil
}

func parseLinkedIn(seg []string) (*SocialLink, error) {
	if len(seg) < 2 || !validHandle(seg[1]) {
		return nil, missing("LinkedIn")
	}
	switch seg[0] {
	case "in":
		return &SocialLink{
			Platform:     "linkedin",
			Handle:       seg[1],
			ContentType:  "profile",
			CanonicalURL: fmt.Sprintf("https://www.linkedin.com/in/%s/", seg[1]),
		}, nil
	case "company":
		return &SocialLink{
			Platform:     "linkedin",
			Handle:       seg[1],
			ContentType:  "company",
			CanonicalURL: fmt.Sprintf("https://www.linkedin.com/company/%s/", seg[1]),
		}, nil
	}
	return nil, missing("LinkedIn")
}
