package extract

import (
	"net/url"
	"regexp"
	"strings"
)

const (
	LinkImage    = "image"
	LinkTwitter  = "twitter"
	LinkYoutube  = "youtube"
	LinkTicket   = "ticket"
	LinkOfficial = "official_site"
)

const (
	// urlPattern matches an http(s) URL up to the first character that cannot
	// belong to one. ICS escapes (`\,` `\n`) end the match.
	urlPattern = `https?://(?:www\.)?[-a-zA-Z0-9@:%._+~#=]{1,256}\.[a-zA-Z0-9()]{1,6}\b[-a-zA-Z0-9()@:%_+.~#?&/=]*`
	urlTail    = `[-a-zA-Z0-9()@:%_+.~#?&/=]*`

	// lineStart anchors a label to the start of a line, where lines may be
	// split either by real newlines or by escaped "\n" sequences.
	lineStart = `(?:^|\n|\\n)[ \t]*`
)

type pick int

const (
	pickFirst pick = iota
	pickLast
)

// linkMatcher is one pattern in an ordered extractor. The URL is always
// capture group 1. When hosts is set, a match only counts if its host is one
// of them or a subdomain of one.
type linkMatcher struct {
	name  string
	re    *regexp.Regexp
	pick  pick
	hosts []string
}

func (m linkMatcher) find(text string) (string, bool) {
	all := m.re.FindAllStringSubmatch(text, -1)
	for i := range all {
		sm := all[i]
		if m.pick == pickLast {
			sm = all[len(all)-1-i]
		}
		if m.hostAllowed(sm[1]) {
			return sm[1], true
		}
	}
	return "", false
}

func (m linkMatcher) hostAllowed(raw string) bool {
	if len(m.hosts) == 0 {
		return true
	}
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range m.hosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}

// firstMatch runs matchers in order and validates the capture of the first
// one that hits anything. Later matchers are not consulted after a hit, even
// when its capture fails validation.
func firstMatch(link, text string, matchers []linkMatcher) (string, error) {
	for _, m := range matchers {
		raw, ok := m.find(text)
		if !ok {
			continue
		}
		return validateURL(link, raw)
	}
	return "", &LinkError{Link: link, Err: ErrLinkNotFound}
}

func validateURL(link, raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", &LinkError{Link: link, Err: ErrMalformedURL}
	}
	return raw, nil
}

var imageMatchers = []linkMatcher{
	{name: "image label", re: regexp.MustCompile(`(?m)` + lineStart + `!?Image:\s*(` + urlPattern + `)`)},
	{name: "bang label", re: regexp.MustCompile(`(?m)` + lineStart + `![^:\\\r\n]+:\s*(` + urlPattern + `)`)},
}

// ImageURL prefers the event attachment when it is an http(s) URL, then an
// "Image:" line, then any "!label:" line.
func ImageURL(description, attachment string) (string, error) {
	if a := strings.TrimSpace(attachment); a != "" {
		if u, err := validateURL(LinkImage, a); err == nil {
			return u, nil
		}
	}
	return firstMatch(LinkImage, description, imageMatchers)
}

var twitterMatchers = []linkMatcher{
	{
		name:  "twitter",
		re:    regexp.MustCompile(`(https?://(?:www\.|mobile\.)?(?:twitter|x)\.com\b` + urlTail + `)`),
		pick:  pickLast,
		hosts: []string{"twitter.com", "x.com"},
	},
}

// TwitterURL returns the last tweet link; later mentions in a description
// supersede earlier ones.
func TwitterURL(description string) (string, error) {
	return firstMatch(LinkTwitter, description, twitterMatchers)
}

var youtubeMatchers = []linkMatcher{
	{
		name:  "youtube",
		re:    regexp.MustCompile(`(https?://(?:(?:www\.|m\.)?youtube\.com/(?:watch\?|live/)|youtu\.be/)` + urlTail + `)`),
		hosts: []string{"youtube.com", "youtu.be"},
	},
}

// YoutubeURL returns the first watch or short link.
func YoutubeURL(description string) (string, error) {
	return firstMatch(LinkYoutube, description, youtubeMatchers)
}

var ticketMatchers = []linkMatcher{
	{name: "ticket label", re: regexp.MustCompile(`(?mi)` + lineStart + `Ticket (?:Link|site):\s*(` + urlPattern + `)`)},
	{
		name:  "ticket platform",
		re:    regexp.MustCompile(`(https?://(?:[a-zA-Z0-9-]+\.)*(?:zaiko\.io|eplus\.jp|pia\.jp)\b` + urlTail + `)`),
		hosts: []string{"zaiko.io", "eplus.jp", "pia.jp"},
	},
}

// TicketURL prefers an explicitly labelled line over a bare link to a known
// ticketing site.
func TicketURL(description string) (string, error) {
	return firstMatch(LinkTicket, description, ticketMatchers)
}

var officialMatchers = []linkMatcher{
	{name: "official label", re: regexp.MustCompile(`(?mi)` + lineStart + `Official site:\s*(` + urlPattern + `)`)},
}

func OfficialURL(description string) (string, error) {
	return firstMatch(LinkOfficial, description, officialMatchers)
}
