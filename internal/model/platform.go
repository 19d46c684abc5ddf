package model

import "fmt"

// Platform is the service hosting a concert, taken from the event category.
type Platform int

const (
	PlatformNicoNicoDouga Platform = iota + 1
	PlatformSpwn
	PlatformToBeAnnounced
	PlatformYoutube
	PlatformZan
	PlatformZaiko
	PlatformOther
)

var platformNames = map[Platform]string{
	PlatformNicoNicoDouga: "NicoNicoDouga",
	PlatformSpwn:          "Spwn",
	PlatformToBeAnnounced: "ToBeAnnounced",
	PlatformYoutube:       "Youtube",
	PlatformZan:           "Zan",
	PlatformZaiko:         "Zaiko",
	PlatformOther:         "Other",
}

// Platforms lists every platform in declaration order.
func Platforms() []Platform {
	return []Platform{
		PlatformNicoNicoDouga,
		PlatformSpwn,
		PlatformToBeAnnounced,
		PlatformYoutube,
		PlatformZan,
		PlatformZaiko,
		PlatformOther,
	}
}

func (p Platform) String() string {
	if s, ok := platformNames[p]; ok {
		return s
	}
	return fmt.Sprintf("Platform(%d)", int(p))
}

func (p Platform) MarshalText() ([]byte, error) {
	s, ok := platformNames[p]
	if !ok {
		return nil, fmt.Errorf("model: unknown platform %d", int(p))
	}
	return []byte(s), nil
}

func (p *Platform) UnmarshalText(b []byte) error {
	for k, v := range platformNames {
		if v == string(b) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("model: unknown platform %q", string(b))
}
