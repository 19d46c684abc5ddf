package model

import "fmt"

// Format is how a concert is delivered to the audience.
type Format int

const (
	FormatOnline Format = iota + 1
	FormatInPerson
	FormatHybrid
)

var formatNames = map[Format]string{
	FormatOnline:   "Online",
	FormatInPerson: "InPerson",
	FormatHybrid:   "Hybrid",
}

func (f Format) String() string {
	if s, ok := formatNames[f]; ok {
		return s
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

func (f Format) MarshalText() ([]byte, error) {
	s, ok := formatNames[f]
	if !ok {
		return nil, fmt.Errorf("model: unknown format %d", int(f))
	}
	return []byte(s), nil
}

func (f *Format) UnmarshalText(b []byte) error {
	for k, v := range formatNames {
		if v == string(b) {
			*f = k
			return nil
		}
	}
	return fmt.Errorf("model: unknown format %q", string(b))
}
