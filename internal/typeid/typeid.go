package typeid

import (
	"fmt"

	"go.jetify.com/typeid/v2"
)

const (
	PrefixCameraRequest = "camreq"
	PrefixSession       = "sess"
	PrefixFrame         = "frame"
)

func New(prefix string) string {
	id := typeid.MustGenerate(prefix)
	return id.String()
}

func NewCameraRequestID() string { return New(PrefixCameraRequest) }
func NewSessionID() string       { return New(PrefixSession) }
func NewFrameID() string         { return New(PrefixFrame) }

func Validate(id, expectedPrefix string) error {
	parsed, err := typeid.Parse(id)
	if err != nil {
		return fmt.Errorf("invalid typeid %q: %w", id, err)
	}
	if parsed.Prefix() != expectedPrefix {
		return fmt.Errorf("expected prefix %q but got %q in id %q", expectedPrefix, parsed.Prefix(), id)
	}
	return nil
}
