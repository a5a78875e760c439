// Package classifier partitions callers into classes based on their declared
// identity. Classification is a pure function of the user-agent string, the
// device-type header and the configured signature lists.
package classifier

import (
	"strings"

	"github.com/dogame-art/nfc-gateway/internal/config"
)

// DeviceTypeHeader is the explicit device-identification header exhibit
// hardware may send instead of a recognizable user-agent.
const DeviceTypeHeader = "X-Device-Type"

type Class int

const (
	Generic Class = iota
	Bot
	TrustedDevice
)

func (c Class) String() string {
	switch c {
	case Bot:
		return "bot"
	case TrustedDevice:
		return "trusted_device"
	default:
		return "generic"
	}
}

type Classifier struct {
	bots         []string
	suspicious   []string
	devices      []string
	headerValues []string
}

func New(cfg config.ClassifierConfig) *Classifier {
	return &Classifier{
		bots:         lowerAll(cfg.BotSignatures),
		suspicious:   lowerAll(cfg.SuspiciousSignatures),
		devices:      lowerAll(cfg.DeviceSignatures),
		headerValues: lowerAll(cfg.DeviceHeaderValues),
	}
}

// Classify returns the caller's class. Matching is case-insensitive
// substring matching; a trusted-device signature always wins over a bot or
// suspicious-tool hit, so exhibit hardware built on scripting stacks is not
// locked out.
func (c *Classifier) Classify(userAgent, deviceHeader string) Class {
	ua := strings.ToLower(userAgent)

	if c.isTrustedDevice(ua, strings.ToLower(strings.TrimSpace(deviceHeader))) {
		return TrustedDevice
	}

	if matchAny(ua, c.bots) || matchAny(ua, c.suspicious) {
		return Bot
	}

	return Generic
}

func (c *Classifier) isTrustedDevice(ua, deviceHeader string) bool {
	if matchAny(ua, c.devices) {
		return true
	}

	for _, v := range c.headerValues {
		if deviceHeader == v {
			return true
		}
	}

	return false
}

func matchAny(s string, signatures []string) bool {
	for _, sig := range signatures {
		if strings.Contains(s, sig) {
			return true
		}
	}
	return false
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}
