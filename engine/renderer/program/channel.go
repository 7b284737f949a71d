package program

import "fmt"

// Channel is a viewable output of the deferred pipeline.
type Channel int

const (
	ChannelDepth Channel = iota
	ChannelLinearDepth
	ChannelPosition
	ChannelNormal
	ChannelDiffuse
	ChannelSpecular
	ChannelVelocity
	ChannelAmbient
	ChannelMotionBlur
	ChannelComposed

	// ChannelCount is the number of channels.
	ChannelCount = 10
)

var channelNames = [ChannelCount]string{
	"depth",
	"linear_depth",
	"position",
	"normal",
	"diffuse",
	"specular",
	"velocity",
	"ambient",
	"motion_blur",
	"composed",
}

// String returns the snake_case name of the channel, which is also the name of its fragment shader.
func (c Channel) String() string {
	if !c.Valid() {
		return fmt.Sprintf("channel(%d)", int(c))
	}
	return channelNames[c]
}

// Valid reports whether c is a known channel.
func (c Channel) Valid() bool {
	return c >= 0 && c < ChannelCount
}

// ChannelForDigit maps a number key to a channel: 0 selects Composed and 1..9 select the channels in order.
//
// Parameters:
//   - digit: the number key, 0..9
//
// Returns:
//   - Channel: the selected channel
//   - bool: false if digit is outside 0..9
func ChannelForDigit(digit int) (Channel, bool) {
	switch {
	case digit == 0:
		return ChannelComposed, true
	case digit >= 1 && digit <= 9:
		return Channel(digit - 1), true
	}
	return 0, false
}

// ParseChannel returns the channel with the given name.
func ParseChannel(name string) (Channel, error) {
	for i, n := range channelNames {
		if n == name {
			return Channel(i), nil
		}
	}
	return 0, fmt.Errorf("%q: %w", name, ErrUnknownChannel)
}
