package viewer

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-view/engine/renderer/program"
)

// Channel is the G-buffer view shown by the present pass.
type Channel = program.Channel

// Channels, re-exported so callers need not import the program package.
const (
	ChannelDepth       = program.ChannelDepth
	ChannelLinearDepth = program.ChannelLinearDepth
	ChannelPosition    = program.ChannelPosition
	ChannelNormal      = program.ChannelNormal
	ChannelDiffuse     = program.ChannelDiffuse
	ChannelSpecular    = program.ChannelSpecular
	ChannelVelocity    = program.ChannelVelocity
	ChannelAmbient     = program.ChannelAmbient
	ChannelMotionBlur  = program.ChannelMotionBlur
	ChannelComposed    = program.ChannelComposed
)

// State is the phase of the frame the viewer is in.
type State int

const (
	StateIdle State = iota
	StatePreparingUniforms
	StateGeometryPass
	StateLightPass
	StatePresentPass
)

var stateNames = [...]string{"idle", "preparing_uniforms", "geometry_pass", "light_pass", "present_pass"}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return fmt.Sprintf("state(%d)", int(s))
	}
	return stateNames[s]
}

// requirements lists the passes a channel reads from besides the geometry pass.
type requirements struct {
	lightPass bool
}

// channelRequirements is indexed by Channel. Only the channels that read the light buffer run the light pass.
var channelRequirements = [program.ChannelCount]requirements{
	ChannelComposed:   {lightPass: true},
	ChannelMotionBlur: {lightPass: true},
}

func needsLightPass(ch Channel) bool {
	return ch.Valid() && channelRequirements[ch].lightPass
}
