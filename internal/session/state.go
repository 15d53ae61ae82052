package session

import (
	"errors"
	"fmt"
)

// Screen is the page the user is on.
type Screen int

const (
	ScreenIntro Screen = iota
	ScreenMain
)

func (s Screen) String() string {
	switch s {
	case ScreenIntro:
		return "intro"
	case ScreenMain:
		return "main"
	default:
		return fmt.Sprintf("screen(%d)", int(s))
	}
}

// Mode selects which price endpoint feeds the heatmap.
type Mode int

const (
	ModeFlat Mode = iota
	ModeYear
)

func (m Mode) String() string {
	switch m {
	case ModeFlat:
		return "all-time"
	case ModeYear:
		return "by-year"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

type Event int

const (
	EventUseMyLocation Event = iota
	EventSubmitPostcode
	EventBack
	EventMapTap
	EventFilterByYear
	EventAllTime
	EventSelectYear
)

var eventNames = map[Event]string{
	EventUseMyLocation:  "use-my-location",
	EventSubmitPostcode: "submit-postcode",
	EventBack:           "back",
	EventMapTap:         "map-tap",
	EventFilterByYear:   "filter-by-year",
	EventAllTime:        "all-time",
	EventSelectYear:     "select-year",
}

func (e Event) String() string {
	if name, ok := eventNames[e]; ok {
		return name
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// State is the (screen, mode) pair. Mode survives a trip back to the intro screen.
type State struct {
	Screen Screen
	Mode   Mode
}

var ErrInvalidTransition = errors.New("invalid transition")

// Transition returns the state after e, or ErrInvalidTransition when e has no
// control on the current screen.
func Transition(s State, e Event) (State, error) {
	switch s.Screen {
	case ScreenIntro:
		switch e {
		case EventUseMyLocation, EventSubmitPostcode:
			return State{Screen: ScreenMain, Mode: s.Mode}, nil
		}
	case ScreenMain:
		switch e {
		case EventBack:
			return State{Screen: ScreenIntro, Mode: s.Mode}, nil
		case EventMapTap:
			return s, nil
		case EventFilterByYear:
			return State{Screen: ScreenMain, Mode: ModeYear}, nil
		case EventAllTime:
			return State{Screen: ScreenMain, Mode: ModeFlat}, nil
		case EventSelectYear:
			if s.Mode == ModeYear {
				return s, nil
			}
		}
	}
	return s, fmt.Errorf("%w: %s on %s/%s", ErrInvalidTransition, e, s.Screen, s.Mode)
}
