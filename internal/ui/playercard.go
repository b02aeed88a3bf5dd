package ui

import "fmt"

// CardPhase is the lifecycle of a player card.
type CardPhase int

const (
	CardLoading CardPhase = iota
	CardCollapsed
	CardExpanded
)

func (p CardPhase) String() string {
	switch p {
	case CardLoading:
		return "loading"
	case CardCollapsed:
		return "collapsed"
	case CardExpanded:
		return "expanded"
	default:
		return fmt.Sprintf("CardPhase(%d)", int(p))
	}
}

// PlayerCardState tracks which player a card shows and how far it has progressed.
// Expanded is terminal for a given player; a new player name resets to Loading.
type PlayerCardState struct {
	Player string
	Phase  CardPhase
}

// NewPlayerCardState starts a card in Loading for player.
func NewPlayerCardState(player string) PlayerCardState {
	return PlayerCardState{Player: player, Phase: CardLoading}
}

// Reset returns the state for player. A changed name always restarts in Loading.
func (s PlayerCardState) Reset(player string) PlayerCardState {
	if player == s.Player {
		return s
	}
	return NewPlayerCardState(player)
}

// Loaded moves Loading to CollapsedReady. Other phases are unchanged.
func (s PlayerCardState) Loaded() PlayerCardState {
	if s.Phase == CardLoading {
		s.Phase = CardCollapsed
	}
	return s
}

// Expand flips a ready card face up. It has no effect while Loading.
func (s PlayerCardState) Expand() PlayerCardState {
	if s.Phase == CardCollapsed {
		s.Phase = CardExpanded
	}
	return s
}

// NextFetch reports whether the card still needs data.
func (s PlayerCardState) NextFetch() bool {
	return s.Phase == CardLoading
}

// Restore reapplies a flip recorded for flippedFor. The flip survives only
// while the card still shows that player; any other name stays face down.
func (s PlayerCardState) Restore(flippedFor string) PlayerCardState {
	if flippedFor == "" {
		return s
	}
	flipped := PlayerCardState{Player: flippedFor, Phase: CardExpanded}
	if flipped.Reset(s.Player).Phase != CardExpanded {
		return s
	}
	return s.Expand()
}
