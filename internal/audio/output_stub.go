//go:build !portaudio

package audio

import "errors"

// ErrUnavailable is returned by Open in builds without the portaudio tag.
var ErrUnavailable = errors.New("audio output not built in (rebuild with -tags portaudio)")

type Player struct{}

func Open(note *EngineNote) (*Player, error) {
	return nil, ErrUnavailable
}

func (p *Player) Close() error { return nil }
