//go:build portaudio

package audio

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// Player streams an EngineNote to the default output device.
type Player struct {
	stream *portaudio.Stream
}

func Open(note *EngineNote) (*Player, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("portaudio init: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(0, 2, SampleRate, BufferSize, note.Fill)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("open output stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("start output stream: %w", err)
	}
	return &Player{stream: stream}, nil
}

func (p *Player) Close() error {
	err := p.stream.Stop()
	if cerr := p.stream.Close(); err == nil {
		err = cerr
	}
	if terr := portaudio.Terminate(); err == nil {
		err = terr
	}
	return err
}
