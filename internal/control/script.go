package control

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// Keyframe is the input at time T. Inputs between keyframes are linearly
// interpolated; the last keyframe holds.
type Keyframe struct {
	T        float64 `yaml:"t"`
	Steering float64 `yaml:"steering"`
	Drive    float64 `yaml:"drive"`
}

type Script struct {
	frames []Keyframe
}

// NewScript sorts frames by time. An empty script coasts.
func NewScript(frames []Keyframe) *Script {
	sorted := append([]Keyframe(nil), frames...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].T < sorted[j].T })
	return &Script{frames: sorted}
}

func (sc *Script) Compute(s *dynamo.State, t float64) dynamo.Input {
	return sc.At(t)
}

func (sc *Script) At(t float64) dynamo.Input {
	n := len(sc.frames)
	if n == 0 {
		return dynamo.Input{}
	}
	if t <= sc.frames[0].T {
		return frameInput(sc.frames[0])
	}
	i := sort.Search(n, func(i int) bool { return sc.frames[i].T > t })
	if i == n {
		return frameInput(sc.frames[n-1])
	}
	a, b := sc.frames[i-1], sc.frames[i]
	w := (t - a.T) / (b.T - a.T)
	return dynamo.Input{
		Steering: a.Steering + w*(b.Steering-a.Steering),
		Drive:    a.Drive + w*(b.Drive-a.Drive),
	}.Clamp()
}

// Duration is the time of the last keyframe.
func (sc *Script) Duration() float64 {
	if len(sc.frames) == 0 {
		return 0
	}
	return sc.frames[len(sc.frames)-1].T
}

func (sc *Script) Frames() []Keyframe {
	return append([]Keyframe(nil), sc.frames...)
}

func frameInput(k Keyframe) dynamo.Input {
	return dynamo.Input{Steering: k.Steering, Drive: k.Drive}.Clamp()
}

var scripts = map[string][]Keyframe{
	// Full throttle, then steering ramps to full lock.
	"ramp": {
		{T: 0, Drive: 1},
		{T: 2, Drive: 1},
		{T: 10, Steering: 1, Drive: 1},
	},
	"slalom": {
		{T: 0, Drive: 1},
		{T: 2, Drive: 1},
		{T: 2.5, Steering: 0.5, Drive: 1},
		{T: 4, Steering: 0.5, Drive: 1},
		{T: 5, Steering: -0.5, Drive: 1},
		{T: 6.5, Steering: -0.5, Drive: 1},
		{T: 7.5, Steering: 0.5, Drive: 1},
		{T: 9, Steering: 0.5, Drive: 1},
		{T: 9.5, Drive: 1},
	},
	"brake-test": {
		{T: 0, Drive: 1},
		{T: 5, Drive: 1},
		{T: 5.001, Drive: -1},
		{T: 8, Drive: -1},
		{T: 8.001},
	},
}

// BuiltinScript returns a named test drive.
func BuiltinScript(name string) (*Script, error) {
	frames, ok := scripts[name]
	if !ok {
		return nil, fmt.Errorf("%w: script %q", dynamo.ErrUnknownComponent, name)
	}
	return NewScript(frames), nil
}

func ListScripts() []string {
	names := make([]string, 0, len(scripts))
	for name := range scripts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadScript reads keyframes from a YAML list.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var frames []Keyframe
	if err := yaml.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("parse script %s: %w", path, err)
	}
	return NewScript(frames), nil
}
