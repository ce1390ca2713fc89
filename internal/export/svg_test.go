package export

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/san-kum/kartsim/internal/dynamo"
)

func TestTrajectorySVG(t *testing.T) {
	states := []dynamo.State{
		dynamo.NewState(0, 0, 0),
		dynamo.NewState(1, 0, 0),
		dynamo.NewState(2, -1, dynamo.Rad(-90)),
	}
	opts := DefaultSVGOptions()
	opts.GridEvery = 0

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, states, opts); err != nil {
		t.Fatal(err)
	}
	out := buf.String()

	// 2 m x 1 m at 30 px/m plus 20 px margins
	if !strings.Contains(out, `width="100" height="70"`) {
		t.Errorf("unexpected size:\n%s", out)
	}
	if !strings.Contains(out, `d="M20.0,50.0 L50.0,50.0 L80.0,20.0"`) {
		t.Errorf("unexpected path:\n%s", out)
	}
	if !strings.HasSuffix(out, "</svg>\n") {
		t.Error("svg not closed")
	}
}

func TestTrajectorySVGSkipsInvalid(t *testing.T) {
	bad := dynamo.NewState(5, 5, 0)
	bad.LatVel = math.NaN()
	states := []dynamo.State{dynamo.NewState(0, 0, 0), bad, dynamo.NewState(1, 1, 0)}

	var buf bytes.Buffer
	if err := TrajectorySVG(&buf, states, DefaultSVGOptions()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(buf.String(), "NaN") {
		t.Error("NaN leaked into svg")
	}

	err := TrajectorySVG(&buf, states[:2], DefaultSVGOptions())
	if !errors.Is(err, ErrTooFewPoints) {
		t.Errorf("got %v, want ErrTooFewPoints", err)
	}
}
