package physics

import (
	"fmt"
	"sort"

	"github.com/san-kum/kartsim/internal/dynamo"
)

// GoKartSport is the shipped go-kart archetype. Static loads are not derived;
// pass the result through dynamo.NewParams.
func GoKartSport() dynamo.Params {
	return dynamo.Params{
		Mass:                    150,
		DistFront:               0.5,
		DistRear:                0.55,
		HeightCoM:               0.1,
		YawResistance:           20,
		MaxSteer:                dynamo.Rad(25),
		CorneringStiffnessFront: 5000,
		CorneringStiffnessRear:  5000,
		Power:                   26000,
		EngineForce:             10000,
		BrakeForce:              5000,
	}
}

// GoKartPrototype is the underpowered prototype drivetrain. It pairs with
// PrototypeTuning.
func GoKartPrototype() dynamo.Params {
	p := GoKartSport()
	p.Power = 13000
	p.EngineForce = 5000
	return p
}

var archetypes = map[string]func() dynamo.Params{
	"gokart-sport":     GoKartSport,
	"gokart-prototype": GoKartPrototype,
}

// Archetype returns the named vehicle archetype with static loads derived.
func Archetype(name string) (dynamo.Params, error) {
	fn, ok := archetypes[name]
	if !ok {
		return dynamo.Params{}, fmt.Errorf("%w: archetype %q", dynamo.ErrUnknownComponent, name)
	}
	return dynamo.NewParams(fn())
}

func ListArchetypes() []string {
	names := make([]string, 0, len(archetypes))
	for name := range archetypes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
