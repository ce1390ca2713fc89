package control

import "github.com/san-kum/kartsim/internal/dynamo"

type None struct{}

func NewNone() *None {
	return &None{}
}

func (n *None) Compute(s *dynamo.State, t float64) dynamo.Input {
	return dynamo.Input{}
}

type Constant struct {
	Input dynamo.Input
}

func NewConstant(steering, drive float64) *Constant {
	return &Constant{Input: dynamo.Input{Steering: steering, Drive: drive}.Clamp()}
}

func (c *Constant) Compute(s *dynamo.State, t float64) dynamo.Input {
	return c.Input
}
