package viz

import (
	"math"

	"github.com/san-kum/kartsim/internal/dynamo"
)

const (
	halfTrack = 0.6  // m
	wheelHalf = 0.14 // m
)

type Point struct{ X, Y float64 }

// Camera maps world metres onto canvas pixels. World y maps to screen y
// unchanged, so with y growing down the screen a heading of -90 degrees
// points up.
type Camera struct {
	CenterX, CenterY float64
	Scale            float64 // pixels per metre
}

func (cam Camera) Project(c *Canvas, x, y float64) (int, int) {
	w, h := c.PixelSize()
	px := float64(w)/2 + (x-cam.CenterX)*cam.Scale
	py := float64(h)/2 + (y-cam.CenterY)*cam.Scale
	return int(math.Round(px)), int(math.Round(py))
}

// Line draws a world-space segment. Non-finite segments and segments
// entirely off one side of the canvas are culled.
func (cam Camera) Line(c *Canvas, x0, y0, x1, y1 float64) {
	for _, v := range [4]float64{x0, y0, x1, y1} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return
		}
	}
	ax, ay := cam.Project(c, x0, y0)
	bx, by := cam.Project(c, x1, y1)
	w, h := c.PixelSize()
	if (ax < 0 && bx < 0) || (ay < 0 && by < 0) || (ax >= w && bx >= w) || (ay >= h && by >= h) {
		return
	}
	if absInt(bx-ax)+absInt(by-ay) > 4*(w+h) {
		return
	}
	c.DrawLine(ax, ay, bx, by)
}

// DrawGrid marks world grid intersections every spacing metres.
func DrawGrid(c *Canvas, cam Camera, spacing float64) {
	if spacing*cam.Scale < 4 {
		return
	}
	w, h := c.PixelSize()
	halfW := float64(w) / 2 / cam.Scale
	halfH := float64(h) / 2 / cam.Scale
	for x := math.Floor((cam.CenterX-halfW)/spacing) * spacing; x <= cam.CenterX+halfW; x += spacing {
		for y := math.Floor((cam.CenterY-halfH)/spacing) * spacing; y <= cam.CenterY+halfH; y += spacing {
			c.Set(cam.Project(c, x, y))
		}
	}
}

func DrawTrail(c *Canvas, cam Camera, trail []Point) {
	for i := 1; i < len(trail); i++ {
		cam.Line(c, trail[i-1].X, trail[i-1].Y, trail[i].X, trail[i].Y)
	}
}

// DrawKart draws the chassis, both axles and the four wheels, the front pair
// turned by delta.
func DrawKart(c *Canvas, cam Camera, s dynamo.State, p dynamo.Params, delta float64) {
	sin, cos := math.Sincos(s.Yaw)
	// body frame (forward f, left l) to world
	at := func(f, l float64) (float64, float64) {
		return s.X + f*cos - l*sin, s.Y + f*sin + l*cos
	}

	fx, fy := at(p.DistFront, 0)
	rx, ry := at(-p.DistRear, 0)
	cam.Line(c, fx, fy, rx, ry)

	for _, axle := range []struct {
		dist  float64
		steer float64
	}{{p.DistFront, delta}, {-p.DistRear, 0}} {
		lx, ly := at(axle.dist, halfTrack)
		qx, qy := at(axle.dist, -halfTrack)
		cam.Line(c, lx, ly, qx, qy)

		ws, wc := math.Sincos(s.Yaw + axle.steer)
		for _, hub := range [][2]float64{{lx, ly}, {qx, qy}} {
			cam.Line(c,
				hub[0]-wheelHalf*wc, hub[1]-wheelHalf*ws,
				hub[0]+wheelHalf*wc, hub[1]+wheelHalf*ws)
		}
	}
}
