package globe

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gogpu/globe/pick"
	"github.com/gogpu/globe/render"
)

var (
	// ErrNilContext is returned by NewScene without a rendering context.
	ErrNilContext = errors.New("globe: nil rendering context")

	// ErrNilPrimitive is returned by Add for a nil primitive.
	ErrNilPrimitive = errors.New("globe: nil primitive")

	// ErrSceneDestroyed is returned when a destroyed scene is used.
	ErrSceneDestroyed = errors.New("globe: scene destroyed")
)

// Scene holds the primitives drawn into a rendering context and resolves
// picks against them.
//
// Scene is not safe for concurrent use. Picks, renders and viewport
// changes must happen on one goroutine.
type Scene struct {
	ctx    render.Context
	picker *pick.Picker
	opts   sceneOptions

	primitives []Primitive
	ids        map[Primitive]render.PickID

	destroyed bool
}

// NewScene creates an empty scene on ctx.
func NewScene(ctx render.Context, opts ...SceneOption) (*Scene, error) {
	if ctx == nil {
		return nil, ErrNilContext
	}
	o := defaultSceneOptions()
	for _, opt := range opts {
		opt(&o)
	}

	picker, err := pick.NewPicker(ctx)
	if err != nil {
		return nil, fmt.Errorf("globe: %w", err)
	}

	w, h := ctx.Viewport()
	Logger().Info("globe: scene created", "width", w, "height", h,
		"pickRegion", o.pickRegionSize, "depthSorted", o.depthSorted)
	return &Scene{
		ctx:    ctx,
		picker: picker,
		opts:   o,
		ids:    make(map[Primitive]render.PickID),
	}, nil
}

// Context returns the scene's rendering context.
func (s *Scene) Context() render.Context { return s.ctx }

// PickRegionSize returns the side of the square pick region.
func (s *Scene) PickRegionSize() int { return s.opts.pickRegionSize }

// Len returns the number of primitives.
func (s *Scene) Len() int { return len(s.primitives) }

// Primitives returns the primitives in insertion order.
func (s *Scene) Primitives() []Primitive {
	return slices.Clone(s.primitives)
}

// Add registers p and returns its pick id. Adding a primitive twice
// returns the existing id.
func (s *Scene) Add(p Primitive) (render.PickID, error) {
	if s.destroyed {
		return render.PickID{}, ErrSceneDestroyed
	}
	if p == nil {
		return render.PickID{}, ErrNilPrimitive
	}

	// Registration is idempotent and rejects non-comparable primitives
	// before they reach the map.
	id, err := s.ctx.CreatePickID(p)
	if err != nil {
		return render.PickID{}, fmt.Errorf("globe: add primitive: %w", err)
	}
	if _, ok := s.ids[p]; !ok {
		s.ids[p] = id
		s.primitives = append(s.primitives, p)
	}
	return id, nil
}

// Remove drops p and frees its pick color. It reports whether p was in
// the scene.
func (s *Scene) Remove(p Primitive) bool {
	if !isComparable(p) {
		return false
	}
	id, ok := s.ids[p]
	if !ok {
		return false
	}
	id.Destroy()
	delete(s.ids, p)
	s.primitives = slices.DeleteFunc(s.primitives, func(q Primitive) bool { return q == p })
	return true
}

// PickID returns the pick id of p.
func (s *Scene) PickID(p Primitive) (render.PickID, bool) {
	if !isComparable(p) {
		return render.PickID{}, false
	}
	id, ok := s.ids[p]
	return id, ok
}

// Pick returns the primitive drawn at pixel (x, y), searching a square of
// PickRegionSize pixels centered on it. A miss returns (nil, false, nil).
//
// Pick blocks on a GPU read-back.
func (s *Scene) Pick(x, y int) (Primitive, bool, error) {
	if s.destroyed {
		return nil, false, ErrSceneDestroyed
	}

	n := s.opts.pickRegionSize
	region := render.Rectangle{X: x - n/2, Y: y - n/2, Width: n, Height: n}
	cmds := s.commands(true)

	obj, ok, err := s.picker.Pick(region, func(pass *render.PassState) error {
		return s.ctx.Draw(cmds, pass)
	})
	if err != nil {
		return nil, false, fmt.Errorf("globe: pick (%d, %d): %w", x, y, err)
	}
	if !ok {
		return nil, false, nil
	}
	p, ok := obj.(Primitive)
	if !ok || s.ids[p].IsZero() {
		// Another user of the pick color table drew this color.
		return nil, false, nil
	}
	return p, true, nil
}

// Render draws every primitive with its display color into pass.
func (s *Scene) Render(pass *render.PassState) error {
	if s.destroyed {
		return ErrSceneDestroyed
	}
	if err := s.ctx.Draw(s.commands(false), pass); err != nil {
		return fmt.Errorf("globe: render: %w", err)
	}
	return nil
}

// Destroy releases the pick framebuffer and frees every pick color.
// Further calls do nothing.
func (s *Scene) Destroy() {
	if s.destroyed {
		return
	}
	s.destroyed = true
	s.picker.Destroy()
	for _, id := range s.ids {
		id.Destroy()
	}
	clear(s.ids)
	s.primitives = nil
}

// commands flattens the primitives into draw commands. For pick passes
// every command carries its primitive's pick color.
func (s *Scene) commands(pickColors bool) []render.DrawCommand {
	w, h := s.ctx.Viewport()
	var cmds []render.DrawCommand
	for _, p := range s.primitives {
		first := len(cmds)
		cmds = append(cmds, p.DrawCommands(w, h)...)
		if pickColors {
			col := s.ids[p].Color()
			for i := first; i < len(cmds); i++ {
				cmds[i].Color = col
			}
		}
	}
	if s.opts.depthSorted {
		slices.SortStableFunc(cmds, func(a, b render.DrawCommand) int {
			switch {
			case a.Depth > b.Depth:
				return -1
			case a.Depth < b.Depth:
				return 1
			default:
				return 0
			}
		})
	}
	return cmds
}

func isComparable(p Primitive) bool {
	return render.IsComparable(p)
}
