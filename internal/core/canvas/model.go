// Package canvas is the scene model of the visual designer: fixed-size service
// nodes placed in pixel space, with hit-testing, a single drag session and grid
// auto-layout. Rendering lives in render.go and reads a Model without touching it.
package canvas

import (
	"errors"
	"math"

	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// NodeWidth and NodeHeight are the fixed node size in pixels.
	NodeWidth  = 150
	NodeHeight = 100

	// GridSpacing is the distance between auto-layout cells.
	GridSpacing = 200
	// GridMargin is the offset of the first auto-layout cell.
	GridMargin = 50
)

// ErrServiceNotFound is returned when an operation names an unknown node.
var ErrServiceNotFound = errors.New("canvas service not found")

// =============================================================================
// Types
// =============================================================================

// Point is a position in canvas pixel space.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Service is one positioned node. X and Y are the top-left corner.
type Service struct {
	ID    string               `json:"id"`
	Name  string               `json:"name"`
	Icon  string               `json:"icon"`
	Image string               `json:"image"`
	Ports []domain.PortMapping `json:"ports"`
	X     float64              `json:"x"`
	Y     float64              `json:"y"`

	// Bound marks a node seeded from the deployment target. Its name, image
	// and ports mirror the target service; palette drops are not bound.
	Bound bool `json:"bound,omitempty"`
}

// NewService builds a node for a service config at the given position.
func NewService(id, icon string, cfg domain.ServiceConfig, x, y float64) Service {
	return Service{
		ID:    id,
		Name:  cfg.Name,
		Icon:  icon,
		Image: cfg.Image,
		Ports: append([]domain.PortMapping{}, cfg.Ports...),
		X:     x,
		Y:     y,
	}
}

// Mirror copies the name, image and ports of cfg onto the node. The position
// is unchanged.
func (s *Service) Mirror(cfg domain.ServiceConfig) {
	s.Name = cfg.Name
	s.Image = cfg.Image
	s.Ports = append([]domain.PortMapping{}, cfg.Ports...)
}

// Contains reports whether (x, y) lies strictly inside the node's box.
// Points on the border miss.
func (s Service) Contains(x, y float64) bool {
	return x > s.X && x < s.X+NodeWidth && y > s.Y && y < s.Y+NodeHeight
}

// Placement is the exported position of one node.
type Placement struct {
	ID   string  `json:"id"`
	Name string  `json:"name"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// Model holds the nodes in insertion order plus the drag session. The drag
// session is process-local and is not serialized.
type Model struct {
	Services []Service `json:"services"`

	selected string
	dragging bool
	offset   Point
}

// =============================================================================
// Node Management
// =============================================================================

// Clone returns a deep copy including the drag session.
func (m Model) Clone() Model {
	out := m
	out.Services = make([]Service, len(m.Services))
	for i, s := range m.Services {
		s.Ports = append([]domain.PortMapping{}, s.Ports...)
		out.Services[i] = s
	}
	return out
}

// Len returns the number of nodes.
func (m *Model) Len() int {
	return len(m.Services)
}

// Add appends a node.
func (m *Model) Add(s Service) {
	m.Services = append(m.Services, s)
}

// Remove deletes the node with the given ID and drops it from the selection.
func (m *Model) Remove(id string) error {
	i := m.index(id)
	if i < 0 {
		return ErrServiceNotFound
	}
	m.Services = append(m.Services[:i], m.Services[i+1:]...)
	if m.selected == id {
		m.resetDrag()
	}
	return nil
}

// Clear empties the scene and drops the selection.
func (m *Model) Clear() {
	m.Services = nil
	m.resetDrag()
}

// Get returns the node with the given ID.
func (m *Model) Get(id string) (Service, bool) {
	if i := m.index(id); i >= 0 {
		return m.Services[i], true
	}
	return Service{}, false
}

func (m *Model) index(id string) int {
	for i, s := range m.Services {
		if s.ID == id {
			return i
		}
	}
	return -1
}

// =============================================================================
// Hit-Testing and Drag
// =============================================================================

// HitTest returns the first node in insertion order containing the point.
// Overlapping nodes resolve to the earliest one, not the one drawn on top.
func (m *Model) HitTest(x, y float64) (Service, bool) {
	for _, s := range m.Services {
		if s.Contains(x, y) {
			return s, true
		}
	}
	return Service{}, false
}

// BeginDrag selects a node and starts dragging it. The offset is the pointer
// position relative to the node's top-left corner. A previous drag is replaced.
func (m *Model) BeginDrag(id string, offset Point) error {
	if m.index(id) < 0 {
		return ErrServiceNotFound
	}
	m.selected = id
	m.dragging = true
	m.offset = offset
	return nil
}

// BeginDragAt hit-tests the point and starts dragging whatever it hits.
func (m *Model) BeginDragAt(x, y float64) (Service, bool) {
	s, ok := m.HitTest(x, y)
	if !ok {
		return Service{}, false
	}
	_ = m.BeginDrag(s.ID, Point{X: x - s.X, Y: y - s.Y})
	return s, true
}

// UpdateDrag moves the dragged node so the grab point follows the pointer.
// Positions are not clamped. Returns false when no drag is active.
func (m *Model) UpdateDrag(x, y float64) bool {
	if !m.dragging {
		return false
	}
	i := m.index(m.selected)
	if i < 0 {
		m.resetDrag()
		return false
	}
	m.Services[i].X = x - m.offset.X
	m.Services[i].Y = y - m.offset.Y
	return true
}

// EndDrag ends the drag session unconditionally.
func (m *Model) EndDrag() {
	m.resetDrag()
}

// Dragging reports whether a drag session is active.
func (m *Model) Dragging() bool {
	return m.dragging
}

// Selected returns the node of the current drag session.
func (m *Model) Selected() (Service, bool) {
	if !m.dragging {
		return Service{}, false
	}
	return m.Get(m.selected)
}

func (m *Model) resetDrag() {
	m.selected = ""
	m.dragging = false
	m.offset = Point{}
}

// =============================================================================
// Layout
// =============================================================================

// AutoLayout places the nodes on a ceil(sqrt(n))-column grid in list order.
func (m *Model) AutoLayout() {
	n := len(m.Services)
	if n == 0 {
		return
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	for i := range m.Services {
		row, col := i/cols, i%cols
		m.Services[i].X = float64(col*GridSpacing + GridMargin)
		m.Services[i].Y = float64(row*GridSpacing + GridMargin)
	}
}

// Placements returns the position of every node in list order.
func (m *Model) Placements() []Placement {
	out := make([]Placement, 0, len(m.Services))
	for _, s := range m.Services {
		out = append(out, Placement{ID: s.ID, Name: s.Name, X: s.X, Y: s.Y})
	}
	return out
}

// Names returns the node names in list order.
func (m *Model) Names() []string {
	out := make([]string, 0, len(m.Services))
	for _, s := range m.Services {
		out = append(out, s.Name)
	}
	return out
}

// DropOrigin converts a drop point into the top-left corner of a node centered on it.
func DropOrigin(x, y float64) Point {
	return Point{X: x - NodeWidth/2, Y: y - NodeHeight/2}
}
