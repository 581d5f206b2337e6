package topology

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/artpar/stackwizard/internal/core/domain"
)

// =============================================================================
// Diagram Model
// =============================================================================

// NodeKind distinguishes diagram nodes.
type NodeKind string

const (
	NodeService NodeKind = "service"
	NodeNetwork NodeKind = "network"
	NodeVolume  NodeKind = "volume"
)

// EdgeKind distinguishes diagram edges.
type EdgeKind string

const (
	EdgeAttach    EdgeKind = "attach"     // service -> network
	EdgeMount     EdgeKind = "mount"      // service -> volume
	EdgeDependsOn EdgeKind = "depends_on" // service -> service
)

// Node is one box in the network diagram.
type Node struct {
	ID    string   `json:"id"`
	Label string   `json:"label"`
	Kind  NodeKind `json:"kind"`
}

// Edge connects two nodes by ID.
type Edge struct {
	From  string   `json:"from"`
	To    string   `json:"to"`
	Kind  EdgeKind `json:"kind"`
	Label string   `json:"label,omitempty"`
}

// Diagram is the derived view of the network step.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// BuildDiagram derives the diagram from the services of a target and the
// session's networks and volumes. Every service joins every network.
// Node and edge order follows the input lists.
func BuildDiagram(services []domain.ServiceConfig, networks []string, volumes []Volume) Diagram {
	d := Diagram{Nodes: []Node{}, Edges: []Edge{}}

	for _, svc := range services {
		d.Nodes = append(d.Nodes, Node{ID: serviceID(svc.Name), Label: svc.Name, Kind: NodeService})
	}
	for _, n := range networks {
		d.Nodes = append(d.Nodes, Node{ID: networkID(n), Label: n, Kind: NodeNetwork})
	}
	for _, v := range NamedVolumes(volumes, services) {
		d.Nodes = append(d.Nodes, Node{ID: volumeID(v), Label: v, Kind: NodeVolume})
	}

	for _, svc := range services {
		for _, n := range networks {
			d.Edges = append(d.Edges, Edge{From: serviceID(svc.Name), To: networkID(n), Kind: EdgeAttach})
		}
		for _, m := range svc.Volumes {
			if m.IsNamed() {
				d.Edges = append(d.Edges, Edge{From: serviceID(svc.Name), To: volumeID(m.HostPath), Kind: EdgeMount, Label: m.ContainerPath})
			}
		}
		for _, dep := range svc.DependsOn {
			d.Edges = append(d.Edges, Edge{From: serviceID(svc.Name), To: serviceID(dep), Kind: EdgeDependsOn})
		}
	}
	return d
}

// Count returns the number of nodes of one kind.
func (d Diagram) Count(kind NodeKind) int {
	n := 0
	for _, node := range d.Nodes {
		if node.Kind == kind {
			n++
		}
	}
	return n
}

// =============================================================================
// D2 Rendering
// =============================================================================

var nonIDChars = regexp.MustCompile(`[^a-zA-Z0-9_-]`)

func sanitizeID(s string) string {
	s = strings.ToLower(s)
	s = strings.NewReplacer(" ", "-", ".", "-", "/", "-").Replace(s)
	s = nonIDChars.ReplaceAllString(s, "")
	if s == "" {
		return "unknown"
	}
	return s
}

func serviceID(name string) string { return "svc_" + sanitizeID(name) }
func networkID(name string) string { return "net_" + sanitizeID(name) }
func volumeID(name string) string  { return "vol_" + sanitizeID(name) }

func quote(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `\"`) + `"`
}

var shapes = map[NodeKind]string{
	NodeService: "rectangle",
	NodeNetwork: "cloud",
	NodeVolume:  "cylinder",
}

// RenderD2 writes the diagram as D2 source text.
func RenderD2(d Diagram) string {
	var b strings.Builder
	b.WriteString("direction: right\n\n")

	for _, n := range d.Nodes {
		fmt.Fprintf(&b, "%s: %s {\n", n.ID, quote(n.Label))
		fmt.Fprintf(&b, "  shape: %s\n", shapes[n.Kind])
		b.WriteString("}\n")
	}

	if len(d.Edges) > 0 {
		b.WriteString("\n")
	}
	for _, e := range d.Edges {
		switch e.Kind {
		case EdgeDependsOn:
			fmt.Fprintf(&b, "%s -> %s: %s {\n  style.stroke-dash: 3\n}\n", e.From, e.To, quote("depends on"))
		case EdgeMount:
			fmt.Fprintf(&b, "%s -> %s: %s\n", e.From, e.To, quote(e.Label))
		default:
			fmt.Fprintf(&b, "%s -- %s\n", e.From, e.To)
		}
	}
	return b.String()
}
