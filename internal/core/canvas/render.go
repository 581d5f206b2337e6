package canvas

import (
	"fmt"
	"html"
	"math"
	"strconv"
	"strings"
)

// RenderSVG draws the scene as a standalone SVG document. The output depends
// only on the node list: the same model always yields the same bytes.
func RenderSVG(m Model) string {
	minX, minY, maxX, maxY := bounds(m.Services)

	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="%s %s %s %s">`+"\n",
		num(minX), num(minY), num(maxX-minX), num(maxY-minY))

	for _, s := range m.Services {
		fmt.Fprintf(&b, `  <g id="%s">`+"\n", html.EscapeString(s.ID))
		fmt.Fprintf(&b, `    <rect x="%s" y="%s" width="%d" height="%d" rx="8" fill="#ffffff" stroke="#3b82f6"/>`+"\n",
			num(s.X), num(s.Y), NodeWidth, NodeHeight)
		fmt.Fprintf(&b, `    <text x="%s" y="%s" text-anchor="middle" font-weight="bold">%s</text>`+"\n",
			num(s.X+NodeWidth/2), num(s.Y+35), html.EscapeString(s.Name))
		fmt.Fprintf(&b, `    <text x="%s" y="%s" text-anchor="middle" font-size="11">%s</text>`+"\n",
			num(s.X+NodeWidth/2), num(s.Y+55), html.EscapeString(s.Image))
		if len(s.Ports) > 0 {
			ports := make([]string, len(s.Ports))
			for i, p := range s.Ports {
				ports[i] = strconv.Itoa(p.Host)
			}
			fmt.Fprintf(&b, `    <text x="%s" y="%s" text-anchor="middle" font-size="10">:%s</text>`+"\n",
				num(s.X+NodeWidth/2), num(s.Y+75), strings.Join(ports, " :"))
		}
		b.WriteString("  </g>\n")
	}

	b.WriteString("</svg>\n")
	return b.String()
}

// bounds returns a view box covering every node plus the grid margin.
// An empty scene gets one empty grid cell.
func bounds(services []Service) (minX, minY, maxX, maxY float64) {
	if len(services) == 0 {
		return 0, 0, GridSpacing + GridMargin, GridSpacing + GridMargin
	}
	minX, minY = math.Inf(1), math.Inf(1)
	maxX, maxY = math.Inf(-1), math.Inf(-1)
	for _, s := range services {
		minX = math.Min(minX, s.X)
		minY = math.Min(minY, s.Y)
		maxX = math.Max(maxX, s.X+NodeWidth)
		maxY = math.Max(maxY, s.Y+NodeHeight)
	}
	return minX - GridMargin, minY - GridMargin, maxX + GridMargin, maxY + GridMargin
}

func num(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
