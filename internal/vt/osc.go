package vt

import (
	"fmt"
	"strconv"
	"strings"
)

// dispatchOSC interprets a complete OSC payload once BEL or ST
// terminates it (§4.1: title, palette, dynamic colors, clipboard,
// palette reset). OSC 50 (cursor style) has no case here and is
// ignored like any other unknown code.
func (p *Parser) dispatchOSC() {
	g := p.g
	payload := string(p.oscBuf)
	p.oscBuf = nil

	semi := strings.IndexByte(payload, ';')
	if semi < 0 {
		return
	}
	code, err := strconv.Atoi(payload[:semi])
	if err != nil {
		return
	}
	arg := payload[semi+1:]

	switch code {
	case 0, 2: // icon+title, title
		g.title = arg
	case 1: // icon name only, no distinct storage
	case 4: // palette set/query: Pc;spec[;Pc;spec...]
		g.handlePaletteSet(arg)
	case 10, 11, 12: // dynamic fg/bg/cursor color query or set
		g.handleDynamicColor(code, arg)
	case 52: // clipboard: accepted, not actually connected to a system clipboard
	case 104: // reset color palette entries
		g.handlePaletteReset(arg)
	case 110, 111, 112: // dynamic colors are not stored apart from the palette, so reset every OSC 4 override
		g.changedColors = nil
	}
}

func (g *Grid) ensureChangedColors() *[256]Color {
	if g.changedColors == nil {
		g.changedColors = &[256]Color{}
	}
	return g.changedColors
}

func (g *Grid) handlePaletteSet(arg string) {
	parts := strings.Split(arg, ";")
	for i := 0; i+1 < len(parts); i += 2 {
		idx, err := strconv.Atoi(parts[i])
		if err != nil || idx < 0 || idx > 255 {
			continue
		}
		if parts[i+1] == "?" {
			c := DefaultColor
			if g.changedColors != nil {
				c = g.changedColors[idx]
			}
			g.queueReply([]byte(fmt.Sprintf("\x1b]4;%d;%s\x1b\\", idx, formatXParseColor(c))))
			continue
		}
		c, ok := parseXParseColor(parts[i+1])
		if !ok {
			continue
		}
		g.ensureChangedColors()[idx] = c
	}
}

func (g *Grid) handlePaletteReset(arg string) {
	if g.changedColors == nil {
		return
	}
	if arg == "" {
		g.changedColors = nil
		return
	}
	for _, s := range strings.Split(arg, ";") {
		if idx, err := strconv.Atoi(s); err == nil && idx >= 0 && idx <= 255 {
			g.changedColors[idx] = DefaultColor
		}
	}
}

func (g *Grid) handleDynamicColor(code int, arg string) {
	if arg == "?" {
		g.queueReply([]byte(fmt.Sprintf("\x1b]%d;%s\x1b\\", code, formatXParseColor(DefaultColor))))
		return
	}
	// Setting the dynamic fg/bg/cursor color is accepted but not
	// separately modeled; terminals that query it back get the default.
}

// parseXParseColor parses the "rgb:RRRR/GGGG/BBBB" form used by OSC 4/10/11.
func parseXParseColor(s string) (Color, bool) {
	s = strings.TrimPrefix(s, "rgb:")
	parts := strings.Split(s, "/")
	if len(parts) != 3 {
		return Color{}, false
	}
	var vals [3]uint8
	for i, p := range parts {
		if len(p) >= 2 {
			p = p[:2]
		}
		n, err := strconv.ParseUint(p, 16, 16)
		if err != nil {
			return Color{}, false
		}
		vals[i] = uint8(n)
	}
	return Color{Mode: ColorRGB, R: vals[0], G: vals[1], B: vals[2]}, true
}

func formatXParseColor(c Color) string {
	return fmt.Sprintf("rgb:%02x%02x/%02x%02x/%02x%02x", c.R, c.R, c.G, c.G, c.B, c.B)
}
