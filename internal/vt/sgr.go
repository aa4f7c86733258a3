package vt

// applySGR interprets CSI m parameters against the cursor's pending
// style, which is applied as a template to the next printed cell
// (§3 Cursor: pending_style; §4.1 SGR dispatch).
func (g *Grid) applySGR(params []int) {
	if len(params) == 0 {
		params = []int{0}
	}
	s := &g.cursor.PendingStyle
	for i := 0; i < len(params); i++ {
		p := params[i]
		switch {
		case p == 0:
			*s = EmptyCell()
		case p == 1:
			s.Flags |= FlagBold
		case p == 2:
			s.Flags |= FlagDim
		case p == 3:
			s.Flags |= FlagItalic
		case p == 4:
			s.Flags |= FlagUnderline
		case p == 5, p == 6:
			s.Flags |= FlagBlink
		case p == 7:
			s.Flags |= FlagReverse
		case p == 8:
			s.Flags |= FlagHidden
		case p == 9:
			s.Flags |= FlagStrike
		case p == 21:
			s.Flags |= FlagDoubleUnderline
		case p == 22:
			s.Flags &^= FlagBold | FlagDim
		case p == 23:
			s.Flags &^= FlagItalic
		case p == 24:
			s.Flags &^= FlagUnderline | FlagDoubleUnderline
		case p == 25:
			s.Flags &^= FlagBlink
		case p == 27:
			s.Flags &^= FlagReverse
		case p == 28:
			s.Flags &^= FlagHidden
		case p == 29:
			s.Flags &^= FlagStrike
		case p >= 30 && p <= 37:
			s.Fg = Color{Mode: ColorStandard, Value: uint8(p - 30)}
		case p == 38:
			n := g.parseExtendedColor(params, &i)
			s.Fg = n
		case p == 39:
			s.Fg = DefaultColor
		case p >= 40 && p <= 47:
			s.Bg = Color{Mode: ColorStandard, Value: uint8(p - 40)}
		case p == 48:
			n := g.parseExtendedColor(params, &i)
			s.Bg = n
		case p == 49:
			s.Bg = DefaultColor
		case p == 58:
			n := g.parseExtendedColor(params, &i)
			s.UnderlineFg = n
		case p == 59:
			s.UnderlineFg = DefaultColor
		case p >= 90 && p <= 97:
			s.Fg = Color{Mode: ColorStandard, Value: uint8(p - 90 + 8)}
		case p >= 100 && p <= 107:
			s.Bg = Color{Mode: ColorStandard, Value: uint8(p - 100 + 8)}
		}
	}
}

// parseExtendedColor consumes the 256-color or RGB sub-parameters
// following a 38/48/58 introducer, advancing *i past what it reads.
func (g *Grid) parseExtendedColor(params []int, i *int) Color {
	if *i+1 >= len(params) {
		return DefaultColor
	}
	mode := params[*i+1]
	switch mode {
	case 5:
		if *i+2 < len(params) {
			v := params[*i+2]
			*i += 2
			return Color{Mode: Color256, Value: uint8(v)}
		}
	case 2:
		if *i+4 < len(params) {
			r, g2, b := params[*i+2], params[*i+3], params[*i+4]
			*i += 4
			return Color{Mode: ColorRGB, R: uint8(r), G: uint8(g2), B: uint8(b)}
		}
	}
	return DefaultColor
}
