package glyphatlas

// Clip trims a glyph quad to bounds.
//
// screen is the glyph rectangle in screen space and uv the matching texture
// rectangle. Every side of screen that extends strictly past bounds is
// clamped to it, and the matching uv edge is moved so that uv keeps covering
// the same fraction of the glyph: the uv edge on the opposite side stays put
// and the uv extent shrinks by the same ratio as the screen extent. An edge
// lying exactly on the bound is left alone.
//
// ok is false when nothing of the quad remains, including when screen has no
// extent on an axis to begin with. Clip has no side effects.
func Clip(screen, uv, bounds Rect) (Rect, Rect, bool) {
	if screen.Empty() {
		return Rect{}, Rect{}, false
	}

	if screen.Max.X > bounds.Max.X {
		oldW := screen.Width()
		screen.Max.X = bounds.Max.X
		uv.Max.X = uv.Min.X + uv.Width()*screen.Width()/oldW
	}
	if screen.Min.X < bounds.Min.X {
		oldW := screen.Width()
		screen.Min.X = bounds.Min.X
		uv.Min.X = uv.Max.X - uv.Width()*screen.Width()/oldW
	}
	if !(screen.Min.X < screen.Max.X) {
		return Rect{}, Rect{}, false
	}

	if screen.Max.Y > bounds.Max.Y {
		oldH := screen.Height()
		screen.Max.Y = bounds.Max.Y
		uv.Max.Y = uv.Min.Y + uv.Height()*screen.Height()/oldH
	}
	if screen.Min.Y < bounds.Min.Y {
		oldH := screen.Height()
		screen.Min.Y = bounds.Min.Y
		uv.Min.Y = uv.Max.Y - uv.Height()*screen.Height()/oldH
	}

	if screen.Empty() {
		return Rect{}, Rect{}, false
	}
	return screen, uv, true
}
