package keymap

// QWERTY row definitions. Offsets are in key widths and follow the usual
// staggered soft-keyboard arrangement (second row indented half a key,
// third row a key and a half).
var qwertyRows = []struct {
	chars  string
	offset float64
}{
	{"qwertyuiop", 0},
	{"asdfghjkl", 0.5},
	{"zxcvbnm", 1.5},
}

// QWERTY builds the standard three-row Latin layout scaled to the given
// board dimensions in pixels.
func QWERTY(width, height float64) Layout {
	keyW := width / 10
	keyH := height / 3

	var keys []Key
	for row, def := range qwertyRows {
		for i, ch := range def.chars {
			keys = append(keys, Key{
				Char: ch,
				Center: Point{
					X: (def.offset + float64(i) + 0.5) * keyW,
					Y: (float64(row) + 0.5) * keyH,
				},
				Width:  keyW,
				Height: keyH,
				Row:    row,
			})
		}
	}

	return Layout{
		Name:   "qwerty",
		Width:  width,
		Height: height,
		Keys:   keys,
	}
}
