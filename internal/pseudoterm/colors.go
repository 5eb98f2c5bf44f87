package pseudoterm

import (
	"fmt"
	"strconv"

	"github.com/muesli/termenv"
)

// palette returns the OSC 10/11 response values for the host terminal,
// resolved once per session.
func (p *PseudoTerminal) palette() (fg, bg string) {
	p.oscOnce.Do(func() {
		p.oscFg = colorToX11(termenv.ForegroundColor())
		p.oscBg = colorToX11(termenv.BackgroundColor())
		if p.oscFg == "" {
			p.oscFg = "rgb:ffff/ffff/ffff"
		}
		if p.oscBg == "" {
			p.oscBg = "rgb:0000/0000/0000"
		}
	})
	return p.oscFg, p.oscBg
}

// colorToX11 converts a termenv.Color to X11 rgb: format.
func colorToX11(c termenv.Color) string {
	if c == nil {
		return ""
	}
	if v, ok := c.(termenv.RGBColor); ok {
		hex := string(v)
		if len(hex) == 7 && hex[0] == '#' {
			r, _ := strconv.ParseUint(hex[1:3], 16, 8)
			g, _ := strconv.ParseUint(hex[3:5], 16, 8)
			b, _ := strconv.ParseUint(hex[5:7], 16, 8)
			return fmt.Sprintf("rgb:%04x/%04x/%04x", r*0x101, g*0x101, b*0x101)
		}
	}
	rgb := termenv.ConvertToRGB(c)
	r := uint8(rgb.R*255 + 0.5)
	g := uint8(rgb.G*255 + 0.5)
	b := uint8(rgb.B*255 + 0.5)
	return fmt.Sprintf("rgb:%04x/%04x/%04x", uint16(r)*0x101, uint16(g)*0x101, uint16(b)*0x101)
}
