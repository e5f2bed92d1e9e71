// Package console renders text onto the bootloader-provided linear
// framebuffer using a PC Screen Font (PSF) glyph bitmap. A Console is an
// io.Writer, so a caller can feed it the same bytes it writes to the
// serial console.
package console

import (
	"golang.org/x/text/encoding/charmap"
)

// PSF1 header magic bytes.
const psf1Magic0, psf1Magic1 = 0x36, 0x04

/// Font holds a parsed PSF1 font: a fixed glyph height, 8 pixels wide,
/// and a 256-glyph table (512 when the header's 512-glyph mode bit is
/// set). Console draws one glyph per byte, so only the first 256 glyphs
/// of a 512-glyph font are ever drawn.
type Font struct {
	GlyphHeight int
	Glyphs      []byte // GlyphHeight bytes per glyph, 256 or 512 glyphs
}

/// ParsePSF1 parses a raw PSF1 font blob (the format Linux's console
/// font files and this kernel's bundled default font both use).
func ParsePSF1(data []byte) (*Font, bool) {
	if len(data) < 4 || data[0] != psf1Magic0 || data[1] != psf1Magic1 {
		return nil, false
	}
	mode := data[2]
	height := int(data[3])
	numGlyphs := 256
	if mode&0x01 != 0 {
		numGlyphs = 512
	}
	need := 4 + numGlyphs*height
	if len(data) < need {
		return nil, false
	}
	return &Font{GlyphHeight: height, Glyphs: data[4:need]}, true
}

/// Framebuffer wraps a linear RGB framebuffer (handed off by boot's
/// bootloader response) in pixel-plotting primitives.
type Framebuffer struct {
	Base          uintptr
	Width, Height int
	Pitch         int // bytes per scanline
	BytesPerPixel int
}

func (fb *Framebuffer) putPixel(x, y int, rgb uint32) {
	off := y*fb.Pitch + x*fb.BytesPerPixel
	p := ptrAt(fb.Base + uintptr(off))
	switch fb.BytesPerPixel {
	case 4:
		*(*uint32)(p) = rgb
	case 2:
		*(*uint16)(p) = uint16(rgb)
	default:
		panic("console: unsupported pixel depth")
	}
}

const glyphWidth = 8

/// Console renders a fixed-size character grid of a Framebuffer using a
/// Font, and is also an io.Writer so the same bytes that go to serial
/// can be drawn on screen.
type Console struct {
	FB   *Framebuffer
	Font *Font
	Fg, Bg uint32

	col, row   int
	cols, rows int
}

/// NewConsole sizes the character grid to fit fb given font.
func NewConsole(fb *Framebuffer, font *Font) *Console {
	return &Console{
		FB: fb, Font: font,
		Fg: 0xFFFFFF, Bg: 0x000000,
		cols: fb.Width / glyphWidth,
		rows: fb.Height / font.GlyphHeight,
	}
}

func (c *Console) drawGlyph(ch byte, col, row int) {
	gh := c.Font.GlyphHeight
	glyph := c.Font.Glyphs[int(ch)*gh : int(ch)*gh+gh]
	x0 := col * glyphWidth
	y0 := row * gh
	for dy := 0; dy < gh; dy++ {
		rowbits := glyph[dy]
		for dx := 0; dx < glyphWidth; dx++ {
			set := rowbits&(0x80>>uint(dx)) != 0
			rgb := c.Bg
			if set {
				rgb = c.Fg
			}
			c.FB.putPixel(x0+dx, y0+dy, rgb)
		}
	}
}

func (c *Console) newline() {
	c.col = 0
	c.row++
	if c.row >= c.rows {
		c.row = 0 // no scrollback buffer; wrap to the top like a CRT
	}
}

// codePage is the font's code page (IBM codepage 437, the traditional
// PSF charset). Write degrades anything outside it to '?' instead of
// corrupting the cell grid with a multi-byte UTF-8 sequence split across
// cells.
var codePage = charmap.CodePage437

/// Write implements io.Writer. Input is treated as UTF-8 and
/// transliterated to the font's code page; runes with no code page
/// equivalent, and invalid UTF-8, become '?'.
func (c *Console) Write(p []byte) (int, error) {
	for _, r := range string(p) {
		b, ok := codePage.EncodeRune(r)
		if !ok {
			b = '?'
		}
		if b == '\n' {
			c.newline()
			continue
		}
		c.drawGlyph(b, c.col, c.row)
		c.col++
		if c.col >= c.cols {
			c.newline()
		}
	}
	return len(p), nil
}
