package webhookcreate

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/lucasb-eyer/go-colorful"
)

var (
	hexColorPattern    = regexp.MustCompile(`^[0-9A-F]{6}$`)
	errInvalidHexColor = errors.New("invalid hex color")
)

// RGB is a 24-bit color
type RGB struct {
	R, G, B int
}

// HSL is hue (degrees), saturation and lightness (percent), each rounded
type HSL struct {
	H, S, L int
}

// HSV is hue (degrees), saturation and value (percent), each rounded
type HSV struct {
	H, S, V int
}

// parseHexColor parses a six digit hex color, with or without a
// leading '#'. Case is ignored.
func parseHexColor(s string) (RGB, error) {
	hex := strings.ToUpper(strings.Replace(strings.TrimSpace(s), "#", "", 1))
	if !hexColorPattern.MatchString(hex) {
		return RGB{}, fmt.Errorf("%w: %q", errInvalidHexColor, s)
	}
	c, err := colorful.Hex("#" + hex)
	if err != nil {
		return RGB{}, fmt.Errorf("%w: %q: %w", errInvalidHexColor, s, err)
	}
	return rgbFromColorful(c), nil
}

func rgbFromColorful(c colorful.Color) RGB {
	r, g, b := c.Clamped().RGB255()
	return RGB{R: int(r), G: int(g), B: int(b)}
}

func rgbFromInt(n int) RGB {
	return RGB{R: (n >> 16) & 0xff, G: (n >> 8) & 0xff, B: n & 0xff}
}

func (c RGB) Int() int {
	return c.R<<16 | c.G<<8 | c.B
}

func (c RGB) toColorful() colorful.Color {
	return colorful.Color{
		R: float64(c.R) / 255,
		G: float64(c.G) / 255,
		B: float64(c.B) / 255,
	}
}

// Hex returns the color as '#RRGGBB'
func (c RGB) Hex() string {
	return strings.ToUpper(c.toColorful().Hex())
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

func (c RGB) Complement() RGB {
	return RGB{R: 255 - c.R, G: 255 - c.G, B: 255 - c.B}
}

func (c RGB) HSL() HSL {
	h, s, l := c.toColorful().Hsl()
	return HSL{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		L: int(math.Round(l * 100)),
	}
}

func (c HSL) String() string {
	return fmt.Sprintf("hsl(%d°, %d%%, %d%%)", c.H, c.S, c.L)
}

func (c RGB) HSV() HSV {
	h, s, v := c.toColorful().Hsv()
	return HSV{
		H: int(math.Round(h)) % 360,
		S: int(math.Round(s * 100)),
		V: int(math.Round(v * 100)),
	}
}

func (c HSV) String() string {
	return fmt.Sprintf("hsv(%d°, %d%%, %d%%)", c.H, c.S, c.V)
}

// Luminance is the WCAG relative luminance of the color, in [0, 1]
func (c RGB) Luminance() float64 {
	r, g, b := c.toColorful().LinearRgb()
	return 0.2126*r + 0.7152*g + 0.0722*b
}

// Brightness is the perceived brightness of the color, in [0, 255]
func (c RGB) Brightness() float64 {
	return float64(c.R*299+c.G*587+c.B*114) / 1000
}

func (c RGB) Name() string {
	r, g, b := c.R, c.G, c.B
	switch {
	case r > 200 && g < 50 && b < 50:
		return "Red"
	case r < 50 && g > 200 && b < 50:
		return "Green"
	case r < 50 && g < 50 && b > 200:
		return "Blue"
	case r > 200 && g > 200 && b < 50:
		return "Yellow"
	case r > 200 && g < 50 && b > 200:
		return "Magenta"
	case r < 50 && g > 200 && b > 200:
		return "Cyan"
	case r > 200 && g > 150 && b < 50:
		return "Orange"
	case r > 150 && g < 50 && b > 150:
		return "Purple"
	case r > 200 && g > 200 && b > 200:
		return "White"
	case r > 200 && g > 100 && b > 150:
		return "Pink"
	case r < 50 && g < 50 && b < 50:
		return "Black"
	case r > 100 && r < 150 && g > 100 && g < 150 && b > 100 && b < 150:
		return "Gray"
	case r > 100 && g > 50 && b < 50:
		return "Brown"
	}
	return "Mixed Color"
}

func contrastRatio(l1, l2 float64) float64 {
	return (math.Max(l1, l2) + 0.05) / (math.Min(l1, l2) + 0.05)
}

func accessibilityRating(whiteContrast, blackContrast float64) string {
	best := math.Max(whiteContrast, blackContrast)
	switch {
	case best >= 7:
		return "AAA (Excellent)"
	case best >= 4.5:
		return "AA (Good)"
	case best >= 3:
		return "A (Fair)"
	}
	return "Poor"
}

func bestUsage(hsl HSL) string {
	h, s, l := hsl.H, hsl.S, hsl.L
	switch {
	case s < 20:
		return "Neutral backgrounds, text"
	case l > 80:
		return "Light backgrounds, subtle accents"
	case l < 20:
		return "Dark backgrounds, text"
	case s > 70 && l > 30 && l < 70:
		return "Accent colors, buttons, highlights"
	case h < 60:
		return "Warm accents, call-to-action buttons"
	case h < 180:
		return "Natural themes, success messages"
	case h < 240:
		return "Cool themes, info messages"
	case h < 300:
		return "Creative themes, premium features"
	}
	return "General purpose, decorative elements"
}

// colorSections renders the `/colorinfo` summary
func colorSections(c RGB) []string {
	hex := c.Hex()
	hsl := c.HSL()
	luminance := c.Luminance()
	brightness := c.Brightness()
	contrastWhite := contrastRatio(luminance, 1)
	contrastBlack := contrastRatio(luminance, 0)
	complement := c.Complement()

	shade, textColor := "Dark", "white"
	if brightness > 127 {
		shade, textColor = "Light", "black"
	}

	return []string{
		fmt.Sprintf("🎨 **Color Information: %s**\n**Color Name:** %s", hex, c.Name()),
		fmt.Sprintf(
			"**📊 Color Formats**\n**Hex:** %s\n**RGB:** %s\n**HSL:** %s\n**HSV:** %s",
			hex, c, hsl, c.HSV(),
		),
		fmt.Sprintf(
			"**🔍 Color Properties**\n**Brightness:** %.1f (%s)\n**Luminance:** %.2f%%\n"+
				"**Contrast with White:** %.2f:1\n**Contrast with Black:** %.2f:1",
			brightness, shade, luminance*100, contrastWhite, contrastBlack,
		),
		fmt.Sprintf("**🔄 Complementary Color**\n**Hex:** %s\n**RGB:** %s", complement.Hex(), complement),
		fmt.Sprintf(
			"**💡 Usage Recommendations**\n**Recommended Text Color:** %s\n"+
				"**Accessibility Rating:** %s\n**Best Used For:** %s",
			textColor, accessibilityRating(contrastWhite, contrastBlack), bestUsage(hsl),
		),
	}
}

func (c *Commands) colorInfo(ctx context.Context, h InteractionHandler, r ColorInfoRequest) error {
	rgb, err := parseHexColor(r.HexColor)
	if err != nil {
		return reply(
			ctx,
			h,
			true,
			nil,
			containerEmbed(
				c.config.errorColor(),
				"❌ **Invalid Hex Color Code**\nPlease provide a valid 6-digit hex color code.\n\n"+
					"**Examples:**\n• #FF0000\n• ff0000\n• #00FF00\n• 0099FF",
			),
		)
	}

	sections := append(colorSections(rgb), "Requested by: "+getDiscordUser(h.GetInteraction()).String())
	return reply(ctx, h, false, nil, containerEmbed(rgb.Int(), sections...))
}

func (c *Commands) randomColor(ctx context.Context, h InteractionHandler) error {
	rgb := rgbFromInt(c.randInt(0x1000000))
	hex := rgb.Hex()
	return reply(
		ctx,
		h,
		false,
		nil,
		containerEmbed(
			rgb.Int(),
			fmt.Sprintf("🎨 **Random Color Generated**\nYour random color is: **%s**", hex),
			fmt.Sprintf("**🔢 Color Information**\n**Hex:** %s\n**RGB:** %s\n**HSL:** %s", hex, rgb, rgb.HSL()),
			"Requested by: "+getDiscordUser(h.GetInteraction()).String(),
		),
	)
}
