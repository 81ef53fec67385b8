package webhookcreate

import (
	"context"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHexColor(t *testing.T) {
	tests := []struct {
		input   string
		want    RGB
		wantErr bool
	}{
		{input: "#FF8800", want: RGB{R: 255, G: 136}},
		{input: "ff8800", want: RGB{R: 255, G: 136}},
		{input: "#0099ff", want: RGB{G: 153, B: 255}},
		{input: "  #00ff00 ", want: RGB{G: 255}},
		{input: "#FFF", wantErr: true},
		{input: "#GGGGGG", wantErr: true},
		{input: "##FF8800", wantErr: true},
		{input: "+12345", wantErr: true},
		{input: "", wantErr: true},
	}
	for _, tc := range tests {
		t.Run(
			tc.input, func(t *testing.T) {
				got, err := parseHexColor(tc.input)
				if tc.wantErr {
					assert.ErrorIs(t, err, errInvalidHexColor)
					return
				}
				require.NoError(t, err)
				assert.Equal(t, tc.want, got)
			},
		)
	}
}

func TestRGB_Conversions(t *testing.T) {
	tests := []struct {
		name    string
		rgb     RGB
		hex     string
		hsl     HSL
		hsv     HSV
		colName string
	}{
		{
			name:    "red",
			rgb:     RGB{R: 255},
			hex:     "#FF0000",
			hsl:     HSL{H: 0, S: 100, L: 50},
			hsv:     HSV{H: 0, S: 100, V: 100},
			colName: "Red",
		},
		{
			name:    "green",
			rgb:     RGB{G: 255},
			hex:     "#00FF00",
			hsl:     HSL{H: 120, S: 100, L: 50},
			hsv:     HSV{H: 120, S: 100, V: 100},
			colName: "Green",
		},
		{
			name:    "blue",
			rgb:     RGB{B: 255},
			hex:     "#0000FF",
			hsl:     HSL{H: 240, S: 100, L: 50},
			hsv:     HSV{H: 240, S: 100, V: 100},
			colName: "Blue",
		},
		{
			name:    "gray",
			rgb:     RGB{R: 128, G: 128, B: 128},
			hex:     "#808080",
			hsl:     HSL{H: 0, S: 0, L: 50},
			hsv:     HSV{H: 0, S: 0, V: 50},
			colName: "Gray",
		},
		{
			name:    "orange",
			rgb:     RGB{R: 255, G: 165},
			hex:     "#FFA500",
			hsl:     HSL{H: 39, S: 100, L: 50},
			hsv:     HSV{H: 39, S: 100, V: 100},
			colName: "Orange",
		},
		{
			name:    "black",
			rgb:     RGB{},
			hex:     "#000000",
			hsl:     HSL{},
			hsv:     HSV{},
			colName: "Black",
		},
		{
			name:    "teal",
			rgb:     RGB{R: 0, G: 128, B: 128},
			hex:     "#008080",
			hsl:     HSL{H: 180, S: 100, L: 25},
			hsv:     HSV{H: 180, S: 100, V: 50},
			colName: "Mixed Color",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				assert.Equal(t, tc.hex, tc.rgb.Hex())
				assert.Equal(t, tc.hsl, tc.rgb.HSL())
				assert.Equal(t, tc.hsv, tc.rgb.HSV())
				assert.Equal(t, tc.colName, tc.rgb.Name())
				assert.Equal(t, tc.rgb, rgbFromInt(tc.rgb.Int()))
			},
		)
	}
}

func TestRGB_Strings(t *testing.T) {
	c := RGB{R: 255, G: 136, B: 0}
	assert.Equal(t, "rgb(255, 136, 0)", c.String())
	assert.Equal(t, "hsl(32°, 100%, 50%)", c.HSL().String())
	assert.Equal(t, "hsv(32°, 100%, 100%)", c.HSV().String())
	assert.Equal(t, RGB{R: 0, G: 119, B: 255}, c.Complement())
}

func TestRGB_Luminance(t *testing.T) {
	assert.InDelta(t, 0, RGB{}.Luminance(), 1e-9)
	assert.InDelta(t, 1, RGB{R: 255, G: 255, B: 255}.Luminance(), 1e-9)
	assert.InDelta(t, 0.2126, RGB{R: 255}.Luminance(), 1e-9)
	assert.InDelta(t, 255, RGB{R: 255, G: 255, B: 255}.Brightness(), 1e-9)
	assert.InDelta(t, 76.245, RGB{R: 255}.Brightness(), 1e-9)
}

func TestContrastRatio(t *testing.T) {
	assert.InDelta(t, 21, contrastRatio(1, 0), 1e-9)
	assert.InDelta(t, 21, contrastRatio(0, 1), 1e-9)
	assert.InDelta(t, 1, contrastRatio(0.5, 0.5), 1e-9)
}

func TestAccessibilityRating(t *testing.T) {
	tests := []struct {
		white, black float64
		want         string
	}{
		{white: 21, black: 1, want: "AAA (Excellent)"},
		{white: 1, black: 7, want: "AAA (Excellent)"},
		{white: 4.5, black: 2, want: "AA (Good)"},
		{white: 3.2, black: 2, want: "A (Fair)"},
		{white: 2.9, black: 2.9, want: "Poor"},
	}
	for _, tc := range tests {
		t.Run(
			tc.want, func(t *testing.T) {
				assert.Equal(t, tc.want, accessibilityRating(tc.white, tc.black))
			},
		)
	}
}

func TestBestUsage(t *testing.T) {
	tests := []struct {
		hsl  HSL
		want string
	}{
		{hsl: HSL{H: 0, S: 0, L: 50}, want: "Neutral backgrounds, text"},
		{hsl: HSL{H: 0, S: 100, L: 90}, want: "Light backgrounds, subtle accents"},
		{hsl: HSL{H: 0, S: 100, L: 10}, want: "Dark backgrounds, text"},
		{hsl: HSL{H: 200, S: 100, L: 50}, want: "Accent colors, buttons, highlights"},
		{hsl: HSL{H: 30, S: 50, L: 50}, want: "Warm accents, call-to-action buttons"},
		{hsl: HSL{H: 120, S: 50, L: 50}, want: "Natural themes, success messages"},
		{hsl: HSL{H: 200, S: 50, L: 50}, want: "Cool themes, info messages"},
		{hsl: HSL{H: 270, S: 50, L: 50}, want: "Creative themes, premium features"},
		{hsl: HSL{H: 330, S: 50, L: 50}, want: "General purpose, decorative elements"},
	}
	for _, tc := range tests {
		t.Run(
			tc.want, func(t *testing.T) {
				assert.Equal(t, tc.want, bestUsage(tc.hsl))
			},
		)
	}
}

func TestColorSections(t *testing.T) {
	sections := colorSections(RGB{R: 255, G: 255, B: 255})
	require.Len(t, sections, 5)
	assert.Equal(t, "🎨 **Color Information: #FFFFFF**\n**Color Name:** White", sections[0])
	assert.Contains(t, sections[2], "**Brightness:** 255.0 (Light)")
	assert.Contains(t, sections[2], "**Contrast with Black:** 21.00:1")
	assert.Contains(t, sections[3], "**Hex:** #000000")
	assert.Contains(t, sections[4], "**Recommended Text Color:** black")
	assert.Contains(t, sections[4], "**Accessibility Rating:** AAA (Excellent)")
}

func TestCommands_ColorInfo(t *testing.T) {
	tests := []struct {
		name          string
		hex           string
		wantEphemeral bool
		wantColor     int
		wantContains  string
	}{
		{
			name:         "valid",
			hex:          "#ff8800",
			wantColor:    0xFF8800,
			wantContains: "🎨 **Color Information: #FF8800**",
		},
		{
			name:          "invalid",
			hex:           "orange",
			wantEphemeral: true,
			wantContains:  "❌ **Invalid Hex Color Code**",
		},
	}
	for _, tc := range tests {
		t.Run(
			tc.name, func(t *testing.T) {
				session := newMockDiscordSession(t)
				c, _ := newTestCommands(t, session)
				if tc.wantEphemeral {
					tc.wantColor = c.config.errorColor()
				}

				h := newStubInteractionHandler(t, newCommandInteraction(t, newDiscordUser(t), CommandColorInfo))
				err := c.Handle(
					context.Background(),
					h,
					ColorInfoRequest{commandRef: commandRef{command: CommandColorInfo}, HexColor: tc.hex},
				)
				require.NoError(t, err)

				resp := h.lastResponse(t)
				assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
				if tc.wantEphemeral {
					assert.Equal(t, discordgo.MessageFlagsEphemeral, resp.Data.Flags)
				} else {
					assert.Zero(t, resp.Data.Flags)
				}
				require.Len(t, resp.Data.Embeds, 1)
				assert.Equal(t, tc.wantColor, resp.Data.Embeds[0].Color)
				assert.Contains(t, resp.Data.Embeds[0].Description, tc.wantContains)
			},
		)
	}
}

func TestRGB_Name(t *testing.T) {
	tests := []struct {
		rgb  RGB
		want string
	}{
		{rgb: RGB{R: 255, G: 255, B: 255}, want: "White"},
		{rgb: RGB{R: 255, G: 192, B: 203}, want: "Pink"},
		{rgb: RGB{R: 255, G: 255}, want: "Yellow"},
		{rgb: RGB{R: 255, B: 255}, want: "Magenta"},
		{rgb: RGB{G: 255, B: 255}, want: "Cyan"},
		{rgb: RGB{R: 160, B: 160}, want: "Purple"},
		{rgb: RGB{R: 165, G: 90, B: 40}, want: "Brown"},
	}
	for _, tc := range tests {
		t.Run(
			tc.want, func(t *testing.T) {
				assert.Equal(t, tc.want, tc.rgb.Name())
			},
		)
	}
}
