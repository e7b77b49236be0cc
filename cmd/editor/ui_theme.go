package main

import (
	"image/color"

	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/colornames"
)

// Editor chrome follows the viewer's dark slate look so the canvas colours
// (walls, spawns, route preview) stay the brightest thing on screen.
var (
	chromeColor      = color.RGBA{R: 0x1f, G: 0x2a, B: 0x2e, A: 0xff}
	toolbarColor     = color.RGBA{R: 0x2b, G: 0x3a, B: 0x3f, A: 0xff}
	buttonIdleColor  = color.RGBA{R: 0x3d, G: 0x55, B: 0x5c, A: 0xff}
	buttonHoverColor = color.RGBA{R: 0x4f, G: 0x6f, B: 0x78, A: 0xff}
	buttonDownColor  = color.RGBA{R: 0x2e, G: 0x8b, B: 0x57, A: 0xff}
	labelColor       = colornames.Whitesmoke
	labelMutedColor  = color.Gray{Y: 140}
)

func solidNineSlice(c color.Color) *image.NineSlice {
	return image.NewNineSliceColor(c)
}

func toolButtonImage() *widget.ButtonImage {
	return &widget.ButtonImage{
		Idle:    solidNineSlice(buttonIdleColor),
		Hover:   solidNineSlice(buttonHoverColor),
		Pressed: solidNineSlice(buttonDownColor),
	}
}

func toolTextColor() *widget.ButtonTextColor {
	return &widget.ButtonTextColor{
		Idle:     labelColor,
		Hover:    labelColor,
		Pressed:  colornames.Gold,
		Disabled: labelMutedColor,
	}
}

func newEditorTheme(fontFace *text.Face) *widget.Theme {
	return &widget.Theme{
		PanelTheme: &widget.PanelParams{
			BackgroundImage: solidNineSlice(chromeColor),
		},
		ButtonTheme: &widget.ButtonParams{
			Image:     toolButtonImage(),
			TextFace:  fontFace,
			TextColor: toolTextColor(),
		},
	}
}
