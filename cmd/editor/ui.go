package main

import (
	"bytes"

	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/goregular"
)

const (
	toolbarHeight = 48
	statusHeight  = 28
)

type ToolBar struct {
	group   *widget.RadioGroup
	buttons []*widget.Button
}

func (t *ToolBar) Select(tool Tool) {
	if idx := int(tool); idx >= 0 && idx < len(t.buttons) {
		t.group.SetActive(t.buttons[idx])
	}
}

// BuildEditorUI lays out the tool bar along the top and a status line
// along the bottom. The level canvas is drawn underneath by the editor.
func BuildEditorUI(onToolSelected func(Tool), onSave, onCopy func(), initialTool Tool) (*ebitenui.UI, *ToolBar, *widget.Label) {
	ui := &ebitenui.UI{}

	s, err := text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	if err != nil {
		panic("Failed to load font: " + err.Error())
	}

	var fontFace text.Face = &text.GoTextFace{Source: s, Size: 14}
	ui.PrimaryTheme = newEditorTheme(&fontFace)

	toolbarContainer, toolBar := buildToolBar(ui.PrimaryTheme, &fontFace, onToolSelected, onSave, onCopy, initialTool)

	status := widget.NewLabel(
		widget.LabelOpts.Text("", &fontFace, &widget.LabelColor{Idle: labelColor, Disabled: labelMutedColor}),
	)
	statusBar := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(0, statusHeight),
		),
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
		)),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(chromeColor)),
	)
	statusBar.AddChild(status)

	root := widget.NewContainer(widget.ContainerOpts.Layout(widget.NewAnchorLayout()))
	toolbarContainer.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionStart,
		StretchHorizontal:  true,
	}
	statusBar.GetWidget().LayoutData = widget.AnchorLayoutData{
		HorizontalPosition: widget.AnchorLayoutPositionStart,
		VerticalPosition:   widget.AnchorLayoutPositionEnd,
		StretchHorizontal:  true,
	}
	root.AddChild(toolbarContainer)
	root.AddChild(statusBar)
	ui.Container = root

	return ui, toolBar, status
}

func buildToolBar(theme *widget.Theme, fontFace *text.Face, onToolSelected func(tool Tool), onSave, onCopy func(), initialTool Tool) (*widget.Container, *ToolBar) {
	toolbar := widget.NewContainer(
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.MinSize(220, toolbarHeight),
		),
		widget.ContainerOpts.Layout(
			widget.NewRowLayout(
				widget.RowLayoutOpts.Direction(widget.DirectionHorizontal),
				widget.RowLayoutOpts.Spacing(8),
			),
		),
		widget.ContainerOpts.BackgroundImage(solidNineSlice(toolbarColor)),
	)

	var toolButtons []*widget.Button
	for _, tool := range allTools {
		btn := widget.NewButton(
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(tool.String(), fontFace, theme.ButtonTheme.TextColor),
			widget.ButtonOpts.ToggleMode(),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(56, 40),
			),
		)
		toolButtons = append(toolButtons, btn)
		toolbar.AddChild(btn)
	}

	elements := make([]widget.RadioGroupElement, 0, len(toolButtons))
	for _, b := range toolButtons {
		elements = append(elements, b)
	}

	group := widget.NewRadioGroup(
		widget.RadioGroupOpts.Elements(elements...),
		widget.RadioGroupOpts.ChangedHandler(func(args *widget.RadioGroupChangedEventArgs) {
			if onToolSelected == nil {
				return
			}
			for idx, b := range toolButtons {
				if args.Active == b {
					onToolSelected(allTools[idx])
					return
				}
			}
		}),
	)

	for _, action := range []struct {
		label string
		fn    func()
	}{
		{"Save", onSave},
		{"Copy JSON", onCopy},
	} {
		fn := action.fn
		toolbar.AddChild(widget.NewButton(
			widget.ButtonOpts.Image(theme.ButtonTheme.Image),
			widget.ButtonOpts.Text(action.label, fontFace, theme.ButtonTheme.TextColor),
			widget.ButtonOpts.WidgetOpts(
				widget.WidgetOpts.MinSize(72, 40),
			),
			widget.ButtonOpts.ClickedHandler(func(args *widget.ButtonClickedEventArgs) {
				if fn != nil {
					fn()
				}
			}),
		))
	}

	bar := &ToolBar{group: group, buttons: toolButtons}
	bar.Select(initialTool)
	return toolbar, bar
}
