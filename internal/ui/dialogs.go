package ui

import (
	"fmt"

	"github.com/bz888/vox/internal/controller"
	"github.com/bz888/vox/internal/sentiment"
	"github.com/rivo/tview"
)

func formatSentiment(r *sentiment.Result) string {
	if r == nil {
		return ""
	}
	return fmt.Sprintf("Polarity: %.2f, Subjectivity: %.2f", r.Polarity, r.Subjectivity)
}

// dialogFor picks the title and body of the dialog shown after a conversion.
func dialogFor(out controller.Outcome) (title, text string) {
	switch o := out.(type) {
	case controller.Success:
		if o.AudioPath != "" {
			return "Success", "Audio generated and played successfully!"
		}
		return "Recognized Text", o.RecognizedText
	case controller.Failure:
		if o.Kind == controller.EmptyInput || o.Kind == controller.Busy {
			return "Warning", o.Message
		}
		return "Error", o.Message
	default:
		return "", ""
	}
}

func (u *UI) showOutcome(out controller.Outcome) {
	title, text := dialogFor(out)
	if title == "" {
		return
	}
	u.showDialog(title, text)
}

func (u *UI) showDialog(title, text string) {
	modal := tview.NewModal().
		SetText(tview.Escape(text)).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			u.pages.RemovePage(pageDialog)
			u.focusScreen(u.ctrl.State().Mode)
		})
	modal.SetTitle(" " + title + " ")

	u.pages.AddPage(pageDialog, modal, true, true)
	u.app.SetFocus(modal)
}

func createModal(p tview.Primitive, width, height int) tview.Primitive {
	return tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(p, height, 1, true).
			AddItem(nil, 0, 1, false), width, 1, true).
		AddItem(nil, 0, 1, false)
}
