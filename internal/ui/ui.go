package ui

import (
	"context"
	"time"

	"github.com/bz888/vox/internal/controller"
	"github.com/bz888/vox/internal/logger"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

const (
	pageMain   = "main"
	pageDialog = "dialog"
	pagePicker = "picker"
)

// screens maps each mode to the page that holds its input widgets.
var screens = map[controller.Mode]string{
	controller.Home:        "home",
	controller.TextToVoice: "textToVoice",
	controller.VoiceToText: "voiceToText",
}

// UI is the terminal shell around a controller. It renders controller state
// and forwards user input; it keeps no results of its own.
type UI struct {
	app     *tview.Application
	ctrl    *controller.Controller
	timeout time.Duration
	dev     bool
	log     *logger.Logger

	pages        *tview.Pages
	screenPages  *tview.Pages
	prompt       *tview.TextView
	textInput    *tview.InputField
	convertBtn   *tview.Button
	uploadBtn    *tview.Button
	sentiment    *tview.TextView
	status       *tview.TextView
	debugConsole *tview.TextView
	mainFlex     *tview.Flex
}

// New builds the widgets. The debug console exists from the start so the
// logger can write to it before the controller is attached.
func New(dev bool, timeout time.Duration) *UI {
	u := &UI{
		app:     tview.NewApplication(),
		timeout: timeout,
		dev:     dev,
	}
	u.app.EnablePaste(true)
	u.app.EnableMouse(true)

	u.debugConsole = u.initDebugConsole()
	return u
}

func (u *UI) DebugConsole() *tview.TextView {
	return u.debugConsole
}

func (u *UI) initDebugConsole() *tview.TextView {
	console := tview.NewTextView().
		SetChangedFunc(func() {
			u.app.Draw()
		}).
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)

	console.SetTitle("Debugger").SetBorder(true)
	console.ScrollToEnd()
	return console
}

// Attach wires the controller and lays out the screens.
func (u *UI) Attach(ctrl *controller.Controller) {
	u.ctrl = ctrl
	u.log = logger.NewLogger("views")

	u.prompt = tview.NewTextView().SetWordWrap(true)
	u.prompt.SetBorder(true).SetTitle("Text ↔ Voice Converter")

	u.sentiment = tview.NewTextView()
	u.status = tview.NewTextView().SetDynamicColors(true)

	u.textInput = tview.NewInputField().
		SetLabel("Text: ").
		SetFieldWidth(40).
		SetDoneFunc(func(key tcell.Key) {
			if key == tcell.KeyEnter {
				u.submitText()
			}
		})
	u.convertBtn = tview.NewButton("Convert to Voice").SetSelectedFunc(u.submitText)
	u.uploadBtn = tview.NewButton("Upload and Convert").SetSelectedFunc(u.pickFile)

	u.screenPages = tview.NewPages().
		AddPage(screens[controller.Home], tview.NewBox(), true, true).
		AddPage(screens[controller.TextToVoice], u.textToVoiceScreen(), true, false).
		AddPage(screens[controller.VoiceToText], u.voiceToTextScreen(), true, false)

	body := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(u.menuBar(), 1, 0, false).
		AddItem(u.prompt, 0, 2, false).
		AddItem(u.screenPages, 3, 0, true).
		AddItem(u.sentiment, 1, 0, false).
		AddItem(u.status, 1, 0, false)

	u.mainFlex = tview.NewFlex().AddItem(body, 0, 2, true)
	if u.dev {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
	}

	u.pages = tview.NewPages().AddPage(pageMain, u.mainFlex, true, true)
	u.app.SetRoot(u.pages, true)
	u.app.SetInputCapture(u.globalKeys)

	ctrl.Subscribe(u)
}

func (u *UI) textToVoiceScreen() tview.Primitive {
	return tview.NewFlex().
		AddItem(u.textInput, 0, 3, true).
		AddItem(nil, 1, 0, false).
		AddItem(u.convertBtn, 20, 0, false)
}

func (u *UI) voiceToTextScreen() tview.Primitive {
	return tview.NewFlex().
		AddItem(u.uploadBtn, 22, 0, true).
		AddItem(nil, 0, 1, false)
}

func (u *UI) menuBar() tview.Primitive {
	bar := tview.NewFlex()
	items := []struct {
		label  string
		action controller.Action
	}{
		{"F1 Home", controller.ActionHome},
		{"F2 Text To Voice", controller.ActionTextToVoice},
		{"F3 Voice To Text", controller.ActionVoiceToText},
	}
	for _, item := range items {
		action := item.action
		btn := tview.NewButton(item.label).SetSelectedFunc(func() {
			u.handleAction(action)
		})
		bar.AddItem(btn, len(item.label)+4, 0, false).AddItem(nil, 1, 0, false)
	}
	quit := tview.NewButton("Quit").SetSelectedFunc(u.Stop)
	bar.AddItem(nil, 0, 1, false).AddItem(quit, 8, 0, false)
	return bar
}

var menuKeys = map[tcell.Key]controller.Action{
	tcell.KeyF1: controller.ActionHome,
	tcell.KeyF2: controller.ActionTextToVoice,
	tcell.KeyF3: controller.ActionVoiceToText,
}

func (u *UI) globalKeys(event *tcell.EventKey) *tcell.EventKey {
	if action, ok := menuKeys[event.Key()]; ok {
		u.handleAction(action)
		return nil
	}
	if event.Key() == tcell.KeyCtrlD {
		u.toggleDebugConsole()
		return nil
	}
	return event
}

func (u *UI) handleAction(a controller.Action) {
	// controller calls notify observers, which queue draws; keep them off the
	// event loop
	go u.ctrl.HandleAction(a)
}

// StateChanged implements controller.Observer.
func (u *UI) StateChanged(s controller.State) {
	u.app.QueueUpdateDraw(func() {
		u.render(s)
	})
}

func (u *UI) render(s controller.State) {
	u.prompt.SetText(s.Prompt)
	u.sentiment.SetText(formatSentiment(s.Sentiment))

	name := screens[s.Mode]
	if front, _ := u.screenPages.GetFrontPage(); front != name {
		u.screenPages.SwitchToPage(name)
		u.status.SetText("")
		u.focusScreen(s.Mode)
	}
}

func (u *UI) focusScreen(m controller.Mode) {
	if u.pages.HasPage(pageDialog) || u.pages.HasPage(pagePicker) {
		return
	}
	switch m {
	case controller.TextToVoice:
		u.app.SetFocus(u.textInput)
	case controller.VoiceToText:
		u.app.SetFocus(u.uploadBtn)
	default:
		u.app.SetFocus(u.screenPages)
	}
}

func (u *UI) submitText() {
	text := u.textInput.GetText()
	u.runConversion(func(ctx context.Context) controller.Outcome {
		return u.ctrl.SubmitText(ctx, text)
	})
}

func (u *UI) pickFile() {
	u.showPicker(func(path string) {
		if path == "" {
			// a cancelled pick is a no-op for the controller
			u.ctrl.SubmitFile(context.Background(), path)
			u.log.Info("File selection cancelled")
			return
		}
		u.runConversion(func(ctx context.Context) controller.Outcome {
			return u.ctrl.SubmitFile(ctx, path)
		})
	})
}

// runConversion disables input while the controller works on a separate
// goroutine, then shows the outcome.
func (u *UI) runConversion(fn func(ctx context.Context) controller.Outcome) {
	u.setBusy(true)
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), u.timeout)
		defer cancel()

		out := fn(ctx)
		u.app.QueueUpdateDraw(func() {
			u.setBusy(false)
			if out != nil {
				u.showOutcome(out)
			}
		})
	}()
}

func (u *UI) setBusy(busy bool) {
	u.textInput.SetDisabled(busy)
	u.convertBtn.SetDisabled(busy)
	u.uploadBtn.SetDisabled(busy)
	if busy {
		u.status.SetText("[yellow]Converting...[-]")
	} else {
		u.status.SetText("")
	}
}

func (u *UI) toggleDebugConsole() {
	u.dev = !u.dev
	if u.dev {
		u.mainFlex.AddItem(u.debugConsole, 0, 1, false)
	} else {
		u.mainFlex.RemoveItem(u.debugConsole)
	}
}

// Run blocks until the application is stopped.
func (u *UI) Run() error {
	return u.app.Run()
}

func (u *UI) Stop() {
	u.log.Info("Shutting down")
	u.app.Stop()
}
