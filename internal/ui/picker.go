package ui

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rivo/tview"
)

// audioExtensions only filters what the picker lists; the controller checks
// the extension again.
var audioExtensions = map[string]bool{
	".mp3": true,
	".wav": true,
}

type pickerEntry struct {
	name  string
	path  string
	isDir bool
}

// listEntries returns the parent directory, subdirectories and audio files of
// dir, directories first, each group sorted by name. Hidden entries are
// skipped.
func listEntries(dir string) ([]pickerEntry, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var dirs, files []pickerEntry
	for _, item := range items {
		name := item.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		path := filepath.Join(dir, name)
		if item.IsDir() {
			dirs = append(dirs, pickerEntry{name: name + "/", path: path, isDir: true})
			continue
		}
		if audioExtensions[strings.ToLower(filepath.Ext(name))] {
			files = append(files, pickerEntry{name: name, path: path})
		}
	}
	sort.Slice(dirs, func(i, j int) bool { return dirs[i].name < dirs[j].name })
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	entries := make([]pickerEntry, 0, len(dirs)+len(files)+1)
	if parent := filepath.Dir(dir); parent != dir {
		entries = append(entries, pickerEntry{name: "../", path: parent, isDir: true})
	}
	entries = append(entries, dirs...)
	return append(entries, files...), nil
}

// showPicker lets the user browse for an audio file. done receives the chosen
// path, or "" when the picker is closed with Escape.
func (u *UI) showPicker(done func(path string)) {
	start, err := os.Getwd()
	if err != nil {
		start = "."
	}
	start, _ = filepath.Abs(start)

	list := tview.NewList().ShowSecondaryText(false)
	list.SetBorder(true)

	finish := func(path string) {
		u.pages.RemovePage(pagePicker)
		u.focusScreen(u.ctrl.State().Mode)
		done(path)
	}

	var open func(dir string)
	open = func(dir string) {
		entries, err := listEntries(dir)
		if err != nil {
			u.log.Error("Failed to list ", dir, ": ", err)
			list.SetTitle(" " + dir + " (unreadable) ")
			return
		}
		list.Clear()
		list.SetTitle(" Audio Files (*.mp3 *.wav) - " + dir + " ")
		for _, e := range entries {
			e := e
			list.AddItem(tview.Escape(e.name), "", 0, func() {
				if e.isDir {
					open(e.path)
					return
				}
				finish(e.path)
			})
		}
	}
	open(start)

	list.SetDoneFunc(func() {
		finish("")
	})

	u.pages.AddPage(pagePicker, createModal(list, 70, 20), true, true)
	u.app.SetFocus(list)
}
