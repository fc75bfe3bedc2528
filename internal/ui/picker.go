package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/SyedSaifuddin045/spolist/internal/models"
)

var _ list.Item = trackItem{}

// trackItem wraps [models.Track] to implement [list.Item].
type trackItem struct {
	track models.Track
}

func (i trackItem) FilterValue() string { return i.track.Title }
func (i trackItem) Title() string       { return i.track.Title }
func (i trackItem) Description() string {
	desc := i.track.Artist
	if i.track.Album != "" {
		desc = fmt.Sprintf("%s • %s", desc, i.track.Album)
	}
	return desc
}

// keyMap defines the [key.Binding] mapping for the picker.
type keyMap struct {
	enter key.Binding
	quit  key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		quit:  key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// PickerModel is the bubbletea model listing search results.
type PickerModel struct {
	trackList list.Model
	keys      keyMap
	selected  *models.Track
	width     int
	height    int
}

// NewPicker creates a picker over the given search results.
func NewPicker(query string, tracks []models.Track) PickerModel {
	items := make([]list.Item, 0, len(tracks))
	for _, track := range tracks {
		items = append(items, trackItem{track: track})
	}

	delegate := list.NewDefaultDelegate()
	trackList := list.New(items, delegate, 0, 0)
	trackList.Title = styles.title.Render(fmt.Sprintf("Results for %q", query))
	trackList.SetShowStatusBar(false)

	return PickerModel{
		trackList: trackList,
		keys:      newKeyMap(),
	}
}

func (m PickerModel) Init() tea.Cmd {
	return nil
}

func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.trackList.SetSize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.enter):
			if item, ok := m.trackList.SelectedItem().(trackItem); ok {
				track := item.track
				m.selected = &track
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.trackList, cmd = m.trackList.Update(msg)
	return m, cmd
}

func (m PickerModel) View() string {
	return m.trackList.View() + "\n" + styles.help.Render("enter select • q quit")
}

// Selected returns the picked track, or nil if the user quit.
func (m PickerModel) Selected() *models.Track {
	return m.selected
}

// PickTrack runs the picker and returns the user's selection.
//
// Returns nil without error when the user quits without choosing.
func PickTrack(query string, tracks []models.Track) (*models.Track, error) {
	program := tea.NewProgram(NewPicker(query, tracks), tea.WithAltScreen())

	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("picker failed: %w", err)
	}

	model, ok := final.(PickerModel)
	if !ok {
		return nil, fmt.Errorf("unexpected picker model type")
	}

	return model.Selected(), nil
}
