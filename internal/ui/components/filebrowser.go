package components

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/jscyril/movix/internal/audio"
	"github.com/jscyril/movix/internal/subtitle"
)

// FileEntry represents a file or directory in the browser
type FileEntry struct {
	Name     string
	Path     string
	IsDir    bool
	Subtitle bool
	Size     int64
}

// FileBrowser is a component for navigating the filesystem. It lists
// directories, playable media and subtitle files.
type FileBrowser struct {
	Width       int
	Height      int
	CurrentPath string
	Entries     []FileEntry
	Selected    int
	Offset      int
	Err         error

	// Styles
	DirStyle      lipgloss.Style
	FileStyle     lipgloss.Style
	SubtitleStyle lipgloss.Style
	SelectedStyle lipgloss.Style
	PathStyle     lipgloss.Style
	BorderStyle   lipgloss.Style
}

// NewFileBrowser creates a new file browser starting at the given path
func NewFileBrowser(startPath string, width, height int) FileBrowser {
	fb := FileBrowser{
		Width:  width,
		Height: height,
		DirStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("33")).
			Bold(true),
		FileStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("255")),
		SubtitleStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")),
		SelectedStyle: lipgloss.NewStyle().
			Background(lipgloss.Color("62")).
			Foreground(lipgloss.Color("255")).
			Bold(true),
		PathStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")).
			Bold(true),
		BorderStyle: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2),
	}

	if startPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			startPath = string(filepath.Separator)
		} else {
			startPath = home
		}
	}

	fb.Navigate(startPath)
	return fb
}

// Navigate changes to the specified directory
func (fb *FileBrowser) Navigate(path string) {
	fb.CurrentPath = path
	fb.Selected = 0
	fb.Offset = 0
	fb.Err = nil

	entries, err := os.ReadDir(path)
	if err != nil {
		fb.Err = err
		fb.Entries = nil
		return
	}

	fb.Entries = make([]FileEntry, 0, len(entries)+1)

	if parent := filepath.Dir(path); parent != path {
		fb.Entries = append(fb.Entries, FileEntry{
			Name:  "..",
			Path:  parent,
			IsDir: true,
		})
	}

	var dirs, files []FileEntry
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		fullPath := filepath.Join(path, entry.Name())
		if entry.IsDir() {
			dirs = append(dirs, FileEntry{Name: entry.Name(), Path: fullPath, IsDir: true})
			continue
		}

		isSub := subtitle.IsSubtitleFile(entry.Name())
		if !isSub && !audio.IsSupported(entry.Name()) {
			continue
		}

		fe := FileEntry{Name: entry.Name(), Path: fullPath, Subtitle: isSub}
		if info, err := entry.Info(); err == nil {
			fe.Size = info.Size()
		}
		files = append(files, fe)
	}

	byName := func(list []FileEntry) {
		sort.Slice(list, func(i, j int) bool {
			return strings.ToLower(list[i].Name) < strings.ToLower(list[j].Name)
		})
	}
	byName(dirs)
	byName(files)

	fb.Entries = append(fb.Entries, dirs...)
	fb.Entries = append(fb.Entries, files...)
}

// Update handles input messages
func (fb FileBrowser) Update(msg tea.Msg) (FileBrowser, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if fb.Selected > 0 {
				fb.Selected--
				fb.ensureVisible()
			}
		case "down", "j":
			if fb.Selected < len(fb.Entries)-1 {
				fb.Selected++
				fb.ensureVisible()
			}
		case "pgup":
			fb.Selected -= fb.visibleHeight()
			if fb.Selected < 0 {
				fb.Selected = 0
			}
			fb.ensureVisible()
		case "pgdown":
			fb.Selected += fb.visibleHeight()
			if fb.Selected >= len(fb.Entries) {
				fb.Selected = len(fb.Entries) - 1
			}
			fb.ensureVisible()
		case "home":
			fb.Selected = 0
			fb.ensureVisible()
		case "end":
			fb.Selected = len(fb.Entries) - 1
			fb.ensureVisible()
		case "backspace":
			if parent := filepath.Dir(fb.CurrentPath); parent != fb.CurrentPath {
				fb.Navigate(parent)
			}
		case "~":
			if home, err := os.UserHomeDir(); err == nil {
				fb.Navigate(home)
			}
		}
	}
	return fb, nil
}

// SelectedEntry returns the currently selected entry, or nil if none
func (fb *FileBrowser) SelectedEntry() *FileEntry {
	if fb.Selected >= 0 && fb.Selected < len(fb.Entries) {
		return &fb.Entries[fb.Selected]
	}
	return nil
}

// EnterSelected opens the selected directory, or returns the selected
// file's entry
func (fb *FileBrowser) EnterSelected() (FileEntry, bool) {
	entry := fb.SelectedEntry()
	if entry == nil {
		return FileEntry{}, false
	}

	if entry.IsDir {
		fb.Navigate(entry.Path)
		return FileEntry{}, false
	}
	return *entry, true
}

// visibleHeight returns the number of visible items
func (fb *FileBrowser) visibleHeight() int {
	h := fb.Height - 6 // border, path, help
	if h < 1 {
		return 1
	}
	return h
}

// ensureVisible ensures the selected item is visible
func (fb *FileBrowser) ensureVisible() {
	visible := fb.visibleHeight()
	if fb.Selected < fb.Offset {
		fb.Offset = fb.Selected
	} else if fb.Selected >= fb.Offset+visible {
		fb.Offset = fb.Selected - visible + 1
	}
}

// View renders the file browser
func (fb FileBrowser) View() string {
	var sb strings.Builder

	sb.WriteString(fb.PathStyle.Render("📁 " + fb.CurrentPath))
	sb.WriteString("\n\n")

	if fb.Err != nil {
		errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
		sb.WriteString(errorStyle.Render("Error: " + fb.Err.Error()))
		sb.WriteString("\n")
	}

	visible := fb.visibleHeight()
	end := fb.Offset + visible
	if end > len(fb.Entries) {
		end = len(fb.Entries)
	}

	for i := fb.Offset; i < end; i++ {
		entry := fb.Entries[i]

		var line string
		switch {
		case entry.IsDir:
			line = "📂 " + entry.Name
		case entry.Subtitle:
			line = "💬 " + entry.Name
		default:
			line = "🎵 " + entry.Name
		}
		if !entry.IsDir {
			line = Truncate(line, fb.Width-20) + "  " + humanize.Bytes(uint64(entry.Size))
		}
		line = Truncate(line, fb.Width-10)

		switch {
		case i == fb.Selected:
			sb.WriteString(fb.SelectedStyle.Render(line))
		case entry.IsDir:
			sb.WriteString(fb.DirStyle.Render(line))
		case entry.Subtitle:
			sb.WriteString(fb.SubtitleStyle.Render(line))
		default:
			sb.WriteString(fb.FileStyle.Render(line))
		}
		sb.WriteString("\n")
	}

	for i := end - fb.Offset; i < visible; i++ {
		sb.WriteString("\n")
	}

	media, subs := 0, 0
	for _, e := range fb.Entries {
		switch {
		case e.IsDir:
		case e.Subtitle:
			subs++
		default:
			media++
		}
	}
	muted := lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	sb.WriteString(muted.Render(fmt.Sprintf("%s\nMedia: %d  Subtitles: %d", strings.Repeat("─", 20), media, subs)))

	sb.WriteString("\n\n")
	sb.WriteString(muted.Render("[Enter] Open/Add/Load subtitles  [Backspace] Up  [~] Home  [Esc] Cancel"))

	return fb.BorderStyle.Width(fb.Width - 4).Render(sb.String())
}
