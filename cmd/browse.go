package cmd

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"wiiware-modder/config"
	"wiiware-modder/db"
	"wiiware-modder/logger"
	"wiiware-modder/registry"
	"wiiware-modder/ui"
)

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse the mod library interactively",
	Long: `Launch an interactive TUI to browse, search and download shared mods.
Pass --as/--password to download under your account; anonymous browsing
records downloads without a user.`,
	Run: func(cmd *cobra.Command, _ []string) {
		identifier, _ := cmd.Flags().GetString("as")
		password, _ := cmd.Flags().GetString("password")
		runBrowse(identifier, password)
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)

	browseCmd.Flags().String("as", "", "Username or email to browse as")
	browseCmd.Flags().String("password", "", "Password for the account")
}

var sortCycle = []string{"upload_date", "title", "download_count", "rating"}

// browseModel represents the state of the browse TUI
type browseModel struct {
	mods          []registry.ModSummary
	details       *registry.ModDetails
	selectedIndex int
	loading       bool
	downloading   bool
	searching     bool
	searchInput   string
	search        string
	commenting    bool
	commentInput  string
	commentRating int // 0 means no rating
	sortIndex     int
	error         string
	message       string
	reg           *registry.Registry
	cfg           config.Config
	user          *db.User
	width         int
	height        int
	spinnerFrame  int
}

// Initialize the model
func (m browseModel) Init() tea.Cmd {
	return tea.Batch(
		m.loadMods(),
		tickBrowseSpinner(),
	)
}

func tickBrowseSpinner() tea.Cmd {
	return tea.Tick(time.Millisecond*100, func(time.Time) tea.Msg {
		return spinnerTickMsg{}
	})
}

// Update handles messages
func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
	case modsLoadedMsg:
		m.mods = msg.mods
		m.loading = false
		if m.selectedIndex >= len(m.mods) {
			m.selectedIndex = 0
		}
	case detailsLoadedMsg:
		m.details = msg.details
		m.loading = false
	case commentAddedMsg:
		// Reload so the new comment and updated rating show immediately.
		return m, m.loadDetails(msg.modID)
	case spinnerTickMsg:
		return m.handleSpinnerTick()
	case errorMsg:
		m.error = string(msg)
		m.loading = false
		m.downloading = false
	case downloadCompleteMsg:
		return m.handleDownloadComplete(msg)
	case clearMessageMsg:
		m.message = ""
	}
	return m, nil
}

func (m *browseModel) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searching {
		return m.handleSearchKey(msg)
	}
	if m.commenting {
		return m.handleCommentKey(msg)
	}

	switch msg.String() {
	case "ctrl+c", "q":
		return m, tea.Quit
	case "esc":
		if m.details != nil {
			m.details = nil
		}
	case "up", "k":
		if m.details == nil && m.selectedIndex > 0 {
			m.selectedIndex--
		}
	case "down", "j":
		if m.details == nil && m.selectedIndex < len(m.mods)-1 {
			m.selectedIndex++
		}
	case "enter":
		if m.details == nil && len(m.mods) > 0 {
			m.loading = true
			return m, tea.Batch(
				m.loadDetails(m.mods[m.selectedIndex].ID),
				tickBrowseSpinner(),
			)
		}
	case "/":
		if m.details == nil {
			m.searching = true
			m.searchInput = m.search
		}
	case "c":
		if m.details != nil {
			if m.user == nil {
				m.message = "Pass --as/--password to comment."
				return m, tea.Tick(3*time.Second, func(time.Time) tea.Msg {
					return clearMessageMsg{}
				})
			}
			m.commenting = true
			m.commentInput = ""
			m.commentRating = 0
		}
	case "s":
		if m.details == nil {
			m.sortIndex = (m.sortIndex + 1) % len(sortCycle)
			m.loading = true
			return m, tea.Batch(m.loadMods(), tickBrowseSpinner())
		}
	case "d":
		if !m.downloading && len(m.mods) > 0 {
			m.downloading = true
			id := m.mods[m.selectedIndex].ID
			if m.details != nil {
				id = m.details.ID
			}
			return m, tea.Batch(m.downloadMod(id), tickBrowseSpinner())
		}
	}
	return m, nil
}

func (m *browseModel) handleSearchKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.searching = false
	case "enter":
		m.searching = false
		m.search = m.searchInput
		m.loading = true
		return m, tea.Batch(m.loadMods(), tickBrowseSpinner())
	case "backspace":
		if len(m.searchInput) > 0 {
			m.searchInput = m.searchInput[:len(m.searchInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.searchInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *browseModel) handleCommentKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.commenting = false
	case "enter":
		if m.commentInput == "" {
			return m, nil
		}
		m.commenting = false
		m.loading = true
		return m, tea.Batch(
			m.submitComment(m.details.ID, m.commentInput, m.commentRating),
			tickBrowseSpinner(),
		)
	case "tab":
		// Cycle through no rating, then 1..5.
		m.commentRating = (m.commentRating + 1) % 6
	case "backspace":
		if len(m.commentInput) > 0 {
			m.commentInput = m.commentInput[:len(m.commentInput)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.commentInput += string(msg.Runes)
		}
	}
	return m, nil
}

func (m *browseModel) handleSpinnerTick() (tea.Model, tea.Cmd) {
	m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
	if m.loading || m.downloading {
		return m, tickBrowseSpinner()
	}
	return m, nil
}

func (m *browseModel) handleDownloadComplete(msg downloadCompleteMsg) (tea.Model, tea.Cmd) {
	m.downloading = false
	m.message = msg.message
	return m, tea.Batch(
		m.loadMods(),
		tea.Tick(3*time.Second, func(time.Time) tea.Msg {
			return clearMessageMsg{}
		}),
	)
}

// View renders the UI
func (m browseModel) View() string {
	if m.loading {
		return m.renderLoadingScreen()
	}

	if m.downloading {
		return m.renderDownloadingScreen()
	}

	if m.error != "" {
		return fmt.Sprintf("Error: %s\n", m.error)
	}

	if m.details != nil {
		return m.renderDetails()
	}

	var output string
	output += renderBrowseHeader()
	output += "\n"

	if len(m.mods) == 0 {
		output += "No mods found. Upload one to get started!\n"
	}

	for i, mod := range m.mods {
		output += m.renderModRow(i, mod)
		output += "\n"
	}

	output += "\n" + renderBrowseFooter(m.search, sortCycle[m.sortIndex])

	if m.searching {
		output += "\n" + ui.Colorize("search: "+m.searchInput+"▌", "11")
	}

	if m.message != "" {
		output += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.message)
	}

	return output
}

var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

func (m browseModel) renderLoadingScreen() string {
	spinner := spinnerFrames[m.spinnerFrame]

	loadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	return loadingStyle.Render(fmt.Sprintf("%s Loading mods...", spinner)) + "\n"
}

func (m browseModel) renderDownloadingScreen() string {
	spinner := spinnerFrames[m.spinnerFrame]
	downloadingStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("12")).
		Bold(true)

	return downloadingStyle.Render(fmt.Sprintf("%s Downloading mod...", spinner)) + "\n"
}

func renderBrowseHeader() string {
	headerStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("12")).
		Padding(0, 1)

	return headerStyle.Render(fmt.Sprintf("%-36s %-16s %-20s %-12s %s",
		"Title", "Author", "Game", "Rating", "Downloads"))
}

func renderBrowseFooter(search, sortBy string) string {
	footerStyle := lipgloss.NewStyle().
		Foreground(lipgloss.Color("8")).
		Italic(true)

	footer := "↑/k: up  ↓/j: down  enter: details  /: search  s: sort  d: download  q: quit"
	footer += fmt.Sprintf("  [sort: %s]", sortBy)
	if search != "" {
		footer += fmt.Sprintf("  [search: %s]", search)
	}
	return footerStyle.Render(footer)
}

func (m browseModel) renderModRow(index int, mod registry.ModSummary) string {
	rowStyle := lipgloss.NewStyle().Padding(0, 1)
	if index == m.selectedIndex {
		rowStyle = rowStyle.
			Background(lipgloss.Color("8")).
			Bold(true)
	}

	row := fmt.Sprintf("%-36s %-16s %-20s %-12s %d",
		truncate(mod.Title, 34),
		truncate(mod.AuthorName, 14),
		truncate(mod.GameCompatibility, 18),
		ui.Stars(mod.Rating, mod.RatingCount),
		mod.DownloadCount,
	)

	return rowStyle.Render(row)
}

func (m browseModel) renderDetails() string {
	d := m.details

	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
	labelStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

	var output string
	output += titleStyle.Render(d.Title) + "\n\n"
	output += fmt.Sprintf("%s %s\n", labelStyle.Render("Author:"), d.AuthorName)
	output += fmt.Sprintf("%s %s\n", labelStyle.Render("Game:"), d.GameCompatibility)
	output += fmt.Sprintf("%s %s\n", labelStyle.Render("Version:"), d.Version)
	output += fmt.Sprintf("%s %s\n", labelStyle.Render("Size:"), ui.FileSize(d.FileSize))
	output += fmt.Sprintf("%s %s\n", labelStyle.Render("Rating:"), ui.Stars(d.Rating, d.RatingCount))
	output += fmt.Sprintf("%s %d\n", labelStyle.Render("Downloads:"), d.DownloadCount)
	if d.Tags != "" {
		output += fmt.Sprintf("%s %s\n", labelStyle.Render("Tags:"), d.Tags)
	}
	if d.Description != "" {
		output += "\n" + d.Description + "\n"
	}

	if len(d.Comments) > 0 {
		output += "\n" + titleStyle.Render("Comments") + "\n"
		for _, c := range d.Comments {
			line := fmt.Sprintf("  %s: %s", c.Username, c.Body)
			if c.Rating != nil {
				line += fmt.Sprintf(" (%d/5)", *c.Rating)
			}
			output += line + "\n"
		}
	}

	output += "\n" + labelStyle.Render("esc: back  d: download  c: comment  q: quit")

	if m.commenting {
		rating := "none"
		if m.commentRating > 0 {
			rating = fmt.Sprintf("%d/5", m.commentRating)
		}
		output += "\n" + ui.Colorize(fmt.Sprintf("comment (tab: rating %s): %s▌", rating, m.commentInput), "11")
	}

	if m.message != "" {
		output += "\n" + lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render(m.message)
	}

	return output
}

func truncate(s string, maxLen int) string {
	if len(s) > maxLen {
		return s[:maxLen-3] + "..."
	}
	return s
}

// Message types
type modsLoadedMsg struct {
	mods []registry.ModSummary
}

type detailsLoadedMsg struct {
	details *registry.ModDetails
}

type errorMsg string

type spinnerTickMsg struct{}

type downloadCompleteMsg struct {
	message string
}

type commentAddedMsg struct {
	modID uint
}

type clearMessageMsg struct{}

// Load listings from the registry
func (m browseModel) loadMods() tea.Cmd {
	return func() tea.Msg {
		mods, err := m.reg.ListMods(registry.ListModsOptions{
			SearchQuery: m.search,
			SortBy:      sortCycle[m.sortIndex],
			Limit:       50,
		})
		if err != nil {
			logger.Log.Errorw("Failed to list mods", zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to list mods: %v", err))
		}
		return modsLoadedMsg{mods: mods}
	}
}

func (m browseModel) loadDetails(modID uint) tea.Cmd {
	return func() tea.Msg {
		details, err := m.reg.GetModDetails(modID)
		if err != nil {
			logger.Log.Errorw("Failed to load mod details", zap.Uint("id", modID), zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to load mod: %v", err))
		}
		return detailsLoadedMsg{details: details}
	}
}

func (m browseModel) submitComment(modID uint, body string, rating int) tea.Cmd {
	return func() tea.Msg {
		var ratingPtr *int
		if rating > 0 {
			ratingPtr = &rating
		}
		if err := m.reg.AddComment(modID, m.user.ID, body, ratingPtr); err != nil {
			logger.Log.Errorw("Failed to add comment", zap.Uint("id", modID), zap.Error(err))
			return errorMsg(fmt.Sprintf("Failed to add comment: %v", err))
		}
		return commentAddedMsg{modID: modID}
	}
}

func (m browseModel) downloadMod(modID uint) tea.Cmd {
	return func() tea.Msg {
		details, err := m.reg.GetModDetails(modID)
		if err != nil {
			return errorMsg(fmt.Sprintf("Download failed: %v", err))
		}

		destPath, err := registry.CopyToDownloads(m.cfg.DownloadsDir, details.FilePath)
		if err != nil {
			logger.Log.Errorw("Failed to copy mod file", zap.Error(err))
			return errorMsg(fmt.Sprintf("Download failed: %v", err))
		}

		var userID *uint
		if m.user != nil {
			userID = &m.user.ID
		}
		if err := m.reg.RecordDownload(modID, userID, "browse"); err != nil {
			logger.Log.Warnw("Failed to record download", zap.Uint("id", modID), zap.Error(err))
		}

		return downloadCompleteMsg{message: fmt.Sprintf("Downloaded %s to %s", details.Title, destPath)}
	}
}

func runBrowse(identifier, password string) {
	cfg, reg := bootstrap(".")

	var user *db.User
	if identifier != "" {
		user = mustAuthenticate(reg, identifier, password)
	}

	m := browseModel{
		selectedIndex: 0,
		loading:       true,
		reg:           reg,
		cfg:           cfg,
		user:          user,
		width:         80,
		height:        24,
	}

	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Log.Fatalw("Failed to run browse UI", zap.Error(err))
	}
}
