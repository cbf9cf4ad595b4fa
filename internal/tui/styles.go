package tui

import (
	"charm.land/lipgloss/v2"
)

// Color palette, Catppuccin Mocha inspired. Backgrounds run darkest
// (crust) to lightest (surface overlays); text runs muted subtext to
// bright rosewater. Accents carry semantic meaning: primary for focus,
// error for validation failures, success for accepted values.
var (
	// Base layer (backgrounds)
	colorBase     = lipgloss.Color("#1e1e2e") // Main application background
	colorMantle   = lipgloss.Color("#181825") // Header/footer background
	colorCrust    = lipgloss.Color("#11111b") // Deepest background
	colorSurface0 = lipgloss.Color("#313244") // Surface overlay (light)
	colorSurface1 = lipgloss.Color("#45475a") // Surface overlay (medium)
	colorSurface2 = lipgloss.Color("#585b70") // Surface overlay (dark)
	colorOverlay0 = lipgloss.Color("#6c7086") // Muted elements

	// Text layer
	colorSubtext0   = lipgloss.Color("#a6adc8") // Muted text (hints, timestamps)
	colorSubtext1   = lipgloss.Color("#bac2de") // Secondary text
	colorText       = lipgloss.Color("#cdd6f4") // Primary text
	colorTextBright = lipgloss.Color("#f5e0dc") // Emphasized text (rosewater)

	// Accents
	colorPrimary   = lipgloss.Color("#cba6f7") // Mauve (focus, brand)
	colorSecondary = lipgloss.Color("#89b4fa") // Blue (interactive)
	colorTertiary  = lipgloss.Color("#b4befe") // Lavender (subtle highlight)

	// Semantic
	colorSuccess = lipgloss.Color("#a6e3a1") // Green
	colorWarning = lipgloss.Color("#f9e2af") // Yellow
	colorError   = lipgloss.Color("#f38ba8") // Red
	colorInfo    = lipgloss.Color("#89dceb") // Sky

	colorPeach = lipgloss.Color("#fab387") // Warm accent (form fields)
)

// Style definitions
var (
	// Header/footer chrome
	styleHeader = lipgloss.NewStyle().
			Foreground(colorTextBright).
			Background(colorMantle).
			Bold(true).
			Padding(0, 1)

	styleHeaderTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleHeaderInfo = lipgloss.NewStyle().
			Foreground(colorText)

	styleFooter = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorMantle).
			Padding(0, 1)

	styleFooterKey = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleFooterLabel = lipgloss.NewStyle().
				Foreground(colorText)

	// Chat message styles
	styleRoleUser = lipgloss.NewStyle().
			Foreground(colorSecondary).
			Bold(true)

	styleRoleAssistant = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleRoleSystem = lipgloss.NewStyle().
			Foreground(colorWarning).
			Bold(true)

	styleMessageTime = lipgloss.NewStyle().
				Foreground(colorSubtext0)

	styleMessageBody = lipgloss.NewStyle().
				Foreground(colorText).
				PaddingLeft(2)

	// Fenced code blocks in chat messages
	styleCodeBlock = lipgloss.NewStyle().
			Foreground(colorText).
			Background(colorSurface0).
			PaddingLeft(2)

	styleFormRecord = lipgloss.NewStyle().
			Border(lipgloss.ThickBorder(), false, false, false, true).
			BorderForeground(colorSuccess).
			PaddingLeft(1).
			Foreground(colorText)

	// Input line
	styleInputPrompt = lipgloss.NewStyle().
				Foreground(colorSecondary).
				Bold(true)

	styleInputField = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(colorSecondary).
			Padding(0, 1).
			Foreground(colorText)

	// Completion dropdown
	styleDropdown = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorSurface2).
			Background(colorSurface0)

	styleDropdownItem = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface0).
				Padding(0, 1)

	styleDropdownSelected = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(colorPrimary).
				Bold(true).
				Padding(0, 1)

	styleDropdownKind = lipgloss.NewStyle().
				Foreground(colorSubtext0).
				Background(colorSurface0)

	// Form dialog
	styleFormContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 2).
				Background(colorBase)

	styleFormTitle = lipgloss.NewStyle().
			Foreground(colorPrimary).
			Bold(true)

	styleFormProgress = lipgloss.NewStyle().
				Foreground(colorSubtext0)

	styleFormLabel = lipgloss.NewStyle().
			Foreground(colorPeach).
			Bold(true)

	styleFormDescription = lipgloss.NewStyle().
				Foreground(colorSubtext1)

	styleFormRequired = lipgloss.NewStyle().
				Foreground(colorError).
				Bold(true)

	styleFormOption = lipgloss.NewStyle().
			Foreground(colorText).
			PaddingLeft(2)

	styleFormOptionSelected = lipgloss.NewStyle().
				Foreground(colorTextBright).
				Background(colorPrimary).
				Bold(true).
				PaddingLeft(2)

	styleFormError = lipgloss.NewStyle().
			Foreground(colorError)

	styleFormHint = lipgloss.NewStyle().
			Foreground(colorOverlay0)

	// Confirm dialog
	styleDialogTitle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	styleDialogBody = lipgloss.NewStyle().
			Foreground(colorText)

	styleDialogButton = lipgloss.NewStyle().
				Foreground(colorText).
				Background(colorSurface1).
				Padding(0, 2)

	styleDialogButtonFocused = lipgloss.NewStyle().
					Foreground(colorCrust).
					Background(colorPrimary).
					Bold(true).
					Padding(0, 2)

	styleDialogContainer = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Padding(1, 3).
				Background(colorBase)

	// Diff preview lines
	styleDiffAdd = lipgloss.NewStyle().
			Foreground(colorSuccess)

	styleDiffDel = lipgloss.NewStyle().
			Foreground(colorError)

	styleDiffCtx = lipgloss.NewStyle().
			Foreground(colorSubtext0)

	// Empty state
	styleEmptyState = lipgloss.NewStyle().
			Foreground(colorSubtext0).
			Italic(true).
			Align(lipgloss.Center)
)
