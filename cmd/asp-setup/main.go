package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const defaultServerURL = "http://localhost:3000"

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginBottom(1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("170")).
			Bold(true).
			PaddingLeft(2)

	normalStyle = lipgloss.NewStyle().
			PaddingLeft(4)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")).
			Bold(true)

	successStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42")).
			Bold(true)

	inputStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86"))

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true)
)

type step int

const (
	stepChoosingMode step = iota
	stepEnteringFullName
	stepEnteringEmail
	stepEnteringUsername
	stepEnteringPassword
	stepAuthenticating
	stepEnteringRoomTitle
	stepCreatingRoom
	stepEnteringDeviceName
	stepCreatingDevice
	stepTogglingDevice
	stepComplete
)

type model struct {
	step         step
	serverURL    string
	register     bool
	cursor       int
	fullName     string
	email        string
	username     string
	password     string
	userID       string
	authToken    string
	roomTitle    string
	roomID       string
	deviceName   string
	aspID        string
	currentInput string
	message      string
	quitting     bool
}

type authSuccessMsg struct {
	userID string
	token  string
}
type roomCreatedMsg struct{ roomID string }
type deviceCreatedMsg struct{ aspID string }
type toggleSuccessMsg struct{ state string }
type errMsg struct{ err error }

func (e errMsg) Error() string { return e.err.Error() }

func initialModel() model {
	url := os.Getenv("ASP_SERVER_URL")
	if url == "" {
		url = defaultServerURL
	}
	return model{
		step:      stepChoosingMode,
		serverURL: strings.TrimRight(url, "/"),
	}
}

func (m model) Init() tea.Cmd {
	return nil
}

func postJSON(client *http.Client, url, token string, payload any, out *map[string]interface{}) error {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequest("POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	var result map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		if msg, ok := result["error"].(string); ok && msg != "" {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("server returned %d", resp.StatusCode)
	}
	if out != nil {
		*out = result
	}
	return nil
}

func authenticate(m model) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		if m.register {
			payload := map[string]string{
				"fullname": m.fullName,
				"email":    m.email,
				"username": m.username,
				"password": m.password,
			}
			if err := postJSON(client, m.serverURL+"/auth/register", "", payload, nil); err != nil {
				return errMsg{fmt.Errorf("registration failed: %w", err)}
			}
		}

		var result map[string]interface{}
		payload := map[string]string{"username": m.username, "password": m.password}
		if err := postJSON(client, m.serverURL+"/auth/login", "", payload, &result); err != nil {
			return errMsg{fmt.Errorf("login failed: %w", err)}
		}

		token, _ := result["token"].(string)
		user, _ := result["user"].(map[string]interface{})
		userID, _ := user["id"].(string)
		if token == "" || userID == "" {
			return errMsg{fmt.Errorf("login response missing token or user id")}
		}

		return authSuccessMsg{userID: userID, token: token}
	}
}

func createRoom(m model) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		var result map[string]interface{}
		url := fmt.Sprintf("%s/control/add-room/%s", m.serverURL, m.userID)
		if err := postJSON(client, url, m.authToken, map[string]string{"roomTitle": m.roomTitle}, &result); err != nil {
			return errMsg{fmt.Errorf("failed to create room: %w", err)}
		}

		room, _ := result["room"].(map[string]interface{})
		roomID, _ := room["id"].(string)
		if roomID == "" {
			return errMsg{fmt.Errorf("room response missing id")}
		}
		return roomCreatedMsg{roomID: roomID}
	}
}

func createDevice(m model) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		var result map[string]interface{}
		url := fmt.Sprintf("%s/control/add-asp/%s/%s", m.serverURL, m.userID, m.roomID)
		payload := map[string]string{"deviceName": m.deviceName, "state": "off"}
		if err := postJSON(client, url, m.authToken, payload, &result); err != nil {
			return errMsg{fmt.Errorf("failed to create device: %w", err)}
		}

		asp, _ := result["asp"].(map[string]interface{})
		aspID, _ := asp["id"].(string)
		if aspID == "" {
			return errMsg{fmt.Errorf("device response missing id")}
		}
		return deviceCreatedMsg{aspID: aspID}
	}
}

func toggleDevice(m model) tea.Cmd {
	return func() tea.Msg {
		client := &http.Client{Timeout: 10 * time.Second}

		url := fmt.Sprintf("%s/control/update-asp-state/%s/%s/%s", m.serverURL, m.userID, m.roomID, m.aspID)
		if err := postJSON(client, url, m.authToken, map[string]string{"state": "on"}, nil); err != nil {
			return errMsg{fmt.Errorf("failed to toggle device: %w", err)}
		}
		return toggleSuccessMsg{state: "on"}
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		}

		switch m.step {
		case stepChoosingMode:
			switch msg.String() {
			case "up", "k":
				if m.cursor > 0 {
					m.cursor--
				}
			case "down", "j":
				if m.cursor < 1 {
					m.cursor++
				}
			case "enter":
				m.register = m.cursor == 0
				m.message = ""
				if m.register {
					m.step = stepEnteringFullName
				} else {
					m.step = stepEnteringUsername
				}
			case "q":
				m.quitting = true
				return m, tea.Quit
			}

		case stepEnteringFullName, stepEnteringEmail, stepEnteringUsername,
			stepEnteringPassword, stepEnteringRoomTitle, stepEnteringDeviceName:
			switch msg.String() {
			case "enter":
				return m.submitInput()
			case "backspace":
				if len(m.currentInput) > 0 {
					m.currentInput = m.currentInput[:len(m.currentInput)-1]
				}
			default:
				if len(msg.String()) == 1 {
					m.currentInput += msg.String()
				}
			}
		}

	case authSuccessMsg:
		m.userID = msg.userID
		m.authToken = msg.token
		m.message = ""
		m.step = stepEnteringRoomTitle
		return m, nil

	case roomCreatedMsg:
		m.roomID = msg.roomID
		m.message = ""
		m.step = stepEnteringDeviceName
		return m, nil

	case deviceCreatedMsg:
		m.aspID = msg.aspID
		m.message = ""
		m.step = stepTogglingDevice
		return m, toggleDevice(m)

	case toggleSuccessMsg:
		m.step = stepComplete
		return m, nil

	case errMsg:
		m.message = msg.Error()
		// Fall back to the input step that produced the failure
		switch m.step {
		case stepAuthenticating:
			m.step = stepChoosingMode
		case stepCreatingRoom:
			m.step = stepEnteringRoomTitle
		case stepCreatingDevice, stepTogglingDevice:
			m.step = stepEnteringDeviceName
		}
		return m, nil
	}

	return m, nil
}

func (m model) submitInput() (tea.Model, tea.Cmd) {
	input := strings.TrimSpace(m.currentInput)
	if input == "" {
		return m, nil
	}
	m.currentInput = ""
	m.message = ""

	switch m.step {
	case stepEnteringFullName:
		m.fullName = input
		m.step = stepEnteringEmail
	case stepEnteringEmail:
		m.email = input
		m.step = stepEnteringUsername
	case stepEnteringUsername:
		m.username = input
		m.step = stepEnteringPassword
	case stepEnteringPassword:
		m.password = input
		m.step = stepAuthenticating
		return m, authenticate(m)
	case stepEnteringRoomTitle:
		m.roomTitle = input
		m.step = stepCreatingRoom
		return m, createRoom(m)
	case stepEnteringDeviceName:
		m.deviceName = input
		m.step = stepCreatingDevice
		return m, createDevice(m)
	}
	return m, nil
}

func (m model) View() string {
	if m.quitting {
		return "Bye!\n"
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("ASP Setup — " + m.serverURL))
	b.WriteString("\n")

	if m.message != "" {
		b.WriteString(errorStyle.Render("✗ " + m.message))
		b.WriteString("\n\n")
	}

	switch m.step {
	case stepChoosingMode:
		b.WriteString(promptStyle.Render("How do you want to start?"))
		b.WriteString("\n")
		options := []string{"Create a new account", "Log in to an existing account"}
		for i, opt := range options {
			if i == m.cursor {
				b.WriteString(selectedStyle.Render("> " + opt))
			} else {
				b.WriteString(normalStyle.Render(opt))
			}
			b.WriteString("\n")
		}
		b.WriteString("\n(up/down to move, enter to select, q to quit)\n")

	case stepEnteringFullName:
		b.WriteString(m.prompt("Full name: ", m.currentInput))
	case stepEnteringEmail:
		b.WriteString(m.prompt("Email: ", m.currentInput))
	case stepEnteringUsername:
		b.WriteString(m.prompt("Username: ", m.currentInput))
	case stepEnteringPassword:
		b.WriteString(m.prompt("Password: ", strings.Repeat("*", len(m.currentInput))))
	case stepAuthenticating:
		b.WriteString("Signing in...\n")
	case stepEnteringRoomTitle:
		b.WriteString(m.prompt("Name your first room (e.g. Kitchen): ", m.currentInput))
	case stepCreatingRoom:
		b.WriteString("Creating room...\n")
	case stepEnteringDeviceName:
		b.WriteString(m.prompt("Name your first device (e.g. Lamp): ", m.currentInput))
	case stepCreatingDevice:
		b.WriteString("Creating device...\n")
	case stepTogglingDevice:
		b.WriteString("Toggling device to verify the pipe...\n")
	case stepComplete:
		b.WriteString(successStyle.Render("✓ All set!"))
		b.WriteString("\n\n")
		b.WriteString(fmt.Sprintf("  user: %s\n  room: %s\n  ASP:  %s (state: on)\n", m.userID, m.roomID, m.aspID))
		b.WriteString("\nPoint your ASP hardware at:\n")
		b.WriteString(inputStyle.Render(fmt.Sprintf("  %s/ws?id=%s&token=<your token>", m.serverURL, m.aspID)))
		b.WriteString("\n\nPress ctrl+c to exit.\n")
	}

	return b.String()
}

func (m model) prompt(label, value string) string {
	return promptStyle.Render(label) + inputStyle.Render(value) + "█\n"
}

func main() {
	p := tea.NewProgram(initialModel())
	if _, err := p.Run(); err != nil {
		fmt.Printf("error: %v\n", err)
		os.Exit(1)
	}
}
