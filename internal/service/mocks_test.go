package service

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/soba-dev/soba/internal/config"
	"github.com/soba-dev/soba/internal/domain"
)

// mockTmuxClient mocks tmux.TmuxClient for tests that don't care about the
// pane/window bookkeeping exercised separately in the tmux package itself.
type mockTmuxClient struct {
	mock.Mock
}

func (m *mockTmuxClient) CreateSession(sessionName string) error {
	args := m.Called(sessionName)
	return args.Error(0)
}

func (m *mockTmuxClient) DeleteSession(sessionName string) error {
	args := m.Called(sessionName)
	return args.Error(0)
}

func (m *mockTmuxClient) KillSession(sessionName string) error {
	args := m.Called(sessionName)
	return args.Error(0)
}

func (m *mockTmuxClient) SessionExists(sessionName string) bool {
	args := m.Called(sessionName)
	return args.Bool(0)
}

func (m *mockTmuxClient) ListSessions() ([]string, error) {
	args := m.Called()
	sessions, _ := args.Get(0).([]string)
	return sessions, args.Error(1)
}

func (m *mockTmuxClient) CreateWindow(sessionName, windowName string) error {
	args := m.Called(sessionName, windowName)
	return args.Error(0)
}

func (m *mockTmuxClient) DeleteWindow(sessionName, windowName string) error {
	args := m.Called(sessionName, windowName)
	return args.Error(0)
}

func (m *mockTmuxClient) WindowExists(sessionName, windowName string) (bool, error) {
	args := m.Called(sessionName, windowName)
	return args.Bool(0), args.Error(1)
}

func (m *mockTmuxClient) CreatePane(sessionName, windowName string) error {
	args := m.Called(sessionName, windowName)
	return args.Error(0)
}

func (m *mockTmuxClient) DeletePane(sessionName, windowName string, paneIndex int) error {
	args := m.Called(sessionName, windowName, paneIndex)
	return args.Error(0)
}

func (m *mockTmuxClient) GetPaneCount(sessionName, windowName string) (int, error) {
	args := m.Called(sessionName, windowName)
	return args.Int(0), args.Error(1)
}

func (m *mockTmuxClient) GetFirstPaneIndex(sessionName, windowName string) (int, error) {
	args := m.Called(sessionName, windowName)
	return args.Int(0), args.Error(1)
}

func (m *mockTmuxClient) GetLastPaneIndex(sessionName, windowName string) (int, error) {
	args := m.Called(sessionName, windowName)
	return args.Int(0), args.Error(1)
}

func (m *mockTmuxClient) ResizePanes(sessionName, windowName string) error {
	args := m.Called(sessionName, windowName)
	return args.Error(0)
}

func (m *mockTmuxClient) SendCommand(sessionName, windowName string, paneIndex int, command string) error {
	args := m.Called(sessionName, windowName, paneIndex, command)
	return args.Error(0)
}

func (m *mockTmuxClient) PipePane(sessionName, windowName string, paneIndex int, logPath string) error {
	args := m.Called(sessionName, windowName, paneIndex, logPath)
	return args.Error(0)
}

// mockExecutor mocks Executor for scheduler tests, which only care whether
// Execute was invoked for the right Issue/phase and what it returned.
type mockExecutor struct {
	mock.Mock
}

func (m *mockExecutor) Execute(ctx context.Context, cfg *config.Config, issueNumber int, phase domain.Phase) error {
	args := m.Called(ctx, cfg, issueNumber, phase)
	return args.Error(0)
}

// mockGitWorkspaceManager mocks GitWorkspaceManager for executor tests.
type mockGitWorkspaceManager struct {
	mock.Mock
}

func (m *mockGitWorkspaceManager) PrepareWorkspace(issueNumber int) error {
	args := m.Called(issueNumber)
	return args.Error(0)
}

func (m *mockGitWorkspaceManager) CleanupWorkspace(issueNumber int) error {
	args := m.Called(issueNumber)
	return args.Error(0)
}
