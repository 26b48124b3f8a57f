package search

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"sitesearch/internal/domain"
)

// Run starts the search surface and blocks until the user quits.
// Notifications published on bus are shown as toasts.
// It returns the URL of the last search that was opened, if any.
func Run(ctx context.Context, svc Service, bus domain.EventBus, opts Options) (string, error) {
	model := New(ctx, svc, opts)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	if bus != nil {
		unsub := bus.SubscribeAll(func(_ context.Context, event domain.Event) {
			if p, ok := domain.DecodeNotification(event); ok {
				program.Send(NotificationMsg{Payload: p})
			}
		})
		defer unsub()
	}

	final, err := program.Run()
	if err != nil {
		return "", fmt.Errorf("run tui: %w", err)
	}
	if m, ok := final.(Model); ok {
		return m.LastURL(), nil
	}
	return "", nil
}
