package search

import (
	"sitesearch/internal/domain"
	"sitesearch/internal/usecase"
)

// NotificationMsg carries a bus notification into the program.
type NotificationMsg struct {
	Payload domain.NotificationPayload
}

type loadedMsg struct {
	snap usecase.Snapshot
}

type submitDoneMsg struct {
	res usecase.SubmitResult
	err error
}

type historyChangedMsg struct {
	history []domain.SearchHistoryEntry
	err     error
}

type toastTickMsg struct{}
