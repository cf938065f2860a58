package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"upsend/internal/db"
	"upsend/internal/model"
)

type undoAction struct {
	label string
	undo  func() error
	redo  func() error
}

type undoAppliedMsg struct {
	err       error
	action    undoAction
	direction string // undo, redo
}

func (m *Model) pushUndoAction(action undoAction) {
	m.undoStack = append(m.undoStack, action)
	m.redoStack = nil
}

func (m *Model) undoCmd() tea.Cmd {
	if len(m.undoStack) == 0 {
		return nil
	}
	action := m.undoStack[len(m.undoStack)-1]
	m.undoStack = m.undoStack[:len(m.undoStack)-1]
	return func() tea.Msg {
		return undoAppliedMsg{err: action.undo(), action: action, direction: "undo"}
	}
}

func (m *Model) redoCmd() tea.Cmd {
	if len(m.redoStack) == 0 {
		return nil
	}
	action := m.redoStack[len(m.redoStack)-1]
	m.redoStack = m.redoStack[:len(m.redoStack)-1]
	return func() tea.Msg {
		return undoAppliedMsg{err: action.redo(), action: action, direction: "redo"}
	}
}

func (m *Model) buildDraftSavedAction(msg model.CampaignSavedMsg) undoAction {
	saved := msg.Campaign
	return undoAction{
		label: fmt.Sprintf("draft %q saved", saved.Subject),
		undo: func() error {
			_, _, err := db.DeleteCampaign(m.db, saved.ID)
			return err
		},
		redo: func() error {
			return db.RestoreCampaign(m.db, saved, nil)
		},
	}
}

func (m *Model) buildDeleteCampaignAction(msg model.DeleteCampaignMsg) undoAction {
	deleted := msg.Deleted
	logs := append([]model.EmailLog(nil), msg.Logs...)
	return undoAction{
		label: fmt.Sprintf("campaign %q deleted", deleted.Subject),
		undo: func() error {
			return db.RestoreCampaign(m.db, deleted, logs)
		},
		redo: func() error {
			_, _, err := db.DeleteCampaign(m.db, deleted.ID)
			return err
		},
	}
}

func (m *Model) applyUndoResult(msg undoAppliedMsg) tea.Cmd {
	if msg.err != nil {
		// The action stays where it was so it can be retried.
		if msg.direction == "undo" {
			m.undoStack = append(m.undoStack, msg.action)
		} else {
			m.redoStack = append(m.redoStack, msg.action)
		}
		m.logger.Error("undo stack action failed", "direction", msg.direction, "action", msg.action.label, "err", msg.err)
		return m.setError(fmt.Sprintf("%s failed: %v", msg.direction, msg.err))
	}

	var text string
	if msg.direction == "undo" {
		m.redoStack = append(m.redoStack, msg.action)
		text = "Undid: " + msg.action.label
	} else {
		m.undoStack = append(m.undoStack, msg.action)
		text = "Redid: " + msg.action.label
	}
	if m.screen == model.ScreenCampaignDetail || m.screen == model.ScreenPreview {
		m.screen = model.ScreenCampaigns
		m.detail = nil
		m.preview = nil
	}
	return tea.Batch(m.setError(""), m.setInfo(text), m.reloadCmd())
}
