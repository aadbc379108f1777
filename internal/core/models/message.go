package models

import (
	"time"

	"github.com/neilberkman/proofa/pkg/judgewire"
)

// Role is who authored a message
type Role string

const (
	RoleUser      Role = judgewire.RoleUser
	RoleAssistant Role = judgewire.RoleAssistant
)

// Origin records which source produced a timeline entry
type Origin string

const (
	OriginHistory    Origin = "history"
	OriginPush       Origin = "push"
	OriginOptimistic Origin = "optimistic"
	OriginReply      Origin = "reply"
)

// Message is one entry of a workspace transcript. Messages are never edited
// after creation; the only exception is the analysis backfill done by
// ResolvedAnalysis.
type Message struct {
	ID         string                `json:"id" yaml:"id"`
	Role       Role                  `json:"role" yaml:"role"`
	Content    string                `json:"content" yaml:"content"`
	Attachment *judgewire.Attachment `json:"attachment,omitempty" yaml:"attachment,omitempty"`
	Analysis   *judgewire.Analysis   `json:"analysis,omitempty" yaml:"analysis,omitempty"`
	Origin     Origin                `json:"origin" yaml:"origin"`
	CreatedAt  time.Time             `json:"created_at" yaml:"created_at"`
}

// ResolvedAnalysis returns the message's analysis, parsing it out of the
// content on first use when the backend only embedded it there.
func (m *Message) ResolvedAnalysis() (judgewire.Analysis, bool) {
	if m.Role != RoleAssistant {
		return judgewire.Analysis{}, false
	}
	if m.Analysis != nil && m.Analysis.Usable() {
		return *m.Analysis, true
	}
	a, ok := judgewire.TryParseAnalysis(m.Content)
	if !ok {
		return judgewire.Analysis{}, false
	}
	m.Analysis = &a
	return a, true
}

// FromRecord converts a parsed history record into a Message.
func FromRecord(rec judgewire.Record) Message {
	return Message{
		ID:         rec.ID,
		Role:       Role(rec.Role),
		Content:    rec.Content,
		Attachment: rec.Attachment,
		Analysis:   rec.Analysis,
		Origin:     OriginHistory,
		CreatedAt:  rec.CreatedAt,
	}
}
