package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"time"

	"github.com/neilberkman/proofa/internal/core/models"
	"github.com/neilberkman/proofa/pkg/judgewire"
)

// workspaceWire is the backend's workspace object. Older deployments call the
// origin hash birth_hash.
type workspaceWire struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	SeedContent  string   `json:"seed_content"`
	Status       string   `json:"status"`
	CurrentScore *float64 `json:"current_score"`
	OriginHash   string   `json:"origin_hash"`
	BirthHash    string   `json:"birth_hash"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func (w workspaceWire) toSession(fallbackID string) models.Session {
	s := models.Session{
		ID:          w.ID,
		Name:        w.Name,
		Status:      models.ParseStatus(w.Status),
		OriginHash:  w.OriginHash,
		SeedContent: w.SeedContent,
		CreatedAt:   parseTime(w.CreatedAt),
		UpdatedAt:   parseTime(w.UpdatedAt),
	}
	if s.ID == "" {
		s.ID = fallbackID
	}
	if s.OriginHash == "" {
		s.OriginHash = w.BirthHash
	}
	// current_score is already a percentage.
	if w.CurrentScore != nil {
		s.CurrentScore = int(math.Max(0, math.Min(100, math.Round(*w.CurrentScore))))
	}
	return s
}

func parseTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func workspacePath(id string, rest ...string) string {
	p := "/workspaces/" + url.PathEscape(id)
	for _, r := range rest {
		p += "/" + r
	}
	return p
}

// GetSession fetches workspace metadata.
func (c *Client) GetSession(ctx context.Context, id string) (models.Session, error) {
	data, err := c.getJSON(ctx, "get workspace", workspacePath(id))
	if err != nil {
		return models.Session{}, err
	}
	var w workspaceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Session{}, &Error{Op: "get workspace", Err: fmt.Errorf("failed to decode workspace: %w", err)}
	}
	return w.toSession(id), nil
}

// ListWorkspaces returns the caller's workspaces.
func (c *Client) ListWorkspaces(ctx context.Context) ([]models.Session, error) {
	data, err := c.getJSON(ctx, "list workspaces", "/workspaces")
	if err != nil {
		return nil, err
	}
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	var ws []workspaceWire
	if err := json.Unmarshal(data, &ws); err != nil {
		return nil, &Error{Op: "list workspaces", Err: fmt.Errorf("failed to decode workspaces: %w", err)}
	}
	sessions := make([]models.Session, 0, len(ws))
	for _, w := range ws {
		sessions = append(sessions, w.toSession(""))
	}
	return sessions, nil
}

// CreateRequest is the body of a workspace creation call. The oath flag
// records that the user affirmed the seed is their own work.
type CreateRequest struct {
	Name        string `json:"name"`
	SeedContent string `json:"seed_content"`
	OathSigned  bool   `json:"oath_signed"`
}

// CreateWorkspace starts a new workspace.
func (c *Client) CreateWorkspace(ctx context.Context, req CreateRequest) (models.Session, error) {
	data, err := c.postJSON(ctx, "create workspace", "/workspaces", req)
	if err != nil {
		return models.Session{}, err
	}
	var w workspaceWire
	if err := json.Unmarshal(data, &w); err != nil {
		return models.Session{}, &Error{Op: "create workspace", Err: fmt.Errorf("failed to decode workspace: %w", err)}
	}
	s := w.toSession("")
	if s.Name == "" {
		s.Name = req.Name
	}
	return s, nil
}

// CertifyResult is what a certification call returns. Status is empty when
// the backend did not say.
type CertifyResult struct {
	Status  models.Status
	Message string
	Data    json.RawMessage
}

// Certify asks the backend to certify the workspace.
func (c *Client) Certify(ctx context.Context, id string) (CertifyResult, error) {
	data, err := c.postJSON(ctx, "certify workspace", workspacePath(id, "certify"), nil)
	if err != nil {
		return CertifyResult{}, err
	}
	res := CertifyResult{Status: models.StatusCertified, Data: data}
	var fields struct {
		Status  string `json:"status"`
		Message string `json:"message"`
	}
	if json.Unmarshal(data, &fields) == nil {
		if fields.Status != "" {
			res.Status = models.ParseStatus(fields.Status)
		}
		res.Message = fields.Message
	}
	return res, nil
}

// GetHistory fetches the transcript records, newest first as sent.
func (c *Client) GetHistory(ctx context.Context, id string) ([]judgewire.Record, error) {
	data, err := c.getJSON(ctx, "get history", workspacePath(id, "history"))
	if err != nil {
		return nil, err
	}
	records, err := judgewire.ParseHistory(data)
	if err != nil {
		return nil, &Error{Op: "get history", Err: err}
	}
	return records, nil
}

// InteractRequest is one user turn.
type InteractRequest struct {
	Prompt    string   `json:"prompt"`
	Mode      string   `json:"mode"`
	UploadIDs []string `json:"upload_id,omitempty"`
}

// Interact sends a user turn and returns the judge's reply.
func (c *Client) Interact(ctx context.Context, id string, req InteractRequest) (judgewire.InteractResult, error) {
	data, err := c.postJSON(ctx, "interact", workspacePath(id, "interact"), req)
	if err != nil {
		return judgewire.InteractResult{}, err
	}
	res, err := judgewire.ParseInteract(data)
	if err != nil {
		return judgewire.InteractResult{}, &Error{Op: "interact", Err: err}
	}
	return res, nil
}
