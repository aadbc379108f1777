package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/neilberkman/proofa/internal/core/export"
	"github.com/neilberkman/proofa/internal/core/loader"
	"github.com/neilberkman/proofa/internal/core/score"
	"github.com/neilberkman/proofa/internal/core/workspace"
)

// WorkspaceArgs defines arguments for the workspace_status tool
type WorkspaceArgs struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"description=Workspace ID,required"`
}

// TranscriptArgs defines arguments for the workspace_transcript tool
type TranscriptArgs struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"description=Workspace ID,required"`
	Limit       int    `json:"limit,omitempty" jsonschema:"description=Only the last N messages (default: all)"`
	AfterDate   string `json:"after_date,omitempty" jsonschema:"description=Only messages after this date (ISO 8601)"`
}

// SendArgs defines arguments for the workspace_send tool
type SendArgs struct {
	WorkspaceID string `json:"workspace_id" jsonschema:"description=Workspace ID,required"`
	Prompt      string `json:"prompt" jsonschema:"description=Message for the judge,required"`
	Mode        string `json:"mode,omitempty" jsonschema:"description=Interaction mode"`
}

// WorkspaceStatus is the score summary of a workspace
type WorkspaceStatus struct {
	WorkspaceID  string `json:"workspace_id"`
	Name         string `json:"name"`
	Status       string `json:"status"`
	Score        int    `json:"score"`
	Verdict      string `json:"verdict,omitempty"`
	Reason       string `json:"reason,omitempty"`
	Eligible     bool   `json:"eligible"`
	MessageCount int    `json:"message_count"`
	OriginHash   string `json:"origin_hash,omitempty"`
}

// WorkspaceSummary represents a workspace in the list
type WorkspaceSummary struct {
	WorkspaceID string `json:"workspace_id"`
	Name        string `json:"name"`
	Status      string `json:"status"`
	Score       int    `json:"score"`
	UpdatedAt   string `json:"updated_at,omitempty"`
	HasDraft    bool   `json:"has_draft"`
}

// Backend is what the tools need from the server side. *api.Client
// implements it.
type Backend interface {
	workspace.Backend
	workspace.Lister
}

// Options configure the MCP server
type Options struct {
	Backend Backend
	Cache   workspace.Catalog
	Mode    string
	Timeout time.Duration
	Logger  *zap.Logger
}

// NewServer builds the MCP server with its tools registered
func NewServer(opts Options, version string) *server.MCPServer {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Timeout <= 0 {
		opts.Timeout = time.Minute
	}

	s := server.NewMCPServer("Proofa", version)

	listTool := mcp.NewTool("list_workspaces",
		mcp.WithDescription("List the user's authorship workspaces with their status and current score"),
	)
	s.AddTool(listTool, makeListWorkspacesHandler(opts))

	statusTool := mcp.NewTool("workspace_status",
		mcp.WithDescription("Get the current authorship score, verdict and certification eligibility of a workspace"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID")),
	)
	s.AddTool(statusTool, makeWorkspaceStatusHandler(opts))

	transcriptTool := mcp.NewTool("workspace_transcript",
		mcp.WithDescription("Retrieve the conversation between the user and the authorship judge, oldest first"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID")),
		mcp.WithNumber("limit",
			mcp.Description("Only the last N messages (default: all)")),
		mcp.WithString("after_date",
			mcp.Description("Only messages after this date (ISO 8601 format, e.g. '2025-01-01' or '2025-01-08T10:00:00Z')")),
	)
	s.AddTool(transcriptTool, makeWorkspaceTranscriptHandler(opts))

	sendTool := mcp.NewTool("workspace_send",
		mcp.WithDescription("Send a prompt to the authorship judge of a workspace and return its reply and the new score"),
		mcp.WithString("workspace_id",
			mcp.Required(),
			mcp.Description("Workspace ID")),
		mcp.WithString("prompt",
			mcp.Required(),
			mcp.Description("Message for the judge")),
		mcp.WithString("mode",
			mcp.Description("Interaction mode: chat, art, video, music or voice (default: chat)")),
	)
	s.AddTool(sendTool, makeWorkspaceSendHandler(opts))

	return s
}

// StartServer serves the tools over stdio until stdin closes
func StartServer(opts Options, version string) error {
	return server.ServeStdio(NewServer(opts, version))
}

type toolHandler = func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error)

func decodeArgs(request mcp.CallToolRequest, v any) error {
	argsBytes, _ := json.Marshal(request.Params.Arguments)
	return json.Unmarshal(argsBytes, v)
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	resultJSON, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to marshal result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(resultJSON)), nil
}

func makeListWorkspacesHandler(opts Options) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()

		rows, err := workspace.Refresh(ctx, opts.Backend, opts.Cache)
		if err != nil && rows == nil {
			return mcp.NewToolResultError(fmt.Sprintf("failed to list workspaces: %v", err)), nil
		}
		if err != nil {
			opts.Logger.Warn("serving cached workspace list", zap.Error(err))
		}

		workspaces := []WorkspaceSummary{}
		for _, w := range rows {
			summary := WorkspaceSummary{
				WorkspaceID: w.ID,
				Name:        w.Name,
				Status:      string(w.Status),
				Score:       w.CurrentScore,
				HasDraft:    w.HasDraft,
			}
			if !w.UpdatedAt.IsZero() {
				summary.UpdatedAt = w.UpdatedAt.Format(time.RFC3339)
			}
			workspaces = append(workspaces, summary)
		}

		return jsonResult(map[string]interface{}{
			"workspaces": workspaces,
		})
	}
}

func makeWorkspaceStatusHandler(opts Options) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args WorkspaceArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.WorkspaceID == "" {
			return mcp.NewToolResultError("workspace_id is required"), nil
		}

		transcript, err := loadTranscript(ctx, opts, args.WorkspaceID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		return jsonResult(WorkspaceStatus{
			WorkspaceID:  transcript.ID,
			Name:         transcript.Name,
			Status:       string(transcript.Status),
			Score:        transcript.Score,
			Verdict:      transcript.Verdict,
			Reason:       transcript.Reason,
			Eligible:     transcript.Eligible,
			MessageCount: len(transcript.Messages),
			OriginHash:   transcript.OriginHash,
		})
	}
}

func makeWorkspaceTranscriptHandler(opts Options) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args TranscriptArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.WorkspaceID == "" {
			return mcp.NewToolResultError("workspace_id is required"), nil
		}

		var after time.Time
		if args.AfterDate != "" {
			t, err := parseISODate(args.AfterDate)
			if err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
			after = t
		}

		transcript, err := loadTranscript(ctx, opts, args.WorkspaceID)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		transcript.Messages = export.Since(transcript.Messages, after)
		if args.Limit > 0 && len(transcript.Messages) > args.Limit {
			transcript.Messages = transcript.Messages[len(transcript.Messages)-args.Limit:]
		}
		return jsonResult(transcript)
	}
}

func makeWorkspaceSendHandler(opts Options) toolHandler {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args SendArgs
		if err := decodeArgs(request, &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		if args.WorkspaceID == "" || args.Prompt == "" {
			return mcp.NewToolResultError("workspace_id and prompt are required"), nil
		}

		mode := opts.Mode
		if args.Mode != "" {
			mode = args.Mode
		}
		w := workspace.New(args.WorkspaceID, workspace.Options{
			Backend: opts.Backend,
			Mode:    mode,
			Logger:  opts.Logger,
		})
		defer w.Close()

		loadCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
		if err := w.Open(loadCtx); err != nil {
			// The judge can still take the prompt without the history
			opts.Logger.Warn("workspace history unavailable", zap.Error(err))
		}

		reply, err := w.SendText(ctx, args.Prompt)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("send failed: %v", err)), nil
		}

		snap := w.Score()
		result := map[string]interface{}{
			"score":    snap.Score,
			"verdict":  snap.Verdict,
			"reason":   snap.Reason,
			"eligible": snap.Eligible,
		}
		if reply != nil {
			result["reply"] = export.Body(*reply)
		}
		return jsonResult(result)
	}
}

func loadTranscript(ctx context.Context, opts Options, id string) (*export.Transcript, error) {
	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	res, err := loader.New(opts.Backend, opts.Logger).Load(ctx, id)
	if err != nil {
		return nil, err
	}
	snap, _ := score.NewAggregator(res.Session.CurrentScore).Recompute(res.History)
	return export.NewTranscript(res.Session, snap, res.History), nil
}

func parseISODate(s string) (time.Time, error) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q: use ISO 8601", s)
}
