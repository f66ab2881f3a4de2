// Package mcpserver exposes the call script, the draft note, call history
// and the coach as MCP tools over stdio.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
)

const (
	serverName     = "teleflow"
	defaultHistory = 20
)

// Store is the slice of the record store the tools read and write.
type Store interface {
	DraftNote(ctx context.Context) (string, error)
	SaveDraftNote(ctx context.Context, content string) error
	CallHistory(ctx context.Context, limit int) ([]db.CallRecord, error)
}

// Server holds the tool handlers.
type Server struct {
	catalog *script.Catalog
	store   Store
	coach   *coach.Service
	lang    script.Locale
	logger  *logging.Logger
}

// New creates a Server. lang is used when a tool call names no language.
func New(catalog *script.Catalog, store Store, svc *coach.Service, lang script.Locale, logger *logging.Logger) *Server {
	return &Server{catalog: catalog, store: store, coach: svc, lang: lang, logger: logger}
}

// MCPServer builds the protocol server with every tool registered.
func (s *Server) MCPServer(version string) *server.MCPServer {
	srv := server.NewMCPServer(serverName, version, server.WithToolCapabilities(false))

	srv.AddTool(mcp.NewTool("list_stages",
		mcp.WithDescription("List the call script stages in order with their time targets"),
		mcp.WithString("lang", mcp.Description("Language: en or vn")),
	), s.listStages)

	srv.AddTool(mcp.NewTool("get_stage",
		mcp.WithDescription("Get one stage of the call script with its talking points"),
		mcp.WithString("id", mcp.Required(), mcp.Description("Stage id")),
		mcp.WithString("lang", mcp.Description("Language: en or vn")),
	), s.getStage)

	srv.AddTool(mcp.NewTool("get_draft_note",
		mcp.WithDescription("Read the current call's draft note"),
	), s.getDraftNote)

	srv.AddTool(mcp.NewTool("save_draft_note",
		mcp.WithDescription("Replace the current call's draft note"),
		mcp.WithString("content", mcp.Required(), mcp.Description("Full note text")),
	), s.saveDraftNote)

	srv.AddTool(mcp.NewTool("list_call_history",
		mcp.WithDescription("List archived calls, newest first"),
		mcp.WithNumber("limit", mcp.Description("Maximum number of calls (default 20)")),
	), s.listCallHistory)

	srv.AddTool(mcp.NewTool("coach_query",
		mcp.WithDescription("Ask the sales coach a question in the context of a stage"),
		mcp.WithString("stage_id", mcp.Required(), mcp.Description("Stage id giving the context")),
		mcp.WithString("question", mcp.Required(), mcp.Description("The question to ask")),
		mcp.WithString("lang", mcp.Description("Language: en or vn")),
	), s.coachQuery)

	return srv
}

// ServeStdio runs the MCP server until stdin closes.
func (s *Server) ServeStdio(version string) error {
	s.logger.Printf("mcp: serving on stdio")
	err := server.ServeStdio(s.MCPServer(version))
	s.logger.Printf("mcp: stopped: %v", err)
	return err
}

type stageSummary struct {
	Index     int    `json:"index"`
	ID        string `json:"id"`
	Title     string `json:"title"`
	TimeLimit string `json:"timeLimit"`
	TargetSec int64  `json:"targetSeconds,omitempty"`
}

type pointView struct {
	ID        string `json:"id"`
	Text      string `json:"text"`
	Checklist bool   `json:"checklist,omitempty"`
}

type stageView struct {
	stageSummary
	Description string      `json:"description,omitempty"`
	Points      []pointView `json:"points"`
}

func summarize(i int, st script.Stage, lang script.Locale) stageSummary {
	sum := stageSummary{Index: i + 1, ID: st.ID, Title: st.Title.Get(lang), TimeLimit: st.TimeLimit}
	if d, ok := st.Target(); ok {
		sum.TargetSec = int64(d.Seconds())
	}
	return sum
}

func (s *Server) locale(req mcp.CallToolRequest) (script.Locale, error) {
	raw := req.GetString("lang", "")
	if raw == "" {
		return s.lang, nil
	}
	return script.ParseLocale(raw)
}

func (s *Server) listStages(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	lang, err := s.locale(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	stages := s.catalog.Stages()
	out := make([]stageSummary, len(stages))
	for i, st := range stages {
		out[i] = summarize(i, st, lang)
	}
	return jsonResult(out)
}

func (s *Server) getStage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lang, err := s.locale(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	i, ok := s.catalog.Index(id)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("stage %q: %v", id, script.ErrNotFound)), nil
	}
	st := s.catalog.At(i)

	view := stageView{
		stageSummary: summarize(i, st, lang),
		Description:  st.Description.Get(lang),
		Points:       make([]pointView, len(st.Points)),
	}
	for j, p := range st.Points {
		view.Points[j] = pointView{ID: p.ID, Text: p.Text.Get(lang), Checklist: p.Checklist}
	}
	return jsonResult(view)
}

func (s *Server) getDraftNote(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	note, err := s.store.DraftNote(ctx)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("read draft note", err), nil
	}
	return mcp.NewToolResultText(note), nil
}

func (s *Server) saveDraftNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	content, err := req.RequireString("content")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.store.SaveDraftNote(ctx, content); err != nil {
		s.logger.Printf("mcp: save draft note: %v", err)
		return mcp.NewToolResultErrorFromErr("save draft note", err), nil
	}
	return mcp.NewToolResultText("saved"), nil
}

func (s *Server) listCallHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	limit := req.GetInt("limit", defaultHistory)
	if limit <= 0 {
		limit = defaultHistory
	}
	records, err := s.store.CallHistory(ctx, limit)
	if err != nil {
		return mcp.NewToolResultErrorFromErr("read call history", err), nil
	}
	if records == nil {
		records = []db.CallRecord{}
	}
	return jsonResult(records)
}

func (s *Server) coachQuery(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	stageID, err := req.RequireString("stage_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	question, err := req.RequireString("question")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lang, err := s.locale(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.catalog.Stage(stageID)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("stage %q: %v", stageID, err)), nil
	}

	reply := s.coach.Query(ctx, st.Context(lang), question, lang)
	switch reply.Status {
	case coach.StatusOK, coach.StatusNoResponse:
		return mcp.NewToolResultText(reply.Message(lang)), nil
	}
	return mcp.NewToolResultError(reply.Message(lang)), nil
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return mcp.NewToolResultText(string(data)), nil
}
