package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/gnana997/sitespec/pkg/audit"
	"github.com/gnana997/sitespec/pkg/findings"
	"github.com/gnana997/sitespec/pkg/links"
	"github.com/gnana997/sitespec/pkg/resolver"
	"github.com/gnana997/sitespec/pkg/theme"
	"github.com/gnana997/sitespec/pkg/tokens"
)

// jsonResult marshals v as indented JSON tool output.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to encode result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func stringArg(req mcp.CallToolRequest, key string) string {
	if v, ok := req.GetArguments()[key].(string); ok {
		return v
	}
	return ""
}

func boolArg(req mcp.CallToolRequest, key string) bool {
	v, ok := req.GetArguments()[key].(bool)
	return ok && v
}

func (s *Server) handleAuditSite(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	auditor := audit.New(s.site, s.activeTable(), s.source.Legacy(), s.graph, nil)

	if page := stringArg(req, "page"); page != "" {
		if !s.site.Exists(page) {
			return mcp.NewToolResultError(fmt.Sprintf("unknown page: %s", page)), nil
		}
		return jsonResult(findings.NewReport(auditor.AuditPage(page)))
	}
	return jsonResult(auditor.Run())
}

func (s *Server) handleResolvePage(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := stringArg(req, "page")
	if !s.site.Exists(page) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown page: %s", page)), nil
	}
	text, err := s.site.Read(page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	res := resolver.New().Resolve(page, text, s.activeTable(), s.source.Legacy(), resolver.Options{
		ApplyLegacy: boolArg(req, "fix_legacy"),
	})
	applied := false
	if boolArg(req, "apply") && res.Text != text {
		if err := s.site.Write(page, res.Text); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		applied = true
	}

	return jsonResult(map[string]any{
		"page":         page,
		"replacements": res.Replacements,
		"applied":      applied,
		"findings":     res.Findings,
		"text":         res.Text,
	})
}

func (s *Server) handleApplyLinks(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	page := stringArg(req, "page")
	if !s.site.Exists(page) {
		return mcp.NewToolResultError(fmt.Sprintf("unknown page: %s", page)), nil
	}
	text, err := s.site.Read(page)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	out := links.ApplyEdges(text, page, s.graph)
	var fs []findings.Finding

	out, err = applyInsertion(out, page, &fs, func(t string) (string, error) {
		return links.InsertBreadcrumbs(t, page, s.graph)
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	out, err = applyInsertion(out, page, &fs, func(t string) (string, error) {
		return links.InsertBlocks(t, page, s.graph)
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	applied := false
	if boolArg(req, "apply") && out != text {
		if err := s.site.Write(page, out); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		applied = true
	}

	return jsonResult(map[string]any{
		"page":     page,
		"changed":  out != text,
		"applied":  applied,
		"findings": fs,
		"text":     out,
	})
}

// applyInsertion runs one additive step, converting a missing insertion
// point into a finding instead of a failure.
func applyInsertion(text, page string, fs *[]findings.Finding, step func(string) (string, error)) (string, error) {
	out, err := step(text)
	if err != nil {
		var noPoint *links.ErrNoInsertionPoint
		if errors.As(err, &noPoint) {
			*fs = append(*fs, findings.Finding{
				Kind:   findings.KindNoInsertionPoint,
				Page:   page,
				Line:   1,
				Detail: noPoint.Error(),
			})
			return text, nil
		}
		return text, err
	}
	return out, nil
}

func (s *Server) handleListTokens(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, result := s.tableArg(req)
	if result != nil {
		return result, nil
	}
	prefix := stringArg(req, "prefix")

	type tokenInfo struct {
		Name  string `json:"name"`
		Value string `json:"value"`
		Kind  string `json:"kind"`
	}
	var out []tokenInfo
	for _, tok := range table.All() {
		if prefix != "" && !strings.HasPrefix(tok.Name, prefix) {
			continue
		}
		out = append(out, tokenInfo{Name: tok.Name, Value: tok.Value, Kind: string(tok.Kind)})
	}
	return jsonResult(map[string]any{"theme": table.Theme, "tokens": out})
}

func (s *Server) handleEmitCSS(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	table, result := s.tableArg(req)
	if result != nil {
		return result, nil
	}
	return mcp.NewToolResultText(table.EmitCSS()), nil
}

func (s *Server) handleGetTheme(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(map[string]any{
		"active": s.selector.Get(),
		"themes": s.selector.Themes(),
	})
}

func (s *Server) handleSetTheme(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name := stringArg(req, "name")
	if err := s.selector.Set(name); err != nil {
		var invalid *theme.InvalidThemeError
		if errors.As(err, &invalid) {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return nil, err
	}
	return jsonResult(map[string]any{"active": s.selector.Get()})
}

// tableArg resolves the optional "theme" argument to its table, defaulting
// to the active theme.
func (s *Server) tableArg(req mcp.CallToolRequest) (table *tokens.Table, errResult *mcp.CallToolResult) {
	name := stringArg(req, "theme")
	if name == "" {
		return s.activeTable(), nil
	}
	t, ok := s.source.Table(name)
	if !ok {
		return nil, mcp.NewToolResultError(fmt.Sprintf("unknown theme: %s", name))
	}
	return t, nil
}
