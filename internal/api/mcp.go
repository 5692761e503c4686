package api

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/kalambet/qareview/internal/format"
	"github.com/kalambet/qareview/internal/kb"
)

// MCPGateway is the read-only slice of the knowledge-base API exposed to
// MCP clients.
type MCPGateway interface {
	ListUnreviewed(ctx context.Context) ([]kb.Segment, int, error)
	CheckDuplicates(ctx context.Context, threshold float64) (kb.DuplicateReport, error)
	TodayCount(ctx context.Context) (int, error)
	TotalReviewed(ctx context.Context) (int, error)
	MonthlyStats(ctx context.Context, year, month int) (map[string]int, error)
}

// MCPDeps holds dependencies for the MCP server.
type MCPDeps struct {
	Gateway   MCPGateway
	Journal   JournalReader // optional; journal://recent is not registered when nil
	Threshold int           // default duplicate threshold, percent
	Location  *time.Location
	Now       func() time.Time
}

// NewMCPServer creates an MCP server with the review tools and resources registered.
func NewMCPServer(deps MCPDeps) *server.MCPServer {
	if deps.Location == nil {
		deps.Location = time.Local
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	s := server.NewMCPServer(
		"qareview",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, true),
		server.WithInstructions("qareview: read-only view of the QA knowledge base review queue, duplicates and statistics."),
		server.WithRecovery(),
	)

	s.AddTool(
		mcp.NewTool("list_unreviewed",
			mcp.WithDescription("List QA pairs waiting for review, oldest first as the backend returns them."),
			mcp.WithNumber("limit", mcp.Description("Maximum number of pairs (default 10)")),
		),
		mcpListUnreviewed(deps),
	)

	s.AddTool(
		mcp.NewTool("check_duplicates",
			mcp.WithDescription("Group reviewed QA pairs whose similarity is at or above the threshold."),
			mcp.WithNumber("threshold", mcp.Description("Similarity threshold in percent, 0-100")),
		),
		mcpCheckDuplicates(deps),
	)

	s.AddTool(
		mcp.NewTool("review_stats",
			mcp.WithDescription("Report today's review count, the reviewed total and per-day counts for a month."),
			mcp.WithNumber("year", mcp.Description("Calendar year (default current)")),
			mcp.WithNumber("month", mcp.Description("Calendar month 1-12 (default current)")),
		),
		mcpReviewStats(deps),
	)

	if deps.Journal != nil {
		s.AddResource(
			mcp.NewResource(
				"journal://recent",
				"Recent Review Actions",
				mcp.WithResourceDescription("Last 20 mutating actions sent to the knowledge base"),
				mcp.WithMIMEType("application/json"),
			),
			mcpResourceJournal(deps),
		)
	}

	return s
}

func mcpListUnreviewed(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		limit := req.GetInt("limit", 10)
		if limit <= 0 {
			limit = 10
		}
		if limit > 100 {
			limit = 100
		}

		segs, total, err := deps.Gateway.ListUnreviewed(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("listing unreviewed failed: %v", err)), nil
		}

		type pair struct {
			ID         string `json:"id"`
			DocumentID string `json:"document_id"`
			Question   string `json:"question"`
			Answer     string `json:"answer"`
			Source     string `json:"source,omitempty"`
			CreatedAt  string `json:"created_at"`
		}
		type result struct {
			Total int    `json:"total"`
			Items []pair `json:"items"`
		}

		out := result{Total: total, Items: make([]pair, 0, min(limit, len(segs)))}
		for _, s := range segs[:min(limit, len(segs))] {
			out.Items = append(out.Items, pair{
				ID:         s.ID,
				DocumentID: s.DocumentID,
				Question:   truncate(s.Question, 200),
				Answer:     truncate(s.Answer, 200),
				Source:     s.AddSource,
				CreatedAt:  format.DateTime(int64(s.CreatedAt), deps.Location),
			})
		}

		b, err := json.Marshal(out)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal results: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpCheckDuplicates(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		threshold := req.GetFloat("threshold", float64(deps.Threshold))
		if threshold < 0 || threshold > 100 {
			return mcpError("threshold must be between 0 and 100"), nil
		}

		report, err := deps.Gateway.CheckDuplicates(ctx, threshold/100)
		if err != nil {
			return mcpError(fmt.Sprintf("duplicate check failed: %v", err)), nil
		}
		if report.Groups == nil {
			report.Groups = []kb.DuplicateGroup{}
		}

		b, err := json.Marshal(report)
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal report: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpReviewStats(deps MCPDeps) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		now := deps.Now().In(deps.Location)
		year := req.GetInt("year", now.Year())
		month := req.GetInt("month", int(now.Month()))
		if month < 1 || month > 12 {
			return mcpError("month must be between 1 and 12"), nil
		}

		today, err := deps.Gateway.TodayCount(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("today count failed: %v", err)), nil
		}
		total, err := deps.Gateway.TotalReviewed(ctx)
		if err != nil {
			return mcpError(fmt.Sprintf("reviewed total failed: %v", err)), nil
		}
		days, err := deps.Gateway.MonthlyStats(ctx, year, month)
		if err != nil {
			return mcpError(fmt.Sprintf("monthly stats failed: %v", err)), nil
		}

		monthTotal := 0
		for _, n := range days {
			monthTotal += n
		}
		if days == nil {
			days = map[string]int{}
		}

		b, err := json.Marshal(map[string]any{
			"today":       today,
			"reviewed":    total,
			"year":        year,
			"month":       month,
			"month_total": monthTotal,
			"days":        days,
		})
		if err != nil {
			return mcpError(fmt.Sprintf("failed to marshal stats: %v", err)), nil
		}
		return mcpText(string(b)), nil
	}
}

func mcpResourceJournal(deps MCPDeps) server.ResourceHandlerFunc {
	return func(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		actions, err := deps.Journal.RecentActions(20)
		if err != nil {
			return nil, fmt.Errorf("failed to read journal: %w", err)
		}

		b, err := json.Marshal(journalEntries(actions))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal journal: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     string(b),
			},
		}, nil
	}
}

func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}

func mcpText(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

func mcpError(msg string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: msg},
		},
		IsError: true,
	}
}
