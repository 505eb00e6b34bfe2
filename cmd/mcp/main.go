package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/scholarshield/backend/internal/bootstrap"
	"github.com/scholarshield/backend/internal/config"
	"github.com/scholarshield/backend/internal/observability/logging"
)

func main() {
	cfg := config.Load()

	// stdout carries the protocol stream, so every log line goes to stderr.
	logger := logging.NewJSONLoggerTo(os.Stderr, "mcp", cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger, bootstrap.Metrics{})
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	srv := server.NewMCPServer("scholarshield", "1.0.0",
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	)
	srv.AddTool(assessCaseTool(), assessCaseHandler(app, cfg.BillMaxBytes))
	srv.AddTool(searchPoliciesTool(), searchPoliciesHandler(app))

	logger.Info("mcp server listening on stdio")

	stdio := server.NewStdioServer(srv)
	stdio.SetErrorLogger(log.New(os.Stderr, "mcp: ", log.LstdFlags))
	if err := stdio.Listen(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("mcp server: %v", err)
	}
}

func assessCaseTool() mcp.Tool {
	return mcp.NewTool("assess_case",
		mcp.WithDescription("Assess a tuition bill for payment risk. Reads the bill file, extracts the amount and due date, checks them against indexed school policies, and returns the full case assessment as JSON."),
		mcp.WithString("bill_path",
			mcp.Required(),
			mcp.Description("Path to the bill on the local filesystem, .pdf or .txt."),
		),
	)
}

func assessCaseHandler(app *bootstrap.App, maxBytes int64) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		billPath, err := req.RequireString("bill_path")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		ext := strings.ToLower(filepath.Ext(billPath))
		if ext != ".pdf" && ext != ".txt" {
			return mcp.NewToolResultError("unsupported bill type, expected .pdf or .txt"), nil
		}
		info, err := os.Stat(billPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read bill file: %v", err)), nil
		}
		if info.Size() > maxBytes {
			return mcp.NewToolResultError("bill file exceeds the size limit"), nil
		}
		payload, err := os.ReadFile(billPath)
		if err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("read bill file: %v", err)), nil
		}

		assessment := app.AssessUC.ProcessCase(ctx, payload)
		if saveErr := app.Assessments.Save(ctx, assessment); saveErr != nil {
			slog.Warn("persist assessment failed",
				slog.String("case_id", assessment.ID),
				slog.String("error", saveErr.Error()))
		}

		out, err := json.MarshalIndent(assessment, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode assessment: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}

func searchPoliciesTool() mcp.Tool {
	return mcp.NewTool("search_policies",
		mcp.WithDescription("Search the indexed school handbook for policy passages relevant to a query. Returns matching passages with section and page references as JSON."),
		mcp.WithString("query",
			mcp.Required(),
			mcp.Description("Natural-language question about school payment policies."),
		),
	)
}

func searchPoliciesHandler(app *bootstrap.App) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		query, err := req.RequireString("query")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if strings.TrimSpace(query) == "" {
			return mcp.NewToolResultError("query must not be empty"), nil
		}

		passages := app.Searcher.SearchPolicies(ctx, query)
		if len(passages) == 0 {
			return mcp.NewToolResultText("no indexed policy passages matched the query"), nil
		}
		out, err := json.MarshalIndent(passages, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("encode passages: %w", err)
		}
		return mcp.NewToolResultText(string(out)), nil
	}
}
