// Package mcp exposes the quiz as MCP tools over stdio, one tool per event
// kind.
package mcp

import (
	"context"

	"quizbot/app/service/engine"
	"quizbot/app/service/quiz"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/samber/do"
)

const version = "1.0.0"

type Processor interface {
	Process(ctx context.Context, event quiz.Event) quiz.Reply
}

type Server struct {
	processor Processor
	server    *server.MCPServer
}

func New(di *do.Injector) (*Server, error) {
	return NewServer(do.MustInvoke[*engine.Service](di)), nil
}

func NewServer(processor Processor) *Server {
	s := &Server{
		processor: processor,
		server:    server.NewMCPServer("quizbot", version, server.WithToolCapabilities(false)),
	}

	userID := mcp.WithString("user_id", mcp.Required(), mcp.Description("Stable player identifier"))

	s.server.AddTool(mcp.NewTool("new_question",
		mcp.WithDescription("Draw a random quiz question for the player"),
		userID,
	), s.handler(quiz.EventNewQuestion))

	s.server.AddTool(mcp.NewTool("answer",
		mcp.WithDescription("Submit an answer to the outstanding question"),
		userID,
		mcp.WithString("text", mcp.Required(), mcp.Description("Answer text")),
	), s.handler(quiz.EventAnswer))

	s.server.AddTool(mcp.NewTool("give_up",
		mcp.WithDescription("Reveal the answer to the outstanding question"),
		userID,
	), s.handler(quiz.EventGiveUp))

	s.server.AddTool(mcp.NewTool("score",
		mcp.WithDescription("Show the player's score"),
		userID,
	), s.handler(quiz.EventScore))

	return s
}

func (s *Server) handler(kind quiz.EventKind) server.ToolHandlerFunc {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		userID, err := req.RequireString("user_id")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := ""
		if kind == quiz.EventAnswer {
			if text, err = req.RequireString("text"); err != nil {
				return mcp.NewToolResultError(err.Error()), nil
			}
		}

		reply := s.processor.Process(ctx, quiz.Event{
			Channel:  quiz.ChannelMCP,
			UserID:   userID,
			UserName: userID,
			Kind:     kind,
			Text:     text,
		})

		return mcp.NewToolResultText(reply.Text), nil
	}
}

// Serve blocks on stdin until it is closed.
func (s *Server) Serve() error {
	return server.ServeStdio(s.server)
}
