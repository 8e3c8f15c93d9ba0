package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/ziadkadry99/ideaflow/internal/backlog"
	"github.com/ziadkadry99/ideaflow/internal/vectordb"
)

// documents is one fresh read of both planning documents.
type documents struct {
	ideasSrc, backlogSrc string
	ideas                []*backlog.Idea
	stories              []*backlog.UserStory
}

func (s *Server) load() (*documents, error) {
	v := s.deps.Vocabulary
	ideasSrc, err := backlog.LoadDocument(s.deps.IdeasPath)
	if err != nil {
		return nil, err
	}
	backlogSrc, err := backlog.LoadDocument(s.deps.BacklogPath)
	if err != nil {
		return nil, err
	}
	return &documents{
		ideasSrc:   ideasSrc,
		backlogSrc: backlogSrc,
		ideas:      backlog.ParseIdeas(ideasSrc, v),
		stories:    backlog.ParseUserStories(backlogSrc, v),
	}, nil
}

// records returns stories followed by ideas, the order used for comparisons.
func (d *documents) records() []backlog.Record {
	out := make([]backlog.Record, 0, len(d.stories)+len(d.ideas))
	for _, st := range d.stories {
		out = append(out, st)
	}
	for _, idea := range d.ideas {
		out = append(out, idea)
	}
	return out
}

func (d *documents) find(id string) backlog.Record {
	for _, r := range d.records() {
		if strings.EqualFold(r.RecordID(), id) {
			return r
		}
	}
	return nil
}

func (s *Server) handleListPendingIdeas(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}

	v := s.deps.Vocabulary
	var sb strings.Builder
	count := 0
	for _, idea := range docs.ideas {
		if !idea.IsPending(v) {
			continue
		}
		count++
		fmt.Fprintf(&sb, "- %s [%s] %s\n", idea.ID, v.PriorityLabel(idea.Priority), idea.Title)
	}
	if count == 0 {
		return mcp.NewToolResultText("No pending ideas."), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%d pending idea(s):\n%s", count, sb.String())), nil
}

func (s *Server) handleGetRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	docs, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}

	r := docs.find(id)
	if r == nil {
		return mcp.NewToolResultError(fmt.Sprintf("no idea or story with id %q", id)), nil
	}
	return mcp.NewToolResultText(r.Describe(s.deps.Vocabulary)), nil
}

func (s *Server) handleCheckIdea(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := request.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: id"), nil
	}
	if s.deps.Engine == nil {
		return mcp.NewToolResultError("similarity checks are not configured"), nil
	}
	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}

	docs, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}
	idea, ok := docs.find(id).(*backlog.Idea)
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("no idea with id %q", id)), nil
	}

	results, err := s.deps.Engine.FindSimilar(ctx, idea, docs.records())
	if err != nil {
		s.log.Warn("check_idea failed", zap.String("idea", idea.ID), zap.Error(err))
		return mcp.NewToolResultError(fmt.Sprintf("similarity check failed: %v", err)), nil
	}
	if len(results) == 0 {
		return mcp.NewToolResultText(fmt.Sprintf("No similar records found for %s.", idea.ID)), nil
	}
	if len(results) > limit {
		results = results[:limit]
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Similarity for %s (%s):\n", idea.ID, s.deps.Engine.Name())
	for _, r := range results {
		verdict := "unique"
		if r.IsDuplicate {
			verdict = "DUPLICATE"
		}
		fmt.Fprintf(&sb, "- %s (%s) score %.2f %s: %s\n", r.MatchID, r.MatchKind, r.Score, verdict, r.Reason)
	}
	return mcp.NewToolResultText(sb.String()), nil
}

func (s *Server) handleNextIDs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	docs, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Next story: %s\nNext idea: ID-%03d\n",
		backlog.FormatStoryID(backlog.NextStoryNumber(docs.backlogSrc)),
		backlog.NextIdeaNumber(docs.ideasSrc))), nil
}

func (s *Server) handleSearchBacklog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}
	if s.deps.Embedder == nil {
		return mcp.NewToolResultError("semantic search needs an embedding provider; set embedding_provider in .ideaflow.yml"), nil
	}
	limit := request.GetInt("limit", 10)
	if limit <= 0 {
		limit = 10
	}
	kind := request.GetString("kind", "")

	docs, err := s.load()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to read documents: %v", err)), nil
	}
	index, err := s.searchIndex()
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search index unavailable: %v", err)), nil
	}

	records := docs.records()
	live := make(map[string]backlog.Record, len(records))
	batch := make([]vectordb.Document, 0, len(records))
	for _, r := range records {
		live[r.RecordID()] = r
		batch = append(batch, vectordb.Document{ID: r.RecordID(), Kind: string(r.Kind()), Content: r.ComparisonText()})
	}
	if _, err := index.Upsert(ctx, batch); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("indexing failed: %v", err)), nil
	}

	// Ask for everything so records removed from the documents since an
	// earlier call can be dropped without shrinking the result.
	hits, err := index.Search(ctx, query, index.Count(), kind)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}

	var sb strings.Builder
	n := 0
	for _, h := range hits {
		r, ok := live[h.ID]
		if !ok {
			continue
		}
		n++
		fmt.Fprintf(&sb, "%d. %s (%s, %.2f) %s\n", n, r.RecordID(), r.Kind(), h.Similarity, r.RecordTitle())
		if n == limit {
			break
		}
	}
	if n == 0 {
		return mcp.NewToolResultText("No results found."), nil
	}
	return mcp.NewToolResultText(sb.String()), nil
}
