package mcp

import "github.com/mark3labs/mcp-go/mcp"

var listPendingIdeasTool = mcp.NewTool("list_pending_ideas",
	mcp.WithDescription("List ideas that still need refinement, with their id, title and priority."),
)

var getRecordTool = mcp.NewTool("get_record",
	mcp.WithDescription("Get an idea (ID-nnn) or a user story (US-nnn) by id. Stories are returned as backlog markdown."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Record id, e.g. ID-004 or US-012"),
	),
)

var checkIdeaTool = mcp.NewTool("check_idea",
	mcp.WithDescription("Rank existing stories and ideas by similarity to one idea. Does not modify any document."),
	mcp.WithString("id",
		mcp.Required(),
		mcp.Description("Idea id, e.g. ID-004"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)

var nextIDsTool = mcp.NewTool("next_ids",
	mcp.WithDescription("Get the next free user story and idea identifiers."),
)

var searchBacklogTool = mcp.NewTool("search_backlog",
	mcp.WithDescription("Search ideas and user stories semantically. Requires an embedding provider."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 10)"),
	),
	mcp.WithString("kind",
		mcp.Description("Restrict results to one record kind"),
		mcp.Enum("idea", "story"),
	),
)
