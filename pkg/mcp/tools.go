package mcp

import "github.com/mark3labs/mcp-go/mcp"

func auditSiteTool() mcp.Tool {
	return mcp.NewTool("audit_site",
		mcp.WithDescription("Run the read-only consistency audit: hardcoded literals, undefined/legacy tokens, broken links, missing expected links. Returns the full finding list as JSON."),
		mcp.WithString("page",
			mcp.Description("Audit a single page (site-root-relative path) instead of the whole site"),
		),
	)
}

func resolvePageTool() mcp.Tool {
	return mcp.NewTool("resolve_page",
		mcp.WithDescription("Rewrite one page's literals to token references against the active theme's table. Dry run by default; set apply to write the page in place."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Site-root-relative page path"),
		),
		mcp.WithBoolean("apply",
			mcp.Description("Write the rewritten page back to disk"),
		),
		mcp.WithBoolean("fix_legacy",
			mcp.Description("Also upgrade deprecated token references to their successors"),
		),
	)
}

func applyLinksTool() mcp.Tool {
	return mcp.NewTool("apply_links",
		mcp.WithDescription("Apply the link graph to one page: rewrite matching anchors, synthesize breadcrumbs, insert category blocks. Dry run by default; set apply to write in place."),
		mcp.WithString("page",
			mcp.Required(),
			mcp.Description("Site-root-relative page path"),
		),
		mcp.WithBoolean("apply",
			mcp.Description("Write the rewritten page back to disk"),
		),
	)
}

func listTokensTool() mcp.Tool {
	return mcp.NewTool("list_tokens",
		mcp.WithDescription("List the design tokens of a theme's table (name, value, kind)."),
		mcp.WithString("theme",
			mcp.Description("Theme name; defaults to the active theme"),
		),
		mcp.WithString("prefix",
			mcp.Description("Only tokens whose name starts with this prefix (e.g. \"color-\")"),
		),
	)
}

func emitCSSTool() mcp.Tool {
	return mcp.NewTool("emit_css",
		mcp.WithDescription("Render a theme's table as a flat CSS custom-property listing for the rendering layer."),
		mcp.WithString("theme",
			mcp.Description("Theme name; defaults to the active theme"),
		),
	)
}

func getThemeTool() mcp.Tool {
	return mcp.NewTool("get_theme",
		mcp.WithDescription("Return the active theme and the enumerated theme set."),
	)
}

func setThemeTool() mcp.Tool {
	return mcp.NewTool("set_theme",
		mcp.WithDescription("Switch the active theme. Fails on names outside the enumerated set; the selection persists across sessions."),
		mcp.WithString("name",
			mcp.Required(),
			mcp.Description("Theme name from the enumerated set"),
		),
	)
}
