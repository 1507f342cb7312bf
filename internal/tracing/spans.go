package tracing

// Span names.
const (
	SpanWorkspaceOpen   = "workspace.open"
	SpanWorkspaceUpdate = "workspace.update"
	SpanProjectResolve  = "project.resolve"
	SpanProjectLoad     = "project.load"
)

// Attribute keys.
const (
	AttrWorkspaceID = "workspace.id"
	AttrUpdateName  = "update.name"
	AttrUpdateID    = "update.id"
	AttrPaneID      = "pane.id"
	AttrLocator     = "open.locator"
	AttrProjectPath = "project.path"
	AttrItemKind    = "item.kind"
	AttrDeduped     = "open.deduped"
)

// Event names.
const (
	EventResolved   = "path.resolved"
	EventLoaded     = "model.loaded"
	EventItemBuilt  = "item.built"
	EventItemReused = "item.reused"
)
