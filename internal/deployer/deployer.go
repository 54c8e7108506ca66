package deployer

import (
	"context"
	"io"
)

// Item is a workspace item as reported by the deployer.
type Item struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	Type        string `json:"type"`
}

// Continuation points at the next page of a listing. The zero value asks
// for the first page.
type Continuation struct {
	Token string
	URI   string
}

// Done reports whether there are no more pages.
func (c Continuation) Done() bool {
	return c.Token == "" && c.URI == ""
}

// ItemPage is one page of a workspace listing.
type ItemPage struct {
	Items []Item
	Next  Continuation
}

// PublishRequest describes one publish of a local item tree.
type PublishRequest struct {
	WorkspaceID string
	// SourceDir holds one <name>.<type> directory per item.
	SourceDir string
	// ItemTypes limits publishing to these types. Empty means all.
	ItemTypes []string
	// FeatureFlags are passed to the publisher for this request only.
	FeatureFlags []string
	// Output receives publisher progress lines. Nil discards them.
	Output io.Writer
}

// Handle identifies the workspace a publish ran against, for follow-up
// lookups.
type Handle struct {
	WorkspaceID string
}

// Deployer lists and publishes workspace items.
type Deployer interface {
	// ListItems returns one page of the items in a workspace.
	ListItems(ctx context.Context, workspaceID string, next Continuation) (ItemPage, error)

	// Publish deploys the item tree described by req.
	Publish(ctx context.Context, req PublishRequest) (Handle, error)

	// ResolveItemID returns the live id of the named item.
	ResolveItemID(ctx context.Context, h Handle, itemType, itemName string) (string, error)
}
