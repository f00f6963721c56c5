package publisher

import "context"

// PublishRequest references the merged artifact by URL; the platform fetches
// the binary itself, nothing is re-uploaded here.
type PublishRequest struct {
	VideoURL string
	Caption  string
}

type PublishResult struct {
	Platform string
	PostID   string
	// AlreadyPosted is set when the duplicate check short-circuited the call.
	AlreadyPosted bool
}

// Publisher posts a merged artifact to one social platform.
type Publisher interface {
	Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error)
	Platform() string
}
