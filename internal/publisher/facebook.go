package publisher

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"

	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/tracker"
)

const graphAPIBase = "https://graph.facebook.com/v19.0"

// FacebookPublisher posts externally hosted videos to a page feed via the
// Graph API /videos endpoint.
type FacebookPublisher struct {
	pageID      string
	accessToken string
	baseURL     string
	store       tracker.Store
	log         *logging.Logger
	httpClient  *http.Client
}

func NewFacebookPublisher(pageID, accessToken string, store tracker.Store, log *logging.Logger) *FacebookPublisher {
	return &FacebookPublisher{
		pageID:      pageID,
		accessToken: accessToken,
		baseURL:     graphAPIBase,
		store:       store,
		log:         log,
		httpClient:  &http.Client{Timeout: 120 * time.Second},
	}
}

func (p *FacebookPublisher) Platform() string { return "facebook" }

func (p *FacebookPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	if p.pageID == "" || p.accessToken == "" {
		return nil, fmt.Errorf("facebook PAGE_ID or FB_ACCESS_TOKEN not set")
	}

	// Re-posting the same merged URL is treated as success without a second
	// outbound call.
	recs, err := p.store.All(ctx)
	if err != nil {
		p.log.Warnf("facebook: tracker unreadable, skipping duplicate check: %v", err)
		recs = nil
	}
	if tracker.HasMergedURL(recs, req.VideoURL) {
		p.log.Warnf("facebook: merged video %s was already posted, skipping", req.VideoURL)
		return &PublishResult{Platform: "facebook", AlreadyPosted: true}, nil
	}

	endpoint := fmt.Sprintf("%s/%s/videos", p.baseURL, p.pageID)
	params := url.Values{}
	params.Set("file_url", req.VideoURL)
	params.Set("description", req.Caption)
	params.Set("access_token", p.accessToken)
	params.Set("privacy", `{"value":"EVERYONE"}`)

	p.log.Infof("facebook: posting video to page %s", p.pageID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post to facebook: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read facebook response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		errMsg := gjson.GetBytes(body, "error.message").String()
		if errMsg == "" {
			errMsg = excerpt(body)
		}
		return nil, fmt.Errorf("facebook api %d: %s", resp.StatusCode, errMsg)
	}

	postID := gjson.GetBytes(body, "id").String()
	p.log.Infof("facebook: video posted successfully (id=%s)", postID)
	return &PublishResult{Platform: "facebook", PostID: postID}, nil
}

func excerpt(body []byte) string {
	s := string(body)
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
