package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/dghubble/oauth1"
	"github.com/tidwall/gjson"

	"quote-video-poster/internal/logging"
)

const xTweetsEndpoint = "https://api.x.com/2/tweets"

// XPublisher cross-posts the published clip as a link tweet. It is an
// optional extra platform: the pipeline treats its failures as non-fatal.
type XPublisher struct {
	endpoint   string
	log        *logging.Logger
	httpClient *http.Client
}

func NewXPublisher(consumerKey, consumerSecret, accessToken, accessTokenSecret string, log *logging.Logger) *XPublisher {
	config := oauth1.NewConfig(consumerKey, consumerSecret)
	token := oauth1.NewToken(accessToken, accessTokenSecret)
	return &XPublisher{
		endpoint:   xTweetsEndpoint,
		log:        log,
		httpClient: config.Client(context.Background(), token),
	}
}

func (x *XPublisher) Platform() string { return "x" }

func (x *XPublisher) Publish(ctx context.Context, req *PublishRequest) (*PublishResult, error) {
	payload, _ := json.Marshal(map[string]string{
		"text": req.Caption + "\n" + req.VideoURL,
	})

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, x.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := x.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("post to x: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read x response: %w", err)
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("x api %d: %s", resp.StatusCode, excerpt(body))
	}

	postID := gjson.GetBytes(body, "data.id").String()
	x.log.Infof("x: tweet posted (id=%s)", postID)
	return &PublishResult{Platform: "x", PostID: postID}, nil
}
