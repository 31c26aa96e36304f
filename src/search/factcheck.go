package search

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/stake-plus/sentinel/src/webclient"
)

const factCheckEndpoint = "https://factchecktools.googleapis.com/v1alpha1/claims:search"

// FactCheckClient queries the Google Fact Check Tools claim search API.
type FactCheckClient struct {
	apiKey     string
	endpoint   string
	httpClient *http.Client
	log        *zap.Logger
}

// NewFactCheckClient returns a client; an empty endpoint selects the public API.
func NewFactCheckClient(apiKey, endpoint string, timeout time.Duration, log *zap.Logger) *FactCheckClient {
	if endpoint == "" {
		endpoint = factCheckEndpoint
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &FactCheckClient{
		apiKey:     apiKey,
		endpoint:   endpoint,
		httpClient: webclient.NewDefault(timeout),
		log:        log,
	}
}

type factCheckResponse struct {
	Claims []struct {
		Text        string `json:"text"`
		Claimant    string `json:"claimant"`
		ClaimReview []struct {
			Publisher struct {
				Name string `json:"name"`
			} `json:"publisher"`
			URL           string `json:"url"`
			TextualRating string `json:"textualRating"`
		} `json:"claimReview"`
	} `json:"claims"`
}

// Lookup returns prior fact checks for text. Any failure is logged and
// yields an empty slice.
func (c *FactCheckClient) Lookup(ctx context.Context, text string) []Review {
	if c.apiKey == "" {
		return []Review{}
	}
	reviews, err := c.lookup(ctx, text)
	if err != nil {
		c.log.Warn("fact check lookup failed", zap.String("claim", text), zap.Error(err))
		return []Review{}
	}
	c.log.Debug("fact check lookup", zap.String("claim", text), zap.Int("reviews", len(reviews)))
	return reviews
}

func (c *FactCheckClient) lookup(ctx context.Context, text string) ([]Review, error) {
	q := url.Values{}
	q.Set("query", text)
	q.Set("languageCode", "en")
	q.Set("key", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fact check status %d", resp.StatusCode)
	}

	var parsed factCheckResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, err
	}
	out := []Review{}
	for _, cl := range parsed.Claims {
		r := Review{Claim: cl.Text, Claimant: cl.Claimant}
		if len(cl.ClaimReview) > 0 {
			r.Publisher = cl.ClaimReview[0].Publisher.Name
			r.URL = cl.ClaimReview[0].URL
			r.Rating = cl.ClaimReview[0].TextualRating
		}
		out = append(out, r)
	}
	return out, nil
}
