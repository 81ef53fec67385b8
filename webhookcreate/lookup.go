package webhookcreate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/time/rate"
)

const (
	// maxLookupResponseSize is the largest response body read from a
	// lookup API
	maxLookupResponseSize = 2 << 20

	lookupLogger = "lookup"
)

var (
	// ErrInvalidResponse is returned when a lookup API responds
	// successfully, but with a body that can't be used
	ErrInvalidResponse = errors.New("invalid response")

	// ErrUnknownAnimal is returned for an animal with no image provider
	ErrUnknownAnimal = errors.New("unknown animal type")
)

// httpStatusError is returned for non-2xx responses from a remote API
type httpStatusError struct {
	StatusCode int
	URL        string
	Body       string
}

func (e *httpStatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP error! status: %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP error! status: %d - %s", e.StatusCode, truncate(e.Body, 200))
}

// statusCode returns the status code of an *httpStatusError in err's
// chain, or 0
func statusCode(err error) int {
	var se *httpStatusError
	if errors.As(err, &se) {
		return se.StatusCode
	}
	return 0
}

// animalProvider fetches a random image URL for one animal type
type animalProvider struct {
	URL string

	// imageURL extracts the image URL from the provider's JSON response
	imageURL func(body []byte) (string, error)
}

func jsonField(field string) func(body []byte) (string, error) {
	return func(body []byte) (string, error) {
		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			return "", err
		}
		s, _ := m[field].(string)
		return s, nil
	}
}

func defaultAnimalProviders() map[string]animalProvider {
	someRandomAPI := jsonField("link")
	return map[string]animalProvider{
		"dog": {URL: "https://dog.ceo/api/breeds/image/random", imageURL: jsonField("message")},
		"cat": {
			URL: "https://api.thecatapi.com/v1/images/search",
			imageURL: func(body []byte) (string, error) {
				var images []struct {
					URL string `json:"url"`
				}
				if err := json.Unmarshal(body, &images); err != nil {
					return "", err
				}
				if len(images) == 0 {
					return "", nil
				}
				return images[0].URL, nil
			},
		},
		"fox":       {URL: "https://randomfox.ca/floof/", imageURL: jsonField("image")},
		"bird":      {URL: "https://api.alexflipnote.dev/birb", imageURL: jsonField("file")},
		"koala":     {URL: "https://some-random-api.com/img/koala", imageURL: someRandomAPI},
		"panda":     {URL: "https://some-random-api.com/img/panda", imageURL: someRandomAPI},
		"red_panda": {URL: "https://some-random-api.com/img/red_panda", imageURL: someRandomAPI},
	}
}

// lookupClient makes rate-limited requests to the public APIs used by
// the lookup commands
type lookupClient struct {
	client  *http.Client
	config  LookupConfig
	limiter *rate.Limiter
	logger  *slog.Logger
	animals map[string]animalProvider
}

func newLookupClient(config LookupConfig, httpClient *http.Client) *lookupClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &lookupClient{
		client:  httpClient,
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
		logger:  newComponentLogger(config.LogLevel, lookupLogger),
		animals: defaultAnimalProviders(),
	}
}

// get performs a GET request, returning the response body. Non-2xx
// responses return *httpStatusError.
func (l *lookupClient) get(ctx context.Context, u string, header http.Header) ([]byte, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(ctx, l.config.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	for k, v := range header {
		req.Header[k] = v
	}
	req.Header.Set("User-Agent", l.config.UserAgent)

	start := time.Now()
	resp, err := l.client.Do(req)
	if err != nil {
		l.logger.WarnContext(ctx, "request failed", tint.Err(err), "url", u)
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxLookupResponseSize))
	if err != nil {
		return nil, fmt.Errorf("error reading response: %w", err)
	}
	l.logger.DebugContext(
		ctx,
		"lookup response",
		"url", u,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"size", len(body),
	)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &httpStatusError{StatusCode: resp.StatusCode, URL: u, Body: string(body)}
	}
	return body, nil
}

func (l *lookupClient) getJSON(ctx context.Context, u string, v any) error {
	body, err := l.get(ctx, u, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return err
	}
	if err = json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	return nil
}

// GitHubUser is the subset of the GitHub users API response shown
// by `/github`
type GitHubUser struct {
	Login           string    `json:"login"`
	Name            string    `json:"name"`
	Bio             string    `json:"bio"`
	Location        string    `json:"location"`
	Company         string    `json:"company"`
	Blog            string    `json:"blog"`
	TwitterUsername string    `json:"twitter_username"`
	AvatarURL       string    `json:"avatar_url"`
	HTMLURL         string    `json:"html_url"`
	PublicRepos     int       `json:"public_repos"`
	PublicGists     int       `json:"public_gists"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func (l *lookupClient) GitHubUser(ctx context.Context, username string) (*GitHubUser, error) {
	u := strings.TrimRight(l.config.GitHubURL, "/") + "/users/" + url.PathEscape(username)
	var user GitHubUser
	if err := l.getJSON(ctx, u, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

// ShortenURL returns a TinyURL link for longURL
func (l *lookupClient) ShortenURL(ctx context.Context, longURL string) (string, error) {
	u := l.config.TinyURLURL + "?url=" + url.QueryEscape(longURL)
	body, err := l.get(ctx, u, nil)
	if err != nil {
		return "", err
	}
	short := strings.TrimSpace(string(body))
	if short == "" || strings.Contains(short, "Error") || !strings.HasPrefix(short, "http") {
		return "", fmt.Errorf("%w from TinyURL: %s", ErrInvalidResponse, truncate(short, 200))
	}
	return short, nil
}

// StockItem is a single item in a Grow a Garden shop category
type StockItem struct {
	Name  string `json:"name"`
	Value any    `json:"value"`
}

// Stock is the current Grow a Garden shop stock. A nil category wasn't
// included in the response.
type Stock struct {
	Seeds     *[]StockItem `json:"seedsStock"`
	Gear      *[]StockItem `json:"gearStock"`
	Eggs      *[]StockItem `json:"eggStock"`
	Event     *[]StockItem `json:"eventStock"`
	Cosmetics *[]StockItem `json:"cosmeticsStock"`
}

func (l *lookupClient) Stock(ctx context.Context) (*Stock, error) {
	var stock Stock
	if err := l.getJSON(ctx, l.config.StockURL, &stock); err != nil {
		return nil, err
	}
	return &stock, nil
}

// AnimalImage returns a random image URL for the given animal
func (l *lookupClient) AnimalImage(ctx context.Context, animal string) (string, error) {
	provider, ok := l.animals[animal]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownAnimal, animal)
	}
	body, err := l.get(ctx, provider.URL, http.Header{"Accept": []string{"application/json"}})
	if err != nil {
		return "", err
	}
	imageURL, err := provider.imageURL(body)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrInvalidResponse, err)
	}
	if imageURL == "" {
		return "", fmt.Errorf("%w: no image URL received", ErrInvalidResponse)
	}
	return imageURL, nil
}

// Script is a ScriptBlox search result
type Script struct {
	Title string `json:"title"`
	Slug  string `json:"slug"`
	Game  struct {
		Name string `json:"name"`
	} `json:"game"`
	Verified bool `json:"isVerified"`
	Views    int  `json:"views"`
}

func (l *lookupClient) scriptURL(s Script) string {
	return strings.TrimRight(l.config.ScriptBloxURL, "/") + "/script/" + s.Slug
}

func (l *lookupClient) SearchScripts(ctx context.Context, query string) ([]Script, error) {
	u := strings.TrimRight(l.config.ScriptBloxURL, "/") + "/api/script/search?q=" + url.QueryEscape(query)
	var resp struct {
		Result *struct {
			Scripts []Script `json:"scripts"`
		} `json:"result"`
	}
	if err := l.getJSON(ctx, u, &resp); err != nil {
		return nil, err
	}
	if resp.Result == nil {
		return nil, nil
	}
	return resp.Result.Scripts, nil
}
