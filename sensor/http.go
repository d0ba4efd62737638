package sensor

import (
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"

	"github.com/voocel/recon/pointer"
)

// Format selects how HTTPSensor renders a fetched HTML body.
type Format string

const (
	// FormatMarkdown converts an HTML body to Markdown (the default).
	FormatMarkdown Format = "markdown"
	// FormatText extracts the document's plain text.
	FormatText Format = "text"
	// FormatHTML keeps the raw response body verbatim.
	FormatHTML Format = "html"
)

// HTTPSensor polls a URL on an interval and writes the rendered body at a
// concrete path, giving the agent loop an external observation source.
type HTTPSensor struct {
	URL         string
	Path        string
	Interval    time.Duration
	Format      Format
	Client      *http.Client
	MaxBodySize int64
}

// NewHTTPSensor builds an HTTPSensor polling url every interval and writing
// its Markdown-rendered body to path.
func NewHTTPSensor(url, path string, interval time.Duration) *HTTPSensor {
	return &HTTPSensor{
		URL:         url,
		Path:        path,
		Interval:    interval,
		Format:      FormatMarkdown,
		MaxBodySize: 5 * 1024 * 1024,
	}
}

func (s *HTTPSensor) Subscribe(onUpdate func(MutateFunc)) Subscription {
	path, parseErr := pointer.Parse(s.Path)
	stop := make(chan struct{})
	var once sync.Once

	go func() {
		if parseErr != nil {
			return
		}
		client := s.Client
		if client == nil {
			client = &http.Client{Timeout: 30 * time.Second}
		}

		fetch := func() {
			content, err := s.fetchOnce(client)
			if err != nil {
				return
			}
			onUpdate(func(state any) (any, error) {
				return pointer.Set(state, path, content)
			})
		}

		fetch()
		ticker := time.NewTicker(s.Interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fetch()
			}
		}
	}()

	return newSubscription(func() { once.Do(func() { close(stop) }) })
}

func (s *HTTPSensor) fetchOnce(client *http.Client) (string, error) {
	req, err := http.NewRequest(http.MethodGet, s.URL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", "recon-sensor/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	maxBody := s.MaxBodySize
	if maxBody <= 0 {
		maxBody = 5 * 1024 * 1024
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return "", err
	}
	content := string(body)

	isHTML := strings.Contains(resp.Header.Get("Content-Type"), "text/html")
	if !isHTML {
		return content, nil
	}

	switch s.Format {
	case FormatText:
		return extractText(content)
	case FormatHTML:
		return content, nil
	default:
		return convertToMarkdown(content)
	}
}

func extractText(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	return strings.Join(strings.Fields(doc.Find("body").Text()), " "), nil
}

func convertToMarkdown(html string) (string, error) {
	converter := md.NewConverter("", true, nil)
	return converter.ConvertString(html)
}

var _ Sensor = (*HTTPSensor)(nil)
