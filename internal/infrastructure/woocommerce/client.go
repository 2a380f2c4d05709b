package woocommerce

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/yourusername/shelfsync/internal/domain/constants"
	"github.com/yourusername/shelfsync/internal/domain/entity"
)

// Config WooCommerce REST API sozlamalari
type Config struct {
	Enabled        bool
	SiteURL        string
	ConsumerKey    string
	ConsumerSecret string
}

// ProgressFunc har sahifadan keyin chaqiriladi. total X-WP-Total dan olinadi, bo'lmasa 0.
type ProgressFunc func(loaded, total int)

// Client WooCommerce mahsulotlarini sahifalab yuklaydi
type Client struct {
	cfg        Config
	httpClient *http.Client
	perPage    int
	progress   ProgressFunc
}

// NewClient WooCommerce client yaratish
func NewClient(cfg Config) *Client {
	cfg.SiteURL = strings.TrimRight(strings.TrimSpace(cfg.SiteURL), "/")
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: constants.WooRequestTimeout},
		perPage:    constants.WooPerPage,
	}
}

// WithHTTPClient boshqa http.Client ishlatish (testlar uchun)
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// OnProgress yuklash jarayoni uchun callback
func (c *Client) OnProgress(fn ProgressFunc) *Client {
	c.progress = fn
	return c
}

// Enabled integratsiya yoqilgan va to'liq sozlanganmi
func (c *Client) Enabled() bool {
	return c.cfg.Enabled && c.cfg.SiteURL != "" && c.cfg.ConsumerKey != "" && c.cfg.ConsumerSecret != ""
}

// FetchProducts barcha sahifalarni yuklaydi. Sahifa perPage dan kam yozuv qaytarsa to'xtaydi.
// Ko'rinish (visibility) filtri bu yerda emas, matcher da qo'llanadi.
func (c *Client) FetchProducts(ctx context.Context) ([]entity.ExternalProduct, error) {
	all := []entity.ExternalProduct{}
	if !c.Enabled() {
		log.Printf("[woo] o'chirilgan yoki sozlanmagan, katalog bo'sh")
		return all, nil
	}

	for page := 1; ; page++ {
		var batch []entity.ExternalProduct
		header, err := c.doJSON(ctx, "/products", url.Values{
			"per_page": {strconv.Itoa(c.perPage)},
			"page":     {strconv.Itoa(page)},
		}, &batch)
		if err != nil {
			return nil, fmt.Errorf("woo products page %d: %w", page, err)
		}
		all = append(all, batch...)

		total, _ := strconv.Atoi(header.Get("X-WP-Total"))
		if c.progress != nil {
			c.progress(len(all), total)
		}
		if len(batch) < c.perPage {
			break
		}
	}

	log.Printf("[woo] %d ta mahsulot yuklandi", len(all))
	return all, nil
}

// TestConnection bitta mahsulot so'rab ulanishni tekshiradi va umumiy sonni qaytaradi
func (c *Client) TestConnection(ctx context.Context) (int, error) {
	if !c.Enabled() {
		return 0, entity.ErrCatalogNotConfigured
	}
	var probe []entity.ExternalProduct
	header, err := c.doJSON(ctx, "/products", url.Values{"per_page": {"1"}}, &probe)
	if err != nil {
		return 0, err
	}
	total, err := strconv.Atoi(header.Get("X-WP-Total"))
	if err != nil {
		return len(probe), nil
	}
	return total, nil
}

func (c *Client) endpoint(path string, query url.Values) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	u := c.cfg.SiteURL + constants.WooAPIPrefix + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, out any) (http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(path, query), nil)
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(c.cfg.ConsumerKey, c.cfg.ConsumerSecret)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", constants.WooUserAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, fmt.Errorf("status=%d: %s", resp.StatusCode, msg)
	}
	if out == nil {
		return resp.Header, nil
	}
	dec := json.NewDecoder(io.LimitReader(resp.Body, 25<<20))
	if err := dec.Decode(out); err != nil {
		return nil, fmt.Errorf("json decode error: %w", err)
	}
	return resp.Header, nil
}
