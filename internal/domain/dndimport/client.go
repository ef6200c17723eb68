package dndimport

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"dndinfo/internal/pkg/logger"
)

const (
	ResourceMonsters  = "monsters"
	ResourceSpells    = "spells"
	ResourceEquipment = "equipment"
)

var ErrNotFound = errors.New("dnd api: resource not found")

type Config struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries uint

	// RetryInterval switches from exponential to constant backoff when set.
	RetryInterval time.Duration
}

// Client reads the public D&D 5e SRD API.
type Client struct {
	log        *logger.Logger
	cfg        Config
	httpClient *http.Client
}

func NewClient(log *logger.Logger, cfg Config) *Client {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		cfg.BaseURL = "https://www.dnd5eapi.co/api/2014"
	}
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	return &Client{
		log: log.With("client", "DndAPIClient"),
		cfg: cfg,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// --- wire types ---

type Reference struct {
	Index string `json:"index"`
	Name  string `json:"name"`
	URL   string `json:"url"`
}

type listResponse struct {
	Count   int         `json:"count"`
	Results []Reference `json:"results"`
}

type MonsterArmorClass struct {
	Type  string `json:"type"`
	Value int    `json:"value"`
}

type Monster struct {
	Index        string          `json:"index"`
	Name         string          `json:"name"`
	Size         string          `json:"size"`
	Type         string          `json:"type"`
	HitPoints    int             `json:"hit_points"`
	Strength     int             `json:"strength"`
	Dexterity    int             `json:"dexterity"`
	Constitution int             `json:"constitution"`
	Intelligence int             `json:"intelligence"`
	Wisdom       int             `json:"wisdom"`
	Charisma     int             `json:"charisma"`
	ArmorClass   json.RawMessage `json:"armor_class"`
	Speed        map[string]any  `json:"speed"`
}

// ArmorClasses accepts both the list form and the older bare-number form.
func (m *Monster) ArmorClasses() []MonsterArmorClass {
	if len(m.ArmorClass) == 0 {
		return nil
	}
	var list []MonsterArmorClass
	if err := json.Unmarshal(m.ArmorClass, &list); err == nil {
		return list
	}
	var value int
	if err := json.Unmarshal(m.ArmorClass, &value); err == nil {
		return []MonsterArmorClass{{Type: "natural", Value: value}}
	}
	return nil
}

type Spell struct {
	Index         string   `json:"index"`
	Name          string   `json:"name"`
	Desc          []string `json:"desc"`
	Range         string   `json:"range"`
	Duration      string   `json:"duration"`
	CastingTime   string   `json:"casting_time"`
	Level         int      `json:"level"`
	Ritual        bool     `json:"ritual"`
	Concentration bool     `json:"concentration"`
	Components    []string `json:"components"`
	School        struct {
		Index string `json:"index"`
		Name  string `json:"name"`
	} `json:"school"`
}

type Equipment struct {
	Index  string   `json:"index"`
	Name   string   `json:"name"`
	Desc   []string `json:"desc"`
	Weight float64  `json:"weight"`
	Cost   struct {
		Quantity int    `json:"quantity"`
		Unit     string `json:"unit"`
	} `json:"cost"`
}

// --- endpoints ---

func (c *Client) List(ctx context.Context, resource string) ([]Reference, error) {
	var out listResponse
	if err := c.get(ctx, resource, &out); err != nil {
		return nil, err
	}
	return out.Results, nil
}

func (c *Client) Monster(ctx context.Context, index string) (*Monster, error) {
	var out Monster
	if err := c.get(ctx, ResourceMonsters+"/"+index, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Spell(ctx context.Context, index string) (*Spell, error) {
	var out Spell
	if err := c.get(ctx, ResourceSpells+"/"+index, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Equipment(ctx context.Context, index string) (*Equipment, error) {
	var out Equipment
	if err := c.get(ctx, ResourceEquipment+"/"+index, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// get fetches path and decodes the JSON body into dst. Network errors and 5xx
// responses are retried with exponential backoff; 4xx are final.
func (c *Client) get(ctx context.Context, path string, dst any) error {
	url := c.cfg.BaseURL + "/" + strings.TrimLeft(path, "/")

	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return struct{}{}, backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			c.log.Warn("dnd api request failed", "url", url, "error", err)
			return struct{}{}, err
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusNotFound:
			return struct{}{}, backoff.Permanent(fmt.Errorf("%w: %s", ErrNotFound, path))
		case resp.StatusCode >= 500:
			return struct{}{}, fmt.Errorf("dnd api: %s returned %d", path, resp.StatusCode)
		case resp.StatusCode >= 400:
			return struct{}{}, backoff.Permanent(fmt.Errorf("dnd api: %s returned %d", path, resp.StatusCode))
		}

		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return struct{}{}, backoff.Permanent(fmt.Errorf("dnd api: decode %s: %w", path, err))
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(c.backOff()),
		backoff.WithMaxTries(c.cfg.MaxRetries),
	)
	return err
}

func (c *Client) backOff() backoff.BackOff {
	if c.cfg.RetryInterval > 0 {
		return backoff.NewConstantBackOff(c.cfg.RetryInterval)
	}
	return backoff.NewExponentialBackOff()
}
