// Package landregistry queries the HM Land Registry price paid data over SPARQL.
package landregistry

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/metrics"
)

const queryPrefixes = `prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#>
prefix owl: <http://www.w3.org/2002/07/owl#>
prefix xsd: <http://www.w3.org/2001/XMLSchema#>
prefix sr: <http://data.ordnancesurvey.co.uk/ontology/spatialrelations/>
prefix ukhpi: <http://landregistry.data.gov.uk/def/ukhpi/>
prefix lrppi: <http://landregistry.data.gov.uk/def/ppi/>
prefix skos: <http://www.w3.org/2004/02/skos/core#>
prefix lrcommon: <http://landregistry.data.gov.uk/def/common/>
`

// Sale is one price paid transaction. Date is the xsd:date literal (YYYY-MM-DD).
type Sale struct {
	Postcode string `json:"postcode"`
	Amount   int64  `json:"amount"`
	Date     string `json:"date"`
	Category string `json:"category,omitempty"`
}

// Year returns the 4-character year prefix of Date, or "" if Date is too short.
func (s Sale) Year() string {
	if len(s.Date) < 4 {
		return ""
	}
	return s.Date[:4]
}

type Options struct {
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

type Client struct {
	endpoint   string
	maxRetries int
	retryDelay time.Duration
	httpClient *http.Client
}

func NewClient(opts Options) *Client {
	if opts.MaxRetries < 1 {
		opts.MaxRetries = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Client{
		endpoint:   opts.Endpoint,
		maxRetries: opts.MaxRetries,
		retryDelay: opts.RetryDelay,
		httpClient: &http.Client{Timeout: opts.Timeout},
	}
}

// quoteLiteral renders s as a SPARQL double-quoted string literal.
func quoteLiteral(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)
	return `"` + r.Replace(s) + `"`
}

// BuildPricePaidQuery selects every transaction for the given postcodes.
func BuildPricePaidQuery(postcodes []string) string {
	values := make([]string, len(postcodes))
	for i, pc := range postcodes {
		values[i] = quoteLiteral(pc)
	}

	var b strings.Builder
	b.WriteString(queryPrefixes)
	b.WriteString("SELECT ?postcode ?amount ?date ?category\nWHERE\n{\n")
	b.WriteString("  VALUES ?postcode {" + strings.Join(values, " ") + "}\n")
	b.WriteString("  ?addr lrcommon:postcode ?postcode.\n")
	b.WriteString("  ?transx lrppi:propertyAddress ?addr ;\n")
	b.WriteString("          lrppi:pricePaid ?amount ;\n")
	b.WriteString("          lrppi:transactionDate ?date ;\n")
	b.WriteString("          lrppi:transactionCategory/skos:prefLabel ?category.\n")
	b.WriteString("}\n")
	return b.String()
}

type binding struct {
	Value string `json:"value"`
}

type sparqlResponse struct {
	Results struct {
		Bindings []map[string]binding `json:"bindings"`
	} `json:"results"`
}

// PricesPaid returns the sales recorded for postcodes in the order the endpoint lists them.
func (c *Client) PricesPaid(ctx context.Context, postcodes []string) ([]Sale, error) {
	if len(postcodes) == 0 {
		return []Sale{}, nil
	}

	start := time.Now()
	defer func() {
		metrics.UpstreamRequestDuration.WithLabelValues("landregistry", "prices_paid").Observe(time.Since(start).Seconds())
	}()

	form := url.Values{}
	form.Set("query", BuildPricePaidQuery(postcodes))
	body, err := c.post(ctx, form.Encode())
	if err != nil {
		metrics.UpstreamErrorsTotal.WithLabelValues("landregistry", "prices_paid").Inc()
		return nil, err
	}

	var decoded sparqlResponse
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, fmt.Errorf("failed to decode price paid response: %w", err)
	}

	sales := make([]Sale, 0, len(decoded.Results.Bindings))
	for i, row := range decoded.Results.Bindings {
		amount, err := ParseAmount(row["amount"].Value)
		if err != nil {
			logger.GlobalLogger.Errorf("Skipping price paid row %d: postcode=%s, error=%v", i, row["postcode"].Value, err)
			continue
		}
		sales = append(sales, Sale{
			Postcode: row["postcode"].Value,
			Amount:   amount,
			Date:     row["date"].Value,
			Category: row["category"].Value,
		})
	}
	logger.GlobalLogger.Debugf("Price paid query: postcodes=%d, sales=%d", len(postcodes), len(sales))
	return sales, nil
}

// ParseAmount reads a pricePaid literal, which is an integer but may be
// serialised as a decimal.
func ParseAmount(v string) (int64, error) {
	v = strings.TrimSpace(v)
	if n, err := strconv.ParseInt(v, 10, 64); err == nil {
		return n, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, fmt.Errorf("invalid amount %q", v)
	}
	return int64(math.Round(f)), nil
}

func (c *Client) post(ctx context.Context, payload string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		if attempt > 1 {
			timer := time.NewTimer(time.Duration(attempt-1) * c.retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, strings.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("failed to create price paid request: %w", err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("Accept", "application/sparql-results+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			logger.GlobalLogger.Errorf("Failed to send price paid request (attempt %d/%d): url=%s, error=%v", attempt, c.maxRetries, c.endpoint, err)
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			logger.GlobalLogger.Errorf("Price paid request failed (attempt %d/%d): url=%s, status=%d", attempt, c.maxRetries, c.endpoint, resp.StatusCode)
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		if resp.StatusCode != http.StatusOK {
			logger.GlobalLogger.Errorf("Price paid request rejected: url=%s, status=%d, response=%s", c.endpoint, resp.StatusCode, string(body))
			return nil, fmt.Errorf("price paid request failed: status=%d", resp.StatusCode)
		}
		return body, nil
	}
	return nil, fmt.Errorf("price paid request failed after %d attempts: %w", c.maxRetries, lastErr)
}
