// Command heatmap is a terminal client for the price API: it keeps the same
// screens and views as the mobile app and prints the heatmap points.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"houseprice-heatmap/internal/flood"
	"houseprice-heatmap/internal/priceclient"
	"houseprice-heatmap/internal/session"
	"houseprice-heatmap/pkg/config"
	"houseprice-heatmap/pkg/logger"
	"houseprice-heatmap/pkg/postcodes"

	"github.com/joho/godotenv"
)

func main() {
	fs := flag.NewFlagSet("heatmap", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to the YAML config (default $CONFIG_PATH or configs/config.yaml)")
	lat := fs.Float64("lat", 0, "Latitude reported by the device location")
	long := fs.Float64("long", 0, "Longitude reported by the device location")
	denyLocation := fs.Bool("deny-location", false, "Refuse location permission")
	priceAPI := fs.String("price-api", "", "Price API base URL (overrides config)")
	_ = fs.Parse(os.Args[1:])

	_ = godotenv.Load()
	path := *configPath
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	logger.InitLogger(os.Stderr, cfg.Log.Level)
	if *priceAPI != "" {
		cfg.Client.PriceAPIURL = *priceAPI
	}

	sess := session.New(session.Options{
		Prices: priceclient.NewClient(cfg.Client.PriceAPIURL, cfg.Client.Timeout),
		Flood:  flood.NewClient(cfg.Client.FloodAPIURL, cfg.Client.FloodDist, cfg.Client.Timeout),
		Locator: &fixedLocator{
			lat:     *lat,
			long:    *long,
			granted: !*denyLocation,
		},
		Geocoder: postcodes.NewClient(postcodes.Options{
			BaseURL:    cfg.Upstream.PostcodesURL,
			Timeout:    cfg.Client.Timeout,
			MaxRetries: 1,
		}),
		Reachability: newHTTPReachability(cfg.Client.PriceAPIURL, cfg.Client.Timeout),
		DefaultYear:  cfg.Client.DefaultYear,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	sess.Start(ctx)
	r := &repl{session: sess, out: os.Stdout}
	r.render(0)
	if err := r.Run(ctx, os.Stdin); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
		os.Exit(1)
	}
}
