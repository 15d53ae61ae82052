// Package session drives the heatmap screens: which page is shown, which
// price view is active and which points and warnings the map displays.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"houseprice-heatmap/internal/heatmap"
	"houseprice-heatmap/pkg/logger"
)

const (
	MsgNoConnection     = "Check internet connection and restart app"
	MsgPermissionDenied = "Permission to access location was denied"
	DefaultYear         = 2000
)

// Options wires a Session to its collaborators. Locator, Geocoder and
// Reachability may be nil when the host has no such capability.
type Options struct {
	Prices       PriceSource
	Flood        FloodSource
	Locator      Locator
	Geocoder     Geocoder
	Reachability Reachability
	DefaultYear  int
}

// Snapshot is a copy of the session as the UI would render it.
type Snapshot struct {
	Screen        Screen
	Mode          Mode
	Year          int
	Latitude      float64
	Longitude     float64
	Points        []heatmap.GeoPoint
	FloodMessage  string
	ErrorMessage  string
	AddressPrompt bool
}

type Session struct {
	mu sync.Mutex

	state         State
	year          int
	lat, long     float64
	points        []heatmap.GeoPoint
	floodMessage  string
	errorMessage  string
	addressPrompt bool

	priceGen uint64
	floodGen uint64

	prices   PriceSource
	flood    FloodSource
	locator  Locator
	geocoder Geocoder
	reach    Reachability
}

func New(opts Options) *Session {
	year := opts.DefaultYear
	if !heatmap.ValidYear(year) {
		year = DefaultYear
	}
	return &Session{
		state:    State{Screen: ScreenIntro, Mode: ModeFlat},
		year:     year,
		points:   []heatmap.GeoPoint{{Latitude: 0, Longitude: 0, Weight: 1}},
		prices:   opts.Prices,
		flood:    opts.Flood,
		locator:  opts.Locator,
		geocoder: opts.Geocoder,
		reach:    opts.Reachability,
	}
}

// Start runs the launch checks. A failed check only sets the error message.
func (s *Session) Start(ctx context.Context) {
	if s.reach != nil {
		ok, err := s.reach.Reachable(ctx)
		if err != nil || !ok {
			if err != nil {
				logger.GlobalLogger.Errorf("Reachability check failed: %v", err)
			}
			s.setError(MsgNoConnection)
			return
		}
	}
	if s.locator == nil {
		return
	}
	granted, err := s.locator.RequestPermission(ctx)
	if err != nil {
		logger.GlobalLogger.Errorf("Location permission request failed: %v", err)
	}
	if err != nil || !granted {
		s.setError(MsgPermissionDenied)
	}
}

func (s *Session) UseMyLocation(ctx context.Context) error {
	if err := s.apply(EventUseMyLocation); err != nil {
		return err
	}
	// Without a fix the map opens on the current coordinates and still loads prices.
	if s.locator == nil {
		logger.GlobalLogger.Errorf("No location service available")
		s.logFailure(s.refreshPrices(ctx))
		return nil
	}
	lat, long, err := s.locator.CurrentPosition(ctx)
	if err != nil {
		logger.GlobalLogger.Errorf("Failed to get current position: %v", err)
		s.logFailure(s.refreshPrices(ctx))
		return nil
	}
	s.moveTo(ctx, lat, long)
	return nil
}

// SubmitPostcode geocodes text and opens the map there. Blank text keeps
// the intro screen and raises the address prompt.
func (s *Session) SubmitPostcode(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	s.mu.Lock()
	if text == "" {
		defer s.mu.Unlock()
		if _, err := Transition(s.state, EventSubmitPostcode); err != nil {
			return err
		}
		s.addressPrompt = true
		return nil
	}
	s.addressPrompt = false
	s.mu.Unlock()

	if err := s.apply(EventSubmitPostcode); err != nil {
		return err
	}
	if s.geocoder == nil {
		logger.GlobalLogger.Errorf("No geocoder available for %q", text)
		return nil
	}
	lat, long, err := s.geocoder.Geocode(ctx, text)
	if err != nil {
		logger.GlobalLogger.Errorf("Failed to geocode address: address=%s, error=%v", text, err)
		return nil
	}
	s.moveTo(ctx, lat, long)
	return nil
}

func (s *Session) Back() error {
	return s.apply(EventBack)
}

func (s *Session) TapMap(ctx context.Context, lat, long float64) error {
	if err := s.apply(EventMapTap); err != nil {
		return err
	}
	s.moveTo(ctx, lat, long)
	return nil
}

func (s *Session) FilterByYear(ctx context.Context) error {
	if err := s.apply(EventFilterByYear); err != nil {
		return err
	}
	s.logFailure(s.refreshPrices(ctx))
	return nil
}

func (s *Session) AllTime(ctx context.Context) error {
	if err := s.apply(EventAllTime); err != nil {
		return err
	}
	s.logFailure(s.refreshPrices(ctx))
	return nil
}

// SelectYear takes the slider offset (0 = 1995).
func (s *Session) SelectYear(ctx context.Context, sliderValue int) error {
	s.mu.Lock()
	next, err := Transition(s.state, EventSelectYear)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = next
	s.year = heatmap.YearFromSlider(sliderValue)
	s.mu.Unlock()

	s.logFailure(s.refreshPrices(ctx))
	return nil
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	points := make([]heatmap.GeoPoint, len(s.points))
	copy(points, s.points)
	return Snapshot{
		Screen:        s.state.Screen,
		Mode:          s.state.Mode,
		Year:          s.year,
		Latitude:      s.lat,
		Longitude:     s.long,
		Points:        points,
		FloodMessage:  s.floodMessage,
		ErrorMessage:  s.errorMessage,
		AddressPrompt: s.addressPrompt,
	}
}

func (s *Session) AreaAverage() (float64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return heatmap.AreaAverageWeight(s.points)
}

func (s *Session) MarkerTitle() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return heatmap.MarkerTitle(s.points)
}

func (s *Session) apply(e Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, err := Transition(s.state, e)
	if err != nil {
		return err
	}
	logger.GlobalLogger.Debugf("Session transition: event=%s, from=%s/%s, to=%s/%s",
		e, s.state.Screen, s.state.Mode, next.Screen, next.Mode)
	s.state = next
	return nil
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.errorMessage = msg
	s.mu.Unlock()
}

// moveTo sets the coordinates and refreshes prices and the flood warning in parallel.
func (s *Session) moveTo(ctx context.Context, lat, long float64) {
	s.mu.Lock()
	s.lat, s.long = lat, long
	s.mu.Unlock()

	var wg sync.WaitGroup
	var priceErr, floodErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		priceErr = s.refreshPrices(ctx)
	}()
	go func() {
		defer wg.Done()
		floodErr = s.refreshFlood(ctx)
	}()
	wg.Wait()
	s.logFailure(errors.Join(priceErr, floodErr))
}

func (s *Session) refreshPrices(ctx context.Context) error {
	if s.prices == nil {
		return nil
	}
	s.mu.Lock()
	s.priceGen++
	gen := s.priceGen
	lat, long, mode, year := s.lat, s.long, s.state.Mode, s.year
	s.mu.Unlock()

	var raw []byte
	var err error
	if mode == ModeYear {
		raw, err = s.prices.PricesByYear(ctx, lat, long)
	} else {
		raw, err = s.prices.Prices(ctx, lat, long)
	}
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.priceGen {
		logger.GlobalLogger.Debugf("Discarding stale price response: generation=%d, latest=%d", gen, s.priceGen)
		return nil
	}

	var points []heatmap.GeoPoint
	var updated bool
	if mode == ModeYear {
		points, updated, err = heatmap.NormalizeYearFiltered(raw, year, s.points)
	} else {
		points, updated, err = heatmap.NormalizeFlat(raw, s.points)
	}
	if err != nil {
		return err
	}
	if !updated {
		logger.GlobalLogger.Println("Price API reported a server error, keeping previous points")
		return nil
	}
	s.points = points
	return nil
}

func (s *Session) refreshFlood(ctx context.Context) error {
	if s.flood == nil {
		return nil
	}
	s.mu.Lock()
	s.floodGen++
	gen := s.floodGen
	lat, long := s.lat, s.long
	s.mu.Unlock()

	msg, err := s.flood.Warning(ctx, lat, long)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.floodGen {
		logger.GlobalLogger.Debugf("Discarding stale flood response: generation=%d, latest=%d", gen, s.floodGen)
		return nil
	}
	s.floodMessage = msg
	return nil
}

func (s *Session) logFailure(err error) {
	if err != nil {
		logger.GlobalLogger.Errorf("Refresh failed: %v", err)
	}
}
