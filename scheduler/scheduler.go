// Package scheduler renders a new fractal on a fixed interval, stores it and
// announces it to a webhook.
package scheduler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/cocosip/go-pngstream/blobstore"
	"github.com/cocosip/go-pngstream/fractal"
	"github.com/cocosip/go-pngstream/png/common"
	"github.com/cocosip/go-pngstream/png/stream"
)

// LastKey holds the zoom level of the most recent scheduled render
const LastKey = "last"

// ZoomCycle is the number of zoom levels before the sequence starts over
const ZoomCycle = 120

// ErrHook is returned when the webhook answers with a non-2xx status
var ErrHook = errors.New("scheduler: webhook rejected notification")

// Scheduler renders one image per tick
type Scheduler struct {
	Store  blobstore.Store
	Width  int
	Height int

	// Interval between ticks in Run
	Interval time.Duration

	// PublicURL is the externally visible base of the server, used to build
	// the link posted to HookURL
	PublicURL string

	// HookURL receives {"text": "<link>"}; empty disables the notification
	HookURL string

	Params  fractal.Params
	Options *stream.Options
	Client  *http.Client
	Logger  *log.Logger
}

// New creates a Scheduler with 800x800 images and a one hour interval
func New(store blobstore.Store) *Scheduler {
	return &Scheduler{
		Store:    store,
		Width:    800,
		Height:   800,
		Interval: time.Hour,
		Params:   fractal.DefaultParams(),
		Client:   http.DefaultClient,
		Logger:   log.New(io.Discard, "", 0),
	}
}

// Tick performs one scheduled render for time at and returns the key it
// was stored under.
func (s *Scheduler) Tick(ctx context.Context, at time.Time) (string, error) {
	last, err := s.lastZoom(ctx)
	if err != nil {
		return "", err
	}
	zoom := last%ZoomCycle + 1
	key := strconv.FormatInt(at.UnixMilli(), 10)

	p := s.Params
	p.Zoom = zoom
	p.Supersample = 2
	if err := s.render(ctx, key, p); err != nil {
		return "", errors.Wrapf(err, "scheduler: render %s", key)
	}

	if s.HookURL != "" {
		link := strings.TrimSuffix(s.PublicURL, "/") + "/get/" + key
		if err := s.notify(ctx, link); err != nil {
			return key, err
		}
	}

	if err := blobstore.PutString(ctx, s.Store, LastKey, strconv.Itoa(zoom)); err != nil {
		return key, errors.Wrap(err, "scheduler: save zoom")
	}
	s.logger().Printf("stored %s at zoom %d", key, zoom)
	return key, nil
}

// Run calls Tick every Interval until ctx is done. Failed ticks are logged
// and do not stop the loop.
func (s *Scheduler) Run(ctx context.Context) error {
	if s.Interval <= 0 {
		return fmt.Errorf("scheduler: invalid interval %v", s.Interval)
	}
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case at := <-ticker.C:
			if _, err := s.Tick(ctx, at); err != nil {
				s.logger().Printf("tick failed: %v", err)
			}
		}
	}
}

// lastZoom reads the previous zoom level; a missing or unreadable value
// starts the cycle from the beginning.
func (s *Scheduler) lastZoom(ctx context.Context) (int, error) {
	v, err := blobstore.GetString(ctx, s.Store, LastKey)
	if errors.Is(err, blobstore.ErrNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, errors.Wrap(err, "scheduler: load zoom")
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		s.logger().Printf("ignoring stored zoom %q", v)
		return 0, nil
	}
	return n, nil
}

func (s *Scheduler) render(ctx context.Context, key string, p fractal.Params) error {
	enc, pr, err := stream.NewPipeEncoder(s.Width, s.Height, common.RGB, s.Options)
	if err != nil {
		return err
	}
	defer pr.Close()

	go fractal.Draw(ctx, enc, s.Width, s.Height, p)
	return s.Store.Put(ctx, key, pr)
}

type notification struct {
	Text string `json:"text"`
}

func (s *Scheduler) notify(ctx context.Context, link string) error {
	body, err := json.Marshal(notification{Text: link})
	if err != nil {
		return errors.Wrap(err, "scheduler: encode notification")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.HookURL, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "scheduler: build notification")
	}
	req.Header.Set("Content-Type", "application/json")

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return errors.Wrap(err, "scheduler: post notification")
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return errors.Wrapf(ErrHook, "status %d", resp.StatusCode)
	}
	return nil
}

func (s *Scheduler) logger() *log.Logger {
	if s.Logger == nil {
		return log.New(io.Discard, "", 0)
	}
	return s.Logger
}
