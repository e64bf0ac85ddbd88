package tunnel

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/eleven-am/peergrade/internal/session"
)

// StatePublisher is the mutation entry point the provider feeds endpoint
// lists into. The gateway hub satisfies it.
type StatePublisher interface {
	RecordEndpoints(endpoints []session.Endpoint)
}

type Config struct {
	Enabled      bool
	Target       string
	LocalAddr    string
	RestartDelay time.Duration
	LocalURL     string
}

var publicURLPattern = regexp.MustCompile(`https?://[a-zA-Z0-9-]+\.(lhr\.life|localhost\.run)`)

// Provider supervises an ssh reverse tunnel to localhost.run and publishes
// the public endpoints it discovers. It runs entirely outside the session
// event path: endpoint updates arrive through the publisher like any other
// mutation.
type Provider struct {
	cfg       Config
	shortener *Shortener
	publisher StatePublisher
	logger    *slog.Logger

	mu        sync.Mutex
	published string
}

func NewProvider(cfg Config, shortener *Shortener, publisher StatePublisher, logger *slog.Logger) *Provider {
	return &Provider{
		cfg:       cfg,
		shortener: shortener,
		publisher: publisher,
		logger:    logger.With("component", "tunnel"),
	}
}

// Run blocks until ctx is cancelled, restarting the tunnel process after a
// fixed delay whenever it exits.
func (p *Provider) Run(ctx context.Context) {
	p.publisher.RecordEndpoints([]session.Endpoint{
		{Label: "Localhost (Host)", URL: p.cfg.LocalURL},
	})

	if !p.cfg.Enabled {
		p.logger.Info("tunnel disabled, serving localhost only")
		return
	}

	for {
		if err := p.runOnce(ctx); err != nil && ctx.Err() == nil {
			p.logger.Warn("tunnel process exited", "error", err, "restart_in", p.cfg.RestartDelay)
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.cfg.RestartDelay):
		}
	}
}

func (p *Provider) runOnce(ctx context.Context) error {
	p.logger.Info("starting tunnel", "target", p.cfg.Target)

	cmd := exec.CommandContext(ctx, "ssh",
		"-T",
		"-R", "80:"+p.cfg.LocalAddr,
		"-o", "StrictHostKeyChecking=no",
		p.cfg.Target,
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	var wg sync.WaitGroup
	wg.Add(2)
	// localhost.run reports the assigned URL on stderr, so scan both.
	go p.scan(ctx, stdout, &wg)
	go p.scan(ctx, stderr, &wg)
	wg.Wait()

	return cmd.Wait()
}

func (p *Provider) scan(ctx context.Context, r io.Reader, wg *sync.WaitGroup) {
	defer wg.Done()

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		if url, ok := ParsePublicURL(scanner.Text()); ok {
			p.announce(ctx, url)
		}
	}
}

// ParsePublicURL extracts the assigned tunnel URL from a line of process
// output, skipping the provider's admin interface.
func ParsePublicURL(line string) (string, bool) {
	url := publicURLPattern.FindString(line)
	if url == "" || strings.Contains(url, "admin.localhost.run") {
		return "", false
	}
	return url, true
}

func (p *Provider) announce(ctx context.Context, publicURL string) {
	p.mu.Lock()
	if p.published == publicURL {
		p.mu.Unlock()
		return
	}
	p.published = publicURL
	p.mu.Unlock()

	p.logger.Info("tunnel active", "url", publicURL)

	shortURL, err := p.shortener.Shorten(ctx, publicURL)
	if err != nil {
		p.logger.Warn("shortener unavailable", "error", err)
	}

	p.publisher.RecordEndpoints(p.endpoints(publicURL, shortURL))
}

func (p *Provider) endpoints(publicURL, shortURL string) []session.Endpoint {
	var endpoints []session.Endpoint
	if shortURL != "" {
		endpoints = append(endpoints,
			session.Endpoint{Label: "Short Link (Recommended)", URL: shortURL},
			session.Endpoint{Label: "Original Public Link", URL: publicURL},
		)
	} else {
		endpoints = append(endpoints, session.Endpoint{Label: "Public Link (Students)", URL: publicURL})
	}
	return append(endpoints, session.Endpoint{Label: "Localhost (Host)", URL: p.cfg.LocalURL})
}
