package rod

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"strings"
	"time"

	"pneuma/internal/application/port/output"
	"pneuma/internal/domain/entity"

	"github.com/disintegration/imaging"
	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/tidwall/gjson"
	"github.com/ysmood/gson"
)

const (
	EngineName = "chromium"

	defaultTimeout    = 30 * time.Second
	defaultSlowMotion = 0
	defaultMaxWidth   = 1024
)

var (
	_ output.EnginePort = (*Engine)(nil)
	_ output.EnginePage = (*page)(nil)
)

type BrowserConfig struct {
	Headless   bool
	SlowMotion time.Duration
	Timeout    time.Duration
	NoSandbox  bool
	DevTools   bool
	// BrowserBin overrides the Chromium binary the launcher looks up.
	BrowserBin string
	// ControlURL attaches to an already running browser instead of launching one.
	ControlURL         string
	ScreenshotMaxWidth int
}

func DefaultConfig() BrowserConfig {
	return BrowserConfig{
		Headless:           true,
		SlowMotion:         defaultSlowMotion,
		Timeout:            defaultTimeout,
		NoSandbox:          false,
		DevTools:           false,
		ScreenshotMaxWidth: defaultMaxWidth,
	}
}

type Engine struct {
	browser  *rod.Browser
	launcher *launcher.Launcher
	cfg      BrowserConfig
	log      output.LoggerPort
}

func NewEngine(ctx context.Context, cfg BrowserConfig, log output.LoggerPort) (*Engine, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.ScreenshotMaxWidth <= 0 {
		cfg.ScreenshotMaxWidth = defaultMaxWidth
	}
	log = log.Named("chromium")

	var l *launcher.Launcher
	controlURL := cfg.ControlURL
	if controlURL == "" {
		l = launcher.New().
			Context(ctx).
			Headless(cfg.Headless).
			Devtools(cfg.DevTools).
			Delete("use-mock-keychain")
		// The launcher already disables the sandbox inside containers.
		if cfg.NoSandbox {
			l = l.NoSandbox(true)
		}
		if cfg.BrowserBin != "" {
			l = l.Bin(cfg.BrowserBin)
		}

		url, err := l.Launch()
		if err != nil {
			return nil, fmt.Errorf("failed to launch browser: %w", err)
		}
		controlURL = url
		log.Info("browser launched", "control_url", controlURL, "headless", cfg.Headless)
	}

	browser := rod.New().
		Context(ctx).
		ControlURL(controlURL).
		SlowMotion(cfg.SlowMotion)
	if err := browser.Connect(); err != nil {
		if l != nil {
			l.Kill()
			l.Cleanup()
		}
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}

	return &Engine{
		// Pages must not inherit the launch context.
		browser:  browser.Context(context.Background()),
		launcher: l,
		cfg:      cfg,
		log:      log,
	}, nil
}

func (e *Engine) Name() string {
	return EngineName
}

func (e *Engine) NewPage(ctx context.Context) (output.EnginePage, error) {
	p, err := e.browser.Context(ctx).Page(proto.TargetCreateTarget{URL: "about:blank"})
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	return &page{page: p.Context(context.Background()), cfg: e.cfg, log: e.log}, nil
}

func (e *Engine) Close() error {
	var err error
	if e.browser != nil {
		err = e.browser.Close()
	}
	if e.launcher != nil {
		e.launcher.Kill()
		e.launcher.Cleanup()
	}
	if err != nil {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}

type page struct {
	page *rod.Page
	cfg  BrowserConfig
	log  output.LoggerPort
}

// Navigate reports failures the browser attributes to the page as metadata with an
// error field. Only protocol failures come back as errors.
func (p *page) Navigate(ctx context.Context, url, optsJSON string) (string, error) {
	opts := gjson.Parse(optsJSON)

	timeout := p.cfg.Timeout
	if ms := opts.Get("timeout").Int(); ms > 0 {
		timeout = time.Duration(ms) * time.Millisecond
	}
	pg := p.page.Context(ctx).Timeout(timeout)

	if err := pg.Navigate(url); err != nil {
		var navErr *rod.NavigationError
		switch {
		case errors.As(err, &navErr):
			return failure(reason(navErr.Reason)), nil
		case errors.Is(err, context.DeadlineExceeded):
			return failure("TIMED_OUT"), nil
		}
		return "", fmt.Errorf("navigation failed: %w", err)
	}

	var err error
	switch opts.Get("waitUntil").String() {
	case "none":
	case "idle":
		err = pg.WaitIdle(timeout)
	default:
		err = pg.WaitLoad()
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return failure("TIMED_OUT"), nil
	}
	if err != nil {
		return "", fmt.Errorf("wait for page: %w", err)
	}

	info, err := p.page.Context(ctx).Info()
	if err != nil {
		return "", fmt.Errorf("page info: %w", err)
	}

	return gson.New(map[string]any{
		"ok":     true,
		"engine": EngineName,
		"url":    info.URL,
		"title":  info.Title,
	}).JSON("", ""), nil
}

func failure(reason string) string {
	return gson.New(map[string]any{"ok": false, "error": reason}).JSON("", "")
}

// reason maps Chromium net error codes onto the names the static engine reports.
func reason(chromium string) string {
	switch strings.TrimPrefix(chromium, "net::") {
	case "ERR_NAME_NOT_RESOLVED", "ERR_NAME_RESOLUTION_FAILED":
		return "DNS_FAILED"
	case "ERR_CONNECTION_REFUSED":
		return "CONNECTION_REFUSED"
	case "ERR_TIMED_OUT", "ERR_CONNECTION_TIMED_OUT":
		return "TIMED_OUT"
	case "ERR_INVALID_URL", "ERR_UNKNOWN_URL_SCHEME", "ERR_DISALLOWED_URL_SCHEME":
		return "UNSUPPORTED_SCHEME"
	}
	return chromium
}

// Evaluate runs the script with a global eval and returns the JSON of its value.
// Promises are awaited.
func (p *page) Evaluate(ctx context.Context, script string) (string, error) {
	res, err := p.page.Context(ctx).Evaluate(rod.Eval(`(s) => (0, eval)(s)`, script).ByPromise())
	if err != nil {
		var evalErr *rod.EvalError
		if errors.As(err, &evalErr) {
			return "", fmt.Errorf("script error: %w", err)
		}
		return "", fmt.Errorf("evaluate failed: %w", err)
	}
	return res.Value.JSON("", ""), nil
}

func (p *page) Screenshot(ctx context.Context) ([]byte, error) {
	shot, err := p.capture(ctx)
	if err != nil {
		return nil, err
	}
	p.log.Debug("screenshot captured", "width", shot.Width, "height", shot.Height, "bytes", len(shot.Data))
	return shot.Data, nil
}

func (p *page) capture(ctx context.Context) (*entity.Screenshot, error) {
	imgBytes, err := p.page.Context(ctx).Screenshot(true, &proto.PageCaptureScreenshot{
		Format:  proto.PageCaptureScreenshotFormatJpeg,
		Quality: gson.Int(80),
	})
	if err != nil {
		return nil, fmt.Errorf("screenshot failed: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(imgBytes))
	if err != nil {
		return nil, fmt.Errorf("image decode failed: %w", err)
	}

	if img.Bounds().Dx() > p.cfg.ScreenshotMaxWidth {
		img = imaging.Resize(img, p.cfg.ScreenshotMaxWidth, 0, imaging.Lanczos)
	}

	buf := new(bytes.Buffer)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: 75}); err != nil {
		return nil, fmt.Errorf("jpeg encode failed: %w", err)
	}

	return &entity.Screenshot{
		Data:   buf.Bytes(),
		Format: "jpeg",
		Width:  img.Bounds().Dx(),
		Height: img.Bounds().Dy(),
	}, nil
}

func (p *page) Close() error {
	if err := p.page.Close(); err != nil {
		return fmt.Errorf("failed to close page: %w", err)
	}
	return nil
}
