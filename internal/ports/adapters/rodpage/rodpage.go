package rodpage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

const pageTimeout = 45 * time.Second

// extractJS returns the page title and the readable text of the main article
// element, with navigation chrome removed.
const extractJS = `() => {
	const root = document.querySelector('article') || document.querySelector('main') || document.body;
	const clone = root.cloneNode(true);
	clone.querySelectorAll('nav, header, footer, aside, script, style, noscript, form, figure, iframe')
		.forEach((el) => el.remove());
	const h1 = document.querySelector('h1');
	return {
		title: (h1 && h1.innerText.trim()) || document.title || '',
		body: clone.innerText || '',
	};
}`

// Adapter loads blog posts in a headless browser so client-rendered pages
// produce their final text.
type Adapter struct {
	bin     string
	timeout time.Duration
}

func New(browserBin string) *Adapter {
	return &Adapter{bin: browserBin, timeout: pageTimeout}
}

func (a *Adapter) Fetch(ctx context.Context, ref string) (types.Article, error) {
	if err := checkURL(ref); err != nil {
		return types.Article{}, err
	}

	l := launcher.New().Headless(true)
	if a.bin != "" {
		l = l.Bin(a.bin)
	}
	controlURL, err := l.Launch()
	if err != nil {
		return types.Article{}, fmt.Errorf("launch browser: %w", err)
	}
	defer l.Cleanup()

	browser := rod.New().ControlURL(controlURL).Context(ctx)
	if err := browser.Connect(); err != nil {
		return types.Article{}, fmt.Errorf("connect browser: %w", err)
	}
	defer browser.Close()

	page, err := browser.Page(proto.TargetCreateTarget{URL: ref})
	if err != nil {
		return types.Article{}, fmt.Errorf("open %s: %w", ref, err)
	}
	page = page.Timeout(a.timeout)
	if err := page.WaitLoad(); err != nil {
		return types.Article{}, fmt.Errorf("load %s: %w", ref, err)
	}

	res, err := page.Eval(extractJS)
	if err != nil {
		return types.Article{}, fmt.Errorf("extract %s: %w", ref, err)
	}
	title := strings.TrimSpace(res.Value.Get("title").Str())
	body := collapseLines(res.Value.Get("body").Str())
	if body == "" {
		return types.Article{}, fmt.Errorf("extract %s: page has no readable text", ref)
	}
	return types.Article{Source: ref, Title: title, Body: body}, nil
}

func checkURL(ref string) error {
	u, err := url.Parse(ref)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", ref, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid url %q: http or https is required", ref)
	}
	if u.Host == "" {
		return errors.New("invalid url: host is required")
	}
	return nil
}

// collapseLines trims every line and turns runs of blank lines into a single
// paragraph break.
func collapseLines(s string) string {
	lines := strings.Split(strings.ReplaceAll(s, "\r\n", "\n"), "\n")
	var b strings.Builder
	blank := false
	for _, l := range lines {
		l = strings.Join(strings.Fields(l), " ")
		if l == "" {
			blank = b.Len() > 0
			continue
		}
		if b.Len() > 0 {
			if blank {
				b.WriteString("\n\n")
			} else {
				b.WriteString("\n")
			}
		}
		b.WriteString(l)
		blank = false
	}
	return b.String()
}
