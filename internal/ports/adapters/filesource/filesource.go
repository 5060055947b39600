package filesource

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/UDaygupta12512/blogcast/internal/types"
)

// Adapter reads articles from local text or markdown files. The ref "-"
// reads from Stdin.
type Adapter struct {
	Stdin io.Reader
}

func New() *Adapter { return &Adapter{Stdin: os.Stdin} }

func (a *Adapter) Fetch(ctx context.Context, ref string) (types.Article, error) {
	if err := ctx.Err(); err != nil {
		return types.Article{}, err
	}
	var (
		b   []byte
		err error
	)
	if ref == "-" {
		if a.Stdin == nil {
			return types.Article{}, fmt.Errorf("read stdin: no input")
		}
		b, err = io.ReadAll(a.Stdin)
	} else {
		b, err = os.ReadFile(ref)
	}
	if err != nil {
		return types.Article{}, fmt.Errorf("read %s: %w", ref, err)
	}

	title, body := splitTitle(string(b))
	if title == "" && ref != "-" {
		title = strings.TrimSuffix(filepath.Base(ref), filepath.Ext(ref))
	}
	return types.Article{Source: ref, Title: title, Body: body}, nil
}

// splitTitle takes a leading markdown heading as the title; otherwise the
// whole text is body.
func splitTitle(text string) (string, string) {
	text = strings.TrimLeft(strings.ReplaceAll(text, "\r\n", "\n"), "\n\t ")
	first, rest, _ := strings.Cut(text, "\n")
	if strings.HasPrefix(first, "#") {
		title := strings.TrimSpace(strings.TrimLeft(first, "#"))
		return title, strings.TrimSpace(rest)
	}
	return "", strings.TrimSpace(text)
}
