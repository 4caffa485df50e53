package browser

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"
)

// SaveDebugArtifacts writes a screenshot and an HTML snapshot of the current
// page into dir. Best-effort: each artifact is attempted independently and
// failures are logged, never returned, since diagnostics must not change the
// outcome of a run.
func SaveDebugArtifacts(ctx context.Context, p Page, dir, baseName string) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("[BROWSER] cannot create artifact dir %s: %v", dir, err)
		return
	}

	stamp := time.Now().Format("20060102-150405")
	prefix := filepath.Join(dir, fmt.Sprintf("%s-%s", baseName, stamp))

	if shot, err := p.Screenshot(ctx); err != nil {
		log.Printf("[BROWSER] screenshot failed: %v", err)
	} else if err := os.WriteFile(prefix+".png", shot, 0o644); err != nil {
		log.Printf("[BROWSER] write screenshot: %v", err)
	} else {
		log.Printf("[BROWSER] screenshot saved to %s.png", prefix)
	}

	if html, err := p.HTML(ctx); err != nil {
		log.Printf("[BROWSER] html snapshot failed: %v", err)
	} else if err := os.WriteFile(prefix+".html", []byte(html), 0o644); err != nil {
		log.Printf("[BROWSER] write html snapshot: %v", err)
	} else {
		log.Printf("[BROWSER] html snapshot saved to %s.html", prefix)
	}
}
