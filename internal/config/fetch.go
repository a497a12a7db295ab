package config

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// IsRemote reports whether src needs to be downloaded before Load, e.g.
// "https://host/preset.yaml" or "git::https://host/repo.git//presets/alps.yaml".
func IsRemote(src string) bool {
	return strings.Contains(src, "::") || strings.Contains(src, "://")
}

// Fetch downloads a single config file into dir and returns its local path.
func Fetch(ctx context.Context, src, dir string) (string, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create directory %s: %w", dir, err)
	}

	name := path.Base(strings.SplitN(src, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("fetch config: cannot derive file name from %q", src)
	}
	dst := filepath.Join(dir, name)

	client := &getter.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: getter.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("fetch config %s: %w", src, err)
	}
	return dst, nil
}
