// Package fetch resolves config, script and heightmap locations that may
// live outside the local filesystem.
package fetch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	get "github.com/hashicorp/go-getter"
)

// IsLocal reports whether src names an existing local file.
func IsLocal(src string) bool {
	if strings.Contains(src, "::") || strings.Contains(src, "://") {
		return false
	}
	info, err := os.Stat(src)
	return err == nil && !info.IsDir()
}

// File makes src available as a local file and returns its path. Local files
// are returned unchanged; anything else go-getter understands (http, s3, git,
// file urls) is downloaded into dir under its original base name.
func File(ctx context.Context, src, dir string) (string, error) {
	if IsLocal(src) {
		return src, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create download directory: %w", err)
	}

	pwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dst := filepath.Join(dir, baseName(src))
	client := &get.Client{
		Ctx:  ctx,
		Src:  src,
		Dst:  dst,
		Pwd:  pwd,
		Mode: get.ClientModeFile,
	}
	if err := client.Get(); err != nil {
		return "", fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	return dst, nil
}

// baseName strips getter prefixes, query strings and subdirectories.
func baseName(src string) string {
	if i := strings.Index(src, "::"); i >= 0 {
		src = src[i+2:]
	}
	if i := strings.IndexAny(src, "?#"); i >= 0 {
		src = src[:i]
	}
	if i := strings.Index(src, "://"); i >= 0 {
		src = src[i+3:]
	}
	name := path.Base(strings.TrimSuffix(strings.ReplaceAll(src, "//", "/"), "/"))
	if name == "." || name == "/" || name == "" {
		return "download"
	}
	return name
}
