// Package catalog exposes the remote media library: listing source media by
// folder and kind, fetching items into a local working directory, and
// uploading the finished merge.
package catalog

import (
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/samber/lo"

	"quote-video-poster/internal"
	"quote-video-poster/internal/logging"
	"quote-video-poster/internal/model"
	"quote-video-poster/internal/s3"
)

// Item is one remote media object. The URL is the stable retrieval URL and
// the identity used by the usage tracker.
type Item struct {
	Key string
	URL string
	Ext string
}

type Catalog struct {
	cfg internal.Config
	s3  s3.Client
	log *logging.Logger
}

func New(cfg internal.Config, s3c s3.Client, log *logging.Logger) *Catalog {
	return &Catalog{cfg: cfg, s3: s3c, log: log}
}

// ListMedia lists every object under folder and keeps those whose extension
// is allowed for the given kind.
func (c *Catalog) ListMedia(ctx context.Context, folder string, kind model.MediaKind) ([]Item, error) {
	objects, err := c.s3.List(ctx, folder)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	items := lo.FilterMap(objects, func(obj s3.ObjectInfo, _ int) (Item, bool) {
		ext := strings.ToLower(path.Ext(obj.Key))
		if !kind.SupportedExt(ext) {
			return Item{}, false
		}
		return Item{Key: obj.Key, URL: c.s3.PublicURL(obj.Key), Ext: ext}, true
	})

	c.log.Infof("catalog: %s has %d %s item(s) (%d object(s) listed)", folder, len(items), kind, len(objects))
	return items, nil
}

// Download streams an item into dest.
func (c *Catalog) Download(ctx context.Context, item Item, dest string) error {
	c.log.Infof("catalog: downloading %s -> %s", item.URL, dest)
	r, err := c.s3.GetReader(ctx, item.Key)
	if err != nil {
		return fmt.Errorf("get %s: %w", item.Key, err)
	}
	defer r.Close()

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dest)
		return fmt.Errorf("stream %s: %w", item.Key, err)
	}
	return nil
}

// UploadMerged stores the merged clip under the merged folder and returns its
// public URL. Merged names carry the full source basename, numeric ID
// included, so a key is only ever rewritten on a true re-merge of the same
// source.
func (c *Catalog) UploadMerged(ctx context.Context, localPath string) (string, error) {
	key := c.cfg.MergedPrefix + path.Base(localPath)
	c.log.Infof("catalog: uploading merged clip to %s", key)
	if err := c.s3.PutFile(ctx, key, localPath, "video/mp4"); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	url := c.s3.PublicURL(key)
	c.log.Infof("catalog: merged clip available at %s", url)
	return url, nil
}
