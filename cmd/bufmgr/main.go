package main

import (
	"bytes"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/bietkhonhungvandi212/bufmgr/internal/config"
	"github.com/bietkhonhungvandi212/bufmgr/internal/logger"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/buffer"
	"github.com/bietkhonhungvandi212/bufmgr/internal/storage/file"
	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
)

func main() {
	var (
		configPath string
		frames     int
		path       string
		pages      int
	)
	flag.StringVar(&configPath, "config", "", "path to an ini config file")
	flag.IntVar(&frames, "frames", 0, "number of buffer frames (overrides config)")
	flag.StringVar(&path, "path", "", "data file path (overrides config)")
	flag.IntVar(&pages, "pages", 0, "pages to allocate, default 3x frames")
	flag.Parse()

	if err := run(configPath, frames, path, pages); err != nil {
		logger.Logger.WithError(err).Error("bufmgr failed")
		os.Exit(1)
	}
}

func run(configPath string, frames int, path string, pages int) error {
	opts := util.DefaultOptions()
	if configPath != "" {
		var err error
		if opts, err = config.Load(configPath); err != nil {
			return err
		}
	}
	if frames > 0 {
		opts.NumFrames = frames
	}
	if path != "" {
		opts.Path = path
	}
	if err := opts.Validate(); err != nil {
		return err
	}
	if pages <= 0 {
		pages = 3 * opts.NumFrames
	}

	if err := logger.InitLogger(logger.LogConfig{LogPath: opts.LogPath, LogLevel: opts.LogLevel}); err != nil {
		return err
	}
	log := logger.WithComponent("main")
	log.Infof("frames=%d path=%s pages=%d", opts.NumFrames, opts.Path, pages)

	if err := os.MkdirAll(filepath.Dir(opts.Path), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	fm, err := file.NewFileManager(opts.Path)
	if err != nil {
		return err
	}
	defer fm.Close()

	bm := buffer.NewBufferManager(opts.NumFrames)

	ids := make([]util.PageID, 0, pages)
	for i := 0; i < pages; i++ {
		id, p, err := bm.AllocPage(fm)
		if err != nil {
			return err
		}
		copy(p.Data[:], markerOf(id))
		if err := bm.UnpinPage(fm, id, true); err != nil {
			return err
		}
		ids = append(ids, id)
	}

	for _, id := range ids {
		p, err := bm.ReadPage(fm, id)
		if err != nil {
			return err
		}
		ok := bytes.HasPrefix(p.Data[:], markerOf(id))
		if err := bm.UnpinPage(fm, id, false); err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("page %d lost its marker", id)
		}
	}
	log.Infof("verified %d pages", len(ids))

	if err := bm.FlushFile(fm); err != nil {
		return err
	}

	bm.PrintSelf(os.Stdout)
	s := bm.Stats()
	fmt.Printf("requests:%d hits:%d misses:%d reads:%d writes:%d evictions:%d advances:%d hitRatio:%.2f\n",
		s.Requests, s.Hits, s.Misses, s.PageReads, s.PageWrites, s.Evictions, s.ClockAdvances, s.HitRatio())

	return bm.Close()
}

func markerOf(id util.PageID) []byte {
	return []byte(fmt.Sprintf("bufmgr page %d", id))
}
