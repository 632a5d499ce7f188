package config

import (
	"fmt"

	util "github.com/bietkhonhungvandi212/bufmgr/internal/utils"
	"gopkg.in/ini.v1"
)

/*
[buffer]
num_frames = 1000

[storage]
path = bufmgr.db

[log]
level = info
path  =
*/

// Load reads an ini file on top of util.DefaultOptions
func Load(path string) (util.Options, error) {
	f, err := ini.Load(path)
	if err != nil {
		return util.Options{}, fmt.Errorf("load config %s: %w", path, err)
	}
	return parse(f)
}

// Parse is Load for in-memory content
func Parse(data []byte) (util.Options, error) {
	f, err := ini.Load(data)
	if err != nil {
		return util.Options{}, fmt.Errorf("parse config: %w", err)
	}
	return parse(f)
}

func parse(f *ini.File) (util.Options, error) {
	opts := util.DefaultOptions()

	buffer := f.Section("buffer")
	if buffer.HasKey("num_frames") {
		n, err := buffer.Key("num_frames").Int()
		if err != nil {
			return util.Options{}, fmt.Errorf("buffer.num_frames: %v: %w", err, util.ErrInvalidConfig)
		}
		opts.NumFrames = n
	}

	opts.Path = f.Section("storage").Key("path").MustString(opts.Path)

	log := f.Section("log")
	opts.LogLevel = log.Key("level").MustString(opts.LogLevel)
	opts.LogPath = log.Key("path").MustString(opts.LogPath)

	if err := opts.Validate(); err != nil {
		return util.Options{}, err
	}
	return opts, nil
}
