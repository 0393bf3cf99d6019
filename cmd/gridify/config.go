package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/viper"
	"github.com/wbrown/img2grid"
)

const defaultConfigFile = "gridify.json"

// config holds the settings shared by every command. Command line flags
// take their defaults from here.
type config struct {
	Width       int
	Height      int
	CategoryID  string
	Workers     int
	OutputName  string
	OutputDir   string
	Compression string
	CellSize    int
	MaxPixels   int
}

// loadConfig reads path, or ./gridify.json when path is empty. A missing
// default file is not an error; a missing explicit file is.
func loadConfig(path string) (*config, error) {
	v := viper.New()
	v.SetDefault("width", img2grid.DefaultWidth)
	v.SetDefault("height", img2grid.DefaultHeight)
	v.SetDefault("categoryId", img2grid.DefaultCategoryID)
	v.SetDefault("workers", 4)
	v.SetDefault("output", img2grid.DefaultExportName)
	v.SetDefault("outputDir", ".")
	v.SetDefault("compression", string(img2grid.CompressionNone))
	v.SetDefault("cellSize", img2grid.DefaultCellSize)
	v.SetDefault("maxPixels", 64*1024*1024)

	explicit := path != ""
	if !explicit {
		path = defaultConfigFile
	}
	v.SetConfigFile(path)
	v.SetConfigType("json")
	if err := v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
		log.Debugf("No config file at %s, using defaults", path)
	} else {
		log.Debugf("Loaded config from %s", v.ConfigFileUsed())
	}

	cfg := &config{
		Width:       v.GetInt("width"),
		Height:      v.GetInt("height"),
		CategoryID:  v.GetString("categoryId"),
		Workers:     v.GetInt("workers"),
		OutputName:  v.GetString("output"),
		OutputDir:   v.GetString("outputDir"),
		Compression: v.GetString("compression"),
		CellSize:    v.GetInt("cellSize"),
		MaxPixels:   v.GetInt("maxPixels"),
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("grid size must be positive, got %dx%d", cfg.Width, cfg.Height)
	}
	if _, err := img2grid.ParseCompression(cfg.Compression); err != nil {
		return nil, err
	}
	return cfg, nil
}
