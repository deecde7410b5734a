package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"molecule-browser/internal/api"
	"molecule-browser/internal/config"
	"molecule-browser/internal/infra/logx"
	"molecule-browser/internal/store"
	"molecule-browser/internal/ui"
)

func main() {
	if err := run(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := pflag.StringP("config", "c", config.DefaultPath(), "path of the YAML config file")
	debug := pflag.Bool("debug", false, "log at debug level (to debug.log unless log.file is set)")
	noCache := pflag.Bool("no-cache", false, "do not read or write the snapshot cache")
	pflag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		return err
	}
	_, statErr := os.Stat(*cfgPath)
	hasConfig := statErr == nil
	if statErr != nil && !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	// DEBUG in the environment behaves like --debug
	logFile, level := cfg.Log.File, cfg.Log.Level
	if *debug || len(os.Getenv("DEBUG")) > 0 {
		level = "debug"
		if logFile == "" {
			logFile = "debug.log"
		}
		fmt.Printf("Debug logging enabled. Run 'tail -f %s' to view logs.\n", logFile)
	}
	closer, err := logx.Setup(logx.Options{
		File:    logFile,
		Level:   level,
		Verbose: cfg.Log.Verbose,
		Secrets: []string{cfg.Token},
	})
	if err != nil {
		return err
	}
	defer closer.Close()

	// stdlib log output would corrupt the alt screen
	if w, ok := closer.(io.Writer); ok {
		log.SetOutput(logx.StdlogWriter(logx.LevelInfo, w))
	} else {
		log.SetOutput(io.Discard)
	}

	var cache ui.Cache
	if cfg.CachePath != "" && !*noCache {
		st, err := store.Open(cfg.CachePath)
		if err != nil {
			logx.Warnf("snapshot cache disabled: %v", err)
		} else {
			defer st.Close()
			cache = st
		}
	}

	opts := api.DefaultTransportOptions()
	opts.RetryMax = cfg.API.RetryMax
	opts.Limit = api.Limit{RPS: cfg.API.RPS, Burst: cfg.API.Burst}

	model := ui.NewModel(ui.Options{
		Config:        cfg,
		ConfigPath:    *cfgPath,
		HasConfigFile: hasConfig,
		NewClient: func(token string) ui.Source {
			return api.New(cfg.API.BaseURL, token, opts)
		},
		Cache: cache,
	})

	logx.Infof("starting against %s", cfg.API.BaseURL)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	return nil
}
