package main

import (
	"context"
	"flag"
	"fmt"
	"image/jpeg"
	"os"
	"os/signal"
	"strings"

	"exiffix/lib/batch"
	fl "exiffix/lib/filelogger"
	"exiffix/lib/fixcfg"
	. "exiffix/lib/logx"
	"exiffix/lib/normalizer"
	"exiffix/lib/normalizer/metanorm"
	"exiffix/lib/normalizer/pixnorm"
	"exiffix/lib/zipio"
)

func parseLevel(s string) (Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG, true
	case "info":
		return INFO, true
	case "notice":
		return NOTICE, true
	case "warn", "warning":
		return WARN, true
	case "error":
		return ERROR, true
	case "critical":
		return CRITICAL, true
	}
	return 0, false
}

func outName(in, explicit string) string {
	if explicit != "" {
		return explicit
	}
	return strings.TrimSuffix(in, ".zip") + ".fixed.zip"
}

func main() {
	cfgfile := flag.String("cfg", "", "TOML config file")
	strategy := flag.String("strategy", "", "correction strategy: metadata or pixel")
	workers := flag.Int("workers", 0, "worker count; 0 means all cores")
	outfile := flag.String("out", "", "output archive (default <input>.fixed.zip)")
	manifest := flag.Bool("manifest", true, "append checksum manifest to output")
	loglevel := flag.String("loglevel", "", "debug/info/notice/warn/error")

	flag.Parse()

	cfg := fixcfg.DefaultConfig
	if *cfgfile != "" {
		var err error
		cfg, err = fixcfg.ParseFile(*cfgfile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "config error: %v\n", err)
			os.Exit(1)
		}
	}
	// flags override file
	if *strategy != "" {
		cfg.Strategy = *strategy
	}
	if *workers != 0 {
		cfg.Workers = *workers
	}
	if !*manifest {
		cfg.Manifest = false
	}
	if *loglevel != "" {
		cfg.LogLevel = *loglevel
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	lvl, ok := parseLevel(cfg.LogLevel)
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", cfg.LogLevel)
		os.Exit(1)
	}
	lgr, err := fl.NewFileLogger(os.Stderr, lvl, fl.ColorAuto)
	if err != nil {
		fmt.Fprintf(os.Stderr, "fl.NewFileLogger error: %v\n", err)
		os.Exit(1)
	}
	mlog := NewLogToX(lgr, "main")

	var nb normalizer.NormalizerBuilder
	switch cfg.Strategy {
	case fixcfg.StrategyMetadata:
		nb = metanorm.DefaultConfig
	case fixcfg.StrategyPixel:
		pc := pixnorm.DefaultConfig
		pc.MaxWidth = cfg.Pixel.MaxWidth
		pc.MaxHeight = cfg.Pixel.MaxHeight
		pc.MaxPixels = cfg.Pixel.MaxPixels
		pc.MaxFileSize = cfg.Pixel.MaxFileSize
		pc.JpegOpts = &jpeg.Options{Quality: cfg.Pixel.Quality}
		nb = pc
	}
	norm, err := nb.BuildNormalizer(lgr)
	if err != nil {
		mlog.LogPrintf(CRITICAL, "building normalizer: %v", err)
		os.Exit(1)
	}

	args := flag.Args()
	if len(args) == 0 {
		flag.PrintDefaults()
		return
	}
	if *outfile != "" && len(args) != 1 {
		fmt.Fprintf(os.Stderr, "-out needs exactly one input archive\n")
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	exitCode := 0
	for _, arg := range args {
		items, err := zipio.ReadArchive(arg)
		if err != nil {
			mlog.LogPrintf(ERROR, "reading %q: %v", arg, err)
			exitCode = 1
			continue
		}
		mlog.LogPrintf(INFO, "%q: %d image(s)", arg, len(items))

		corr := batch.NewCorrector(batch.Config{
			Workers: cfg.Workers,
			Progress: func(done, total int) {
				mlog.LogPrintf(NOTICE, "%d/%d done", done, total)
			},
		}, norm, lgr)

		res := corr.Correct(ctx, items)

		nerr := 0
		for i := range res {
			if res[i].Err != nil {
				mlog.LogPrintf(ERROR, "%s: %v", res[i].Name, res[i].Err)
				nerr++
			}
		}
		if nerr != 0 {
			mlog.LogPrintf(WARN,
				"%q: %d of %d image(s) failed, dropped from output",
				arg, nerr, len(items))
			exitCode = 1
		}

		out := outName(arg, *outfile)
		err = zipio.WriteArchive(out, res, cfg.Manifest)
		if err != nil {
			mlog.LogPrintf(ERROR, "writing %q: %v", out, err)
			exitCode = 1
			continue
		}
		mlog.LogPrintf(NOTICE, "%q: wrote %q", arg, out)

		if ctx.Err() != nil {
			mlog.LogPrintf(WARN, "interrupted, stopping")
			exitCode = 1
			break
		}
	}
	os.Exit(exitCode)
}
