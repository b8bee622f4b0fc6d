package config

import "time"

// Config carries the run options. The command surface is three flags (input
// manifest, output manifest, image root); the browser knobs keep fixed
// defaults tuned for the listing pages this targets.
type Config struct {
	InputPath  string
	OutputPath string
	ImageRoot  string

	NavTimeout  time.Duration
	SettleDelay time.Duration
}

func Default() Config {
	return Config{
		InputPath:  "gallery.json",
		OutputPath: "gallery-output.json",
		ImageRoot:  "gallery",

		NavTimeout:  60 * time.Second,
		SettleDelay: 2500 * time.Millisecond,
	}
}
