package main

import (
	"flag"
	"time"

	"github.com/BurntSushi/toml"
)

// config holds the settings for letterd. They may come from a TOML file,
// from the command line, or both. Command line flags win.
type config struct {
	Letters            string
	CacheDir           string
	CacheSize          int64
	Port               string
	PProfPort          string
	MySQL              string
	SentryDSN          string
	MaxConcurrentFetch int
	StopTimeout        duration
}

// duration lets a time.Duration be written as a string such as "30s" in
// the config file.
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

func defaultConfig() config {
	return config{
		Port:               "14000",
		MaxConcurrentFetch: 6,
		StopTimeout:        duration{30 * time.Second},
	}
}

// loadConfig reads a TOML file over the defaults.
func loadConfig(filename string) (config, error) {
	conf := defaultConfig()
	if filename == "" {
		return conf, nil
	}
	_, err := toml.DecodeFile(filename, &conf)
	return conf, err
}

// flagValues are the command line settings which override the config file.
type flagValues struct {
	letters     string
	cacheDir    string
	cacheSize   int64
	port        string
	pprofPort   string
	mysql       string
	sentry      string
	concurrent  int
	stopTimeout time.Duration
}

func (fv *flagValues) register(fs *flag.FlagSet) {
	fs.StringVar(&fv.letters, "letters", "", "location of the letter designs: a directory or s3://[host]/bucket/prefix")
	fs.StringVar(&fv.cacheDir, "cache-dir", "", "directory for the design cache and history database")
	fs.Int64Var(&fv.cacheSize, "cache-size", 0, "size of the design cache in bytes")
	fs.StringVar(&fv.port, "port", "", "port to listen on")
	fs.StringVar(&fv.pprofPort, "pprof-port", "", "port for pprof, if any")
	fs.StringVar(&fv.mysql, "mysql", "", "MySQL dial string for the history log")
	fs.StringVar(&fv.sentry, "sentry", "", "Sentry DSN for error reports")
	fs.IntVar(&fv.concurrent, "fetch", 0, "number of letter designs read at once")
	fs.DurationVar(&fv.stopTimeout, "stop-timeout", 0, "time to wait for requests when stopping")
}

// apply copies the flags which were given on the command line into conf.
func (fv *flagValues) apply(fs *flag.FlagSet, conf *config) {
	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "letters":
			conf.Letters = fv.letters
		case "cache-dir":
			conf.CacheDir = fv.cacheDir
		case "cache-size":
			conf.CacheSize = fv.cacheSize
		case "port":
			conf.Port = fv.port
		case "pprof-port":
			conf.PProfPort = fv.pprofPort
		case "mysql":
			conf.MySQL = fv.mysql
		case "sentry":
			conf.SentryDSN = fv.sentry
		case "fetch":
			conf.MaxConcurrentFetch = fv.concurrent
		case "stop-timeout":
			conf.StopTimeout.Duration = fv.stopTimeout
		}
	})
}
