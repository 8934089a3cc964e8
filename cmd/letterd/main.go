// Letterd serves embroidery designs for whole words, made from a store of
// single letter designs.
//
// Usage:
//
//	letterd [-config letterd.toml] [-letters LOCATION] [-cache-dir DIR] ...
package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	raven "github.com/getsentry/raven-go"

	"github.com/ndlib/monogram/server"
)

func main() {
	var configFile = flag.String("config", "", "TOML config file")
	var fv flagValues
	fv.register(flag.CommandLine)
	flag.Parse()

	conf, err := loadConfig(*configFile)
	if err != nil {
		log.Fatalln("Reading config:", err)
	}
	fv.apply(flag.CommandLine, &conf)

	if conf.SentryDSN != "" {
		log.Println("Using Sentry")
		raven.SetDSN(conf.SentryDSN)
	}

	log.Printf("Using letters at %q", conf.Letters)
	letters, err := parselocation(conf.Letters)
	if err != nil {
		log.Fatalln(err)
	}

	s := &server.RESTServer{
		PortNumber:         conf.Port,
		PProfPort:          conf.PProfPort,
		Letters:            letters,
		CacheDir:           conf.CacheDir,
		CacheSize:          conf.CacheSize,
		MySQL:              conf.MySQL,
		MaxConcurrentFetch: conf.MaxConcurrentFetch,
		StopTimeout:        conf.StopTimeout.Duration,
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		log.Println("Received signal", <-sig)
		s.Stop()
	}()

	err = s.Run()
	if err != nil {
		log.Fatalln(err)
	}
}
