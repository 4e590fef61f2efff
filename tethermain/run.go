// Package tethermain bootstraps the NextTether daemon
package tethermain

import (
	"flag"
	"log"
	"os"

	"github.com/caddyserver/caddy"
)

var (
	conf       string
	serverType = "tether"
)

func init() {
	caddy.DefaultConfigFile = "Tetherfile"
	caddy.Quiet = false

	flag.StringVar(&conf, "conf", "", "Tetherfile to load (default \""+caddy.DefaultConfigFile+"\")")

	caddy.RegisterCaddyfileLoader("flag", caddy.LoaderFunc(configLoader))
	caddy.SetDefaultCaddyfileLoader("default", caddy.LoaderFunc(defaultLoader))

	caddy.AppName = "NextTether"
	caddy.AppVersion = "v0.1.0"
}

// Run starts NextTether and blocks until the server stopped
func Run() {
	flag.Parse()
	caddy.TrapSignals()

	tetherfile, err := caddy.LoadCaddyfile(serverType)
	if err != nil {
		log.Fatal(err)
	}

	instance, err := caddy.Start(tetherfile)
	if err != nil {
		log.Fatal(err)
	}

	instance.Wait()
}

func configLoader(serverType string) (caddy.Input, error) {
	if conf == "" {
		return nil, nil
	}

	if conf == "stdin" || conf == "-" {
		return caddy.CaddyfileFromPipe(os.Stdin, serverType)
	}

	file, err := os.ReadFile(conf)
	if err != nil {
		return nil, err
	}

	return caddy.CaddyfileInput{
		Contents:       file,
		Filepath:       conf,
		ServerTypeName: serverType,
	}, nil
}

func defaultLoader(serverType string) (caddy.Input, error) {
	conf = caddy.DefaultConfigFile
	return configLoader(serverType)
}
