package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/lao-tseu-is-alive/go-flock-simulation/internal/game"
	"github.com/lao-tseu-is-alive/go-flock-simulation/pkg/flock"
)

func main() {
	configFile := flag.String("config", "", "path to a JSON config file (defaults apply when empty)")
	schemaFile := flag.String("schema", "config.schema.json", "path to the config JSON schema")
	flag.Parse()

	cfg := flock.DefaultConfig()
	if *configFile != "" {
		var err error
		cfg, err = flock.LoadConfig(*configFile, *schemaFile)
		if err != nil {
			log.Fatal(err)
		}
	}

	g, err := game.New(cfg)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowSize(int(cfg.ScreenWidth), int(cfg.ScreenHeight))
	ebiten.SetWindowTitle("Boids Flocking")
	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
