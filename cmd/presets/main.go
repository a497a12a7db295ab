// Command presets downloads a directory of heightmap config presets and
// checks that each one loads, e.g.
//
//	presets -src "git::https://example.com/terrain.git//presets" -o ./presets
package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/heightmap/internal/config"
)

func main() {
	var (
		src = flag.String("src", "", "go-getter source of the preset directory")
		out = flag.String("o", "./presets", "output dir path")
	)
	flag.Parse()

	if *src == "" {
		log.Fatal("source url required")
	}
	if *out == "" {
		log.Fatal("output dir path required")
	}

	if err := os.RemoveAll(*out); err != nil {
		log.Fatal(err)
	}

	log.Default().Printf("start downloading presets %s", *out)

	if err := get.Get(*out, *src); err != nil {
		log.Fatal(err)
	}

	matches, err := filepath.Glob(filepath.Join(*out, "*.*"))
	if err != nil {
		log.Fatal(err)
	}
	for _, path := range matches {
		switch filepath.Ext(path) {
		case ".yaml", ".yml", ".json":
		default:
			continue
		}
		if _, err := config.Load(path); err != nil {
			log.Default().Printf("skipping invalid preset %s: %v", path, err)
			continue
		}
		log.Default().Printf("preset ok %s", path)
	}

	log.Default().Printf("done downloading presets %s", *out)
}
