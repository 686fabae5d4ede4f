// Round renderer: writes each configured round's image, hint and pieces as
// PNG files, and optionally publishes them to S3.
package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"log"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/kyiku/planet-jigsaw-back/internal/config"
	"github.com/kyiku/planet-jigsaw-back/internal/jigsaw"
	"github.com/kyiku/planet-jigsaw-back/internal/model"
	"github.com/kyiku/planet-jigsaw-back/internal/round"
	"github.com/kyiku/planet-jigsaw-back/internal/storage"
	"github.com/kyiku/planet-jigsaw-back/internal/texture"
)

func main() {
	out := flag.String("out", "rounds", "output directory")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	publish := flag.Bool("publish", false, "upload rounds to S3_BUCKET")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	var publisher *storage.S3Client
	if *publish {
		if cfg.S3Bucket == "" {
			log.Fatal("S3_BUCKET is required with -publish")
		}
		adapter, err := storage.NewS3Adapter(context.TODO(), cfg.AWSRegion, cfg.S3Bucket)
		if err != nil {
			log.Fatalf("Failed to load AWS config: %v", err)
		}
		publisher = storage.NewS3Client(adapter, cfg.S3Bucket, cfg.CloudfrontDomain)
	}

	rng := rand.New(rand.NewSource(*seed))
	log.Printf("Rendering %d rounds with seed %d", len(cfg.Rounds), *seed)

	for i, d := range round.Descriptors(cfg.Rounds, cfg.GridSize) {
		raster, err := texture.Synthesize(d.Identity, cfg.RasterSize, rng, texture.WithGrainDensity(cfg.GrainDensity))
		if err != nil {
			log.Fatalf("Failed to synthesize %s: %v", d.Identity, err)
		}

		specs, err := jigsaw.Decompose(raster, d.Grid)
		if err != nil {
			log.Fatalf("Failed to decompose %s: %v", d.Identity, err)
		}

		dir := filepath.Join(*out, fmt.Sprintf("%d-%s", i, d.Identity))
		if err := writeRound(dir, raster, specs); err != nil {
			log.Fatalf("Failed to write %s: %v", dir, err)
		}
		log.Printf("  %s: %d pieces -> %s", d.Identity, len(specs), dir)

		if publisher == nil {
			continue
		}
		assets, err := publisher.PublishRound(raster, specs)
		if err != nil {
			log.Fatalf("Failed to publish %s: %v", d.Identity, err)
		}
		keys, err := publisher.ListRound(assets.Prefix)
		if err != nil {
			log.Fatalf("Failed to list %s: %v", assets.Prefix, err)
		}
		log.Printf("  published %d objects, raster at %s", len(keys), assets.RasterURL)
	}
}

// writeRound writes raster.png, hint.png, solved.png and pieces/<id>.png
// under dir.
func writeRound(dir string, raster image.Image, specs []model.PieceSpec) error {
	if err := os.MkdirAll(filepath.Join(dir, "pieces"), 0o755); err != nil {
		return err
	}

	if err := writePNG(filepath.Join(dir, "raster.png"), raster); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(dir, "hint.png"), storage.Thumbnail(raster, storage.DefaultHintSize)); err != nil {
		return err
	}
	if err := writePNG(filepath.Join(dir, "solved.png"), jigsaw.Reassemble(specs)); err != nil {
		return err
	}
	for _, spec := range specs {
		if err := writePNG(filepath.Join(dir, "pieces", fmt.Sprintf("%d.png", spec.ID)), spec.Pixels); err != nil {
			return err
		}
	}
	return nil
}

func writePNG(path string, img image.Image) error {
	data, err := storage.EncodePNG(img)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
