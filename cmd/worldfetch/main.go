package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	get "github.com/hashicorp/go-getter"

	"github.com/OCharnyshevich/voxel-engine/internal/engine/codec"
	"github.com/OCharnyshevich/voxel-engine/internal/engine/storage"
)

func main() {
	var (
		src   = flag.String("url", "", "world source, any go-getter address (git::, https://, s3::, ...)")
		out   = flag.String("o", "./save", "output world directory")
		force = flag.Bool("force", false, "replace an existing world in the output directory")
	)
	flag.Parse()

	if *src == "" {
		log.Fatal("world url required")
	}
	if *out == "" {
		log.Fatal("output dir path required")
	}

	if _, err := storage.ReadWorld(*out); err == nil && !*force {
		log.Fatalf("%s already holds a world; pass -force to replace it", *out)
	}
	if err := os.RemoveAll(*out); err != nil {
		log.Fatalf("clear %s: %v", *out, err)
	}

	log.Default().Printf("start downloading world %s", *src)
	if err := get.Get(*out, *src); err != nil {
		log.Fatalf("download world: %v", err)
	}

	meta, err := storage.ReadWorld(*out)
	if err != nil {
		log.Fatalf("downloaded world is invalid: %v", err)
	}
	chunks, bad := countChunks(filepath.Join(*out, codec.Dir))
	log.Default().Printf("done downloading world %s: id=%s seed=%d chunk_size=%d chunks=%d unrecognised=%d",
		*out, meta.ID, meta.Seed, meta.ChunkSize, chunks, bad)
}

// countChunks counts files in dir named like chunk files, and the rest.
func countChunks(dir string) (chunks, other int) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, 0
	}
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := codec.ParseName(e.Name()); err != nil {
			other++
			continue
		}
		chunks++
	}
	return chunks, other
}
