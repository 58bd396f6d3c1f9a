//go:build mage

package main

import (
	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var bin = "./" + binDir + "/" + binName

// Load imports the sample dataset in data/advisors.yaml.
func Load() error {
	mg.Deps(Build)
	return sh.RunV(bin, "load", "data/advisors.yaml")
}

// Ingest fetches the roster in data/roster.yaml from OpenAlex.
func Ingest() error {
	mg.Deps(Build)
	return sh.RunV(bin, "ingest", "data/roster.yaml")
}

// Embed backfills publication embeddings for the dense backend.
func Embed() error {
	mg.Deps(Build)
	return sh.RunV(bin, "embed")
}

// Serve runs the HTTP API.
func Serve() error {
	mg.Deps(Build)
	return sh.RunV(bin, "serve")
}
