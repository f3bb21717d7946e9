// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

//go:build mage

// Package main provides build targets for the gomarket project using Mage.
//
// Usage:
//
//	mage build        Compile the gomarket binary to bin/
//	mage test:all     Run all tests
//	mage test:unit    Run tests without external services
//	mage test:redis   Run the redis backend tests against REDIS_ADDR
//	mage lint         Run go vet, the gofmt check, and golangci-lint
//	mage vet          Run go vet
//	mage fmt          Fail on files that need gofmt
//	mage clean        Remove build artifacts
//	mage install      Install gomarket to GOPATH/bin
package main

import (
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const (
	binGo      = "go"
	binaryName = "gomarket"
	binaryDir  = "bin"
	cmdDir     = "./cmd/gomarket"

	versionVar = "github.com/mesh-intelligence/gomarket/internal/cli.Version"
)

// ldflags stamps the binary with VERSION when it is set.
func ldflags() string {
	if v := os.Getenv("VERSION"); v != "" {
		return "-X " + versionVar + "=" + v
	}
	return ""
}

// Build compiles the gomarket binary to bin/.
func Build() error {
	if err := os.MkdirAll(binaryDir, 0o755); err != nil {
		return err
	}
	return sh.RunV(binGo, "build", "-v", "-ldflags", ldflags(), "-o", filepath.Join(binaryDir, binaryName), cmdDir)
}

// Clean removes build artifacts.
func Clean() error {
	if err := os.RemoveAll(binaryDir); err != nil {
		return err
	}
	return sh.RunV(binGo, "clean")
}

// Install builds and copies the binary to GOPATH/bin.
func Install() error {
	mg.Deps(Build)
	gopath, err := sh.Output(binGo, "env", "GOPATH")
	if err != nil {
		return err
	}
	src := filepath.Join(binaryDir, binaryName)
	dst := filepath.Join(gopath, "bin", binaryName)
	return sh.Copy(dst, src)
}
